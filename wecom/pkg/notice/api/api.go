package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"qywxbot/tools/middleware"
	"qywxbot/wecom/pkg/notice"
	"qywxbot/wecom/pkg/webhook"
)

type NoticeHandler struct {
	svc  notice.Service
	root gin.IRouter
}

func NewNoticeHandler(svc notice.Service, root gin.IRouter) *NoticeHandler {
	return &NoticeHandler{svc: svc, root: root}
}

func (h *NoticeHandler) Init() error {
	subr := h.root.Group(notice.AppName)
	h.Register(subr)
	return nil
}

func (h *NoticeHandler) Register(appRouter gin.IRouter) {
	appRouter.POST("/text", sendHandler(h.svc.SendText))
	appRouter.POST("/markdown", sendHandler(h.svc.SendMarkdown))
	appRouter.POST("/markdown_v2", sendHandler(h.svc.SendMarkdownV2))
	appRouter.POST("/image", sendHandler(h.svc.SendImage))
	appRouter.POST("/news", sendHandler(h.svc.SendNews))
	appRouter.POST("/file", sendHandler(h.svc.SendFile))
	appRouter.POST("/voice", sendHandler(h.svc.SendVoice))
	appRouter.POST("/template_card", sendHandler(h.svc.SendTemplateCard))
	appRouter.POST("/notice", sendHandler(h.svc.Notice))
	appRouter.POST("/upload", h.Upload)
	appRouter.GET("/kinds", h.ListKinds)
	appRouter.GET("/format/:kind", h.GetFormat)
}

// sendHandler 解析请求体并调用发送操作。errcode 非 0 的结果同样以 200 返回
func sendHandler[T any](fn func(context.Context, *T) (*webhook.Result, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := new(T)
		if err := c.ShouldBindJSON(req); err != nil {
			middleware.Failed(middleware.ErrValidateFailed("invalid request body: %v", err), c)
			return
		}

		res, err := fn(c.Request.Context(), req)
		if err != nil {
			middleware.Failed(err, c)
			return
		}
		middleware.Success(res, c)
	}
}

func (h *NoticeHandler) Upload(c *gin.Context) {
	req := &notice.UploadRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.Failed(middleware.ErrValidateFailed("invalid request body: %v", err), c)
		return
	}

	resp, err := h.svc.Upload(c.Request.Context(), req)
	if err != nil {
		middleware.Failed(err, c)
		return
	}
	middleware.Success(resp, c)
}

func (h *NoticeHandler) ListKinds(c *gin.Context) {
	middleware.Success(h.svc.ListSupportedKinds(c.Request.Context()), c)
}

func (h *NoticeHandler) GetFormat(c *gin.Context) {
	spec, err := h.svc.GetFormatSpec(c.Request.Context(), &notice.FormatRequest{MessageType: c.Param("kind")})
	if err != nil {
		middleware.Failed(err, c)
		return
	}
	middleware.Success(spec, c)
}
