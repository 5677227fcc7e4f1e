package impl

import (
	"context"
	"net/url"

	"qywxbot/tools/logger"
	"qywxbot/wecom/config"
	"qywxbot/wecom/pkg/message"
	"qywxbot/wecom/pkg/notice"
	"qywxbot/wecom/pkg/webhook"
	"qywxbot/wecom/pkg/wxerr"
)

// Client 发送、上传、下载图片的底层客户端，由 webhook.Client 实现
type Client interface {
	message.Uploader
	message.Fetcher
	Send(ctx context.Context, p *message.Payload) (*webhook.Result, error)
}

var _ notice.Service = (*NoticeImpl)(nil)

type NoticeImpl struct {
	client  Client
	builder *message.Builder
	limits  message.Limits
	logger  *logger.Logger
}

// NewNoticeImpl 按配置创建服务，底层使用 webhook.Client
func NewNoticeImpl(cfg *config.Config, log *logger.Logger) *NoticeImpl {
	return New(webhook.NewClient(cfg, log), cfg.Limits(), log)
}

func New(client Client, limits message.Limits, log *logger.Logger) *NoticeImpl {
	return &NoticeImpl{
		client:  client,
		builder: message.NewBuilder(limits, client, client),
		limits:  limits,
		logger:  log,
	}
}

// 发送文本消息
func (n *NoticeImpl) SendText(ctx context.Context, req *notice.TextRequest) (*webhook.Result, error) {
	p, err := n.builder.BuildText(message.TextMessage{
		Content:             req.Content,
		MentionedList:       req.MentionedList,
		MentionedMobileList: req.MentionedMobileList,
	})
	return n.dispatch(ctx, p, err)
}

// 发送markdown消息
func (n *NoticeImpl) SendMarkdown(ctx context.Context, req *notice.MarkdownRequest) (*webhook.Result, error) {
	p, err := n.builder.BuildMarkdown(req.Content)
	return n.dispatch(ctx, p, err)
}

// 发送增强markdown消息
func (n *NoticeImpl) SendMarkdownV2(ctx context.Context, req *notice.MarkdownRequest) (*webhook.Result, error) {
	p, err := n.builder.BuildMarkdownV2(req.Content)
	return n.dispatch(ctx, p, err)
}

// 发送图片消息
func (n *NoticeImpl) SendImage(ctx context.Context, req *notice.ImageRequest) (*webhook.Result, error) {
	p, err := n.builder.BuildImage(ctx, req.Source())
	return n.dispatch(ctx, p, err)
}

// 发送图文消息
func (n *NoticeImpl) SendNews(ctx context.Context, req *notice.NewsRequest) (*webhook.Result, error) {
	p, err := n.builder.BuildNews(req.Articles)
	return n.dispatch(ctx, p, err)
}

// 发送文件消息，上传失败时不再发送
func (n *NoticeImpl) SendFile(ctx context.Context, req *notice.FileRequest) (*webhook.Result, error) {
	p, err := n.builder.BuildFile(ctx, message.MediaRef{Path: req.FilePath, MediaID: req.MediaID})
	return n.dispatch(ctx, p, err)
}

// 发送语音消息，上传失败时不再发送
func (n *NoticeImpl) SendVoice(ctx context.Context, req *notice.VoiceRequest) (*webhook.Result, error) {
	p, err := n.builder.BuildVoice(ctx, message.MediaRef{Path: req.VoicePath, MediaID: req.MediaID})
	return n.dispatch(ctx, p, err)
}

// 发送模版卡片消息
func (n *NoticeImpl) SendTemplateCard(ctx context.Context, req *notice.TemplateCardRequest) (*webhook.Result, error) {
	p, err := n.builder.BuildTemplateCard(req.ToCard())
	return n.dispatch(ctx, p, err)
}

// 上传素材
func (n *NoticeImpl) Upload(ctx context.Context, req *notice.UploadRequest) (*notice.UploadResponse, error) {
	if req.FilePath == "" {
		return nil, wxerr.Validation("file_path is required")
	}
	id, err := n.client.Upload(ctx, req.FilePath, message.MediaKind(req.MediaType))
	if err != nil {
		return nil, err
	}
	return &notice.UploadResponse{MediaID: id, MediaType: req.MediaType}, nil
}

func (n *NoticeImpl) ListSupportedKinds(ctx context.Context) []message.KindInfo {
	return message.ListSupportedKinds()
}

func (n *NoticeImpl) GetFormatSpec(ctx context.Context, req *notice.FormatRequest) (*message.FormatSpec, error) {
	return message.GetFormatSpec(req.MessageType, n.limits)
}

// Notice 通用通知入口，只支持 text、markdown、image
func (n *NoticeImpl) Notice(ctx context.Context, req *notice.NoticeRequest) (*webhook.Result, error) {
	msgType := req.MsgType
	if msgType == "" {
		msgType = string(message.KindText)
	}

	switch message.Kind(msgType) {
	case message.KindText:
		return n.SendText(ctx, &notice.TextRequest{
			Content:             req.Msg,
			MentionedList:       req.MentionedList,
			MentionedMobileList: req.MentionedMobileList,
		})
	case message.KindMarkdown:
		return n.SendMarkdown(ctx, &notice.MarkdownRequest{Content: req.Msg})
	case message.KindImage:
		img := &notice.ImageRequest{ImagePath: req.Msg}
		if u, err := url.Parse(req.Msg); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			img = &notice.ImageRequest{ImageURL: req.Msg}
		}
		return n.SendImage(ctx, img)
	default:
		return nil, wxerr.Validation("unsupported message type: %s, must be text, markdown or image", msgType)
	}
}

// dispatch 发送已构造好的消息，发送阶段的本地失败统一转成 errcode=-1 的结果
func (n *NoticeImpl) dispatch(ctx context.Context, p *message.Payload, buildErr error) (*webhook.Result, error) {
	if buildErr != nil {
		n.logger.Warn("Rejected message before sending: %v", buildErr)
		return nil, buildErr
	}

	res, err := n.client.Send(ctx, p)
	if err != nil {
		if wxerr.Is(err, wxerr.KindValidation) {
			return nil, err
		}
		return webhook.FailureResult(err), nil
	}
	return res, nil
}
