package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"qywxbot/tools/logger"
	"qywxbot/wecom/pkg/wxerr"
)

const (
	// RequestIDHeader 请求链路 id
	RequestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestID 为每个请求生成 id，已带 id 的请求沿用原值
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID 获取当前请求 id
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog 访问日志，只记录路径不记录 query
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("%s %s %d %s request_id=%s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond), GetRequestID(c))
	}
}

// 统一返回的数据结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// 成功, 怎么把 对象 -->  HTTP Reponse
func Success(data any, c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// 失败, 统一返回的数据结构: ApiException
func Failed(err error, c *gin.Context) {
	var e *ApiException
	if !errors.As(err, &e) {
		e = FromError(err)
	}

	httpCode := http.StatusInternalServerError
	if e.HttpCode != 0 {
		httpCode = e.HttpCode
	}

	c.JSON(httpCode, e)
	c.Abort()
}

// FromError 把 wxerr 分类映射为 HTTP 状态码，非业务异常转换为内部错误
func FromError(err error) *ApiException {
	var we *wxerr.Error
	if !errors.As(err, &we) {
		return ErrServerInternal("%s", err.Error()).WithHttpCode(http.StatusInternalServerError)
	}

	e := &ApiException{Message: err.Error(), Kind: string(we.Kind)}
	switch we.Kind {
	case wxerr.KindValidation:
		e.Code, e.HttpCode = 400, http.StatusBadRequest
	case wxerr.KindNotFound:
		e.Code, e.HttpCode = 404, http.StatusNotFound
	case wxerr.KindRemote:
		e.Code, e.HttpCode = we.Code, http.StatusBadGateway
	case wxerr.KindTransport, wxerr.KindProtocol:
		e.Code, e.HttpCode = 50200, http.StatusBadGateway
		if we.Timeout {
			e.HttpCode = http.StatusGatewayTimeout
		}
	default:
		e.Code, e.HttpCode = 50000, http.StatusInternalServerError
	}
	return e
}

func NewApiException(code int, message string) *ApiException {
	return &ApiException{
		Code:    code,
		Message: message,
	}
}

// 用于描述业务异常
type ApiException struct {
	// 业务异常的编码, 远端错误时为企业微信 errcode
	Code int `json:"code"`
	// 异常描述信息
	Message string `json:"message"`
	// 错误类别，对应 wxerr.Kind
	Kind string `json:"kind,omitempty"`
	Data any    `json:"data"`
	// 不会出现在Boyd里面, 序列画成JSON, http response 进行set
	HttpCode int `json:"-"`
}

func (e *ApiException) Error() string {
	return e.Message
}

func (e *ApiException) String() string {
	dj, _ := json.MarshalIndent(e, "", "  ")
	return string(dj)
}

func (e *ApiException) WithMessage(msg string) *ApiException {
	e.Message = msg
	return e
}

func (e *ApiException) WithHttpCode(httpCode int) *ApiException {
	e.HttpCode = httpCode
	return e
}

func ErrServerInternal(format string, a ...any) *ApiException {
	return &ApiException{
		Code:    50000,
		Message: fmt.Sprintf(format, a...),
	}
}

func ErrValidateFailed(format string, a ...any) *ApiException {
	return &ApiException{
		Code:     400,
		Message:  fmt.Sprintf(format, a...),
		HttpCode: http.StatusBadRequest,
	}
}
