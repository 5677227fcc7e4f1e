package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"qywxbot/tools/logger"
)

// Options 连接池配置
type Options struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// NewTransport 创建可在多个客户端之间共享的连接池
func NewTransport(o Options) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          o.MaxIdleConns,
		MaxIdleConnsPerHost:   o.MaxIdleConnsPerHost,
		IdleConnTimeout:       o.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// CreateClient 创建带整体超时的 resty 客户端，不做重试
func CreateClient(timeout time.Duration, tr http.RoundTripper, log *logger.Logger) *resty.Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
	if tr != nil {
		c.SetTransport(tr)
	}
	if log != nil {
		c.SetLogger(restyLogger{log})
	}
	return c
}

// RequestC 发起一次请求，返回响应体和状态码
func RequestC(ctx context.Context, client *resty.Client, method, url string, body []byte, headers map[string]string) ([]byte, int, error) {
	if headers == nil {
		headers = map[string]string{
			"Content-Type": "application/json",
		}
	}

	req := client.R().SetContext(ctx).SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body(), resp.StatusCode(), nil
}

type restyLogger struct {
	l *logger.Logger
}

func (r restyLogger) Errorf(format string, v ...any) { r.l.Error(format, v...) }
func (r restyLogger) Warnf(format string, v ...any)  { r.l.Warn(format, v...) }
func (r restyLogger) Debugf(format string, v ...any) { r.l.Debug(format, v...) }
