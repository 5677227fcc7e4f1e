// Package webhook 负责与企业微信群机器人 webhook 的全部网络交互：
// 消息发送、素材上传以及图片下载。
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"qywxbot/tools/httpclient"
	"qywxbot/tools/logger"
	"qywxbot/wecom/config"
	"qywxbot/wecom/pkg/message"
	"qywxbot/wecom/pkg/wxerr"
)

// Client 企业微信机器人客户端，创建后只读，可并发使用
type Client struct {
	key       string
	sendURL   string
	uploadURL string
	limits    message.Limits

	sendTimeout   time.Duration
	uploadTimeout time.Duration
	fetchTimeout  time.Duration

	send   *resty.Client
	upload *resty.Client
	fetch  *resty.Client
	logger *logger.Logger
}

// NewClient 根据配置创建客户端，发送、上传、下载各自使用独立超时，共享连接池
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	tr := httpclient.NewTransport(httpclient.Options{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	})

	log.Info("WeCom webhook client initialized, key=%s, base=%s", cfg.MaskedKey(), cfg.BaseURL)

	return &Client{
		key:           cfg.WebhookKey,
		sendURL:       cfg.SendURL(),
		uploadURL:     cfg.UploadURL(),
		limits:        cfg.Limits(),
		sendTimeout:   cfg.RequestTimeout,
		uploadTimeout: cfg.UploadTimeout,
		fetchTimeout:  cfg.ImageFetchTimeout,
		send:          httpclient.CreateClient(cfg.RequestTimeout, tr, log),
		upload:        httpclient.CreateClient(cfg.UploadTimeout, tr, log),
		fetch:         httpclient.CreateClient(cfg.ImageFetchTimeout, tr, log),
		logger:        log,
	}
}

// Send 发送一条消息。errcode 非 0 作为正常结果返回；
// 超时、连接失败、响应无法解析分别返回不同的错误
func (c *Client) Send(ctx context.Context, p *message.Payload) (*Result, error) {
	body, err := p.Encode()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	target := c.sendURL + "?key=" + url.QueryEscape(c.key)
	c.logger.Debug("Sending %s message, %d bytes", p.MsgType, len(body))

	data, status, err := httpclient.RequestC(ctx, c.send, http.MethodPost, target, body, map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	})
	if err != nil {
		werr := c.transportError(err, "send request", c.sendTimeout)
		observe(endpointSend, p.MsgType, start, 0, werr)
		c.logger.Error("Failed to send %s message: %v", p.MsgType, werr)
		return nil, werr
	}

	raw, decodeErr := decodeResult(data)
	switch {
	case status != http.StatusOK && (decodeErr != nil || !raw.hasCode):
		werr := wxerr.Transport(nil, "send request returned unexpected http status").WithStatus(status, string(data))
		observe(endpointSend, p.MsgType, start, 0, werr)
		c.logger.Error("Failed to send %s message: %v", p.MsgType, werr)
		return nil, werr
	case decodeErr != nil:
		werr := wxerr.Protocol(decodeErr, "send response is not valid JSON").WithStatus(status, string(data))
		observe(endpointSend, p.MsgType, start, 0, werr)
		c.logger.Error("Failed to decode send response: %v", werr)
		return nil, werr
	case !raw.hasCode:
		werr := wxerr.Protocol(nil, "send response missing errcode").WithStatus(status, string(data))
		observe(endpointSend, p.MsgType, start, 0, werr)
		c.logger.Error("Failed to decode send response: %v", werr)
		return nil, werr
	}

	res := raw.result
	observe(endpointSend, p.MsgType, start, res.ErrCode, nil)
	if res.ErrCode != 0 {
		c.logger.Warn("WeCom rejected %s message: errcode=%d, errmsg=%s", p.MsgType, res.ErrCode, res.ErrMsg)
	} else {
		c.logger.Info("Sent %s message in %s", p.MsgType, time.Since(start).Round(time.Millisecond))
	}
	return res, nil
}

// Upload 上传本地文件，返回 media_id。本地检查依次为：文件存在、素材类型、大小
func (c *Client) Upload(ctx context.Context, path string, kind message.MediaKind) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", wxerr.NotFound("file not found: %s", path)
		}
		return "", wxerr.Validation("cannot access file %s: %v", path, err)
	}
	if info.IsDir() {
		return "", wxerr.Validation("path is a directory: %s", path)
	}
	if kind != message.MediaFile && kind != message.MediaVoice {
		return "", wxerr.Validation("unsupported media type: %s, must be file or voice", kind)
	}
	if limit := c.limits.MediaLimit(kind); info.Size() > limit {
		return "", wxerr.Validation("%s too large: %d bytes > %s", kind, info.Size(), message.HumanSize(limit))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", wxerr.Validation("open file %s: %v", path, err)
	}
	defer f.Close()

	start := time.Now()
	c.logger.Info("Uploading %s %s (%d bytes)", kind, filepath.Base(path), info.Size())

	resp, err := c.upload.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"key": c.key, "type": string(kind)}).
		SetMultipartField("media", filepath.Base(path), "application/octet-stream", f).
		Post(c.uploadURL)
	if err != nil {
		werr := c.transportError(err, "upload request", c.uploadTimeout)
		observe(endpointUpload, string(kind), start, 0, werr)
		c.logger.Error("Failed to upload %s: %v", path, werr)
		return "", werr
	}

	mediaID, werr := parseUpload(resp.StatusCode(), resp.Body())
	observe(endpointUpload, string(kind), start, 0, werr)
	if werr != nil {
		c.logger.Error("Failed to upload %s: %v", path, werr)
		return "", werr
	}
	c.logger.Info("Uploaded %s, media_id=%s", filepath.Base(path), mediaID)
	return mediaID, nil
}

func parseUpload(status int, data []byte) (string, error) {
	if status != http.StatusOK {
		return "", wxerr.Transport(nil, "upload request returned unexpected http status").WithStatus(status, string(data))
	}
	raw, err := decodeResult(data)
	if err != nil {
		return "", wxerr.Protocol(err, "upload response is not valid JSON").WithStatus(status, string(data))
	}
	if raw.result.ErrCode != 0 {
		return "", wxerr.Remote(raw.result.ErrCode, raw.result.ErrMsg)
	}
	if raw.mediaID == "" {
		return "", wxerr.Protocol(nil, "upload response missing media_id").WithStatus(status, string(data))
	}
	return raw.mediaID, nil
}

// Fetch 下载网络图片，超过 maxBytes 立即停止读取
func (c *Client) Fetch(ctx context.Context, rawURL string, maxBytes int64) ([]byte, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, wxerr.Validation("image_url must be an http(s) url: %s", rawURL)
	}

	start := time.Now()
	resp, err := c.fetch.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		werr := c.transportError(err, fmt.Sprintf("download image from %s", rawURL), c.fetchTimeout)
		observe(endpointFetch, string(message.KindImage), start, 0, werr)
		return nil, werr
	}
	body := resp.RawBody()
	defer body.Close()

	data, werr := readImage(resp.StatusCode(), resp.RawResponse.ContentLength, body, rawURL, maxBytes)
	observe(endpointFetch, string(message.KindImage), start, 0, werr)
	if werr != nil {
		c.logger.Warn("Failed to download image %s: %v", rawURL, werr)
		return nil, werr
	}
	return data, nil
}

func readImage(status int, contentLength int64, body io.Reader, rawURL string, maxBytes int64) ([]byte, error) {
	if status != http.StatusOK {
		return nil, wxerr.Transport(nil, "failed to download image from %s", rawURL).WithStatus(status, "")
	}
	if contentLength > maxBytes {
		return nil, wxerr.Validation("image too large: %d bytes > %s", contentLength, message.HumanSize(maxBytes))
	}
	data, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return nil, wxerr.Transport(err, "failed to download image from %s", rawURL)
	}
	if int64(len(data)) > maxBytes {
		return nil, wxerr.Validation("image too large: more than %s", message.HumanSize(maxBytes))
	}
	return data, nil
}

// transportError 区分超时与连接失败，并去掉错误信息里的 webhook key
func (c *Client) transportError(err error, op string, timeout time.Duration) *wxerr.Error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = c.redact(ue.URL)
	}

	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return wxerr.Transport(err, "%s timed out after %s", op, timeout).WithTimeout()
	}
	return wxerr.Transport(err, "%s failed", op)
}

func (c *Client) redact(s string) string {
	if c.key == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(c.key), "***")
	return strings.ReplaceAll(s, c.key, "***")
}
