// Package message 负责把调用方的消息意图转换成企业微信群机器人要求的请求体，
// 并在发起网络请求之前完成全部本地校验。
package message

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"qywxbot/wecom/pkg/wxerr"
)

// MaxArticles 图文消息最多支持的文章数
const MaxArticles = 8

// Uploader 把本地附件上传为 media_id
type Uploader interface {
	Upload(ctx context.Context, path string, kind MediaKind) (string, error)
}

// Fetcher 下载网络图片，返回的字节数不得超过 maxBytes
type Fetcher interface {
	Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, error)
}

// TextMessage 文本消息参数
type TextMessage struct {
	Content             string   `json:"content"`
	MentionedList       []string `json:"mentioned_list,omitempty"`
	MentionedMobileList []string `json:"mentioned_mobile_list,omitempty"`
}

// ImageSource 图片来源，同时提供多个时优先级为 URL > Path > Base64
type ImageSource struct {
	URL    string `json:"image_url,omitempty"`
	Path   string `json:"image_path,omitempty"`
	Base64 string `json:"image_base64,omitempty"`
	MD5    string `json:"image_md5,omitempty"` // 调用方预先计算的摘要，为空时自动计算
}

// MediaRef 附件引用，MediaID 非空时直接使用，否则上传 Path
type MediaRef struct {
	Path    string
	MediaID string
}

// Builder 各类消息的构造器
type Builder struct {
	limits   Limits
	fetcher  Fetcher
	uploader Uploader
}

// NewBuilder 创建构造器。fetcher 仅图片 URL 来源需要，uploader 仅文件、语音需要
func NewBuilder(limits Limits, fetcher Fetcher, uploader Uploader) *Builder {
	return &Builder{
		limits:   limits,
		fetcher:  fetcher,
		uploader: uploader,
	}
}

// Limits 返回构造器使用的限制
func (b *Builder) Limits() Limits {
	return b.limits
}

// BuildText 构造文本消息
func (b *Builder) BuildText(msg TextMessage) (*Payload, error) {
	if n := len(msg.Content); n > b.limits.TextBytes {
		return nil, wxerr.Validation("text content too long: %d bytes > %d bytes", n, b.limits.TextBytes)
	}
	body := &TextBody{Content: msg.Content}
	if len(msg.MentionedList) > 0 {
		body.MentionedList = msg.MentionedList
	}
	if len(msg.MentionedMobileList) > 0 {
		body.MentionedMobileList = msg.MentionedMobileList
	}
	return &Payload{MsgType: KindText.WireType(), Text: body}, nil
}

// BuildMarkdown 构造 markdown 消息
func (b *Builder) BuildMarkdown(content string) (*Payload, error) {
	return b.buildMarkdown(KindMarkdown, content)
}

// BuildMarkdownV2 构造增强 markdown 消息。
// 企业微信没有 markdown_v2 类型，这里发送的是普通 markdown。
func (b *Builder) BuildMarkdownV2(content string) (*Payload, error) {
	return b.buildMarkdown(KindMarkdownV2, content)
}

func (b *Builder) buildMarkdown(kind Kind, content string) (*Payload, error) {
	if n := len(content); n > b.limits.MarkdownBytes {
		return nil, wxerr.Validation("%s content too long: %d bytes > %d bytes", kind, n, b.limits.MarkdownBytes)
	}
	return &Payload{MsgType: kind.WireType(), Markdown: &MarkdownBody{Content: content}}, nil
}

// BuildNews 构造图文消息
func (b *Builder) BuildNews(articles []Article) (*Payload, error) {
	if len(articles) == 0 {
		return nil, wxerr.Validation("articles must not be empty")
	}
	if len(articles) > MaxArticles {
		return nil, wxerr.Validation("too many articles: %d > %d", len(articles), MaxArticles)
	}
	for i, a := range articles {
		if a.Title == "" || a.URL == "" {
			return nil, wxerr.Validation("article %d requires title and url", i)
		}
	}
	// 拷贝，避免调用方后续修改影响已构造的请求体
	cloned := make([]Article, len(articles))
	copy(cloned, articles)
	return &Payload{MsgType: KindNews.WireType(), News: &NewsBody{Articles: cloned}}, nil
}

// BuildFile 构造文件消息，必要时先上传
func (b *Builder) BuildFile(ctx context.Context, ref MediaRef) (*Payload, error) {
	id, err := b.resolveMedia(ctx, ref, MediaFile)
	if err != nil {
		return nil, err
	}
	return &Payload{MsgType: KindFile.WireType(), File: &MediaBody{MediaID: id}}, nil
}

// BuildVoice 构造语音消息，必要时先上传
func (b *Builder) BuildVoice(ctx context.Context, ref MediaRef) (*Payload, error) {
	id, err := b.resolveMedia(ctx, ref, MediaVoice)
	if err != nil {
		return nil, err
	}
	return &Payload{MsgType: KindVoice.WireType(), Voice: &MediaBody{MediaID: id}}, nil
}

// resolveMedia 优先使用已有 media_id；上传失败时原样返回上传错误
func (b *Builder) resolveMedia(ctx context.Context, ref MediaRef, kind MediaKind) (string, error) {
	if ref.MediaID != "" {
		return ref.MediaID, nil
	}
	if ref.Path == "" {
		return "", wxerr.Validation("%s_path or media_id is required", kind)
	}
	if b.uploader == nil {
		return "", wxerr.Config("no uploader configured for %s messages", kind)
	}
	return b.uploader.Upload(ctx, ref.Path, kind)
}

// BuildTemplateCard 构造模版卡片消息。
// card_action 为必填项，缺失时直接报错而不是静默省略。
func (b *Builder) BuildTemplateCard(card TemplateCard) (*Payload, error) {
	if !lo.Contains(CardTypes, card.CardType) {
		return nil, wxerr.Validation("card_type must be %q or %q, got %q", CardTextNotice, CardNewsNotice, card.CardType)
	}
	if card.CardType == CardNewsNotice && (card.CardImage == nil || card.CardImage.URL == "") {
		return nil, wxerr.Validation("news_notice requires card image")
	}
	if card.CardImage != nil && card.CardImage.AspectRatio != 0 {
		if r := card.CardImage.AspectRatio; r < minAspectRatio || r > maxAspectRatio {
			return nil, wxerr.Validation("card image aspect_ratio must be within [%.2f, %.2f], got %v", minAspectRatio, maxAspectRatio, r)
		}
	}
	if err := validateCardAction(card.CardAction); err != nil {
		return nil, err
	}
	for i, j := range card.JumpList {
		if j.Title == "" {
			return nil, wxerr.Validation("jump_list[%d] requires title", i)
		}
	}
	for i, h := range card.HorizontalContentList {
		if h.KeyName == "" {
			return nil, wxerr.Validation("horizontal_content_list[%d] requires keyname", i)
		}
	}
	if card.CardType == CardNewsNotice && card.ImageTextArea != nil && card.ImageTextArea.ImageURL == "" {
		return nil, wxerr.Validation("image_text_area requires image_url")
	}

	c := card
	return &Payload{MsgType: KindTemplate.WireType(), TemplateCard: &c}, nil
}

func validateCardAction(a *CardAction) error {
	if a == nil || a.Type == 0 {
		return wxerr.Validation("card_action type is required")
	}
	switch a.Type {
	case 1:
		if a.URL == "" {
			return wxerr.Validation("card_action type 1 requires url")
		}
	case 2:
		if a.AppID == "" {
			return wxerr.Validation("card_action type 2 requires appid")
		}
	default:
		return wxerr.Validation("card_action type must be 1 (url) or 2 (mini program), got %d", a.Type)
	}
	return nil
}

// bytesExceeded 统一的超限提示
func bytesExceeded(what string, size, limit int64) error {
	return wxerr.Validation("%s too large: %d bytes > %s", what, size, HumanSize(limit))
}

// HumanSize 以 MB 或字节展示大小限制
func HumanSize(n int64) string {
	if n >= MB && n%MB == 0 {
		return fmt.Sprintf("%dMB", n/MB)
	}
	return fmt.Sprintf("%d bytes", n)
}
