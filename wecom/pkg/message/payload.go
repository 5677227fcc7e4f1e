package message

import (
	"bytes"
	"encoding/json"

	"qywxbot/wecom/pkg/wxerr"
)

// Payload 群机器人 webhook 请求体。
// MsgType 决定唯一一个非空分支，只能通过 Builder 构造。
type Payload struct {
	MsgType      string        `json:"msgtype"`
	Text         *TextBody     `json:"text,omitempty"`
	Markdown     *MarkdownBody `json:"markdown,omitempty"`
	Image        *ImageBody    `json:"image,omitempty"`
	News         *NewsBody     `json:"news,omitempty"`
	File         *MediaBody    `json:"file,omitempty"`
	Voice        *MediaBody    `json:"voice,omitempty"`
	TemplateCard *TemplateCard `json:"template_card,omitempty"`
}

// TextBody 文本消息
type TextBody struct {
	Content             string   `json:"content"`
	MentionedList       []string `json:"mentioned_list,omitempty"`        // userid 列表，"@all" 表示所有人
	MentionedMobileList []string `json:"mentioned_mobile_list,omitempty"` // 手机号列表，"@all" 表示所有人
}

// MarkdownBody markdown 消息
type MarkdownBody struct {
	Content string `json:"content"`
}

// ImageBody 图片消息
type ImageBody struct {
	Base64 string `json:"base64"`
	MD5    string `json:"md5"`
}

// NewsBody 图文消息
type NewsBody struct {
	Articles []Article `json:"articles"`
}

// Article 单篇图文
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	PicURL      string `json:"picurl,omitempty"`
}

// MediaBody 文件、语音消息，只携带 media_id
type MediaBody struct {
	MediaID string `json:"media_id"`
}

// Encode 序列化为最终请求体。
// 关闭 HTML 转义，保证 markdown 中的 <font> 等标签按原样发送。
func (p *Payload) Encode() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// branches 返回已填充的分支名
func (p *Payload) branches() []string {
	var set []string
	if p.Text != nil {
		set = append(set, "text")
	}
	if p.Markdown != nil {
		set = append(set, "markdown")
	}
	if p.Image != nil {
		set = append(set, "image")
	}
	if p.News != nil {
		set = append(set, "news")
	}
	if p.File != nil {
		set = append(set, "file")
	}
	if p.Voice != nil {
		set = append(set, "voice")
	}
	if p.TemplateCard != nil {
		set = append(set, "template_card")
	}
	return set
}

// Validate 校验恰好有一个分支且与 msgtype 一致
func (p *Payload) Validate() error {
	if p == nil {
		return wxerr.Validation("payload is nil")
	}
	set := p.branches()
	if len(set) != 1 {
		return wxerr.Validation("payload must carry exactly one message body, got %d", len(set))
	}
	if set[0] != p.MsgType {
		return wxerr.Validation("payload msgtype %q does not match body %q", p.MsgType, set[0])
	}
	return nil
}
