package message

import (
	"github.com/samber/lo"

	"qywxbot/wecom/pkg/wxerr"
)

// Kind 调用方可选择的消息类别
type Kind string

const (
	KindText       Kind = "text"
	KindMarkdown   Kind = "markdown"
	KindMarkdownV2 Kind = "markdown_v2" // 增强 markdown，仅调用侧标签，线上仍发送 markdown
	KindImage      Kind = "image"
	KindNews       Kind = "news" // 图文
	KindFile       Kind = "file"
	KindVoice      Kind = "voice"
	KindTemplate   Kind = "template_card"
)

// Kinds 全部支持的消息类别，顺序即对外展示顺序
var Kinds = []Kind{
	KindText,
	KindMarkdown,
	KindMarkdownV2,
	KindImage,
	KindNews,
	KindFile,
	KindVoice,
	KindTemplate,
}

// MediaKind 上传素材类型
type MediaKind string

const (
	MediaFile  MediaKind = "file"
	MediaVoice MediaKind = "voice"
)

// ParseKind 解析消息类别
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !lo.Contains(Kinds, k) {
		return "", wxerr.Validation("unsupported message type: %s", s)
	}
	return k, nil
}

// WireType 返回实际发送时的 msgtype
func (k Kind) WireType() string {
	if k == KindMarkdownV2 {
		return string(KindMarkdown)
	}
	return string(k)
}

const (
	KB = 1024
	MB = 1024 * KB
)

// Limits 企业微信对各类消息的大小限制，均按字节计算
type Limits struct {
	TextBytes     int   `json:"text_bytes"`
	MarkdownBytes int   `json:"markdown_bytes"`
	ImageBytes    int64 `json:"image_bytes"`
	FileBytes     int64 `json:"file_bytes"`
	VoiceBytes    int64 `json:"voice_bytes"`
}

// DefaultLimits 官方文档给出的默认限制
func DefaultLimits() Limits {
	return Limits{
		TextBytes:     2048,
		MarkdownBytes: 4096,
		ImageBytes:    2 * MB,
		FileBytes:     20 * MB,
		VoiceBytes:    2 * MB,
	}
}

// MediaLimit 返回素材类型对应的大小上限
func (l Limits) MediaLimit(kind MediaKind) int64 {
	if kind == MediaVoice {
		return l.VoiceBytes
	}
	return l.FileBytes
}
