package message

import (
	"fmt"

	"github.com/samber/lo"
)

// KindInfo 消息类型简介
type KindInfo struct {
	Type        Kind   `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FormatSpec 消息类型的参数与限制说明，纯元数据，不涉及网络
type FormatSpec struct {
	Type           Kind             `json:"type"`
	WireType       string           `json:"wire_type"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	RequiredParams []string         `json:"required_params"`
	OptionalParams []string         `json:"optional_params"`
	Limitations    []string         `json:"limitations"`
	Limits         map[string]int64 `json:"limits,omitempty"`
}

type formatEntry struct {
	name        string
	summary     string
	description string
	required    []string
	optional    []string
	limitations func(l Limits) []string
	limits      func(l Limits) map[string]int64
}

var catalog = map[Kind]formatEntry{
	KindText: {
		name:        "文本消息",
		summary:     "发送纯文本消息",
		description: "纯文本消息，支持@用户、换行、超链接",
		required:    []string{"content"},
		optional:    []string{"mentioned_list", "mentioned_mobile_list"},
		limitations: func(l Limits) []string {
			return []string{fmt.Sprintf("最长%d字节", l.TextBytes), "支持换行符", "支持@用户功能，@all 表示所有人"}
		},
		limits: func(l Limits) map[string]int64 { return map[string]int64{"content_bytes": int64(l.TextBytes)} },
	},
	KindMarkdown: {
		name:        "Markdown消息",
		summary:     "发送markdown格式消息",
		description: "支持基础markdown语法的格式化消息",
		required:    []string{"content"},
		limitations: func(l Limits) []string {
			return []string{fmt.Sprintf("最长%d字节", l.MarkdownBytes), "支持基础markdown语法", "支持有限的字体颜色"}
		},
		limits: func(l Limits) map[string]int64 { return map[string]int64{"content_bytes": int64(l.MarkdownBytes)} },
	},
	KindMarkdownV2: {
		name:        "Markdown增强消息",
		summary:     "发送增强markdown消息",
		description: "支持表格、图片、代码块等增强功能的markdown消息，实际以markdown类型发送",
		required:    []string{"content"},
		limitations: func(l Limits) []string {
			return []string{fmt.Sprintf("最长%d字节", l.MarkdownBytes), "不支持字体颜色", "不支持@功能", "图片无法控制大小"}
		},
		limits: func(l Limits) map[string]int64 { return map[string]int64{"content_bytes": int64(l.MarkdownBytes)} },
	},
	KindImage: {
		name:        "图片消息",
		summary:     "发送图片消息",
		description: "支持URL、本地文件、base64编码的图片消息",
		optional:    []string{"image_url", "image_path", "image_base64", "image_md5"},
		limitations: func(l Limits) []string {
			return []string{fmt.Sprintf("图片大小不超过%s", HumanSize(l.ImageBytes)), "支持JPG、PNG格式", "image_url、image_path、image_base64 至少提供一个", "无法控制显示大小"}
		},
		limits: func(l Limits) map[string]int64 { return map[string]int64{"image_bytes": l.ImageBytes} },
	},
	KindNews: {
		name:        "图文消息",
		summary:     "发送图文消息",
		description: "支持多篇图文，可跳转链接的图文消息",
		required:    []string{"articles"},
		limitations: func(Limits) []string {
			return []string{fmt.Sprintf("1~%d篇文章", MaxArticles), "title和url为必需字段", "建议图片尺寸大图1068×455，小图150×150"}
		},
		limits: func(Limits) map[string]int64 { return map[string]int64{"max_articles": MaxArticles} },
	},
	KindFile: {
		name:        "文件消息",
		summary:     "发送文件消息",
		description: "支持自动上传文件获取media_id的文件消息",
		optional:    []string{"file_path", "media_id"},
		limitations: func(l Limits) []string {
			return []string{fmt.Sprintf("文件大小不超过%s", HumanSize(l.FileBytes)), "file_path、media_id 至少提供一个", "上传后media_id有效期3天"}
		},
		limits: func(l Limits) map[string]int64 { return map[string]int64{"file_bytes": l.FileBytes} },
	},
	KindVoice: {
		name:        "语音消息",
		summary:     "发送语音消息",
		description: "支持AMR格式的语音文件消息",
		optional:    []string{"voice_path", "media_id"},
		limitations: func(l Limits) []string {
			return []string{fmt.Sprintf("文件大小不超过%s", HumanSize(l.VoiceBytes)), "仅支持AMR格式", "上传后media_id有效期3天", "语音时长不超过60秒"}
		},
		limits: func(l Limits) map[string]int64 { return map[string]int64{"voice_bytes": l.VoiceBytes} },
	},
	KindTemplate: {
		name:        "模板卡片消息",
		summary:     "发送模板卡片消息",
		description: "支持文本通知卡片和图文展示卡片的模板消息",
		required:    []string{"card_type", "card_action_type"},
		optional: []string{
			"source_icon_url", "source_desc", "source_desc_color", "main_title", "main_title_desc",
			"emphasis_title", "emphasis_desc", "quote_area", "sub_title_text", "horizontal_content_list",
			"jump_list", "card_action_url", "card_action_appid", "card_action_pagepath",
			"card_image_url", "aspect_ratio", "image_text_area", "vertical_content_list", "task_id",
		},
		limitations: func(Limits) []string {
			return []string{
				"card_type 为 text_notice 或 news_notice",
				"card_action_type 必填：1 跳转url（需 card_action_url），2 跳转小程序（需 card_action_appid）",
				"news_notice 必须提供 card_image_url",
				fmt.Sprintf("图片宽高比范围%.1f-%.2f", minAspectRatio, maxAspectRatio),
				"标题建议不超过36个字节",
			}
		},
	},
}

// ListSupportedKinds 列出所有支持的消息类型
func ListSupportedKinds() []KindInfo {
	return lo.Map(Kinds, func(k Kind, _ int) KindInfo {
		e := catalog[k]
		return KindInfo{Type: k, Name: e.name, Description: e.summary}
	})
}

// GetFormatSpec 返回指定消息类型的格式要求
func GetFormatSpec(kind string, limits Limits) (*FormatSpec, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	e := catalog[k]
	spec := &FormatSpec{
		Type:           k,
		WireType:       k.WireType(),
		Name:           e.name,
		Description:    e.description,
		RequiredParams: nonNil(e.required),
		OptionalParams: nonNil(e.optional),
		Limitations:    e.limitations(limits),
	}
	if e.limits != nil {
		spec.Limits = e.limits(limits)
	}
	return spec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
