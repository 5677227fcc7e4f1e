package mcptool

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"qywxbot/wecom/pkg/message"
)

const (
	ToolText             = "qyweixin_text"
	ToolMarkdown         = "qyweixin_markdown"
	ToolMarkdownV2       = "qyweixin_markdown_v2"
	ToolImage            = "qyweixin_image"
	ToolNews             = "qyweixin_news"
	ToolFile             = "qyweixin_file"
	ToolVoice            = "qyweixin_voice"
	ToolTemplateCard     = "qyweixin_template_card"
	ToolUploadMedia      = "qyweixin_upload_media"
	ToolListMessageTypes = "qyweixin_list_message_types"
	ToolGetMessageFormat = "qyweixin_get_message_format"
	ToolNotice           = "qyweixin_notice"
)

var (
	stringItems  = map[string]any{"type": "string"}
	articleItems = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "description": "标题，必填"},
			"url":         map[string]any{"type": "string", "description": "点击后跳转的链接，必填"},
			"description": map[string]any{"type": "string", "description": "描述"},
			"picurl":      map[string]any{"type": "string", "description": "图片链接，大图1068*455，小图150*150"},
		},
		"required": []string{"title", "url"},
	}
	kindNames = lo.Map(message.Kinds, func(k message.Kind, _ int) string { return string(k) })
)

func mentionOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithArray("mentioned_list", mcp.Items(stringItems),
			mcp.Description("userid 列表，提醒群中的指定成员，@all 表示提醒所有人")),
		mcp.WithArray("mentioned_mobile_list", mcp.Items(stringItems),
			mcp.Description("手机号列表，提醒手机号对应的群成员，@all 表示提醒所有人")),
	}
}

func textTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("发送文本消息到企业微信群，支持@成员"),
		mcp.WithString("content", mcp.Required(), mcp.Description("文本内容，最长2048字节")),
	}, mentionOptions()...)
	return mcp.NewTool(ToolText, opts...)
}

func markdownTool() mcp.Tool {
	return mcp.NewTool(ToolMarkdown,
		mcp.WithDescription("发送markdown消息到企业微信群"),
		mcp.WithString("content", mcp.Required(), mcp.Description("markdown内容，最长4096字节")),
	)
}

func markdownV2Tool() mcp.Tool {
	return mcp.NewTool(ToolMarkdownV2,
		mcp.WithDescription("发送增强markdown消息（表格、代码块、图片），实际以markdown类型发送"),
		mcp.WithString("content", mcp.Required(), mcp.Description("markdown内容，最长4096字节")),
	)
}

func imageTool() mcp.Tool {
	return mcp.NewTool(ToolImage,
		mcp.WithDescription("发送图片消息，image_url、image_path、image_base64 至少提供一个，优先级依次递减"),
		mcp.WithString("image_url", mcp.Description("图片URL")),
		mcp.WithString("image_path", mcp.Description("本地图片完整路径")),
		mcp.WithString("image_base64", mcp.Description("图片base64编码")),
		mcp.WithString("image_md5", mcp.Description("图片md5，不提供时自动计算")),
	)
}

func newsTool() mcp.Tool {
	return mcp.NewTool(ToolNews,
		mcp.WithDescription("发送图文消息，1~8篇文章"),
		mcp.WithArray("articles", mcp.Required(), mcp.Items(articleItems), mcp.Description("文章列表")),
	)
}

func fileTool() mcp.Tool {
	return mcp.NewTool(ToolFile,
		mcp.WithDescription("发送文件消息，提供本地路径时自动上传，文件不超过20MB"),
		mcp.WithString("file_path", mcp.Description("本地文件完整路径")),
		mcp.WithString("media_id", mcp.Description("已上传文件的media_id，优先使用")),
	)
}

func voiceTool() mcp.Tool {
	return mcp.NewTool(ToolVoice,
		mcp.WithDescription("发送语音消息，仅支持AMR格式，不超过2MB"),
		mcp.WithString("voice_path", mcp.Description("本地语音文件完整路径")),
		mcp.WithString("media_id", mcp.Description("已上传语音的media_id，优先使用")),
	)
}

func templateCardTool() mcp.Tool {
	return mcp.NewTool(ToolTemplateCard,
		mcp.WithDescription("发送模板卡片消息，支持文本通知卡片和图文展示卡片"),
		mcp.WithString("card_type", mcp.Required(), mcp.Enum(message.CardTypes...),
			mcp.Description("卡片类型：text_notice 文本通知，news_notice 图文展示")),
		mcp.WithString("source_icon_url", mcp.Description("来源图标URL")),
		mcp.WithString("source_desc", mcp.Description("来源描述")),
		mcp.WithNumber("source_desc_color", mcp.Description("来源文字颜色：0 灰色，1 黑色，2 红色，3 绿色")),
		mcp.WithString("main_title", mcp.Description("一级标题，建议不超过36个字节")),
		mcp.WithString("main_title_desc", mcp.Description("标题辅助信息")),
		mcp.WithString("emphasis_title", mcp.Description("关键数据内容（text_notice）")),
		mcp.WithString("emphasis_desc", mcp.Description("关键数据描述（text_notice）")),
		mcp.WithString("sub_title_text", mcp.Description("二级普通文本（text_notice）")),
		mcp.WithObject("quote_area", mcp.Description("引用文献样式：type、url、appid、pagepath、title、quote_text")),
		mcp.WithArray("horizontal_content_list", mcp.Description("二级标题+文本列表：keyname 必填，value、type、url、media_id、userid")),
		mcp.WithArray("jump_list", mcp.Description("跳转指引列表：title 必填，type、url、appid、pagepath")),
		mcp.WithObject("image_text_area", mcp.Description("左图右文样式（news_notice）：image_url 必填")),
		mcp.WithArray("vertical_content_list", mcp.Description("二级垂直内容（news_notice）：title 必填，desc")),
		mcp.WithNumber("card_action_type", mcp.Required(), mcp.Description("整体卡片点击跳转类型：1 跳转url，2 跳转小程序")),
		mcp.WithString("card_action_url", mcp.Description("跳转url，card_action_type 为 1 时必填")),
		mcp.WithString("card_action_appid", mcp.Description("小程序appid，card_action_type 为 2 时必填")),
		mcp.WithString("card_action_pagepath", mcp.Description("小程序页面路径")),
		mcp.WithString("card_image_url", mcp.Description("卡片图片URL，news_notice 必填")),
		mcp.WithNumber("aspect_ratio", mcp.Description("图片宽高比，1.3~2.25")),
		mcp.WithString("task_id", mcp.Description("任务id")),
	)
}

func uploadMediaTool() mcp.Tool {
	return mcp.NewTool(ToolUploadMedia,
		mcp.WithDescription("上传文件到企业微信，返回media_id，有效期3天"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("本地文件完整路径")),
		mcp.WithString("media_type", mcp.Required(), mcp.Enum(string(message.MediaFile), string(message.MediaVoice)),
			mcp.Description("媒体类型：file 文件（≤20MB），voice 语音（≤2MB，AMR）")),
	)
}

func listMessageTypesTool() mcp.Tool {
	return mcp.NewTool(ToolListMessageTypes,
		mcp.WithDescription("列出支持的所有消息类型"),
	)
}

func getMessageFormatTool() mcp.Tool {
	return mcp.NewTool(ToolGetMessageFormat,
		mcp.WithDescription("获取指定消息类型的参数与限制说明"),
		mcp.WithString("message_type", mcp.Required(), mcp.Enum(kindNames...), mcp.Description("消息类型")),
	)
}

func noticeTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("企业微信机器人通知，通过群机器人发送消息到群聊"),
		mcp.WithString("msg", mcp.Required(), mcp.Description("消息内容；msgtype 为 image 时为图片URL或本地完整路径")),
		mcp.WithString("msgtype", mcp.DefaultString("text"), mcp.Enum("text", "markdown", "image"),
			mcp.Description("消息类型：text、markdown、image，默认 text")),
	}, mentionOptions()...)
	return mcp.NewTool(ToolNotice, opts...)
}
