package notice

import (
	"context"

	"qywxbot/wecom/pkg/message"
	"qywxbot/wecom/pkg/webhook"
)

const (
	AppName = "wecom"
)

// Service 对外暴露的机器人操作。
// 本地校验失败直接返回错误；发送阶段的传输、协议错误收敛到 Result 中
type Service interface {
	SendText(ctx context.Context, req *TextRequest) (*webhook.Result, error)
	SendMarkdown(ctx context.Context, req *MarkdownRequest) (*webhook.Result, error)
	SendMarkdownV2(ctx context.Context, req *MarkdownRequest) (*webhook.Result, error)
	SendImage(ctx context.Context, req *ImageRequest) (*webhook.Result, error)
	SendNews(ctx context.Context, req *NewsRequest) (*webhook.Result, error)
	SendFile(ctx context.Context, req *FileRequest) (*webhook.Result, error)
	SendVoice(ctx context.Context, req *VoiceRequest) (*webhook.Result, error)
	SendTemplateCard(ctx context.Context, req *TemplateCardRequest) (*webhook.Result, error)
	Upload(ctx context.Context, req *UploadRequest) (*UploadResponse, error)
	ListSupportedKinds(ctx context.Context) []message.KindInfo
	GetFormatSpec(ctx context.Context, req *FormatRequest) (*message.FormatSpec, error)
	Notice(ctx context.Context, req *NoticeRequest) (*webhook.Result, error)
}

type TextRequest struct {
	Content             string   `json:"content"`
	MentionedList       []string `json:"mentioned_list,omitempty"`
	MentionedMobileList []string `json:"mentioned_mobile_list,omitempty"`
}

type MarkdownRequest struct {
	Content string `json:"content"`
}

// ImageRequest 同时提供多个来源时优先级为 image_url > image_path > image_base64
type ImageRequest struct {
	ImageURL    string `json:"image_url,omitempty"`
	ImagePath   string `json:"image_path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageMD5    string `json:"image_md5,omitempty"`
}

func (r *ImageRequest) Source() message.ImageSource {
	return message.ImageSource{URL: r.ImageURL, Path: r.ImagePath, Base64: r.ImageBase64, MD5: r.ImageMD5}
}

type NewsRequest struct {
	Articles []message.Article `json:"articles"`
}

type FileRequest struct {
	FilePath string `json:"file_path,omitempty"`
	MediaID  string `json:"media_id,omitempty"`
}

type VoiceRequest struct {
	VoicePath string `json:"voice_path,omitempty"`
	MediaID   string `json:"media_id,omitempty"`
}

type UploadRequest struct {
	FilePath  string `json:"file_path"`
	MediaType string `json:"media_type"`
}

type UploadResponse struct {
	MediaID   string `json:"media_id"`
	MediaType string `json:"media_type"`
}

type FormatRequest struct {
	MessageType string `json:"message_type"`
}

// NoticeRequest 通用通知，msgtype 为 image 时 msg 是图片 URL 或本地路径
type NoticeRequest struct {
	Msg                 string   `json:"msg"`
	MsgType             string   `json:"msgtype,omitempty"`
	MentionedList       []string `json:"mentioned_list,omitempty"`
	MentionedMobileList []string `json:"mentioned_mobile_list,omitempty"`
}

// TemplateCardRequest 扁平化的模版卡片参数
type TemplateCardRequest struct {
	CardType string `json:"card_type"`

	SourceIconURL   string `json:"source_icon_url,omitempty"`
	SourceDesc      string `json:"source_desc,omitempty"`
	SourceDescColor int    `json:"source_desc_color,omitempty"`

	MainTitle     string `json:"main_title,omitempty"`
	MainTitleDesc string `json:"main_title_desc,omitempty"`
	EmphasisTitle string `json:"emphasis_title,omitempty"`
	EmphasisDesc  string `json:"emphasis_desc,omitempty"`
	SubTitleText  string `json:"sub_title_text,omitempty"`

	QuoteArea             *message.QuoteArea          `json:"quote_area,omitempty"`
	HorizontalContentList []message.HorizontalContent `json:"horizontal_content_list,omitempty"`
	JumpList              []message.JumpAction        `json:"jump_list,omitempty"`
	ImageTextArea         *message.ImageTextArea      `json:"image_text_area,omitempty"`
	VerticalContentList   []message.VerticalContent   `json:"vertical_content_list,omitempty"`

	CardActionType     int    `json:"card_action_type,omitempty"`
	CardActionURL      string `json:"card_action_url,omitempty"`
	CardActionAppID    string `json:"card_action_appid,omitempty"`
	CardActionPagePath string `json:"card_action_pagepath,omitempty"`

	CardImageURL string  `json:"card_image_url,omitempty"`
	AspectRatio  float64 `json:"aspect_ratio,omitempty"`

	TaskID string `json:"task_id,omitempty"`
}

// ToCard 组装成线上的卡片结构，未填写的分组整体省略
func (r *TemplateCardRequest) ToCard() message.TemplateCard {
	card := message.TemplateCard{
		CardType:              r.CardType,
		SubTitleText:          r.SubTitleText,
		QuoteArea:             r.QuoteArea,
		HorizontalContentList: r.HorizontalContentList,
		JumpList:              r.JumpList,
		ImageTextArea:         r.ImageTextArea,
		VerticalContentList:   r.VerticalContentList,
		TaskID:                r.TaskID,
	}
	if r.SourceIconURL != "" || r.SourceDesc != "" {
		card.Source = &message.CardSource{IconURL: r.SourceIconURL, Desc: r.SourceDesc, DescColor: r.SourceDescColor}
	}
	if r.MainTitle != "" || r.MainTitleDesc != "" {
		card.MainTitle = &message.MainTitle{Title: r.MainTitle, Desc: r.MainTitleDesc}
	}
	if r.EmphasisTitle != "" || r.EmphasisDesc != "" {
		card.EmphasisContent = &message.EmphasisContent{Title: r.EmphasisTitle, Desc: r.EmphasisDesc}
	}
	if r.CardActionType != 0 || r.CardActionURL != "" || r.CardActionAppID != "" {
		card.CardAction = &message.CardAction{
			Type:     r.CardActionType,
			URL:      r.CardActionURL,
			AppID:    r.CardActionAppID,
			PagePath: r.CardActionPagePath,
		}
	}
	if r.CardImageURL != "" || r.AspectRatio != 0 {
		card.CardImage = &message.CardImage{URL: r.CardImageURL, AspectRatio: r.AspectRatio}
	}
	return card
}
