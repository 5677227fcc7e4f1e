package message

// 模版卡片类型
const (
	CardTextNotice = "text_notice" // 文本通知
	CardNewsNotice = "news_notice" // 图文展示
)

// CardTypes 群机器人 webhook 支持的卡片类型
var CardTypes = []string{CardTextNotice, CardNewsNotice}

// TemplateCard 模版卡片，只包含 text_notice / news_notice 两种卡片用到的字段
type TemplateCard struct {
	CardType              string              `json:"card_type"`                         // text_notice, news_notice
	Source                *CardSource         `json:"source,omitempty"`                  // 卡片来源样式信息
	MainTitle             *MainTitle          `json:"main_title,omitempty"`              // 一级标题
	EmphasisContent       *EmphasisContent    `json:"emphasis_content,omitempty"`        // 关键数据样式 (text_notice)
	QuoteArea             *QuoteArea          `json:"quote_area,omitempty"`              // 引用文献样式
	SubTitleText          string              `json:"sub_title_text,omitempty"`          // 二级普通文本 (text_notice)
	HorizontalContentList []HorizontalContent `json:"horizontal_content_list,omitempty"` // 二级标题+文本列表
	JumpList              []JumpAction        `json:"jump_list,omitempty"`               // 跳转指引样式列表
	CardAction            *CardAction         `json:"card_action,omitempty"`             // 整体卡片点击跳转，必填
	CardImage             *CardImage          `json:"card_image,omitempty"`              // 图片样式 (news_notice 必填)
	ImageTextArea         *ImageTextArea      `json:"image_text_area,omitempty"`         // 左图右文样式 (news_notice)
	VerticalContentList   []VerticalContent   `json:"vertical_content_list,omitempty"`   // 卡片二级垂直内容 (news_notice)
	TaskID                string              `json:"task_id,omitempty"`
}

// CardSource 卡片来源样式信息
type CardSource struct {
	IconURL   string `json:"icon_url,omitempty"`
	Desc      string `json:"desc,omitempty"`
	DescColor int    `json:"desc_color,omitempty"` // 0 灰色, 1 黑色, 2 红色, 3 绿色
}

// MainTitle 一级标题
type MainTitle struct {
	Title string `json:"title,omitempty"`
	Desc  string `json:"desc,omitempty"`
}

// EmphasisContent 关键数据样式
type EmphasisContent struct {
	Title string `json:"title,omitempty"`
	Desc  string `json:"desc,omitempty"`
}

// QuoteArea 引用文献样式
type QuoteArea struct {
	Type      int    `json:"type,omitempty"` // 0 无, 1 跳转url, 2 跳转小程序
	URL       string `json:"url,omitempty"`
	AppID     string `json:"appid,omitempty"`
	PagePath  string `json:"pagepath,omitempty"`
	Title     string `json:"title,omitempty"`
	QuoteText string `json:"quote_text,omitempty"`
}

// HorizontalContent 二级标题+文本
type HorizontalContent struct {
	Type    int    `json:"type,omitempty"` // 0 普通文本, 1 跳转url, 2 下载附件, 3 成员详情
	KeyName string `json:"keyname"`
	Value   string `json:"value,omitempty"`
	URL     string `json:"url,omitempty"`
	MediaID string `json:"media_id,omitempty"`
	UserID  string `json:"userid,omitempty"`
}

// JumpAction 跳转指引
type JumpAction struct {
	Type     int    `json:"type,omitempty"` // 0 无, 1 url, 2 小程序
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	AppID    string `json:"appid,omitempty"`
	PagePath string `json:"pagepath,omitempty"`
}

// CardAction 整体卡片点击跳转事件
type CardAction struct {
	Type     int    `json:"type"` // 1 url, 2 小程序
	URL      string `json:"url,omitempty"`
	AppID    string `json:"appid,omitempty"`
	PagePath string `json:"pagepath,omitempty"`
}

// CardImage 图片样式
type CardImage struct {
	URL         string  `json:"url"`
	AspectRatio float64 `json:"aspect_ratio,omitempty"` // 1.3 ~ 2.25
}

// ImageTextArea 左图右文样式
type ImageTextArea struct {
	Type     int    `json:"type,omitempty"`
	URL      string `json:"url,omitempty"`
	AppID    string `json:"appid,omitempty"`
	PagePath string `json:"pagepath,omitempty"`
	Title    string `json:"title,omitempty"`
	Desc     string `json:"desc,omitempty"`
	ImageURL string `json:"image_url"`
}

// VerticalContent 二级垂直内容
type VerticalContent struct {
	Title string `json:"title"`
	Desc  string `json:"desc,omitempty"`
}

const (
	minAspectRatio = 1.3
	maxAspectRatio = 2.25
)
