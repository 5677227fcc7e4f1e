package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"qywxbot/wecom/pkg/message"
	"qywxbot/wecom/pkg/wxerr"
)

const (
	// DefaultBaseURL 企业微信开放接口地址
	DefaultBaseURL = "https://qyapi.weixin.qq.com"

	RunModeMCP  = "mcp"
	RunModeHTTP = "http"

	sendPath   = "/cgi-bin/webhook/send"
	uploadPath = "/cgi-bin/webhook/upload_media"
)

// Config 应用配置结构
type Config struct {
	// 企业微信机器人配置
	WebhookKey string
	BaseURL    string

	// 运行模式：mcp 走 stdio，http 启动 gin 服务
	RunMode string

	// 服务器配置
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// 日志配置
	LogLevel string

	// 外呼超时
	RequestTimeout    time.Duration
	UploadTimeout     time.Duration
	ImageFetchTimeout time.Duration

	// 性能配置
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// 消息大小限制
	MaxTextBytes     int
	MaxMarkdownBytes int
	MaxImageBytes    int64
	MaxFileBytes     int64
	MaxVoiceBytes    int64

	Application *application
}

// 应用服务

type application struct {
	server *gin.Engine
	lock   sync.Mutex
	root   gin.IRouter
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// LoadConfig 加载进程级配置，只在首次调用时读取
func LoadConfig() (*Config, error) {
	once.Do(func() {
		cfg, loadErr = Load(os.Getenv("CONFIG_FILE"))
	})
	return cfg, loadErr
}

// Load 从环境变量加载配置，file 非空时先读取该 .env 文件，环境变量优先
func Load(file string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	// 兼容旧的环境变量名
	_ = v.BindEnv("WECOM_WEBHOOK_KEY", "WECOM_WEBHOOK_KEY", "WEBHOOK_KEY", "key")

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, wxerr.Config("read config file %s: %v", file, err)
		}
	}

	limits := message.DefaultLimits()
	c := &Config{
		WebhookKey: getEnv(v, "WECOM_WEBHOOK_KEY", getEnv(v, "WEBHOOK_KEY", "")),
		BaseURL:    strings.TrimRight(getEnv(v, "WECOM_BASE_URL", DefaultBaseURL), "/"),
		RunMode:    strings.ToLower(getEnv(v, "RUN_MODE", RunModeMCP)),
		Port:       getEnv(v, "PORT", "8080"),
		LogLevel:   getEnv(v, "LOG_LEVEL", "info"),

		// 超时配置
		ReadTimeout:       getDurationEnv(v, "READ_TIMEOUT", 10*time.Second),
		WriteTimeout:      getDurationEnv(v, "WRITE_TIMEOUT", 90*time.Second),
		ShutdownTimeout:   getDurationEnv(v, "SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:    getDurationEnv(v, "REQUEST_TIMEOUT", 60*time.Second),
		UploadTimeout:     getDurationEnv(v, "UPLOAD_TIMEOUT", 30*time.Second),
		ImageFetchTimeout: getDurationEnv(v, "IMAGE_FETCH_TIMEOUT", 10*time.Second),

		// 连接池配置
		MaxIdleConns:        getIntEnv(v, "MAX_IDLE_CONNS", 100),
		MaxIdleConnsPerHost: getIntEnv(v, "MAX_IDLE_CONNS_PER_HOST", 10),
		IdleConnTimeout:     getDurationEnv(v, "IDLE_CONN_TIMEOUT", 90*time.Second),

		MaxTextBytes:     getIntEnv(v, "MAX_TEXT_BYTES", limits.TextBytes),
		MaxMarkdownBytes: getIntEnv(v, "MAX_MARKDOWN_BYTES", limits.MarkdownBytes),
		MaxImageBytes:    int64(getIntEnv(v, "MAX_IMAGE_BYTES", int(limits.ImageBytes))),
		MaxFileBytes:     int64(getIntEnv(v, "MAX_FILE_BYTES", int(limits.FileBytes))),
		MaxVoiceBytes:    int64(getIntEnv(v, "MAX_VOICE_BYTES", int(limits.VoiceBytes))),

		Application: &application{},
	}

	// 验证必需的配置
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default 返回全部取默认值的配置，webhook key 需调用方自行填写
func Default() *Config {
	limits := message.DefaultLimits()
	return &Config{
		BaseURL:             DefaultBaseURL,
		RunMode:             RunModeMCP,
		Port:                "8080",
		LogLevel:            "info",
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        90 * time.Second,
		ShutdownTimeout:     5 * time.Second,
		RequestTimeout:      60 * time.Second,
		UploadTimeout:       30 * time.Second,
		ImageFetchTimeout:   10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		MaxTextBytes:        limits.TextBytes,
		MaxMarkdownBytes:    limits.MarkdownBytes,
		MaxImageBytes:       limits.ImageBytes,
		MaxFileBytes:        limits.FileBytes,
		MaxVoiceBytes:       limits.VoiceBytes,
		Application:         &application{},
	}
}

func (a *application) GinServer() *gin.Engine {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.server == nil {
		a.server = gin.New()
		a.server.Use(gin.Recovery())
		// 加载全局CROS中间件
		a.server.Use(cors.Default())
	}

	return a.server
}

func (a *application) GinRootRouter() gin.IRouter {
	r := a.GinServer()

	a.lock.Lock()
	defer a.lock.Unlock()
	if a.root == nil {
		a.root = r.Group("app").Group("api").Group("v1")
	}

	return a.root
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.WebhookKey == "" {
		return wxerr.Config("WECOM_WEBHOOK_KEY is required")
	}
	if c.RunMode != RunModeMCP && c.RunMode != RunModeHTTP {
		return wxerr.Config("RUN_MODE must be %q or %q, got %q", RunModeMCP, RunModeHTTP, c.RunMode)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return wxerr.Config("WECOM_BASE_URL must be an http(s) url, got %q", c.BaseURL)
	}
	if c.MaxTextBytes <= 0 || c.MaxMarkdownBytes <= 0 || c.MaxImageBytes <= 0 || c.MaxFileBytes <= 0 || c.MaxVoiceBytes <= 0 {
		return wxerr.Config("message size limits must be positive")
	}
	return nil
}

// Limits 返回消息大小限制
func (c *Config) Limits() message.Limits {
	return message.Limits{
		TextBytes:     c.MaxTextBytes,
		MarkdownBytes: c.MaxMarkdownBytes,
		ImageBytes:    c.MaxImageBytes,
		FileBytes:     c.MaxFileBytes,
		VoiceBytes:    c.MaxVoiceBytes,
	}
}

// SendURL 消息发送地址，不含 key
func (c *Config) SendURL() string {
	return c.BaseURL + sendPath
}

// UploadURL 素材上传地址，不含 key 和 type
func (c *Config) UploadURL() string {
	return c.BaseURL + uploadPath
}

// MaskedKey 日志中使用的脱敏 key
func (c *Config) MaskedKey() string {
	k := c.WebhookKey
	if len(k) <= 8 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}

// getEnv 获取配置项，如果不存在则返回默认值
func getEnv(v *viper.Viper, key, defaultValue string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv 获取整数类型的配置项
func getIntEnv(v *viper.Viper, key string, defaultValue int) int {
	if value := getEnv(v, key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv 获取时间间隔类型的配置项，纯数字按秒计算，也接受 30s、1m 这样的写法
func getDurationEnv(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	value := getEnv(v, key, "")
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return time.Duration(intValue) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
