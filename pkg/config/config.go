package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 主配置结构
type Config struct {
	// 行情提供商配置
	Provider ProviderConfig `mapstructure:"provider" json:"provider"`

	// 看板配置
	Dashboard DashboardConfig `mapstructure:"dashboard" json:"dashboard"`

	// Web 服务配置
	Server ServerConfig `mapstructure:"server" json:"server"`

	// 熔断器配置
	Breaker BreakerConfig `mapstructure:"breaker" json:"breaker"`

	// 快照发布配置
	Publish PublishConfig `mapstructure:"publish" json:"publish"`

	// 日志配置
	Logger LoggerConfig `mapstructure:"logger" json:"logger"`
}

// ProviderConfig 行情接口配置
type ProviderConfig struct {
	Name      string        `mapstructure:"name" json:"name"`             // 提供商名称 ("sina")
	BaseURL   string        `mapstructure:"base_url" json:"base_url"`     // 行情接口地址
	Referer   string        `mapstructure:"referer" json:"referer"`       // 接口要求的 Referer
	UserAgent string        `mapstructure:"user_agent" json:"user_agent"` // 用户代理
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout"`       // 请求超时时间
}

// DashboardConfig 看板配置
type DashboardConfig struct {
	Mode            string        `mapstructure:"mode" json:"mode"`                         // web 或 terminal
	IndexCodes      []string      `mapstructure:"index_codes" json:"index_codes"`           // 大盘指数
	Watchlist       []string      `mapstructure:"watchlist" json:"watchlist"`               // 启动时的自选
	RefreshInterval time.Duration `mapstructure:"refresh_interval" json:"refresh_interval"` // 刷新间隔
}

// ServerConfig Web 服务配置
type ServerConfig struct {
	Addr string `mapstructure:"addr" json:"addr"`
	Mode string `mapstructure:"mode" json:"mode"` // debug, release, test
}

// BreakerConfig 熔断器配置
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled" json:"enabled"`
	ReadyToTrip uint32        `mapstructure:"ready_to_trip" json:"ready_to_trip"` // 连续失败次数阈值
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`             // 打开后多久进入半开
}

// PublishConfig Redis Stream 快照发布配置
type PublishConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled"`
	Addr     string `mapstructure:"addr" json:"addr"`
	Password string `mapstructure:"password" json:"password"`
	DB       int    `mapstructure:"db" json:"db"`
	Stream   string `mapstructure:"stream" json:"stream"`
	MaxLen   int64  `mapstructure:"max_len" json:"max_len"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level" json:"level"`             // 日志级别 (debug, info, warn, error)
	Format     string `mapstructure:"format" json:"format"`           // text, json
	Output     string `mapstructure:"output" json:"output"`           // 输出方式 (console, file)
	Filename   string `mapstructure:"filename" json:"filename"`       // 日志文件名
	MaxSize    int    `mapstructure:"max_size" json:"max_size"`       // 最大文件大小(MB)
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"` // 最大备份数
	MaxAge     int    `mapstructure:"max_age" json:"max_age"`         // 最大保存天数
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:      "sina",
			BaseURL:   "http://hq.sinajs.cn/list=",
			Referer:   "https://finance.sina.com.cn/",
			UserAgent: "QuoteBoard/1.0",
			Timeout:   5 * time.Second,
		},
		Dashboard: DashboardConfig{
			Mode:            "web",
			IndexCodes:      []string{"sh000001", "sz399001", "sz399006", "rt_hkHSTECH"},
			Watchlist:       []string{},
			RefreshInterval: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8501",
			Mode: "release",
		},
		Breaker: BreakerConfig{
			Enabled:     true,
			ReadyToTrip: 5,
			Timeout:     30 * time.Second,
		},
		Publish: PublishConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			Stream:  "stream:quote:snapshot",
			MaxLen:  1000,
		},
		Logger: LoggerConfig{
			Level:      "info",
			Format:     "text",
			Output:     "console",
			Filename:   "quoteboard.log",
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// Load 读取配置文件并叠加环境变量 (QUOTEBOARD_*)
// path 为空时在 ./config 和当前目录查找 quoteboard.yaml，找不到则使用默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("quoteboard")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("QUOTEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("provider.name", d.Provider.Name)
	v.SetDefault("provider.base_url", d.Provider.BaseURL)
	v.SetDefault("provider.referer", d.Provider.Referer)
	v.SetDefault("provider.user_agent", d.Provider.UserAgent)
	v.SetDefault("provider.timeout", d.Provider.Timeout)

	v.SetDefault("dashboard.mode", d.Dashboard.Mode)
	v.SetDefault("dashboard.index_codes", d.Dashboard.IndexCodes)
	v.SetDefault("dashboard.watchlist", d.Dashboard.Watchlist)
	v.SetDefault("dashboard.refresh_interval", d.Dashboard.RefreshInterval)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)

	v.SetDefault("breaker.enabled", d.Breaker.Enabled)
	v.SetDefault("breaker.ready_to_trip", d.Breaker.ReadyToTrip)
	v.SetDefault("breaker.timeout", d.Breaker.Timeout)

	v.SetDefault("publish.enabled", d.Publish.Enabled)
	v.SetDefault("publish.addr", d.Publish.Addr)
	v.SetDefault("publish.password", d.Publish.Password)
	v.SetDefault("publish.db", d.Publish.DB)
	v.SetDefault("publish.stream", d.Publish.Stream)
	v.SetDefault("publish.max_len", d.Publish.MaxLen)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.output", d.Logger.Output)
	v.SetDefault("logger.filename", d.Logger.Filename)
	v.SetDefault("logger.max_size", d.Logger.MaxSize)
	v.SetDefault("logger.max_backups", d.Logger.MaxBackups)
	v.SetDefault("logger.max_age", d.Logger.MaxAge)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Provider.Name == "" {
		return errors.New("provider name cannot be empty")
	}

	if c.Provider.BaseURL == "" {
		return errors.New("provider base_url cannot be empty")
	}

	if c.Provider.Timeout <= 0 {
		return errors.New("provider timeout must be positive")
	}

	if c.Dashboard.RefreshInterval < time.Second {
		return errors.New("refresh_interval must be at least 1s")
	}

	switch c.Dashboard.Mode {
	case "web", "terminal":
	default:
		return fmt.Errorf("unknown dashboard mode: %s", c.Dashboard.Mode)
	}

	if c.Dashboard.Mode == "web" && c.Server.Addr == "" {
		return errors.New("server addr cannot be empty in web mode")
	}

	if c.Breaker.Enabled && c.Breaker.ReadyToTrip == 0 {
		return errors.New("breaker ready_to_trip must be positive")
	}

	if c.Publish.Enabled && (c.Publish.Addr == "" || c.Publish.Stream == "") {
		return errors.New("publish addr and stream are required when publishing is enabled")
	}

	return nil
}

// SetProviderTimeout 设置提供商超时时间
func (c *Config) SetProviderTimeout(timeout time.Duration) *Config {
	c.Provider.Timeout = timeout
	return c
}

// SetRefreshInterval 设置刷新间隔
func (c *Config) SetRefreshInterval(interval time.Duration) *Config {
	c.Dashboard.RefreshInterval = interval
	return c
}

// SetMode 设置看板模式
func (c *Config) SetMode(mode string) *Config {
	c.Dashboard.Mode = mode
	return c
}

// SetLogLevel 设置日志级别
func (c *Config) SetLogLevel(level string) *Config {
	c.Logger.Level = level
	return c
}
