package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Social     SocialConfig     `mapstructure:"social"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Publishing PublishingConfig `mapstructure:"publishing"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	AutoMigrate     bool   `mapstructure:"auto_migrate"`      // 是否自动迁移表结构
}

// RedisConfig Redis 配置（延迟发布队列依赖 Redis 持久化任务，与 asynq 共用同一实例）
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// JWTConfig 认证令牌配置
type JWTConfig struct {
	Secret         string `mapstructure:"secret"`
	AccessTokenTTL int    `mapstructure:"access_token_ttl"` // 分钟
	Issuer         string `mapstructure:"issuer"`
}

// SocialConfig 社交平台凭证配置
// MockMode 开启后，未配置凭证的平台返回明确标记的模拟结果而不是失败
type SocialConfig struct {
	MockMode  bool            `mapstructure:"mock_mode"`
	Twitter   TwitterConfig   `mapstructure:"twitter"`
	LinkedIn  LinkedInConfig  `mapstructure:"linkedin"`
	Instagram InstagramConfig `mapstructure:"instagram"`
	Email     EmailConfig     `mapstructure:"email"`
}

// TwitterConfig Twitter/X API 配置
type TwitterConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
}

// LinkedInConfig LinkedIn API 配置
type LinkedInConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
	AuthorURN   string `mapstructure:"author_urn"` // urn:li:organization:xxx 或 urn:li:person:xxx
}

// InstagramConfig Instagram Graph API 配置
type InstagramConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	AccessToken       string `mapstructure:"access_token"`
	BusinessAccountID string `mapstructure:"business_account_id"`
}

// EmailConfig 邮件发布渠道配置（收件人列表）
type EmailConfig struct {
	Recipients []string `mapstructure:"recipients"`
}

// SMTPConfig SMTP 邮件服务配置
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// PublishingConfig 发布管线配置
type PublishingConfig struct {
	PlatformTimeout int `mapstructure:"platform_timeout"` // 单平台发布超时（秒）
}

// PlatformTimeoutDuration 单平台发布超时时长，默认 30 秒
func (c *PublishingConfig) PlatformTimeoutDuration() time.Duration {
	if c.PlatformTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PlatformTimeout) * time.Second
}

var globalConfig *Config

// Load 加载配置
// env: 环境名称（dev, prod, test）
// configPath: 配置文件路径（可选）
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件名和路径
	if configPath == "" {
		v.SetConfigName(env) // dev.yaml, prod.yaml
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}

	v.SetConfigType("yaml")

	// 读取环境变量（优先级高于配置文件）
	v.SetEnvPrefix("APP") // 环境变量前缀：APP_
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 支持嵌套配置：APP_DATABASE_HOST

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("配置未初始化，请先调用 Load()")
	}
	return globalConfig
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
