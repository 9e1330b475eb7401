package config

import (
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Linkcheck LinkcheckConfig `mapstructure:"linkcheck"`
	Affiliate AffiliateConfig `mapstructure:"affiliate"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir          string `mapstructure:"dir"`
	Filename     string `mapstructure:"filename"`
	SinkFilename string `mapstructure:"sink_filename"` // 上游诊断流水文件名
	MaxSizeMB    int    `mapstructure:"max_size_mb"`
	MaxBackups   int    `mapstructure:"max_backups"`
	MaxAgeDays   int    `mapstructure:"max_age_days"`
	Compress     bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// ToSinkOptions 转换为上游诊断流水的 logger 配置
func (c LogConfig) ToSinkOptions() logger.Options {
	options := c.ToLoggerOptions()
	options.Filename = c.SinkFilename
	if strings.TrimSpace(options.Filename) == "" {
		options.Filename = "upstream.log"
	}
	return options
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// UpstreamConfig 上游联盟 API 请求配置
type UpstreamConfig struct {
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int `mapstructure:"read_timeout_seconds"`
	PageConcurrency       int `mapstructure:"page_concurrency"`
	WindowPages           int `mapstructure:"window_pages"`
	LimitPerPage          int `mapstructure:"limit_per_page"`
	MaxPages              int `mapstructure:"max_pages"`
	CampaignCacheSeconds  int `mapstructure:"campaign_cache_seconds"`
}

// LinkcheckConfig 链接存活巡检配置
type LinkcheckConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
	DeleteDead      bool `mapstructure:"delete_dead"`
	Concurrency     int  `mapstructure:"concurrency"`
	TimeoutSeconds  int  `mapstructure:"timeout_seconds"`
}

// AffiliateConfig 跳转签名配置
type AffiliateConfig struct {
	Secret              string `mapstructure:"secret"`
	ShortlinkTTLSeconds int    `mapstructure:"shortlink_ttl_seconds"` // 0 表示不校验时效
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// Load 加载配置（文件 + 环境变量 + 默认值）
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "app.log")
	viper.SetDefault("log.sink_filename", "upstream.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/affiliate.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "aff")
	viper.SetDefault("queue.enabled", false)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{"default": 10})
	viper.SetDefault("upstream.connect_timeout_seconds", 10)
	viper.SetDefault("upstream.read_timeout_seconds", 60)
	viper.SetDefault("upstream.page_concurrency", 6)
	viper.SetDefault("upstream.window_pages", 10)
	viper.SetDefault("upstream.limit_per_page", 50)
	viper.SetDefault("upstream.max_pages", 1000)
	viper.SetDefault("upstream.campaign_cache_seconds", 600)
	viper.SetDefault("linkcheck.enabled", false)
	viper.SetDefault("linkcheck.interval_minutes", 1440)
	viper.SetDefault("linkcheck.delete_dead", false)
	viper.SetDefault("linkcheck.concurrency", 8)
	viper.SetDefault("linkcheck.timeout_seconds", 10)
	viper.SetDefault("affiliate.secret", "change-me-in-production")
	viper.SetDefault("affiliate.shortlink_ttl_seconds", 0)
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
	}
	return &cfg
}
