package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Bolt     BoltConfig     `mapstructure:"bolt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Blob     BlobConfig     `mapstructure:"blob"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Log      LogConfig      `mapstructure:"log"`
	Feature  FeatureConfig  `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// 存储驱动
const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverBolt     = "bolt"
	StoreDriverPostgres = "postgres"
)

// StoreConfig 键值存储选择
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig PostgreSQL 数据库配置（store.driver=postgres 时使用）
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// KeyPrefix 为所有存储键添加前缀，便于多个环境共用一个实例
	KeyPrefix string `mapstructure:"key_prefix"`
}

// BoltConfig 嵌入式 bbolt 文件存储配置
type BoltConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// 密码比对方式
const (
	PasswordSchemePlain  = "plain"
	PasswordSchemeBcrypt = "bcrypt"
)

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	AdminPassword  string        `mapstructure:"admin_password"`
	PasswordScheme string        `mapstructure:"password_scheme"`
}

// 文件上传后端
const (
	BlobDriverNone  = "none"
	BlobDriverB2    = "b2"
	BlobDriverLocal = "local"
)

// BlobConfig PDF 上传配置
type BlobConfig struct {
	Driver       string `mapstructure:"driver"`
	MaxFileBytes int64  `mapstructure:"max_file_bytes"`
	B2KeyID      string `mapstructure:"b2_key_id"`
	B2AppKey     string `mapstructure:"b2_app_key"`
	B2Bucket     string `mapstructure:"b2_bucket"`
	B2BaseURL    string `mapstructure:"b2_base_url"`
	LocalDir     string `mapstructure:"local_dir"`
	PublicURL    string `mapstructure:"public_url"`
}

// AuditConfig 访问日志配置
type AuditConfig struct {
	Retention    int           `mapstructure:"retention"`     // 保留的最新条数
	DefaultLimit int           `mapstructure:"default_limit"` // 查询未指定 limit 时的条数
	TrackTimeout time.Duration `mapstructure:"track_timeout"` // 异步记录的超时
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	SeedDemoData bool `mapstructure:"seed_demo_data"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 20<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("store.driver", StoreDriverMemory)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "ecc_bulletin")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Tokyo")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "")

	v.SetDefault("bolt.path", "data/bulletin.db")
	v.SetDefault("bolt.timeout", "1s")

	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("auth.admin_password", "adminpass")
	v.SetDefault("auth.password_scheme", PasswordSchemePlain)

	v.SetDefault("blob.driver", BlobDriverNone)
	v.SetDefault("blob.max_file_bytes", 10<<20)
	v.SetDefault("blob.local_dir", "data/files")
	v.SetDefault("blob.public_url", "http://localhost:8080/files")

	v.SetDefault("audit.retention", 1000)
	v.SetDefault("audit.default_limit", 100)
	v.SetDefault("audit.track_timeout", "3s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("feature.seed_demo_data", false)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ECC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Auth.AdminPassword == "" {
		return fmt.Errorf("配置校验失败: auth.admin_password 不能为空")
	}
	switch c.Auth.PasswordScheme {
	case PasswordSchemePlain, PasswordSchemeBcrypt:
	default:
		return fmt.Errorf("配置校验失败: auth.password_scheme 只能是 plain 或 bcrypt")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverRedis, StoreDriverBolt, StoreDriverPostgres:
	default:
		return fmt.Errorf("配置校验失败: 未知的 store.driver %q", c.Store.Driver)
	}
	switch c.Blob.Driver {
	case BlobDriverNone, BlobDriverB2, BlobDriverLocal:
	default:
		return fmt.Errorf("配置校验失败: 未知的 blob.driver %q", c.Blob.Driver)
	}
	if c.Audit.Retention <= 0 {
		return fmt.Errorf("配置校验失败: audit.retention 必须大于 0")
	}
	if c.Audit.DefaultLimit <= 0 || c.Audit.DefaultLimit > c.Audit.Retention {
		return fmt.Errorf("配置校验失败: audit.default_limit 必须在 1-%d 之间", c.Audit.Retention)
	}
	return nil
}
