package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Auth    AuthConfig
	Uploads UploadsConfig
	Client  ClientConfig
	Log     LogConfig
}

type ServerConfig struct {
	Address     string
	CorsOrigins []string `mapstructure:"cors_origins"`
}

// DBConfig 資料庫設定，Driver 為 "postgres" 或 "memory"
type DBConfig struct {
	Driver   string
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type UploadsConfig struct {
	Dir       string
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// ClientConfig 給 debatecli 使用的設定
type ClientConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	TokenFile      string        `mapstructure:"token_file"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	ReconcileDelay time.Duration `mapstructure:"reconcile_delay"`
	EndSettleDelay time.Duration `mapstructure:"end_settle_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Realtime       bool
}

type LogConfig struct {
	Level       string
	Development bool
}

// SetDefaults 設定所有預設值，環境變數與設定檔會覆蓋這些值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.name", "debate")
	v.SetDefault("db.port", 5432)

	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.token_ttl", 240*time.Hour)

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_size_mb", 50)

	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.token_file", ".debate_token")
	v.SetDefault("client.poll_interval", 5*time.Second)
	v.SetDefault("client.reconcile_delay", time.Second)
	v.SetDefault("client.end_settle_delay", 3*time.Second)
	v.SetDefault("client.request_timeout", 60*time.Second)
	v.SetDefault("client.realtime", false)

	v.SetDefault("log.level", "info")
}

// Load 讀取 .env、config.yaml 與 DEBATE_ 開頭的環境變數
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith 使用傳入的 viper 實例載入設定，方便 CLI 先綁定 flags
func LoadWith(v *viper.Viper) (*Config, error) {
	// .env 不存在時直接忽略
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./pkg/config")

	v.SetEnvPrefix("DEBATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
