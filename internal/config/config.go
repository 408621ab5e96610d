package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Env           string         `mapstructure:"env"`
	Port          int            `mapstructure:"port" validate:"required,min=1,max=65535"`
	SessionSecret string         `mapstructure:"session_secret" validate:"required"`
	Database      DatabaseConfig `mapstructure:"database"`
	Session       SessionConfig  `mapstructure:"session"`
	Feishu        FeishuConfig   `mapstructure:"feishu"`
	Fields        FieldsConfig   `mapstructure:"fields"`
	Records       RecordsConfig  `mapstructure:"records"`
	Properties    Properties     `mapstructure:"properties"`
	CORSAllowlist []string       `mapstructure:"cors_allowlist"`
	LogConfig     LogConfig      `mapstructure:"log_config"`
}

type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host" validate:"required_without=DSN"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname" validate:"required_without=DSN"`
	SSLMode  string `mapstructure:"sslmode"`
}

type SessionConfig struct {
	CookieName         string `mapstructure:"cookie_name" validate:"required"`
	IdleTimeoutMinutes int    `mapstructure:"idle_timeout_minutes" validate:"min=1"`
	MaxLifetimeHours   int    `mapstructure:"max_lifetime_hours" validate:"min=1"`
	Secure             bool   `mapstructure:"secure"`
	LoginPath          string `mapstructure:"login_path" validate:"required"`
}

type FeishuConfig struct {
	BaseURL                 string `mapstructure:"base_url" validate:"required,url"`
	AppID                   string `mapstructure:"app_id" validate:"required"`
	AppSecret               string `mapstructure:"app_secret" validate:"required"`
	BaseID                  string `mapstructure:"base_id" validate:"required"`
	TableID                 string `mapstructure:"table_id" validate:"required"`
	TimeoutSeconds          int    `mapstructure:"timeout_seconds" validate:"min=1"`
	PageSize                int    `mapstructure:"page_size" validate:"min=1,max=500"`
	MaxPages                int    `mapstructure:"max_pages" validate:"min=1"`
	RetryAttempts           uint   `mapstructure:"retry_attempts"`
	TokenRefreshSkewSeconds int    `mapstructure:"token_refresh_skew_seconds" validate:"min=0"`
	TokenWarmupCron         string `mapstructure:"token_warmup_cron"`
}

// FieldsConfig maps canonical attributes to the column labels of the
// upstream table.
type FieldsConfig struct {
	InputWord   string `mapstructure:"input_word" validate:"required"`
	Title       string `mapstructure:"title" validate:"required"`
	Sentence    string `mapstructure:"sentence" validate:"required"`
	Content     string `mapstructure:"content" validate:"required"`
	Comment     string `mapstructure:"comment" validate:"required"`
	Domain      string `mapstructure:"domain" validate:"required"`
	Position    string `mapstructure:"position" validate:"required"`
	Reference   string `mapstructure:"reference" validate:"required"`
	CreatedTime string `mapstructure:"created_time" validate:"required"`
	Owner       string `mapstructure:"owner" validate:"required"`
	SourceURL   string `mapstructure:"source_url" validate:"required"`
}

type RecordsConfig struct {
	PerUserFilter   bool   `mapstructure:"per_user_filter"`
	StrictNotFound  bool   `mapstructure:"strict_not_found"`
	CacheSize       int    `mapstructure:"cache_size" validate:"min=0"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"min=0"`
	ListPath        string `mapstructure:"list_path" validate:"required"`
}

type Properties struct {
	EnableUserRegister    bool `mapstructure:"enable_user_register"`
	LoginRateLimitSeconds int  `mapstructure:"login_rate_limit_seconds" validate:"min=0"`
}

type LogConfig struct {
	File      string `mapstructure:"file"`
	Level     string `mapstructure:"level"`
	FileCount int    `mapstructure:"file_count"`
	FileSize  int    `mapstructure:"file_size"`
	KeepDays  int    `mapstructure:"keep_days"`
	Console   bool   `mapstructure:"console"`
}

var envBindings = map[string]string{
	"feishu.app_id":     "FEISHU_APP_ID",
	"feishu.app_secret": "FEISHU_APP_SECRET",
	"feishu.base_id":    "BASE_ID",
	"feishu.table_id":   "TABLE_ID",
	"session_secret":    "SECRET_KEY",
	"env":               "APP_ENV",
	"database.dsn":      "DATABASE_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("port", 5000)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("session.cookie_name", "vocab_session")
	v.SetDefault("session.idle_timeout_minutes", 30)
	v.SetDefault("session.max_lifetime_hours", 72)
	v.SetDefault("session.login_path", "/login")

	v.SetDefault("feishu.base_url", "https://open.feishu.cn/open-apis")
	v.SetDefault("feishu.timeout_seconds", 5)
	v.SetDefault("feishu.page_size", 100)
	v.SetDefault("feishu.max_pages", 10)
	v.SetDefault("feishu.retry_attempts", 2)
	v.SetDefault("feishu.token_refresh_skew_seconds", 0)

	v.SetDefault("fields.input_word", "生词或书目")
	v.SetDefault("fields.title", "标题")
	v.SetDefault("fields.sentence", "这是什么.输出结果")
	v.SetDefault("fields.content", "生活化案例")
	v.SetDefault("fields.comment", "记忆方法")
	v.SetDefault("fields.domain", "学科领域")
	v.SetDefault("fields.position", "产业链位置")
	v.SetDefault("fields.reference", "参考资料")
	v.SetDefault("fields.created_time", "生成时间")
	v.SetDefault("fields.owner", "填写代号")
	v.SetDefault("fields.source_url", "相关链接")

	v.SetDefault("records.per_user_filter", true)
	v.SetDefault("records.list_path", "/")

	v.SetDefault("properties.enable_user_register", true)
	v.SetDefault("properties.login_rate_limit_seconds", 1)

	v.SetDefault("log_config.level", "info")
	v.SetDefault("log_config.console", true)
}

// Load reads the JSON config at path, applies defaults and environment
// overrides, and validates the result. An empty path searches ./config.json.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
