package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPAddr    string `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	GinMode     string `yaml:"gin_mode" env:"GIN_MODE" env-default:"debug"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`

	DBDriver     string `yaml:"db_driver" env:"DB_DRIVER" env-default:"postgres"`
	DBHost       string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort       string `yaml:"db_port" env:"DB_PORT" env-default:"5432"`
	DBUser       string `yaml:"db_user" env:"DB_USER" env-default:"studio"`
	DBPassword   string `yaml:"db_password" env:"DB_PASSWORD" env-default:"studiopassword"`
	DBName       string `yaml:"db_name" env:"DB_NAME" env-default:"studio_manager"`
	DBSQLitePath string `yaml:"db_sqlite_path" env:"DB_SQLITE_PATH" env-default:"studio.db"`

	SessionStore  string `yaml:"session_store" env:"SESSION_STORE" env-default:"redis"`
	RedisHost     string `yaml:"redis_host" env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     string `yaml:"redis_port" env:"REDIS_PORT" env-default:"6379"`
	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET" env-default:"default-secret-key-change-me"`

	InviteSecret string        `yaml:"invite_secret" env:"INVITE_SECRET" env-default:"default-invite-secret-change-me"`
	InviteTTL    time.Duration `yaml:"invite_ttl" env:"INVITE_TTL" env-default:"72h"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"30s"`

	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`

	OpenAIAPIKey  string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIModel   string        `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o"`
	OpenAIBaseURL string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	AITimeout     time.Duration `yaml:"ai_timeout" env:"AI_TIMEOUT" env-default:"30s"`
}

// Load reads configuration from the given YAML file, falling back to the
// environment when the path is empty or the file does not exist.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("cannot read config %q: %w", configPath, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release" || c.Environment == "production"
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
