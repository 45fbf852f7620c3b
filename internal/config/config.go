package config

import (
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StrategyLocal  = "local"
	StrategyRemote = "remote"

	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	App struct {
		Port    string `mapstructure:"port"`
		Env     string `mapstructure:"env"`
		SiteURL string `mapstructure:"site_url"`
	} `mapstructure:"app"`
	Storage struct {
		Strategy string `mapstructure:"strategy"`
		OwnerID  string `mapstructure:"owner_id"`
		Seed     bool   `mapstructure:"seed"`
		Local    struct {
			Driver     string `mapstructure:"driver"`
			Key        string `mapstructure:"key"`
			SQLitePath string `mapstructure:"sqlite_path"`
		} `mapstructure:"local"`
	} `mapstructure:"storage"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret         string        `mapstructure:"jwt_secret"`
		TokenLifespan     time.Duration `mapstructure:"token_lifespan"`
		OwnerEmail        string        `mapstructure:"owner_email"`
		OwnerPasswordHash string        `mapstructure:"owner_password_hash"`
		SessionSecret     string        `mapstructure:"session_secret"`
	} `mapstructure:"auth"`
	OAuth struct {
		Google struct {
			ClientID     string `mapstructure:"client_id"`
			ClientSecret string `mapstructure:"client_secret"`
			RedirectURL  string `mapstructure:"redirect_url"`
		} `mapstructure:"google"`
	} `mapstructure:"oauth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	AI struct {
		Provider     string        `mapstructure:"provider"`
		GeminiAPIKey string        `mapstructure:"gemini_api_key"`
		GeminiModel  string        `mapstructure:"gemini_model"`
		OllamaHost   string        `mapstructure:"ollama_host"`
		OllamaModel  string        `mapstructure:"ollama_model"`
		Timeout      time.Duration `mapstructure:"timeout"`
	} `mapstructure:"ai"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.site_url", "http://localhost:3000")
	v.SetDefault("storage.strategy", StrategyLocal)
	v.SetDefault("storage.owner_id", "main-dev")
	v.SetDefault("storage.seed", true)
	v.SetDefault("storage.local.driver", DriverSQLite)
	v.SetDefault("storage.local.key", "devfolio:portfolio")
	v.SetDefault("storage.local.sqlite_path", "devfolio.db")
	v.SetDefault("kafka.topic", "portfolio.changes")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("ai.provider", "none")
	v.SetDefault("ai.gemini_model", "gemini-2.5-flash")
	v.SetDefault("ai.ollama_host", "http://localhost:11434/v1")
	v.SetDefault("ai.ollama_model", "llava")
	v.SetDefault("ai.timeout", 60*time.Second)
}

// LoadConfig reads config.yaml from the given directories (default ".") and overlays the environment.
func LoadConfig(paths ...string) (cfg Config, err error) {
	_, err = loadInto(viper.GetViper(), paths...)
	if err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	return
}

func loadInto(v *viper.Viper, paths ...string) (*viper.Viper, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	for _, p := range paths {
		if err := godotenv.Load(strings.TrimSuffix(p, "/") + "/.env"); err == nil {
			break
		}
	}

	setDefaults(v)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read environment only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.site_url", "SITE_URL")
	v.BindEnv("storage.strategy", "STORAGE_STRATEGY")
	v.BindEnv("storage.owner_id", "OWNER_ID")
	v.BindEnv("storage.seed", "STORAGE_SEED")
	v.BindEnv("storage.local.driver", "LOCAL_DRIVER")
	v.BindEnv("storage.local.key", "LOCAL_KEY")
	v.BindEnv("storage.local.sqlite_path", "SQLITE_PATH")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("auth.owner_email", "OWNER_EMAIL")
	v.BindEnv("auth.owner_password_hash", "OWNER_PASSWORD_HASH")
	v.BindEnv("auth.session_secret", "SESSION_SECRET")

	v.BindEnv("oauth.google.client_id", "GOOGLE_CLIENT_ID")
	v.BindEnv("oauth.google.client_secret", "GOOGLE_CLIENT_SECRET")
	v.BindEnv("oauth.google.redirect_url", "GOOGLE_REDIRECT_URL")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.gemini_api_key", "GEMINI_API_KEY")
	v.BindEnv("ai.gemini_model", "GEMINI_MODEL")
	v.BindEnv("ai.ollama_host", "OLLAMA_HOST")
	v.BindEnv("ai.ollama_model", "OLLAMA_MODEL")
	v.BindEnv("ai.timeout", "AI_TIMEOUT")

	v.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")

	return v, nil
}

// Watch logs config file edits. Only values read through viper afterwards observe the change;
// wired components keep the values they were built with until restart.
func Watch(onChange func(name string)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		onChange(e.Name)
	})
	viper.WatchConfig()
}
