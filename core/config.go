package core

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// AuthMode is the deployment-wide trust model: where credentials travel.
type AuthMode string

const (
	AuthModeBearer AuthMode = "bearer"
	AuthModeCookie AuthMode = "cookie"
)

func (m AuthMode) Valid() bool {
	return m == AuthModeBearer || m == AuthModeCookie
}

// Storage backends for the durable secret store.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type (
	Config struct {
		AppName string
		Env     string // DEV (default), TEST, QA, PROD
		Build   string
		Debug   bool

		API     APIConfig
		Store   StoreConfig
		Logging LoggingConfig
	}

	APIConfig struct {
		BaseURL        string // ex.: http://127.0.0.1:5000/api/v1
		AuthMode       AuthMode
		RequestTimeout time.Duration
	}

	StoreConfig struct {
		Engine        string
		Path          string // sqlite file
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		Namespace     string // prefix of every durable key
	}

	LoggingConfig struct {
		JSON         bool
		RollbarToken string
		SentryDSN    string
	}
)

// RefreshKey is the durable key holding the bearer-mode refresh secret.
func (c StoreConfig) RefreshKey() string { return c.Namespace + "_refresh_token" }

// CookiesKey is the durable key holding the cookie-mode jar snapshot.
func (c StoreConfig) CookiesKey() string { return c.Namespace + "_cookies" }

// NewConfig loads the configuration from the environment (and `.env.<env>` if present).
func NewConfig() (*Config, error) {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", false)
	conf.SetDefault("appName", "Potencialize")
	conf.SetDefault("build", "dev")
	conf.SetDefault("apiBaseURL", "http://127.0.0.1:5000/api/v1")
	conf.SetDefault("authMode", string(AuthModeBearer))
	conf.SetDefault("requestTimeout", 30*time.Second)
	conf.SetDefault("store", StoreSQLite)
	conf.SetDefault("storePath", defaultStorePath())
	conf.SetDefault("storeNamespace", "potencialize")
	conf.SetDefault("redisAddr", "localhost:6379")
	conf.SetDefault("redisPassword", "")
	conf.SetDefault("redisDB", 0)
	conf.SetDefault("logJSON", false)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sentryDSN", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}

	// env keys are snake case: API_BASE_URL, AUTH_MODE, ...
	for key, envKey := range map[string]string{
		"debug":          "DEBUG",
		"appName":        "APP_NAME",
		"build":          "BUILD",
		"apiBaseURL":     "API_BASE_URL",
		"authMode":       "AUTH_MODE",
		"requestTimeout": "REQUEST_TIMEOUT",
		"store":          "STORE",
		"storePath":      "STORE_PATH",
		"storeNamespace": "STORE_NAMESPACE",
		"redisAddr":      "REDIS_ADDR",
		"redisPassword":  "REDIS_PASSWORD",
		"redisDB":        "REDIS_DB",
		"logJSON":        "LOG_JSON",
		"rollbarToken":   "ROLLBAR_TOKEN",
		"sentryDSN":      "SENTRY_DSN",
	} {
		if err := conf.BindEnv(key, envKey); err != nil {
			return nil, errors.Wrapf(err, "binding %s", envKey)
		}
	}
	conf.AutomaticEnv()

	c := &Config{
		AppName: conf.GetString("appName"),
		Env:     env,
		Build:   conf.GetString("build"),
		Debug:   conf.GetBool("debug"),
		API: APIConfig{
			BaseURL:        strings.TrimRight(conf.GetString("apiBaseURL"), "/"),
			AuthMode:       AuthMode(strings.ToLower(conf.GetString("authMode"))),
			RequestTimeout: conf.GetDuration("requestTimeout"),
		},
		Store: StoreConfig{
			Engine:        strings.ToLower(conf.GetString("store")),
			Path:          conf.GetString("storePath"),
			RedisAddr:     conf.GetString("redisAddr"),
			RedisPassword: conf.GetString("redisPassword"),
			RedisDB:       conf.GetInt("redisDB"),
			Namespace:     conf.GetString("storeNamespace"),
		},
		Logging: LoggingConfig{
			JSON:         conf.GetBool("logJSON"),
			RollbarToken: conf.GetString("rollbarToken"),
			SentryDSN:    conf.GetString("sentryDSN"),
		},
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if !c.API.AuthMode.Valid() {
		return errors.Errorf("invalid AUTH_MODE %q: expected %q or %q", c.API.AuthMode, AuthModeBearer, AuthModeCookie)
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return errors.Wrap(err, "parsing API_BASE_URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("invalid API_BASE_URL %q: scheme must be http or https", c.API.BaseURL)
	}
	switch c.Store.Engine {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return errors.Errorf("invalid STORE %q", c.Store.Engine)
	}
	return nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "potencialize.db"
	}
	return filepath.Join(dir, "potencialize", "secrets.db")
}
