package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"ENV", "DEBUG", "API_BASE_URL", "AUTH_MODE", "REQUEST_TIMEOUT", "STORE", "STORE_PATH",
	"STORE_NAMESPACE", "REDIS_ADDR", "REDIS_DB", "LOG_JSON", "ROLLBAR_TOKEN", "SENTRY_DSN",
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, conf *Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "DEV", conf.Env)
				assert.Equal(t, AuthModeBearer, conf.API.AuthMode)
				assert.Equal(t, "http://127.0.0.1:5000/api/v1", conf.API.BaseURL)
				assert.Equal(t, 30*time.Second, conf.API.RequestTimeout)
				assert.Equal(t, StoreSQLite, conf.Store.Engine)
				assert.Equal(t, "potencialize_refresh_token", conf.Store.RefreshKey())
				assert.Equal(t, "potencialize_cookies", conf.Store.CookiesKey())
				assert.False(t, conf.Debug)
			},
		},
		{
			name: "cookie mode over redis",
			env: map[string]string{
				"ENV":             "qa",
				"DEBUG":           "true",
				"API_BASE_URL":    "https://api.potencialize.app/api/v1/",
				"AUTH_MODE":       "Cookie",
				"REQUEST_TIMEOUT": "5s",
				"STORE":           "REDIS",
				"REDIS_ADDR":      "cache:6379",
				"REDIS_DB":        "2",
				"STORE_NAMESPACE": "pz",
			},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "QA", conf.Env)
				assert.True(t, conf.Debug)
				assert.Equal(t, AuthModeCookie, conf.API.AuthMode)
				assert.Equal(t, "https://api.potencialize.app/api/v1", conf.API.BaseURL)
				assert.Equal(t, 5*time.Second, conf.API.RequestTimeout)
				assert.Equal(t, StoreRedis, conf.Store.Engine)
				assert.Equal(t, "cache:6379", conf.Store.RedisAddr)
				assert.Equal(t, 2, conf.Store.RedisDB)
				assert.Equal(t, "pz_cookies", conf.Store.CookiesKey())
			},
		},
		{name: "invalid auth mode", env: map[string]string{"AUTH_MODE": "basic"}, wantErr: true},
		{name: "invalid base url", env: map[string]string{"API_BASE_URL": "ftp://api"}, wantErr: true},
		{name: "invalid store", env: map[string]string{"STORE": "etcd"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range configEnv {
				t.Setenv(key, "")
			}
			for key, val := range tt.env {
				t.Setenv(key, val)
			}

			conf, err := NewConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, conf)
		})
	}
}
