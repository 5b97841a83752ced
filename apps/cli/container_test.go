package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
	"github.com/potencialize/dashboard/services/apiclient"
)

func TestContainer(t *testing.T) {
	for _, mode := range []core.AuthMode{core.AuthModeBearer, core.AuthModeCookie} {
		t.Run(string(mode), func(t *testing.T) {
			conf := &core.Config{
				AppName: "Potencialize",
				Env:     "TEST",
				API:     core.APIConfig{BaseURL: "http://127.0.0.1:5000/api/v1", AuthMode: mode, RequestTimeout: time.Second},
				Store:   core.StoreConfig{Engine: core.StoreMemory, Namespace: "potencialize"},
			}
			c := newContainer(func() (*core.Config, error) { return conf, nil })

			err := c.Invoke(func(cli *commandLine, client *apiclient.Client, csrf *auth.CSRFReader) {
				assert.NotNil(t, cli.session)
				assert.NotNil(t, cli.svc)
				assert.Equal(t, mode, client.Mode())
				assert.False(t, csrf.HasRefreshMarker())
				assert.Equal(t, auth.StateBooting, cli.session.State())
			})
			require.NoError(t, err)
		})
	}
}
