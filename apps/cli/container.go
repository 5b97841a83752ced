package main

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
	"github.com/potencialize/dashboard/services/apiclient"
	"github.com/potencialize/dashboard/services/dashboard"
	logsvc "github.com/potencialize/dashboard/services/logger"
	"github.com/potencialize/dashboard/storage"
)

func newLogger(conf *core.Config) (core.Logger, error) {
	return logsvc.New(os.Stderr, conf)
}

func newStore(conf *core.Config, logger core.Logger) (storage.Store, error) {
	return storage.Open(context.Background(), conf, logger)
}

func newCredentials(conf *core.Config, store storage.Store, logger core.Logger) *auth.Credentials {
	return auth.NewCredentials(store, conf.Store.RefreshKey(), logger)
}

// transport is the authenticated client with, in cookie mode, the reader of its CSRF cookies.
type transport struct {
	dig.Out

	Client *apiclient.Client
	CSRF   *auth.CSRFReader
}

func newTransport(conf *core.Config, store storage.Store, creds *auth.Credentials, logger core.Logger) (transport, error) {
	opts := &apiclient.Options{
		BaseURL:     conf.API.BaseURL,
		Mode:        conf.API.AuthMode,
		Credentials: creds,
		Timeout:     conf.API.RequestTimeout,
		Logger:      logger,
	}
	csrf := auth.NewCSRFReader(nil)
	if conf.API.AuthMode == core.AuthModeCookie {
		jar, err := apiclient.NewJar(context.Background(), conf.API.BaseURL, store, conf.Store.CookiesKey(), logger)
		if err != nil {
			return transport{}, err
		}
		creds.UseCookies(jar)
		csrf = auth.NewCSRFReader(jar)
		opts.Jar = jar
		opts.CSRF = csrf
	}

	client, err := apiclient.New(opts)
	if err != nil {
		return transport{}, err
	}
	return transport{Client: client, CSRF: csrf}, nil
}

func newSession(conf *core.Config, client *apiclient.Client, creds *auth.Credentials, csrf *auth.CSRFReader, logger core.Logger) *auth.SessionController {
	return auth.NewSessionController(auth.SessionOptions{
		Mode:        conf.API.AuthMode,
		API:         client,
		Credentials: creds,
		CSRF:        csrf,
		Logger:      logger,
	})
}

func newDashboard(client *apiclient.Client) *dashboard.Service {
	return dashboard.NewService(client)
}

func newCommandLine(session *auth.SessionController, svc *dashboard.Service) *commandLine {
	return &commandLine{session: session, svc: svc, out: os.Stdout}
}

// newContainer returns the dependency injection container of the CLI.
func newContainer(newConfig func() (*core.Config, error)) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newStore))
	must(c.Provide(newCredentials))
	must(c.Provide(newTransport))
	must(c.Provide(newSession))
	must(c.Provide(newDashboard))
	must(c.Provide(newCommandLine))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
