// Package storage opens the durable secret store selected by the configuration.
package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
	"github.com/potencialize/dashboard/storage/inmemstore"
	"github.com/potencialize/dashboard/storage/redisstore"
	"github.com/potencialize/dashboard/storage/sqlitestore"
)

type Store interface {
	auth.SecretStore
	io.Closer
}

func Open(ctx context.Context, conf *core.Config, logger core.Logger) (Store, error) {
	switch conf.Store.Engine {
	case core.StoreMemory:
		logger.Warn("secrets are kept in memory: sessions will not survive a restart")
		return inmemstore.New(), nil
	case core.StoreSQLite:
		logger.Debug("opening sqlite secret store", map[string]interface{}{"path": conf.Store.Path})
		store, err := sqlitestore.Open(conf.Store.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case core.StoreRedis:
		logger.Debug("opening redis secret store", map[string]interface{}{"addr": conf.Store.RedisAddr})
		store, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     conf.Store.RedisAddr,
			Password: conf.Store.RedisPassword,
			DB:       conf.Store.RedisDB,
			Prefix:   conf.Store.Namespace + ":",
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, errors.Errorf("unknown secret store %q", conf.Store.Engine)
}
