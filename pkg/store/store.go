// Package store wires configuration to a concrete storage adapter.
package store

import (
	"context"

	"github.com/nimburion/docstore/pkg/config"
	"github.com/nimburion/docstore/pkg/observability/logger"
	"github.com/nimburion/docstore/pkg/store/mongodb"
)

// Adapter is the lifecycle and health contract every storage adapter
// satisfies.
type Adapter interface {
	HealthCheck(ctx context.Context) error
	Close() error
}

// Open builds the MongoDB adapter from configuration. The returned adapter
// satisfies both Adapter and record.Storage.
func Open(cfg config.StoreConfig, log logger.Logger) (*mongodb.Adapter, error) {
	return mongodb.NewAdapter(mongodb.Config{
		URL:              cfg.URL,
		Database:         cfg.Database,
		ConnectTimeout:   cfg.ConnectTimeout,
		OperationTimeout: cfg.OperationTimeout,
	}, log)
}
