package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/quiverapp/quiver-server/internal/config"
	"github.com/quiverapp/quiver-server/internal/logger"
	"github.com/quiverapp/quiver-server/internal/store/sqldb"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqldb.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store, migrated and ready to use.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Open logs readiness itself; the DSN can carry credentials, so it
	// is never logged here.
	st, err := sqldb.Open(context.Background(), cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: st}, nil
}
