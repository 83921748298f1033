package providers

import (
	"github.com/samber/do/v2"

	"github.com/quiverapp/quiver-server/internal/auth"
	"github.com/quiverapp/quiver-server/internal/logger"
	"github.com/quiverapp/quiver-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log), nil
}

// ProvideSpecService provides the ski spec service.
func ProvideSpecService(i do.Injector) (*service.SpecService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSpecService(storeHandle.Store, log), nil
}

// ProvideNoteService provides the spec note service.
func ProvideNoteService(i do.Injector) (*service.NoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNoteService(storeHandle.Store, log), nil
}

// ProvideTransferService provides the CSV import/export service.
func ProvideTransferService(i do.Injector) (*service.TransferService, error) {
	specService := do.MustInvoke[*service.SpecService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTransferService(specService, log), nil
}
