// Package service implements the application's business logic on top of
// the store: authentication, ski spec CRUD, notes, and CSV transfer.
// Services validate their inputs, enforce ownership, and translate store
// sentinels into domain errors; HTTP concerns stay in internal/api.
package service

import (
	"github.com/quiverapp/quiver-server/internal/validation"
)

// validate is the shared request validator. Schemas live on the request
// structs as `validate` tags.
var validate = validation.New()
