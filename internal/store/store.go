// Package store defines the persistence interface for the Quiver server.
package store

import (
	"context"

	"github.com/quiverapp/quiver-server/internal/domain"
)

// SpecQuery describes a filtered, sorted, paginated ski spec listing.
// OwnerID is mandatory; every query is scoped to a single owner.
type SpecQuery struct {
	OwnerID   string
	Search    string // case-insensitive substring over name and description
	SortBy    string // created_at | name | length | surface_area | relative_weight
	SortOrder string // asc | desc
	PaginationParams
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	RevokeSession(ctx context.Context, id string) error
	RevokeUserSessions(ctx context.Context, userID string, exceptID string) (int, error)
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Password resets
	CreatePasswordReset(ctx context.Context, reset *domain.PasswordReset) error
	GetPasswordReset(ctx context.Context, tokenHash string) (*domain.PasswordReset, error)
	MarkPasswordResetUsed(ctx context.Context, id string) error
	DeleteExpiredPasswordResets(ctx context.Context) (int, error)

	// Ski specs. Every call is owner-scoped; a spec belonging to another
	// owner is indistinguishable from a missing one.
	CreateSpec(ctx context.Context, spec *domain.SkiSpec) error
	GetSpec(ctx context.Context, ownerID, id string) (*domain.SkiSpec, error)
	GetSpecByName(ctx context.Context, ownerID, name string) (*domain.SkiSpec, error)
	GetSpecsByIDs(ctx context.Context, ownerID string, ids []string) ([]*domain.SkiSpec, error)
	ListSpecs(ctx context.Context, q SpecQuery) (*PaginatedResult[*domain.SkiSpec], error)
	ListAllSpecs(ctx context.Context, q SpecQuery) ([]*domain.SkiSpec, error)
	UpdateSpec(ctx context.Context, spec *domain.SkiSpec) error
	DeleteSpec(ctx context.Context, ownerID, id string) error

	// Notes. Callers must verify spec ownership before touching notes;
	// all note reads are additionally scoped to their parent spec.
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, specID, id string) (*domain.Note, error)
	ListNotes(ctx context.Context, specID string) ([]*domain.Note, error)
	UpdateNote(ctx context.Context, note *domain.Note) error
	DeleteNote(ctx context.Context, specID, id string) error
}
