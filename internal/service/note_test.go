package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/quiverapp/quiver-server/internal/errors"
	"github.com/quiverapp/quiver-server/internal/logger"
	"github.com/quiverapp/quiver-server/internal/store"
)

// setupNoteTest wires a note service plus a spec to hang notes on.
func setupNoteTest(t *testing.T) (*NoteService, store.Store, string, string) {
	t.Helper()

	st := newTestStore(t)
	log := logger.New(logger.Config{Writer: io.Discard, Format: logger.FormatJSON})
	ownerID := createTestOwner(t, st, "rider@example.com")

	specs := NewSpecService(st, log)
	spec, err := specs.Create(context.Background(), ownerID, makeSpecReq("Atris"))
	require.NoError(t, err)

	return NewNoteService(st, log), st, ownerID, spec.ID
}

func TestNoteService_Create(t *testing.T) {
	svc, _, owner, specID := setupNoteTest(t)
	ctx := context.Background()

	note, err := svc.Create(ctx, owner, specID, CreateNoteRequest{Content: "  Great in powder  "})
	require.NoError(t, err)

	_, err = uuid.Parse(note.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Great in powder", note.Content, "content should be trimmed")
	assert.Equal(t, specID, note.SkiSpecID)

	got, err := svc.Get(ctx, owner, specID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)
}

func TestNoteService_Create_Validation(t *testing.T) {
	svc, _, owner, specID := setupNoteTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, specID, CreateNoteRequest{Content: "   "})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = svc.Create(ctx, owner, specID, CreateNoteRequest{Content: strings.Repeat("x", 2001)})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestNoteService_SpecOwnershipGate(t *testing.T) {
	svc, st, owner, specID := setupNoteTest(t)
	ctx := context.Background()

	note, err := svc.Create(ctx, owner, specID, CreateNoteRequest{Content: "Great in powder"})
	require.NoError(t, err)

	// Every operation through another owner's view of the spec is a
	// plain not-found, with no mention of notes at all.
	other := createTestOwner(t, st, "other@example.com")

	_, err = svc.ListForSpec(ctx, other, specID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	_, err = svc.Create(ctx, other, specID, CreateNoteRequest{Content: "sneaky"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	_, err = svc.Get(ctx, other, specID, note.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	_, err = svc.Update(ctx, other, specID, note.ID, UpdateNoteRequest{Content: "sneaky"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	err = svc.Delete(ctx, other, specID, note.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	// The note is untouched.
	got, err := svc.Get(ctx, owner, specID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Great in powder", got.Content)
}

func TestNoteService_WrongSpec(t *testing.T) {
	svc, st, owner, specID := setupNoteTest(t)
	ctx := context.Background()

	note, err := svc.Create(ctx, owner, specID, CreateNoteRequest{Content: "Great in powder"})
	require.NoError(t, err)

	log := logger.New(logger.Config{Writer: io.Discard, Format: logger.FormatJSON})
	otherSpec, err := NewSpecService(st, log).Create(ctx, owner, makeSpecReq("Corvus"))
	require.NoError(t, err)

	// Right note id, wrong parent spec.
	_, err = svc.Get(ctx, owner, otherSpec.ID, note.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	err = svc.Delete(ctx, owner, otherSpec.ID, note.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestNoteService_ListForSpec(t *testing.T) {
	svc, _, owner, specID := setupNoteTest(t)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, owner, specID, CreateNoteRequest{Content: content})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	notes, err := svc.ListForSpec(ctx, owner, specID)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "third", notes[0].Content, "newest note first")
	assert.Equal(t, "first", notes[2].Content)
}

func TestNoteService_Update(t *testing.T) {
	svc, _, owner, specID := setupNoteTest(t)
	ctx := context.Background()

	note, err := svc.Create(ctx, owner, specID, CreateNoteRequest{Content: "Great in powder"})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	updated, err := svc.Update(ctx, owner, specID, note.ID, UpdateNoteRequest{Content: "Chattery on ice"})
	require.NoError(t, err)
	assert.Equal(t, "Chattery on ice", updated.Content)
	assert.True(t, updated.UpdatedAt.After(note.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(note.CreatedAt))

	_, err = svc.Update(ctx, owner, specID, uuid.NewString(), UpdateNoteRequest{Content: "ghost"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestNoteService_Delete(t *testing.T) {
	svc, _, owner, specID := setupNoteTest(t)
	ctx := context.Background()

	note, err := svc.Create(ctx, owner, specID, CreateNoteRequest{Content: "Great in powder"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, specID, note.ID))

	err = svc.Delete(ctx, owner, specID, note.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	notes, err := svc.ListForSpec(ctx, owner, specID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
