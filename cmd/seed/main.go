// Package main provides a tool to seed the database with demo ski specs.
//
// This creates (or reuses) a demo account and inserts a small quiver of
// realistic skis through the service layer, so derived metrics come out
// exactly as they would through the API.
//
// Usage:
//
//	DATA_PATH=~/quiver go run ./cmd/seed
//	DATA_PATH=~/quiver go run ./cmd/seed --notes  # Also attach sample notes
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/quiverapp/quiver-server/internal/auth"
	"github.com/quiverapp/quiver-server/internal/domain"
	apperrors "github.com/quiverapp/quiver-server/internal/errors"
	"github.com/quiverapp/quiver-server/internal/service"
	"github.com/quiverapp/quiver-server/internal/store"
	"github.com/quiverapp/quiver-server/internal/store/sqldb"
)

var (
	withNotes = flag.Bool("notes", false, "Also attach sample notes to the seeded specs")
	email     = flag.String("email", "demo@quiver.local", "Email for the demo account")
	password  = flag.String("password", "demo-powder-day", "Password for the demo account")
)

// sampleSpecs is a plausible mixed quiver, from a carving ski to a
// powder board.
var sampleSpecs = []service.CreateSpecRequest{
	{
		Name:        "Black Crows Atris",
		Description: "Playful all-mountain charger, daily driver",
		LengthCM:    184.1, TipMM: 137, WaistMM: 105, TailMM: 125,
		RadiusM: 19, WeightG: 1950,
	},
	{
		Name:        "Line Vision 98",
		Description: "Featherweight touring crossover",
		LengthCM:    179, TipMM: 133, WaistMM: 98, TailMM: 120,
		RadiusM: 17.5, WeightG: 1540,
	},
	{
		Name:        "Atomic Bent Chetler 120",
		Description: "Deep-day dedicated powder ski",
		LengthCM:    184, TipMM: 143, WaistMM: 120, TailMM: 134,
		RadiusM: 19, WeightG: 1850,
	},
	{
		Name:        "Völkl Blaze 106",
		Description: "Light freeride with a surprising top end",
		LengthCM:    186, TipMM: 146, WaistMM: 106, TailMM: 128,
		RadiusM: 21, WeightG: 1775,
	},
	{
		Name:        "Nordica Enforcer 100",
		Description: "Damp frontside workhorse",
		LengthCM:    186, TipMM: 132.5, WaistMM: 100, TailMM: 120.5,
		RadiusM: 18.5, WeightG: 2050,
	},
}

// sampleNotes are attached to the first specs when --notes is set.
var sampleNotes = []string{
	"Tested at the hill on a 30cm day. Floaty but still quick edge to edge.",
	"Mounted -1 from recommended. Felt balanced in the air, slightly tail heavy on landings.",
	"Bases running slow in spring snow, needs a warm wax.",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/quiver")
	}

	driver := os.Getenv("DATABASE_DRIVER")
	if driver == "" {
		driver = sqldb.DriverSQLite
	}
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" && driver == sqldb.DriverSQLite {
		dsn = filepath.Join(dataPath, "quiver.db")
	}

	fmt.Printf("Opening database: driver=%s\n", driver)

	ctx := context.Background()

	s, err := sqldb.Open(ctx, driver, dsn, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	// Token service shares the server's key file so the session created
	// during registration verifies against a running server too.
	key, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load session key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, 168*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	authService := service.NewAuthService(s, tokens, nil)
	specService := service.NewSpecService(s, nil)
	noteService := service.NewNoteService(s, nil)

	user := ensureDemoUser(ctx, s, authService)
	fmt.Printf("Seeding specs for %s (%s)\n\n", user.Email, user.ID)

	created := 0
	var specIDs []string
	for _, req := range sampleSpecs {
		spec, err := specService.Create(ctx, user.ID, req)
		if err != nil {
			var appErr *apperrors.Error
			if errors.As(err, &appErr) && appErr.Code == apperrors.CodeConflict {
				fmt.Printf("  %s already exists, skipping\n", req.Name)
				continue
			}
			log.Printf("  Failed to create %s: %v", req.Name, err)
			continue
		}
		specIDs = append(specIDs, spec.ID)
		created++
		fmt.Printf("  Created %s: %.1f cm² surface, %.2f g/cm² relative weight\n",
			spec.Name, spec.SurfaceArea, spec.RelativeWeight)
	}

	if *withNotes {
		seedNotes(ctx, noteService, user.ID, specIDs)
	}

	fmt.Printf("\nSeeding complete: %d specs created\n", created)
}

// ensureDemoUser registers the demo account, or reuses it when the email
// is already taken.
func ensureDemoUser(ctx context.Context, s store.Store, authService *service.AuthService) *domain.User {
	if existing, err := s.GetUserByEmail(ctx, *email); err == nil {
		fmt.Printf("User %s already exists, reusing\n", *email)
		return existing
	}

	result, err := authService.Register(ctx, service.RegisterRequest{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		log.Fatalf("Failed to register demo user: %v", err)
	}

	fmt.Printf("Created user %s (password: %s)\n", *email, *password)
	return result.User
}

// seedNotes spreads the sample notes across the seeded specs.
func seedNotes(ctx context.Context, noteService *service.NoteService, userID string, specIDs []string) {
	if len(specIDs) == 0 {
		fmt.Println("No freshly created specs, skipping notes")
		return
	}

	fmt.Println()
	for i, content := range sampleNotes {
		specID := specIDs[i%len(specIDs)]
		if _, err := noteService.Create(ctx, userID, specID, service.CreateNoteRequest{Content: content}); err != nil {
			log.Printf("  Failed to create note: %v", err)
			continue
		}
		fmt.Printf("  Attached note to spec %s\n", specID)
	}
}
