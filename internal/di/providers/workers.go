package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/quiverapp/quiver-server/internal/logger"
	"github.com/quiverapp/quiver-server/internal/service"
)

// cleanupInterval is how often expired sessions and reset tokens are swept.
const cleanupInterval = 1 * time.Hour

// SessionCleanupJob runs periodic cleanup of expired auth records.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic auth cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		// Initial cleanup on startup
		if err := authService.CleanupExpired(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := authService.CleanupExpired(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started", "interval", cleanupInterval)

	return &SessionCleanupJob{cancel: cancel}, nil
}
