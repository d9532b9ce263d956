package audit

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/catalog/internal/database/audit"
	"github.com/mrlokans/catalog/internal/entities"
)

// Entity types recorded in the change log.
const (
	EntityGenre        = "genre"
	EntityAuthor       = "author"
	EntityBook         = "book"
	EntityBookInstance = "bookinstance"
	EntityCatalog      = "catalog"
)

const maxTextLength = 500

// Service records catalog changes without blocking the request that made them.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.Append(ctx, event)
}

// LogAsync records an audit event in the background. The write outlives the
// request that triggered it, so it runs on its own context.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.Append(context.Background(), event); err != nil {
			log.Error().Err(err).
				Str("action", string(event.Action)).
				Str("entity_type", event.EntityType).
				Msg("Failed to log audit event")
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogCreate records that a catalog record was created.
func (s *Service) LogCreate(entityType, entityID, name string) {
	s.record(entities.AuditActionCreate, entityType, entityID, "Created "+entityType+": "+name, nil)
}

// LogUpdate records that a catalog record was changed.
func (s *Service) LogUpdate(entityType, entityID, name string) {
	s.record(entities.AuditActionUpdate, entityType, entityID, "Updated "+entityType+": "+name, nil)
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(entityType, entityID, name string) {
	s.record(entities.AuditActionDelete, entityType, entityID, "Deleted "+entityType+": "+name, nil)
}

// LogSeed records a run of the sample data loader.
func (s *Service) LogSeed(description string, err error) {
	s.record(entities.AuditActionSeed, EntityCatalog, "", description, err)
}

func (s *Service) record(action entities.AuditAction, entityType, entityID, description string, err error) {
	event := &entities.AuditEvent{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: truncate(description, maxTextLength),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxTextLength)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(ctx, limit, offset)
}

// GetEventsForEntity returns the history of one record.
func (s *Service) GetEventsForEntity(ctx context.Context, entityType, entityID string) ([]entities.AuditEvent, error) {
	return s.repo.ListForEntity(ctx, entityType, entityID)
}

// DeleteOldEvents removes events older than the retention period.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteBefore(ctx, time.Now().Add(-retention))
}

// truncate shortens a string to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
