package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/entities"
)

// newestFirst orders events by time, then by insertion for equal timestamps.
const newestFirst = "created_at DESC, id DESC"

// Repository is the append-only catalog change log.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append stores one event, stamping it with the current time when unset.
func (r *Repository) Append(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// List returns one page of the log and the total number of events.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var (
		events []entities.AuditEvent
		total  int64
	)

	query := r.db.WithContext(ctx).Model(&entities.AuditEvent{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	err := query.Order(newestFirst).Limit(max(limit, 1)).Offset(max(offset, 0)).Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list audit events: %w", err)
	}
	return events, total, nil
}

// ListForEntity returns every event recorded against one catalog record.
func (r *Repository) ListForEntity(ctx context.Context, entityType, entityID string) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order(newestFirst).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list audit events for %s %s: %w", entityType, entityID, err)
	}
	return events, nil
}

// DeleteBefore drops events recorded before cutoff and reports how many went.
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete audit events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
