package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	domainerrors "vitrine/contexts/merchandising/banner-service/domain/errors"
	"vitrine/contexts/merchandising/banner-service/ports"
	"vitrine/internal/shared/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the banner tables when they do not exist yet.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&recordModel{}, &outboxModel{})
}

func (r *Repository) GetRecord(ctx context.Context, slot entities.Slot) (entities.Record, error) {
	var row recordModel
	err := r.db.WithContext(ctx).
		Where("slot = ?", string(slot)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Record{}, domainerrors.ErrNotFound
		}
		return entities.Record{}, r.logError("banner_repo_get_failed", err, "slot", string(slot))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRecords(ctx context.Context, slots []entities.Slot) ([]entities.Record, error) {
	names := make([]string, 0, len(slots))
	for _, slot := range slots {
		names = append(names, string(slot))
	}

	var rows []recordModel
	err := r.db.WithContext(ctx).
		Where("slot IN ?", names).
		Order("slot ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("banner_repo_list_failed", err, "slots", names)
	}

	bySlot := make(map[string]entities.Record, len(rows))
	for _, row := range rows {
		bySlot[row.Slot] = row.toEntity()
	}
	// Preserve request order.
	found := make([]entities.Record, 0, len(rows))
	for _, name := range names {
		if record, ok := bySlot[name]; ok {
			found = append(found, record)
		}
	}
	return found, nil
}

// ReplaceRecord swaps the record and writes the outbox row in one
// transaction. The WHERE clause on version is the compare-and-swap: zero
// affected rows means a concurrent edit advanced the record first.
func (r *Repository) ReplaceRecord(ctx context.Context, record entities.Record, expectedVersion int64) error {
	row := recordModelFromEntity(record)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&recordModel{}).
			Where("slot = ? AND version = ?", row.Slot, expectedVersion).
			Updates(map[string]any{
				"image_ref":      row.ImageRef,
				"mime_type":      row.MIMEType,
				"natural_width":  row.NaturalWidth,
				"natural_height": row.NaturalHeight,
				"geometry_mode":  row.GeometryMode,
				"scale":          row.Scale,
				"translate_x":    row.TranslateX,
				"translate_y":    row.TranslateY,
				"crop_x":         row.CropX,
				"crop_y":         row.CropY,
				"crop_width":     row.CropWidth,
				"crop_height":    row.CropHeight,
				"rotation":       row.Rotation,
				"version":        row.Version,
				"published":      row.Published,
				"updated_at":     row.UpdatedAt,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&recordModel{}).Where("slot = ?", row.Slot).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrNotFound
			}
			return domainerrors.ErrVersionConflict
		}
		return tx.Create(outboxModelForRecord(record)).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) || errors.Is(err, domainerrors.ErrVersionConflict) {
			return err
		}
		return r.logError("banner_repo_replace_failed", err,
			"slot", row.Slot,
			"expected_version", expectedVersion,
		)
	}
	return nil
}

func (r *Repository) SeedRecords(ctx context.Context, records []entities.Record) error {
	for _, record := range records {
		row := recordModelFromEntity(record)
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slot"}},
				DoNothing: true,
			}).
			Create(&row).
			Error
		if err != nil && !isUniqueViolation(err) {
			return r.logError("banner_repo_seed_failed", err, "slot", row.Slot)
		}
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("banner_repo_outbox_list_failed", err)
	}

	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:  row.ID,
			EventType: row.EventType,
			Payload:   []byte(row.Payload),
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	update := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusPublished,
			"sent_at": sentAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("banner_repo_outbox_mark_failed", update.Error, "outbox_id", outboxID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func outboxModelForRecord(record entities.Record) *outboxModel {
	envelope := events.Envelope{
		EventID:        uuid.NewString(),
		EventType:      ports.TopicBannerUpdated,
		SourceService:  "vitrine",
		OccurredAtUTC:  record.UpdatedAt,
		EntityType:     "banner",
		EntityID:       string(record.Slot),
		PayloadVersion: 1,
		Payload: ports.BannerUpdatedPayload{
			ID:      string(record.Slot),
			Version: record.Version,
		},
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"event_type":%q,"entity_id":%q}`, envelope.EventType, envelope.EntityID))
	}
	return &outboxModel{
		ID:        uuid.NewString(),
		EventType: envelope.EventType,
		Payload:   string(payload),
		Status:    outboxStatusPending,
		CreatedAt: record.UpdatedAt,
	}
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "merchandising/banner-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("banner repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock implements ports.Clock on the host clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
