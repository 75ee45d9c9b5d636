// Package audit implements the append-only AuditEntry log required by every
// state-changing operation in LedgerEngine and RequestWorkflow. There is no
// teacher precedent for a dedicated audit package, so this is built fresh in
// the teacher's idiom: a typed service wrapping a GORM repository,
// context.Context-first methods, fmt.Errorf("%w", ...) wrapping.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

// Recorder is the narrow interface internal/ledger and internal/workflow
// each declare locally to avoid importing this package directly.
type Recorder interface {
	Record(ctx context.Context, entry models.AuditEntry) error
}

// Service is the audit log: entries are written once and never updated or
// deleted through this type. The migration layer enforces the same
// guarantee at the storage layer with a BEFORE UPDATE OR DELETE trigger
// that rejects any direct statement against audit_entries, regardless of
// which role issues it; the one sanctioned deletion path is the
// purge_audit_entries() SQL function Purge calls below, which the trigger
// lets through by checking a session-local flag the function sets.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Record appends one AuditEntry. Timestamp defaults to now if the caller
// left it zero.
func (s *Service) Record(ctx context.Context, entry models.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// ListForEntity returns every audit entry for one entity, oldest first, for
// the admin audit-trail view.
func (s *Service) ListForEntity(ctx context.Context, entityKind, entityID string) ([]models.AuditEntry, error) {
	var rows []models.AuditEntry
	err := s.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list audit entries for %s/%s: %w", entityKind, entityID, err)
	}
	return rows, nil
}

// ListByActor returns every audit entry written by one actor within
// [since, until), newest first, bounded by limit per ApiPlane's pagination
// rules.
func (s *Service) ListByActor(ctx context.Context, actor string, since, until time.Time, limit, offset int) ([]models.AuditEntry, error) {
	var rows []models.AuditEntry
	err := s.db.WithContext(ctx).
		Where("actor = ? AND timestamp >= ? AND timestamp < ?", actor, since, until).
		Order("timestamp DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list audit entries for actor %s: %w", actor, err)
	}
	return rows, nil
}

// ListFilter narrows List to a subset of audit entries. Zero-valued fields
// are left unconstrained.
type ListFilter struct {
	EntityKind string
	Actor      string
}

// List returns audit entries newest-first matching filter, bounded by
// limit/offset per ApiPlane's pagination rules, plus the total count of
// matching rows for the response envelope's meta.total.
func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]models.AuditEntry, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditEntry{})
	if filter.EntityKind != "" {
		q = q.Where("entity_kind = ?", filter.EntityKind)
	}
	if filter.Actor != "" {
		q = q.Where("actor = ?", filter.Actor)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	var rows []models.AuditEntry
	if err := q.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	return rows, total, nil
}

// Purge deletes audit entries older than before. It is the one operation
// permitted to remove audit rows (§3.3: "Records older than
// ledger_retention_years may be purged by an administrative operation that
// itself logs an audit entry"). It deletes through the
// purge_audit_entries() SQL function, which sets the session-local bypass
// flag the append-only trigger checks — see migrations.
func (s *Service) Purge(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	row := s.db.WithContext(ctx).Raw("SELECT purge_audit_entries(?)", before).Row()
	if err := row.Scan(&removed); err != nil {
		return 0, fmt.Errorf("purge audit entries: %w", err)
	}
	return removed, nil
}
