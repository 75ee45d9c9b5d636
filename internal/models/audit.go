package models

import "time"

// AuditAction is the verb recorded against an audited entity.
type AuditAction string

const (
	AuditCreate  AuditAction = "create"
	AuditUpdate  AuditAction = "update"
	AuditApprove AuditAction = "approve"
	AuditReject  AuditAction = "reject"
	AuditCancel  AuditAction = "cancel"
	AuditRevert  AuditAction = "revert"
	AuditSync    AuditAction = "sync"
	AuditRestore AuditAction = "restore"
	AuditDelete  AuditAction = "delete"
)

// AuditEntry is an append-only record of a single state change. It does not
// embed Base: Base carries an UpdatedAt that implies in-place mutation,
// which an audit row must never have. A trigger created by the migration
// rejects UPDATE and DELETE on the table; AuditEntry has no UpdatedAt field
// to make the append-only intent visible in the type too.
type AuditEntry struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Timestamp time.Time `gorm:"not null;default:now();index" json:"timestamp"`

	Actor  string      `gorm:"index" json:"actor"`
	Action AuditAction `gorm:"size:20" json:"action"`

	EntityKind string `gorm:"size:40;index:idx_audit_entity" json:"entity_kind"`
	EntityID   string `gorm:"size:64;index:idx_audit_entity" json:"entity_id"`

	BeforeValue JSONBRaw `json:"before_value,omitempty"`
	AfterValue  JSONBRaw `json:"after_value,omitempty"`

	SourceIP  string   `json:"source_ip,omitempty"`
	UserAgent string   `json:"user_agent,omitempty"`
	Extra     JSONBRaw `json:"extra,omitempty"`
}

func (AuditEntry) TableName() string { return "audit_entries" }
