package models

import "time"

// SystemActor is stamped on audit columns when no principal is available.
const SystemActor = "system"

// AuditFields are carried by every persisted entity. The principal columns
// are free text and are not linked to the users table.
type AuditFields struct {
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	LastModifiedAt *time.Time `db:"last_modified_at" json:"last_modified_at,omitempty"`
	LastModifiedBy *string    `db:"last_modified_by" json:"last_modified_by,omitempty"`
}

// Actor normalises an audit principal.
func Actor(name string) string {
	if name == "" {
		return SystemActor
	}
	return name
}

// Stamp fills the creation columns.
func (a *AuditFields) Stamp(actor string, at time.Time) {
	a.CreatedAt = at
	a.CreatedBy = Actor(actor)
}

// Touch records a modification.
func (a *AuditFields) Touch(actor string, at time.Time) {
	who := Actor(actor)
	a.LastModifiedAt = &at
	a.LastModifiedBy = &who
}
