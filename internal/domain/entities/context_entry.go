package entities

import "time"

// ContextAction tags a history record with the mutation that produced it.
type ContextAction string

const (
	ContextActionCreate ContextAction = "create"
	ContextActionUpdate ContextAction = "update"
	ContextActionDelete ContextAction = "delete"
)

// PastTense is the label surfaced in API and tool responses ("created",
// "updated", "deleted"); history rows store the infinitive.
func (a ContextAction) PastTense() string {
	switch a {
	case ContextActionCreate:
		return "created"
	case ContextActionUpdate:
		return "updated"
	case ContextActionDelete:
		return "deleted"
	default:
		return string(a)
	}
}

// ContextEntry is a user-owned key -> content record, the unit of storage.
// Content is opaque text; rendering is decided client-side.
type ContextEntry struct {
	UserID    string    `json:"userId"`
	Key       string    `json:"key"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContextEntryMeta is the metadata-only projection returned by listings.
type ContextEntryMeta struct {
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContextHistoryRecord is an immutable audit snapshot written alongside
// every mutation. It is never read by the live CRUD paths.
type ContextHistoryRecord struct {
	ID        int64         `json:"id"`
	UserID    string        `json:"userId"`
	Key       string        `json:"key"`
	Content   string        `json:"content"`
	Action    ContextAction `json:"action"`
	ChangedAt time.Time     `json:"changedAt"`
}

// WriteContextResult reports whether a set created or updated the entry.
type WriteContextResult struct {
	Entry  *ContextEntry `json:"entry"`
	Action ContextAction `json:"action"`
}
