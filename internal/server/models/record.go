package models

import "time"

// Record is an owned entity with a soft-delete flag. Owner never changes
// after creation.
type Record struct {
	ID        string
	Owner     string
	Title     string
	Body      string
	Active    bool
	CreatedAt time.Time
}

// RecordPatch carries the optional fields of an update. Nil means "keep".
type RecordPatch struct {
	Title *string
	Body  *string
}

// Empty reports whether the patch changes nothing.
func (p RecordPatch) Empty() bool {
	return p.Title == nil && p.Body == nil
}

// Apply returns a copy of r with the patch applied.
func (p RecordPatch) Apply(r Record) Record {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Body != nil {
		r.Body = *p.Body
	}
	return r
}
