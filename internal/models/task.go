package models

import "time"

// Task is a to-do item. The API and the table call them "clients".
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	UserID    int64     `json:"user_id"` // owner
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskPatch carries the optional fields of an update.
type TaskPatch struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Done == nil
}
