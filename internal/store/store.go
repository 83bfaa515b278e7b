// Package store persists users and their tasks.
package store

import (
	"context"

	"github.com/isdelr/fuego-api/internal/models"
)

const (
	// ErrNotFound is returned when a user or task cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned when a unique column already holds the value.
	ErrAlreadyExists Error = "already exists"
)

// Error is an error type returned by the store implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// FilterKind selects the column a UserFilter matches on.
type FilterKind int

const (
	ByID FilterKind = iota + 1
	ByEmail
	ByName // first or last name
)

// UserFilter is a single equality predicate over users.
type UserFilter struct {
	Kind  FilterKind
	ID    int64
	Value string
}

// FilterByID matches the user with the given id.
func FilterByID(id int64) UserFilter { return UserFilter{Kind: ByID, ID: id} }

// FilterByEmail matches the user with the given email.
func FilterByEmail(email string) UserFilter { return UserFilter{Kind: ByEmail, Value: email} }

// FilterByName matches users whose first or last name equals name.
func FilterByName(name string) UserFilter { return UserFilter{Kind: ByName, Value: name} }

// Users are the methods on a store responsible for accounts.
type Users interface {
	// CreateUser inserts the user and returns it with its assigned id and
	// timestamps. An [ErrAlreadyExists] is returned if the email is taken.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	// GetUserByID returns [ErrNotFound] if no user has the id.
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	// GetUserByEmail returns [ErrNotFound] if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// FindUsers returns the users matching any of the filters, ordered by id.
	// No filters, or no matches, yields an empty slice.
	FindUsers(ctx context.Context, filters ...UserFilter) ([]models.User, error)
	// DeleteUser removes the user row only; owned tasks are left untouched.
	DeleteUser(ctx context.Context, id int64) error
}

// Tasks are the methods on a store responsible for tasks. Every method except
// DeleteOrphanTasks is scoped to the owning user id.
type Tasks interface {
	ListTasks(ctx context.Context, ownerID int64) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	// GetTask returns [ErrNotFound] if the task does not exist or belongs to
	// another owner.
	GetTask(ctx context.Context, ownerID, id int64) (models.Task, error)
	// UpdateTask applies the patch and reports the number of rows affected.
	UpdateTask(ctx context.Context, ownerID, id int64, patch models.TaskPatch) (int64, error)
	// DeleteTask reports the number of rows affected.
	DeleteTask(ctx context.Context, ownerID, id int64) (int64, error)
	// DeleteOrphanTasks removes tasks whose owner no longer exists.
	DeleteOrphanTasks(ctx context.Context) (int64, error)
}

// Store is the combination interface for [Users] and [Tasks].
type Store interface {
	Users
	Tasks
}
