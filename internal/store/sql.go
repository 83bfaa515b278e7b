package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/isdelr/fuego-api/internal/models"
)

const (
	userColumns = "id, first, last, email, password, created_at, updated_at"
	taskColumns = "id, title, done, user_id, created_at, updated_at"
)

// SQLStore implements [Store] on top of database/sql. Queries are written with
// ? placeholders and rebound for postgres.
type SQLStore struct {
	db       *sql.DB
	postgres bool
	now      func() time.Time
}

// NewSQLStore creates a store for a pool opened with the named driver
// ("sqlite" or "postgres").
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{
		db:       db,
		postgres: driver == "postgres",
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser inserts a user whose Password already holds a digest.
func (s *SQLStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO users (first, last, email, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		user.First, user.Last, user.Email, user.Password, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	return scanUser(row)
}

// GetUserByEmail retrieves a single user by their email, including the digest.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+userColumns+" FROM users WHERE email = ?"), email)
	return scanUser(row)
}

// FindUsers ORs the filters together.
func (s *SQLStore) FindUsers(ctx context.Context, filters ...UserFilter) ([]models.User, error) {
	users := []models.User{}
	if len(filters) == 0 {
		return users, nil
	}

	var (
		preds []string
		args  []any
	)
	for _, f := range filters {
		switch f.Kind {
		case ByID:
			preds = append(preds, "id = ?")
			args = append(args, f.ID)
		case ByEmail:
			preds = append(preds, "email = ?")
			args = append(args, f.Value)
		case ByName:
			preds = append(preds, "first = ?", "last = ?")
			args = append(args, f.Value, f.Value)
		}
	}
	if len(preds) == 0 {
		return users, nil
	}

	query := "SELECT " + userColumns + " FROM users WHERE " + strings.Join(preds, " OR ") + " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return users, nil
}

// DeleteUser removes a user from the database.
func (s *SQLStore) DeleteUser(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM users WHERE id = ?"), id)
	return translate(err)
}

// ListTasks returns the owner's tasks in insertion order.
func (s *SQLStore) ListTasks(ctx context.Context, ownerID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT "+taskColumns+" FROM clients WHERE user_id = ? ORDER BY id"), ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return tasks, nil
}

// CreateTask inserts the task as given; the caller sets UserID.
func (s *SQLStore) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	now := s.now()
	task.CreatedAt, task.UpdatedAt = now, now
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO clients (title, done, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		task.Title, task.Done, task.UserID, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return models.Task{}, translate(err)
	}
	return task, nil
}

// GetTask fetches a task by id within the owner's scope.
func (s *SQLStore) GetTask(ctx context.Context, ownerID, id int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind("SELECT "+taskColumns+" FROM clients WHERE id = ? AND user_id = ?"), id, ownerID)
	return scanTask(row)
}

// UpdateTask sets only the fields present in the patch.
func (s *SQLStore) UpdateTask(ctx context.Context, ownerID, id int64, patch models.TaskPatch) (int64, error) {
	if patch.Empty() {
		return 0, nil
	}

	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Done != nil {
		sets = append(sets, "done = ?")
		args = append(args, *patch.Done)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.now(), id, ownerID)

	query := "UPDATE clients SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

// DeleteTask removes a task within the owner's scope.
func (s *SQLStore) DeleteTask(ctx context.Context, ownerID, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM clients WHERE id = ? AND user_id = ?"), id, ownerID)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

// DeleteOrphanTasks removes tasks left behind by deleted users.
func (s *SQLStore) DeleteOrphanTasks(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE user_id NOT IN (SELECT id FROM users)")
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface{ Scan(...any) error }

func scanUser(row scanner) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.First, &user.Last, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func scanTask(row scanner) (models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.Title, &task.Done, &task.UserID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return models.Task{}, translate(err)
	}
	return task, nil
}

// translate maps driver errors onto the store's error kinds. Anything else is
// returned untouched so its message reaches the caller.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return ErrAlreadyExists
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadyExists
	}
	return err
}
