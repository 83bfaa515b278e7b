package services

import (
	"context"
	"errors"

	"github.com/isdelr/fuego-api/internal/cache"
	"github.com/isdelr/fuego-api/internal/models"
	"github.com/isdelr/fuego-api/internal/store"
)

// Task change actions pushed to the owner's open connections.
const (
	ActionTaskCreated = "task.created"
	ActionTaskUpdated = "task.updated"
	ActionTaskDeleted = "task.deleted"
)

// Notifier pushes a message to every connection of a user.
type Notifier interface {
	Publish(userID int64, action string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) Publish(int64, string, any) {}

// CreateTaskInput carries the fields of a new task. Any owner supplied by the
// caller is ignored.
type CreateTaskInput struct {
	Title string `json:"title"`
}

// TaskServiceProvider defines the interface for task services. Every method is
// scoped to the identity's own tasks.
type TaskServiceProvider interface {
	List(ctx context.Context, identity models.User) ([]models.Task, error)
	Create(ctx context.Context, identity models.User, in CreateTaskInput) (models.Task, error)
	Get(ctx context.Context, identity models.User, id int64) (models.Task, error)
	Update(ctx context.Context, identity models.User, id int64, patch models.TaskPatch) error
	Delete(ctx context.Context, identity models.User, id int64) error
}

// TaskService provides business logic for task management.
type TaskService struct {
	tasks    store.Tasks
	cache    cache.TaskLists
	notifier Notifier
}

// NewTaskService creates a new TaskService. A nil cache or notifier disables
// that feature.
func NewTaskService(tasks store.Tasks, lists cache.TaskLists, notifier Notifier) *TaskService {
	if lists == nil {
		lists = cache.Noop{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &TaskService{tasks: tasks, cache: lists, notifier: notifier}
}

// List returns the caller's tasks in insertion order. A cache fill is filed
// under the generation read before the store query, so a write that lands in
// between leaves it unreachable.
func (s *TaskService) List(ctx context.Context, identity models.User) ([]models.Task, error) {
	cached, gen, ok := s.cache.Get(ctx, identity.ID)
	if ok {
		return cached, nil
	}
	tasks, err := s.tasks.ListTasks(ctx, identity.ID)
	if err != nil {
		return nil, precondition(err)
	}
	s.cache.Set(ctx, identity.ID, gen, tasks)
	return tasks, nil
}

// Create stores a new, not yet done task owned by the caller.
func (s *TaskService) Create(ctx context.Context, identity models.User, in CreateTaskInput) (models.Task, error) {
	v := newValidator()
	v.required(in.Title, "title")
	if err := v.err(); err != nil {
		return models.Task{}, err
	}

	task, err := s.tasks.CreateTask(ctx, models.Task{
		Title:  in.Title,
		Done:   false,
		UserID: identity.ID,
	})
	if err != nil {
		return models.Task{}, precondition(err)
	}
	s.cache.Invalidate(ctx, identity.ID)
	s.notifier.Publish(identity.ID, ActionTaskCreated, task)
	return task, nil
}

// Get returns ErrNotFound both for unknown ids and for other users' tasks.
func (s *TaskService) Get(ctx context.Context, identity models.User, id int64) (models.Task, error) {
	task, err := s.tasks.GetTask(ctx, identity.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Task{}, ErrNotFound
	} else if err != nil {
		return models.Task{}, precondition(err)
	}
	return task, nil
}

// Update applies the patch. Matching no row is not an error.
func (s *TaskService) Update(ctx context.Context, identity models.User, id int64, patch models.TaskPatch) error {
	if patch.Title != nil {
		v := newValidator()
		v.required(*patch.Title, "title")
		if err := v.err(); err != nil {
			return err
		}
	}

	n, err := s.tasks.UpdateTask(ctx, identity.ID, id, patch)
	if err != nil {
		return precondition(err)
	}
	if n > 0 {
		s.cache.Invalidate(ctx, identity.ID)
		s.notifier.Publish(identity.ID, ActionTaskUpdated, map[string]int64{"id": id})
	}
	return nil
}

// Delete removes the task. Matching no row is not an error.
func (s *TaskService) Delete(ctx context.Context, identity models.User, id int64) error {
	n, err := s.tasks.DeleteTask(ctx, identity.ID, id)
	if err != nil {
		return precondition(err)
	}
	if n > 0 {
		s.cache.Invalidate(ctx, identity.ID)
		s.notifier.Publish(identity.ID, ActionTaskDeleted, map[string]int64{"id": id})
	}
	return nil
}
