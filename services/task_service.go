package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/task-manager-api/model"
	"gorm.io/gorm"
)

// ErrTaskNotFound is returned when no task exists for the requested id
var ErrTaskNotFound = errors.New("task not found")

// PersistenceError wraps a store failure for a task operation
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s task: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// TaskFilter selects which tasks ListTasks returns
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterActive    TaskFilter = "active"
	FilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter maps a query token to a filter. Unknown or empty tokens
// fall back to FilterAll; ok reports whether the token was recognized.
func ParseTaskFilter(raw string) (filter TaskFilter, ok bool) {
	switch TaskFilter(raw) {
	case FilterAll, FilterActive, FilterCompleted:
		return TaskFilter(raw), true
	default:
		return FilterAll, raw == ""
	}
}

// TaskInput holds every writable field of a task. Create and Replace write
// all of them, so callers must apply defaults before passing it in.
type TaskInput struct {
	Title       string
	Description *string
	Priority    string
	DueDate     *string
	Completed   bool
}

func (in TaskInput) apply(task *model.Task) {
	task.Title = in.Title
	task.Description = in.Description
	task.Priority = in.Priority
	task.DueDate = in.DueDate
	task.Completed = in.Completed
}

// TaskService handles task persistence
type TaskService struct {
	db *gorm.DB
}

// NewTaskService creates a new task service
func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

// ListTasks returns the tasks matching filter in insertion order
func (s *TaskService) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query := s.db.WithContext(ctx).Model(&model.Task{})

	switch filter {
	case FilterActive:
		query = query.Where("completed = ?", false)
	case FilterCompleted:
		query = query.Where("completed = ?", true)
	}

	tasks := []model.Task{}
	if err := query.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	return tasks, nil
}

// GetTask returns the task with the given id
func (s *TaskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, translateError("get", err)
	}

	return &task, nil
}

// CreateTask persists a new task in its own transaction
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	var task model.Task
	input.apply(&task)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, &PersistenceError{Op: "create", Err: err}
	}

	return &task, nil
}

// ReplaceTask overwrites every field of an existing task
func (s *TaskService) ReplaceTask(ctx context.Context, id uint, input TaskInput) (*model.Task, error) {
	var task model.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}

		input.apply(&task)
		// Save writes zero values too, which is what full-replace needs
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, translateError("update", err)
	}

	return &task, nil
}

// DeleteTask removes the task with the given id
func (s *TaskService) DeleteTask(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}

		return tx.Delete(&task).Error
	})

	return translateError("delete", err)
}

// TaskCounts summarizes the table by completion state
type TaskCounts struct {
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}

// CountTasks returns how many tasks are active and completed
func (s *TaskService) CountTasks(ctx context.Context) (TaskCounts, error) {
	var rows []struct {
		Completed bool
		Total     int64
	}

	err := s.db.WithContext(ctx).Model(&model.Task{}).
		Select("completed, COUNT(*) AS total").
		Group("completed").
		Scan(&rows).Error
	if err != nil {
		return TaskCounts{}, &PersistenceError{Op: "count", Err: err}
	}

	var counts TaskCounts
	for _, row := range rows {
		if row.Completed {
			counts.Completed = row.Total
		} else {
			counts.Active = row.Total
		}
	}

	return counts, nil
}

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}
