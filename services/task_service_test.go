package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sahilchouksey/task-manager-api/config"
	"github.com/sahilchouksey/task-manager-api/database"
	"github.com/sahilchouksey/task-manager-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, *database.GORMStore) {
	t.Helper()

	store, err := database.NewGORMStore(&config.EnvironmentVariable{
		GO_ENV:    "test",
		DB_DRIVER: "sqlite",
		DB_PATH:   filepath.Join(t.TempDir(), "tasks.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Init())

	return store.GetDB().(*gorm.DB), store
}

func strPtr(s string) *string {
	return &s
}

func TestParseTaskFilter(t *testing.T) {
	cases := []struct {
		raw    string
		filter TaskFilter
		ok     bool
	}{
		{"", FilterAll, true},
		{"all", FilterAll, true},
		{"active", FilterActive, true},
		{"completed", FilterCompleted, true},
		{"done", FilterAll, false},
		{"ACTIVE", FilterAll, false},
	}

	for _, tc := range cases {
		filter, ok := ParseTaskFilter(tc.raw)
		assert.Equal(t, tc.filter, filter, "raw=%q", tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
	}
}

func TestCreateTaskThenGetReturnsSameFields(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewTaskService(db)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, TaskInput{
		Title:       "Buy milk",
		Description: strPtr("2 litres"),
		Priority:    "High",
		DueDate:     strPtr("tomorrow"),
		Completed:   true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	fetched, err := svc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestCreateTaskAssignsUniqueIDs(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewTaskService(db)
	ctx := context.Background()

	seen := map[uint]bool{}
	for i := 0; i < 5; i++ {
		task, err := svc.CreateTask(ctx, TaskInput{Title: "t", Priority: model.DefaultPriority})
		require.NoError(t, err)
		assert.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
	}
}

func TestListTasksFiltersPartitionTheTable(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewTaskService(db)
	ctx := context.Background()

	for i, done := range []bool{false, true, false, true, true} {
		_, err := svc.CreateTask(ctx, TaskInput{
			Title:     string(rune('a' + i)),
			Priority:  model.DefaultPriority,
			Completed: done,
		})
		require.NoError(t, err)
	}

	all, err := svc.ListTasks(ctx, FilterAll)
	require.NoError(t, err)
	active, err := svc.ListTasks(ctx, FilterActive)
	require.NoError(t, err)
	completed, err := svc.ListTasks(ctx, FilterCompleted)
	require.NoError(t, err)

	assert.Len(t, all, 5)
	assert.Len(t, active, 2)
	assert.Len(t, completed, 3)

	ids := map[uint]int{}
	for _, task := range active {
		assert.False(t, task.Completed)
		ids[task.ID]++
	}
	for _, task := range completed {
		assert.True(t, task.Completed)
		ids[task.ID]++
	}
	for _, task := range all {
		assert.Equal(t, 1, ids[task.ID], "task %d must be in exactly one subset", task.ID)
	}

	// Insertion order
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestListTasksEmptyTableReturnsEmptySlice(t *testing.T) {
	db, _ := newTestDB(t)

	tasks, err := NewTaskService(db).ListTasks(context.Background(), FilterAll)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestReplaceTaskOverwritesEveryField(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewTaskService(db)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, TaskInput{
		Title:       "Old",
		Description: strPtr("old description"),
		Priority:    "High",
		DueDate:     strPtr("2024-01-01"),
		Completed:   true,
	})
	require.NoError(t, err)

	replaced, err := svc.ReplaceTask(ctx, created.ID, TaskInput{Title: "X", Priority: model.DefaultPriority})
	require.NoError(t, err)

	fetched, err := svc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, replaced, fetched)
	assert.Equal(t, "X", fetched.Title)
	assert.Equal(t, model.DefaultPriority, fetched.Priority)
	assert.False(t, fetched.Completed)
	assert.Nil(t, fetched.Description)
	assert.Nil(t, fetched.DueDate)
}

func TestReplaceTaskMissing(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := NewTaskService(db).ReplaceTask(context.Background(), 42, TaskInput{Title: "X"})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTaskThenGetIsNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewTaskService(db)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, TaskInput{Title: "Remove me", Priority: model.DefaultPriority})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, created.ID))

	_, err = svc.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, svc.DeleteTask(ctx, created.ID), ErrTaskNotFound)
}

func TestCountTasks(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewTaskService(db)
	ctx := context.Background()

	counts, err := svc.CountTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, TaskCounts{}, counts)

	for _, done := range []bool{true, false, false} {
		_, err := svc.CreateTask(ctx, TaskInput{Title: "t", Priority: model.DefaultPriority, Completed: done})
		require.NoError(t, err)
	}

	counts, err = svc.CountTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, TaskCounts{Active: 2, Completed: 1}, counts)
}

func TestCreateTaskPersistenceError(t *testing.T) {
	db, store := newTestDB(t)
	svc := NewTaskService(db)
	require.NoError(t, store.Close())

	_, err := svc.CreateTask(context.Background(), TaskInput{Title: "lost", Priority: model.DefaultPriority})
	require.Error(t, err)

	var persistenceErr *PersistenceError
	require.True(t, errors.As(err, &persistenceErr))
	assert.Equal(t, "create", persistenceErr.Op)
	assert.NotErrorIs(t, err, ErrTaskNotFound)
}
