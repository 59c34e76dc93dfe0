//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/taskflow-server/internal/model"
	repo "github.com/dtroode/taskflow-server/internal/repository/postgres"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "taskflow_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/taskflow_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func connect(t *testing.T) *repo.Connection {
	t.Helper()
	conn, err := repo.NewConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func createUser(t *testing.T, ur *repo.UserRepository) model.User {
	t.Helper()
	id := uuid.New()
	u, err := ur.Create(context.Background(), model.User{
		ID:           id,
		Name:         "Ann",
		Email:        id.String() + "@gmail.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	})
	require.NoError(t, err)
	return u
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	ur := repo.NewUserRepository(connect(t))

	u := createUser(t, ur)

	byEmail, err := ur.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	_, err = ur.Create(ctx, model.User{ID: uuid.New(), Name: "Dup", Email: u.Email, PasswordHash: "x", CreatedAt: time.Now()})
	require.ErrorIs(t, err, model.ErrDuplicateEmail)

	_, err = ur.GetByEmail(ctx, "nobody@gmail.com")
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = ur.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestTaskRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)
	ur := repo.NewUserRepository(conn)
	tr := repo.NewTaskRepository(conn)

	owner := createUser(t, ur)
	other := createUser(t, ur)

	task := testutil.MakeTask(owner.ID, "Write report")
	task.CreatedAt = task.CreatedAt.UTC().Truncate(time.Microsecond)
	saved, err := tr.Create(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, task.ID, saved.ID)
	assert.Equal(t, 2, saved.PriorityRank)

	_, err = tr.GetByIDAndOwner(ctx, task.ID, other.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	saved.Title = "Write final report"
	saved.SetPriority(model.PriorityHigh)
	updated, err := tr.Update(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, "Write final report", updated.Title)
	assert.Equal(t, 3, updated.PriorityRank)

	foreign := updated
	foreign.OwnerID = other.ID
	_, err = tr.Update(ctx, foreign)
	require.ErrorIs(t, err, model.ErrNotFound)

	require.ErrorIs(t, tr.DeleteByIDAndOwner(ctx, task.ID, other.ID), model.ErrNotFound)
	require.NoError(t, tr.DeleteByIDAndOwner(ctx, task.ID, owner.ID))
	require.ErrorIs(t, tr.DeleteByIDAndOwner(ctx, task.ID, owner.ID), model.ErrNotFound)
}

func TestTaskRepository_Find(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)
	ur := repo.NewUserRepository(conn)
	tr := repo.NewTaskRepository(conn)

	owner := createUser(t, ur)
	other := createUser(t, ur)

	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	yesterday := base.AddDate(0, 0, -1)
	tomorrow := base.AddDate(0, 0, 1)

	fixtures := []model.Task{
		testutil.MakeTask(owner.ID, "Buy milk", func(t *model.Task) {
			t.SetPriority(model.PriorityHigh)
			t.DueDate = &yesterday
			t.CreatedAt = base.Add(1 * time.Minute)
		}),
		testutil.MakeTask(owner.ID, "Pay rent", func(t *model.Task) {
			t.Status = model.StatusCompleted
			t.DueDate = &yesterday
			t.CreatedAt = base.Add(2 * time.Minute)
		}),
		testutil.MakeTask(owner.ID, "Call mom about MILK", func(t *model.Task) {
			t.SetPriority(model.PriorityLow)
			t.DueDate = &tomorrow
			t.CreatedAt = base.Add(3 * time.Minute)
		}),
		testutil.MakeTask(other.ID, "Buy milk too", func(t *model.Task) {
			t.CreatedAt = base.Add(4 * time.Minute)
		}),
	}
	for _, f := range fixtures {
		_, err := tr.Create(ctx, f)
		require.NoError(t, err)
	}

	t.Run("owner scope and total", func(t *testing.T) {
		tasks, total, err := tr.Find(ctx, model.TaskFilter{OwnerID: owner.ID, SortBy: model.SortByCreatedAt, Descending: true, Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, tasks, 3)
		assert.Equal(t, "Call mom about MILK", tasks[0].Title)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		tasks, total, err := tr.Find(ctx, model.TaskFilter{OwnerID: owner.ID, Search: "milk", Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, tasks, 2)
	})

	t.Run("overdue excludes completed", func(t *testing.T) {
		completed := model.StatusCompleted
		start := base.Truncate(24 * time.Hour)
		tasks, total, err := tr.Find(ctx, model.TaskFilter{
			OwnerID: owner.ID, ExcludeStatus: &completed, Due: &model.DueWindow{Before: &start}, Limit: 1000,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Buy milk", tasks[0].Title)
	})

	t.Run("priority desc with page window", func(t *testing.T) {
		tasks, total, err := tr.Find(ctx, model.TaskFilter{
			OwnerID: owner.ID, SortBy: model.SortByPriority, Descending: true, Offset: 1, Limit: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Pay rent", tasks[0].Title)
	})
}
