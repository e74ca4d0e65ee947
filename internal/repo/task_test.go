// internal/repo/task_test.go
package repo

import (
    "context"
    "errors"
    "os"
    "testing"

    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/BuzzLyutic/taskboard/internal/model"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
    dbURL := os.Getenv("TEST_DATABASE_URL")
    if dbURL == "" {
        t.Skip("TEST_DATABASE_URL not set")
    }

    pool, err := pgxpool.New(context.Background(), dbURL)
    if err != nil {
        t.Fatal(err)
    }

    // Очистка
    pool.Exec(context.Background(), "TRUNCATE tasks CASCADE")

    return pool
}

func TestTaskRepo_Create(t *testing.T) {
    pool := setupTestDB(t)
    defer pool.Close()

    repo := NewTaskRepo(pool)
    task := model.Task{Title: "Test", Status: model.StatusPending, Priority: model.PriorityHigh}

    created, err := repo.Create(context.Background(), "user-a", task)
    if err != nil {
        t.Fatal(err)
    }

    if created.ID == "" {
        t.Error("expected server-assigned ID")
    }
    if created.OwnerID != "user-a" {
        t.Errorf("expected ownerId=user-a, got %s", created.OwnerID)
    }
}

func TestTaskRepo_OwnershipScope(t *testing.T) {
    pool := setupTestDB(t)
    defer pool.Close()

    repo := NewTaskRepo(pool)
    ctx := context.Background()

    created, err := repo.Create(ctx, "user-a", model.Task{
        Title: "Private", Status: model.StatusPending, Priority: model.PriorityMedium,
    })
    if err != nil {
        t.Fatal(err)
    }

    // Чужой список пуст
    foreign, err := repo.ListByOwner(ctx, "user-b")
    if err != nil {
        t.Fatal(err)
    }
    if len(foreign) != 0 {
        t.Errorf("user-b should see no tasks, got %d", len(foreign))
    }

    // Чужой update и delete неотличимы от несуществующих
    title := "Hijack"
    if _, err := repo.Update(ctx, "user-b", created.ID, model.TaskPatch{Title: &title}); !errors.Is(err, ErrorNotFound) {
        t.Errorf("expected ErrorNotFound for foreign update, got %v", err)
    }
    if err := repo.Delete(ctx, "user-b", created.ID); !errors.Is(err, ErrorNotFound) {
        t.Errorf("expected ErrorNotFound for foreign delete, got %v", err)
    }

    // Владелец все еще видит задачу нетронутой
    mine, err := repo.ListByOwner(ctx, "user-a")
    if err != nil {
        t.Fatal(err)
    }
    if len(mine) != 1 || mine[0].Title != "Private" {
        t.Errorf("owner's task should be intact, got %+v", mine)
    }
}

func TestTaskRepo_UpdatePartial(t *testing.T) {
    pool := setupTestDB(t)
    defer pool.Close()

    repo := NewTaskRepo(pool)
    ctx := context.Background()

    created, err := repo.Create(ctx, "user-a", model.Task{
        Title: "Original", Description: "keep me",
        Status: model.StatusPending, Priority: model.PriorityLow,
    })
    if err != nil {
        t.Fatal(err)
    }

    status := model.StatusInProgress
    updated, err := repo.Update(ctx, "user-a", created.ID, model.TaskPatch{Status: &status})
    if err != nil {
        t.Fatal(err)
    }

    if updated.Status != model.StatusInProgress {
        t.Errorf("expected status=in_progress, got %s", updated.Status)
    }
    if updated.Title != "Original" || updated.Description != "keep me" {
        t.Errorf("untouched fields must survive a partial update, got %+v", updated)
    }
}

func TestTaskRepo_DeleteIdempotent(t *testing.T) {
    pool := setupTestDB(t)
    defer pool.Close()

    repo := NewTaskRepo(pool)
    ctx := context.Background()

    created, err := repo.Create(ctx, "user-a", model.Task{
        Title: "Doomed", Status: model.StatusPending, Priority: model.PriorityMedium,
    })
    if err != nil {
        t.Fatal(err)
    }

    if err := repo.Delete(ctx, "user-a", created.ID); err != nil {
        t.Fatal(err)
    }
    if err := repo.Delete(ctx, "user-a", created.ID); !errors.Is(err, ErrorNotFound) {
        t.Errorf("second delete should be ErrorNotFound, got %v", err)
    }
}

func TestTaskRepo_ListInsertionOrder(t *testing.T) {
    pool := setupTestDB(t)
    defer pool.Close()

    repo := NewTaskRepo(pool)
    ctx := context.Background()

    titles := []string{"first", "second", "third"}
    for _, title := range titles {
        if _, err := repo.Create(ctx, "user-a", model.Task{
            Title: title, Status: model.StatusPending, Priority: model.PriorityMedium,
        }); err != nil {
            t.Fatal(err)
        }
    }

    tasks, err := repo.ListByOwner(ctx, "user-a")
    if err != nil {
        t.Fatal(err)
    }
    if len(tasks) != len(titles) {
        t.Fatalf("expected %d tasks, got %d", len(titles), len(tasks))
    }
    for i, title := range titles {
        if tasks[i].Title != title {
            t.Errorf("position %d: expected %s, got %s", i, title, tasks[i].Title)
        }
    }
}

func TestTaskRepo_StatsByOwner(t *testing.T) {
    pool := setupTestDB(t)
    defer pool.Close()

    repo := NewTaskRepo(pool)
    ctx := context.Background()

    for _, status := range []model.Status{
        model.StatusPending, model.StatusPending, model.StatusCompleted,
    } {
        if _, err := repo.Create(ctx, "user-a", model.Task{
            Title: "T", Status: status, Priority: model.PriorityMedium,
        }); err != nil {
            t.Fatal(err)
        }
    }
    // Задача другого пользователя в сводку не попадает
    if _, err := repo.Create(ctx, "user-b", model.Task{
        Title: "Other", Status: model.StatusPending, Priority: model.PriorityMedium,
    }); err != nil {
        t.Fatal(err)
    }

    stats, err := repo.StatsByOwner(ctx, "user-a")
    if err != nil {
        t.Fatal(err)
    }
    if stats.Total != 3 {
        t.Errorf("expected total=3, got %d", stats.Total)
    }
    if stats.ByStatus[model.StatusPending] != 2 {
        t.Errorf("expected 2 pending, got %d", stats.ByStatus[model.StatusPending])
    }
}
