package repo

import (
	"context"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// TaskRepository определяет интерфейс хранилища задач.
// Каждая операция явно параметризована владельцем: чужие задачи
// невозможно ни прочитать, ни изменить.
type TaskRepository interface {
	ListByOwner(ctx context.Context, owner string) ([]model.Task, error)
	Create(ctx context.Context, owner string, t model.Task) (model.Task, error)
	Update(ctx context.Context, owner, id string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, owner, id string) error
	StatsByOwner(ctx context.Context, owner string) (Stats, error)
}

// Stats — сводка по доске владельца.
type Stats struct {
	ByStatus map[model.Status]int `json:"byStatus"`
	Total    int                  `json:"total"`
}
