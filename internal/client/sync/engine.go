package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/client/api"
	"github.com/BuzzLyutic/taskboard/internal/model"
)

// ErrTaskGone is surfaced when the server reports a task that no longer
// exists, or never was ours; the local copy has already been dropped.
var ErrTaskGone = errors.New("task no longer exists or not yours")

// Gateway is the server surface the engine needs. *api.Client satisfies it.
type Gateway interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, draft model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Engine owns the board cache. All mutations flow through board.apply, so
// every transition is a pure function of (cache, event).
type Engine struct {
	gateway Gateway
	logger  *zap.Logger

	mu      sync.Mutex
	board   board
	loadGen int
}

func NewEngine(gateway Gateway, logger *zap.Logger) *Engine {
	return &Engine{
		gateway: gateway,
		logger:  logger,
		board:   emptyBoard(),
	}
}

// Load replaces the whole cache with the server's task list. When loads
// overlap, the later-issued one wins: a response belonging to a superseded
// load is discarded even if it arrives last.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	e.loadGen++
	gen := e.loadGen
	e.mu.Unlock()

	tasks, err := e.gateway.ListTasks(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.loadGen {
		// Уже выдан более свежий load — этот результат устарел
		return nil
	}
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	e.board = e.board.apply(event{kind: evLoaded, tasks: tasks})
	return nil
}

// Create sends the draft and inserts the server-assigned task. On failure
// the cache is untouched.
func (e *Engine) Create(ctx context.Context, draft model.Task) (model.Task, error) {
	created, err := e.gateway.CreateTask(ctx, draft)
	if err != nil {
		return model.Task{}, err
	}

	e.mu.Lock()
	e.board = e.board.apply(event{kind: evCreated, task: created})
	e.mu.Unlock()
	return created, nil
}

// Update applies the server's returned task over the cached one. A 404
// means our copy was stale: it is dropped and ErrTaskGone returned.
func (e *Engine) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	updated, err := e.gateway.UpdateTask(ctx, id, patch)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			e.mu.Lock()
			e.board = e.board.apply(event{kind: evUpdateFailed, id: id, gone: true})
			e.mu.Unlock()
			return model.Task{}, ErrTaskGone
		}
		return model.Task{}, err
	}

	e.mu.Lock()
	e.board = e.board.apply(event{kind: evUpdated, task: updated})
	e.mu.Unlock()
	return updated, nil
}

// Delete removes the task locally once the server forgot it — including
// the case where it already had (404 is success for delete).
func (e *Engine) Delete(ctx context.Context, id string) error {
	err := e.gateway.DeleteTask(ctx, id)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return err
	}

	e.mu.Lock()
	e.board = e.board.apply(event{kind: evDeleted, id: id})
	e.mu.Unlock()
	return nil
}

// MoveToStatus is the drag-and-drop terminal drop. Same lane — nothing to
// do, no network call. Otherwise the task moves optimistically, the update
// goes out with the new status merged onto the last known fields, and the
// response settles the board: server task on success, removal on 404,
// rollback to the last-confirmed task on any other failure.
func (e *Engine) MoveToStatus(ctx context.Context, id string, status model.Status) error {
	e.mu.Lock()
	prev, ok := e.board.items[id]
	if !ok {
		e.mu.Unlock()
		return ErrTaskGone
	}
	if prev.Status == status {
		e.mu.Unlock()
		return nil
	}
	e.board = e.board.apply(event{kind: evMoveRequested, id: id, status: status})
	e.mu.Unlock()

	moved := prev
	moved.Status = status
	patch := model.TaskPatch{
		Title:       &moved.Title,
		Description: &moved.Description,
		Status:      &moved.Status,
		Priority:    &moved.Priority,
		StartDate:   moved.StartDate,
		EndDate:     moved.EndDate,
	}

	updated, err := e.gateway.UpdateTask(ctx, id, patch)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// Задачу успели удалить — убираем с доски, без отката
			e.board = e.board.apply(event{kind: evMoveSettled, task: model.Task{ID: id}, gone: true})
			return ErrTaskGone
		}
		e.logger.Warn("move rejected, rolling back", zap.String("task", id), zap.Error(err))
		e.board = e.board.apply(event{kind: evUpdateFailed, id: id, prev: prev})
		return err
	}

	e.board = e.board.apply(event{kind: evMoveSettled, task: updated})
	return nil
}

// Snapshot returns the cached tasks in arrival order.
func (e *Engine) Snapshot() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.snapshot()
}

// Lanes partitions the cache by status for board rendering.
func (e *Engine) Lanes() map[model.Status][]model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.lanes()
}

// Get returns the cached task by id.
func (e *Engine) Get(id string) (model.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.board.items[id]
	return t, ok
}
