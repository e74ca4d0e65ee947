package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
)

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

const taskColumns = `id, owner_id, title, description, status, priority, start_date, end_date, created_at, updated_at`

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.StartDate, &t.EndDate, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TaskRepo) ListByOwner(ctx context.Context, owner string) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1
		ORDER BY seq
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create штампует owner_id вызывающего и выдает серверный id;
// что бы клиент ни прислал в этих полях — игнорируется.
func (r *TaskRepo) Create(ctx context.Context, owner string, t model.Task) (model.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, status, priority, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns+`
	`, uuid.NewString(), owner, t.Title, t.Description, t.Status, t.Priority, t.StartDate, t.EndDate))
}

// Update обновляет только задачу с совпадающей парой (id, owner_id).
// Чужая и несуществующая задачи неразличимы: обе дают ErrorNotFound.
func (r *TaskRepo) Update(ctx context.Context, owner, id string, patch model.TaskPatch) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title       = COALESCE($3, title),
		    description = COALESCE($4, description),
		    status      = COALESCE($5, status),
		    priority    = COALESCE($6, priority),
		    start_date  = COALESCE($7, start_date),
		    end_date    = COALESCE($8, end_date),
		    updated_at  = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns+`
	`, id, owner, patch.Title, patch.Description, patch.Status, patch.Priority, patch.StartDate, patch.EndDate))

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, owner, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND owner_id = $2", id, owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) StatsByOwner(ctx context.Context, owner string) (Stats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM tasks
		WHERE owner_id = $1
		GROUP BY status
	`, owner)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	stats := Stats{ByStatus: make(map[model.Status]int)}
	for rows.Next() {
		var status model.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
