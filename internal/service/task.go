package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) List(ctx context.Context, owner string) ([]model.Task, error) {
	return s.repo.ListByOwner(ctx, owner)
}

func (s *TaskService) Create(ctx context.Context, owner string, t model.Task) (model.Task, error) {
	// Пустые enum-поля добиваем дефолтами, как делал бы UI формы
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}

	if err := s.validate(t); err != nil { // Валидация модели на корректность введенных данных
		return t, err
	}

	return s.repo.Create(ctx, owner, t)
}

func (s *TaskService) Update(ctx context.Context, owner, id string, patch model.TaskPatch) (model.Task, error) {
	if err := s.validatePatch(patch); err != nil {
		return model.Task{}, err
	}
	return s.repo.Update(ctx, owner, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, owner, id string) error {
	return s.repo.Delete(ctx, owner, id)
}

func (s *TaskService) Stats(ctx context.Context, owner string) (repo.Stats, error) {
	return s.repo.StatsByOwner(ctx, owner)
}

func (s *TaskService) validate(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrValidation
	}
	if !t.Status.Valid() {
		return ErrValidation
	}
	if !t.Priority.Valid() {
		return ErrValidation
	}
	return nil
}

func (s *TaskService) validatePatch(p model.TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrValidation
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrValidation
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ErrValidation
	}
	return nil
}
