package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/RomanPilyushin/Privatbank/internal/domain"
	"github.com/RomanPilyushin/Privatbank/internal/feed"
	"github.com/RomanPilyushin/Privatbank/internal/repo"
)

// Error messages double as the client-facing response text, so they are
// fixed strings rather than lowercase error fragments.
var (
	ErrTaskNotFound   = errors.New("Task not found")
	ErrDuplicateTitle = errors.New("Task with the same title already exists")
	ErrTaskLimit      = errors.New("Task limit reached. Cannot create more tasks.")
)

// maxTasks caps the total row count, checked at creation time only.
const maxTasks = 100

type TaskService struct {
	repo repo.TaskRepo
	feed *feed.Accumulator
	sf   singleflight.Group
}

// NewTaskService creates a TaskService. If f is nil, created tasks are not
// recorded to the feed.
func NewTaskService(r repo.TaskRepo, f *feed.Accumulator) *TaskService {
	return &TaskService{repo: r, feed: f}
}

// Create enforces the task cap and title uniqueness, inserts, and records the
// saved task into the feed. The feed record is a commit side effect: it only
// happens after the insert returned, so a failed insert leaves no trace.
func (s *TaskService) Create(ctx context.Context, title, description, status string) (domain.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	status = strings.TrimSpace(status)

	count, err := s.repo.Count(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	if count >= maxTasks {
		return domain.Task{}, ErrTaskLimit
	}

	exists, err := s.repo.ExistsByTitle(ctx, title)
	if err != nil {
		return domain.Task{}, err
	}
	if exists {
		return domain.Task{}, ErrDuplicateTitle
	}

	t, err := s.repo.Create(ctx, domain.Task{
		Title:       title,
		Description: description,
		Status:      status,
	})
	if err != nil {
		return domain.Task{}, err
	}
	if s.feed != nil {
		s.feed.Record(t)
	}
	return t, nil
}

// Delete checks existence first and fails with ErrTaskNotFound for unknown
// ids; the storage-level delete itself stays idempotent. Feed entries for the
// deleted task are kept.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

// UpdateStatus overwrites the status field only. Any non-empty string is
// accepted; status is a free-form label, not a state machine.
func (s *TaskService) UpdateStatus(ctx context.Context, id int64, status string) (domain.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	patch := existing
	patch.Status = strings.TrimSpace(status)
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return t, nil
}

// UpdateFields applies each non-nil field and leaves the rest untouched; an
// all-nil patch persists the task unchanged. Title uniqueness is not
// re-checked on update, so an update can introduce a duplicate title.
func (s *TaskService) UpdateFields(ctx context.Context, id int64, title, description, status *string) (domain.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	patch := existing
	if title != nil {
		patch.Title = strings.TrimSpace(*title)
	}
	if description != nil {
		patch.Description = strings.TrimSpace(*description)
	}
	if status != nil {
		patch.Status = strings.TrimSpace(*status)
	}
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return t, nil
}

// List returns every task in insertion order. Concurrent calls collapse into
// a single storage read; nothing is cached between calls.
func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	v, err, _ := s.sf.Do("list", func() (interface{}, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Task), nil
}
