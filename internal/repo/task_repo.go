package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RomanPilyushin/Privatbank/internal/domain"
)

// ErrNotFound is returned by GetByID and Update when no row matches the id.
// Both backends map their driver's no-rows error to this sentinel so callers
// never depend on pgx or database/sql directly.
var ErrNotFound = errors.New("task row not found")

// TaskRepo is the persistence gateway for tasks. Delete is idempotent at this
// layer: removing an absent row is not an error here, existence semantics are
// the service's job.
type TaskRepo interface {
	Create(ctx context.Context, t domain.Task) (domain.Task, error)
	GetByID(ctx context.Context, id int64) (domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	Update(ctx context.Context, id int64, patch domain.Task) (domain.Task, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	query := `
		INSERT INTO tasks (title, description, status)
		VALUES ($1, $2, $3)
		RETURNING id, title, description, status`
	var out domain.Task
	err := r.db.QueryRow(ctx, query, t.Title, t.Description, t.Status).Scan(
		&out.ID, &out.Title, &out.Description, &out.Status,
	)
	return out, err
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id int64) (domain.Task, error) {
	query := `
		SELECT id, title, description, status
		FROM tasks WHERE id = $1`
	var t domain.Task
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Task{}, ErrNotFound
	}
	return t, err
}

func (r *PGTaskRepo) List(ctx context.Context) ([]domain.Task, error) {
	// Insertion order; ids are assigned by a sequence so this is creation order.
	query := `
		SELECT id, title, description, status
		FROM tasks ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Update(ctx context.Context, id int64, patch domain.Task) (domain.Task, error) {
	query := `
		UPDATE tasks SET title = $2, description = $3, status = $4
		WHERE id = $1
		RETURNING id, title, description, status`
	var t domain.Task
	err := r.db.QueryRow(ctx, query, id, patch.Title, patch.Description, patch.Status).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Task{}, ErrNotFound
	}
	return t, err
}

func (r *PGTaskRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *PGTaskRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}

func (r *PGTaskRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE title = $1)`, title).Scan(&exists)
	return exists, err
}
