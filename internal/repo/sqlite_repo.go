package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/RomanPilyushin/Privatbank/internal/domain"
)

// SQLiteTaskRepo is the embedded fallback store, used when Postgres is not
// configured or unreachable at startup. Same contract as PGTaskRepo.
type SQLiteTaskRepo struct {
	db *sql.DB
}

func NewSQLiteTaskRepo(db *sql.DB) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status) VALUES (?, ?, ?)`,
		t.Title, t.Description, t.Status)
	if err != nil {
		return domain.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, err
	}
	t.ID = id
	return t, nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id int64) (domain.Task, error) {
	var t domain.Task
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, status FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, ErrNotFound
	}
	return t, err
}

func (r *SQLiteTaskRepo) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, status FROM tasks ORDER BY id`)
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

func (r *SQLiteTaskRepo) Update(ctx context.Context, id int64, patch domain.Task) (domain.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ? WHERE id = ?`,
		patch.Title, patch.Description, patch.Status, id)
	if err != nil {
		return domain.Task{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Task{}, err
	}
	if n == 0 {
		return domain.Task{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return err
}

func (r *SQLiteTaskRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}

func (r *SQLiteTaskRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE title = ?)`, title).Scan(&exists)
	return exists, err
}
