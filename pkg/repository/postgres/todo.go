package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

type todoRepository struct {
	pool *pgxpool.Pool
}

const todoColumns = `id, user_id, title, body, status, deadline, importance_score, created_via, completed_at, created_at, updated_at`

func scanTodo(row pgx.Row) (*model.Todo, error) {
	var t model.Todo
	var deadline *time.Time
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Body, &t.Status, &deadline,
		&t.ImportanceScore, &t.CreatedVia, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if deadline != nil {
		d := model.DateOf(*deadline)
		t.Deadline = &d
	}
	t.Status = t.Status.Normalize()
	return &t, nil
}

func deadlineArg(d *model.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time()
	return &t
}

func (r *todoRepository) Create(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	if err := todo.Validate(); err != nil {
		return nil, err
	}
	if todo.ID == "" {
		todo.ID = types.NewTodoID()
	}

	created, err := scanTodo(r.pool.QueryRow(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+todoColumns,
		todo.ID.String(), todo.UserID.String(), todo.Title, todo.Body, todo.Status.Normalize().String(),
		deadlineArg(todo.Deadline), todo.ImportanceScore, todo.CreatedVia.String(), todo.CompletedAt,
		todo.CreatedAt, todo.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "todo already exists", goerr.V("todo_id", todo.ID))
		}
		return nil, goerr.Wrap(err, "failed to create todo", goerr.V("todo_id", todo.ID))
	}
	return created, nil
}

func (r *todoRepository) Get(ctx context.Context, userID types.UserID, id types.TodoID) (*model.Todo, error) {
	t, err := scanTodo(r.pool.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND user_id = $2`, id.String(), userID.String()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get todo", goerr.V("todo_id", id))
	}
	return t, nil
}

func (r *todoRepository) List(ctx context.Context, userID types.UserID, opts ...interfaces.ListTodoOption) ([]*model.Todo, error) {
	cfg := interfaces.BuildListTodoConfig(opts...)

	where := []string{"user_id = $1"}
	args := []any{userID.String()}
	if s := cfg.Status(); s != nil {
		args = append(args, s.String())
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if since := cfg.CompletedSince(); since != nil {
		args = append(args, *since)
		where = append(where, fmt.Sprintf("completed_at >= $%d", len(args)))
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE `+strings.Join(where, " AND ")+
			` ORDER BY importance_score DESC, created_at`, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list todos", goerr.V("user_id", userID))
	}
	defer rows.Close()

	result := make([]*model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan todo")
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate todos")
	}
	return result, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	updated, err := scanTodo(r.pool.QueryRow(ctx, `
		UPDATE todos SET
			title = $3,
			body = $4,
			status = $5,
			deadline = $6,
			importance_score = $7,
			completed_at = $8,
			updated_at = $9
		WHERE id = $1 AND user_id = $2
		RETURNING `+todoColumns,
		todo.ID.String(), todo.UserID.String(), todo.Title, todo.Body, todo.Status.Normalize().String(),
		deadlineArg(todo.Deadline), todo.ImportanceScore, todo.CompletedAt, todo.UpdatedAt,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "todo not found", goerr.V("todo_id", todo.ID))
		}
		return nil, goerr.Wrap(err, "failed to update todo", goerr.V("todo_id", todo.ID))
	}
	return updated, nil
}

func (r *todoRepository) Delete(ctx context.Context, userID types.UserID, id types.TodoID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id.String(), userID.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete todo", goerr.V("todo_id", id))
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(interfaces.ErrNotFound, "todo not found", goerr.V("todo_id", id))
	}
	return nil
}
