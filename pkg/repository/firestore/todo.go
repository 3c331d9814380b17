package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type todoRepository struct {
	base
}

type todoDoc struct {
	ID              string     `firestore:"id"`
	UserID          string     `firestore:"user_id"`
	Title           string     `firestore:"title"`
	Body            string     `firestore:"body"`
	Status          string     `firestore:"status"`
	Deadline        string     `firestore:"deadline"`
	ImportanceScore float64    `firestore:"importance_score"`
	CreatedVia      string     `firestore:"created_via"`
	CompletedAt     *time.Time `firestore:"completed_at"`
	CreatedAt       time.Time  `firestore:"created_at"`
	UpdatedAt       time.Time  `firestore:"updated_at"`
}

func toTodoDoc(t *model.Todo) *todoDoc {
	doc := &todoDoc{
		ID:              t.ID.String(),
		UserID:          t.UserID.String(),
		Title:           t.Title,
		Body:            t.Body,
		Status:          t.Status.Normalize().String(),
		ImportanceScore: t.ImportanceScore,
		CreatedVia:      t.CreatedVia.String(),
		CompletedAt:     t.CompletedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.Deadline != nil {
		doc.Deadline = t.Deadline.String()
	}
	return doc
}

func (d *todoDoc) toModel() (*model.Todo, error) {
	t := &model.Todo{
		ID:              types.TodoID(d.ID),
		UserID:          types.UserID(d.UserID),
		Title:           d.Title,
		Body:            d.Body,
		Status:          types.TodoStatus(d.Status).Normalize(),
		ImportanceScore: d.ImportanceScore,
		CreatedVia:      types.CreatedVia(d.CreatedVia),
		CompletedAt:     d.CompletedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.Deadline != "" {
		deadline, err := model.ParseDate(d.Deadline)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid stored deadline", goerr.V("todo_id", d.ID))
		}
		t.Deadline = &deadline
	}
	return t, nil
}

func decodeTodo(snap *firestore.DocumentSnapshot) (*model.Todo, error) {
	var doc todoDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode todo", goerr.V("doc_id", snap.Ref.ID))
	}
	return doc.toModel()
}

func (r *todoRepository) Create(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	if err := todo.Validate(); err != nil {
		return nil, err
	}
	if todo.ID == "" {
		todo.ID = types.NewTodoID()
	}

	doc := toTodoDoc(todo)
	if _, err := r.collection(CollectionTodos).Doc(doc.ID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "todo already exists", goerr.V("todo_id", todo.ID))
		}
		return nil, goerr.Wrap(err, "failed to create todo", goerr.V("todo_id", todo.ID))
	}
	return doc.toModel()
}

func (r *todoRepository) Get(ctx context.Context, userID types.UserID, id types.TodoID) (*model.Todo, error) {
	snap, err := r.collection(CollectionTodos).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get todo", goerr.V("todo_id", id))
	}

	t, err := decodeTodo(snap)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, nil
	}
	return t, nil
}

func (r *todoRepository) List(ctx context.Context, userID types.UserID, opts ...interfaces.ListTodoOption) ([]*model.Todo, error) {
	cfg := interfaces.BuildListTodoConfig(opts...)

	iter := r.collection(CollectionTodos).
		Where("user_id", "==", userID.String()).
		OrderBy("importance_score", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Todo, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate todos", goerr.V("user_id", userID))
		}

		t, err := decodeTodo(snap)
		if err != nil {
			return nil, err
		}
		if cfg.Match(t) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	ref := r.collection(CollectionTodos).Doc(todo.ID.String())
	var stored *model.Todo
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "todo not found", goerr.V("todo_id", todo.ID))
			}
			return goerr.Wrap(err, "failed to get todo", goerr.V("todo_id", todo.ID))
		}

		current, err := decodeTodo(snap)
		if err != nil {
			return err
		}
		if current.UserID != todo.UserID {
			return goerr.Wrap(interfaces.ErrNotFound, "todo not found", goerr.V("todo_id", todo.ID))
		}

		doc := toTodoDoc(todo)
		doc.CreatedAt = current.CreatedAt
		doc.CreatedVia = current.CreatedVia.String()
		if stored, err = doc.toModel(); err != nil {
			return err
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update todo", goerr.V("todo_id", todo.ID))
	}
	return stored, nil
}

func (r *todoRepository) Delete(ctx context.Context, userID types.UserID, id types.TodoID) error {
	existing, err := r.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return goerr.Wrap(interfaces.ErrNotFound, "todo not found", goerr.V("todo_id", id))
	}

	if _, err := r.collection(CollectionTodos).Doc(id.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete todo", goerr.V("todo_id", id))
	}
	return nil
}
