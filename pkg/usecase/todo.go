package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
)

// maxReportDays bounds the range of a completion report
const maxReportDays = 366

type TodoUseCase struct {
	repo   interfaces.Repository
	clock  func() time.Time
	random func() float64
}

func NewTodoUseCase(repo interfaces.Repository, clock func() time.Time, random func() float64) *TodoUseCase {
	return &TodoUseCase{
		repo:   repo,
		clock:  clock,
		random: random,
	}
}

// TodoInput is a manually entered todo
type TodoInput struct {
	Title    string
	Body     string
	Deadline *model.Date
}

// TodoPatch holds the fields to change. Nil fields are left untouched;
// ClearDeadline removes the deadline.
type TodoPatch struct {
	Title         *string
	Body          *string
	Deadline      *model.Date
	ClearDeadline bool
}

// Create adds a manual todo with an initial importance derived from its deadline
func (uc *TodoUseCase) Create(ctx context.Context, userID types.UserID, input TodoInput) (*model.Todo, error) {
	return uc.create(ctx, userID, input, types.CreatedViaManual)
}

func (uc *TodoUseCase) create(ctx context.Context, userID types.UserID, input TodoInput, via types.CreatedVia) (*model.Todo, error) {
	now := uc.clock().UTC()
	todo := &model.Todo{
		ID:              types.NewTodoID(),
		UserID:          userID,
		Title:           strings.TrimSpace(input.Title),
		Body:            input.Body,
		Status:          types.TodoStatusOpen,
		Deadline:        input.Deadline,
		ImportanceScore: model.InitialImportance(input.Deadline, now, uc.random),
		CreatedVia:      via,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := todo.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(UserIDKey, userID))
	}

	created, err := uc.repo.Todo().Create(ctx, todo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create todo", goerr.V(UserIDKey, userID))
	}

	logging.From(ctx).Info("todo created",
		"todo_id", created.ID,
		"user_id", userID,
		"created_via", via,
		"importance", created.ImportanceScore,
	)
	return created, nil
}

// List returns the user's todos, open ones first, each group by importance
func (uc *TodoUseCase) List(ctx context.Context, userID types.UserID, status *types.TodoStatus) ([]*model.Todo, error) {
	var opts []interfaces.ListTodoOption
	if status != nil {
		opts = append(opts, interfaces.WithTodoStatus(*status))
	}

	todos, err := uc.repo.Todo().List(ctx, userID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list todos", goerr.V(UserIDKey, userID))
	}

	sort.SliceStable(todos, func(i, j int) bool {
		return todos[i].Status.Normalize() == types.TodoStatusOpen && todos[j].Status.Normalize() != types.TodoStatusOpen
	})
	return todos, nil
}

func (uc *TodoUseCase) Get(ctx context.Context, userID types.UserID, id types.TodoID) (*model.Todo, error) {
	todo, err := uc.repo.Todo().Get(ctx, userID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get todo", goerr.V(TodoIDKey, id))
	}
	if todo == nil {
		return nil, goerr.Wrap(ErrTodoNotFound, "todo not found", goerr.V(TodoIDKey, id), goerr.V(UserIDKey, userID))
	}
	return todo, nil
}

func (uc *TodoUseCase) Update(ctx context.Context, userID types.UserID, id types.TodoID, patch TodoPatch) (*model.Todo, error) {
	todo, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		todo.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Body != nil {
		todo.Body = *patch.Body
	}
	switch {
	case patch.ClearDeadline:
		todo.Deadline = nil
	case patch.Deadline != nil:
		d := *patch.Deadline
		todo.Deadline = &d
	}
	todo.UpdatedAt = uc.clock().UTC()

	if err := todo.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(TodoIDKey, id))
	}
	return uc.save(ctx, todo)
}

// Complete marks the todo done and stamps its completion time
func (uc *TodoUseCase) Complete(ctx context.Context, userID types.UserID, id types.TodoID) (*model.Todo, error) {
	return uc.setStatus(ctx, userID, id, types.TodoStatusDone)
}

// Reopen moves a done todo back to open
func (uc *TodoUseCase) Reopen(ctx context.Context, userID types.UserID, id types.TodoID) (*model.Todo, error) {
	return uc.setStatus(ctx, userID, id, types.TodoStatusOpen)
}

func (uc *TodoUseCase) setStatus(ctx context.Context, userID types.UserID, id types.TodoID, status types.TodoStatus) (*model.Todo, error) {
	todo, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if todo.Status.Normalize() == status {
		return todo, nil
	}

	updated := todo.WithStatus(status, uc.clock())
	return uc.save(ctx, &updated)
}

func (uc *TodoUseCase) Delete(ctx context.Context, userID types.UserID, id types.TodoID) error {
	if err := uc.repo.Todo().Delete(ctx, userID, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrTodoNotFound, "todo not found", goerr.V(TodoIDKey, id), goerr.V(UserIDKey, userID))
		}
		return goerr.Wrap(err, "failed to delete todo", goerr.V(TodoIDKey, id))
	}
	return nil
}

// Compare records that the user judged winner more important than loser and
// moves both importance scores with an Elo update
func (uc *TodoUseCase) Compare(ctx context.Context, userID types.UserID, winnerID, loserID types.TodoID) (*model.Todo, *model.Todo, error) {
	if winnerID == loserID {
		return nil, nil, goerr.Wrap(ErrSameTodoComparison, "invalid comparison", goerr.V(TodoIDKey, winnerID))
	}

	winner, err := uc.Get(ctx, userID, winnerID)
	if err != nil {
		return nil, nil, err
	}
	loser, err := uc.Get(ctx, userID, loserID)
	if err != nil {
		return nil, nil, err
	}

	now := uc.clock().UTC()
	winner.ImportanceScore, loser.ImportanceScore = model.EloUpdate(winner.ImportanceScore, loser.ImportanceScore)
	winner.UpdatedAt = now
	loser.UpdatedAt = now

	if winner, err = uc.save(ctx, winner); err != nil {
		return nil, nil, err
	}
	if loser, err = uc.save(ctx, loser); err != nil {
		return nil, nil, err
	}
	return winner, loser, nil
}

// Report aggregates todos completed between from and to, both inclusive
func (uc *TodoUseCase) Report(ctx context.Context, userID types.UserID, from, to model.Date) (*model.CompletionReport, error) {
	if to.Before(from) {
		return nil, goerr.Wrap(ErrInvalidInput, "report range ends before it starts",
			goerr.V("from", from), goerr.V("to", to))
	}
	if from.AddDays(maxReportDays).Before(to) {
		return nil, goerr.Wrap(ErrInvalidInput, "report range is too long",
			goerr.V("from", from), goerr.V("to", to), goerr.V("max_days", maxReportDays))
	}

	todos, err := uc.repo.Todo().List(ctx, userID,
		interfaces.WithTodoStatus(types.TodoStatusDone),
		interfaces.WithCompletedSince(from.Time()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list completed todos", goerr.V(UserIDKey, userID))
	}

	return model.BuildCompletionReport(from, to, todos), nil
}

func (uc *TodoUseCase) save(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	updated, err := uc.repo.Todo().Update(ctx, todo)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTodoNotFound, "todo not found", goerr.V(TodoIDKey, todo.ID))
		}
		return nil, goerr.Wrap(err, "failed to update todo", goerr.V(TodoIDKey, todo.ID))
	}
	return updated, nil
}
