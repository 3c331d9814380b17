package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/usecase"
	"github.com/secmon-lab/quadrant/pkg/utils/safe"
)

type todoResponse struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Body            string      `json:"body,omitempty"`
	Status          string      `json:"status"`
	Deadline        *model.Date `json:"deadline"`
	Overdue         bool        `json:"overdue"`
	ImportanceScore float64     `json:"importance_score"`
	CreatedVia      string      `json:"created_via"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func newTodoResponse(t *model.Todo, now time.Time) todoResponse {
	return todoResponse{
		ID:              t.ID.String(),
		Title:           t.Title,
		Body:            t.Body,
		Status:          t.Status.Normalize().String(),
		Deadline:        t.Deadline,
		Overdue:         t.IsOverdue(now),
		ImportanceScore: t.ImportanceScore,
		CreatedVia:      t.CreatedVia.String(),
		CompletedAt:     t.CompletedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func todoIDParam(r *http.Request) types.TodoID {
	return types.TodoID(chi.URLParam(r, "todo_id"))
}

func listTodosHandler(todoUC *usecase.TodoUseCase, clock func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var status *types.TodoStatus
		if v := r.URL.Query().Get("status"); v != "" {
			s, err := types.ParseTodoStatus(v)
			if err != nil {
				handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, err.Error()))
				return
			}
			status = &s
		}

		todos, err := todoUC.List(ctx, userFromContext(ctx).ID, status)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		now := clock()
		resp := make([]todoResponse, 0, len(todos))
		for _, t := range todos {
			resp = append(resp, newTodoResponse(t, now))
		}
		safe.WriteJSON(ctx, w, http.StatusOK, map[string]any{"todos": resp})
	}
}

func createTodoHandler(todoUC *usecase.TodoUseCase, clock func() time.Time) http.HandlerFunc {
	type request struct {
		Title    string      `json:"title"`
		Body     string      `json:"body"`
		Deadline *model.Date `json:"deadline"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		todo, err := todoUC.Create(ctx, userFromContext(ctx).ID, usecase.TodoInput{
			Title:    req.Title,
			Body:     req.Body,
			Deadline: req.Deadline,
		})
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusCreated, newTodoResponse(todo, clock()))
	}
}

func getTodoHandler(todoUC *usecase.TodoUseCase, clock func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		todo, err := todoUC.Get(ctx, userFromContext(ctx).ID, todoIDParam(r))
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, newTodoResponse(todo, clock()))
	}
}

func updateTodoHandler(todoUC *usecase.TodoUseCase, clock func() time.Time) http.HandlerFunc {
	// An empty deadline string clears the deadline
	type request struct {
		Title    *string `json:"title"`
		Body     *string `json:"body"`
		Deadline *string `json:"deadline"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		patch := usecase.TodoPatch{Title: req.Title, Body: req.Body}
		if req.Deadline != nil {
			if *req.Deadline == "" {
				patch.ClearDeadline = true
			} else {
				d, err := model.ParseDate(*req.Deadline)
				if err != nil {
					handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, err.Error()))
					return
				}
				patch.Deadline = &d
			}
		}

		todo, err := todoUC.Update(ctx, userFromContext(ctx).ID, todoIDParam(r), patch)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, newTodoResponse(todo, clock()))
	}
}

func deleteTodoHandler(todoUC *usecase.TodoUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := todoUC.Delete(ctx, userFromContext(ctx).ID, todoIDParam(r)); err != nil {
			handleError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func completeTodoHandler(todoUC *usecase.TodoUseCase, clock func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		todo, err := todoUC.Complete(ctx, userFromContext(ctx).ID, todoIDParam(r))
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, newTodoResponse(todo, clock()))
	}
}

func reopenTodoHandler(todoUC *usecase.TodoUseCase, clock func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		todo, err := todoUC.Reopen(ctx, userFromContext(ctx).ID, todoIDParam(r))
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, newTodoResponse(todo, clock()))
	}
}

func compareTodosHandler(todoUC *usecase.TodoUseCase, clock func() time.Time) http.HandlerFunc {
	type request struct {
		WinnerID string `json:"winner_id"`
		LoserID  string `json:"loser_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		winner, loser, err := todoUC.Compare(ctx, userFromContext(ctx).ID, types.TodoID(req.WinnerID), types.TodoID(req.LoserID))
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		now := clock()
		safe.WriteJSON(ctx, w, http.StatusOK, map[string]todoResponse{
			"winner": newTodoResponse(winner, now),
			"loser":  newTodoResponse(loser, now),
		})
	}
}

type dailyCompletionResponse struct {
	Date  model.Date `json:"date"`
	Count int        `json:"count"`
}

type completionReportResponse struct {
	From           model.Date                `json:"from"`
	To             model.Date                `json:"to"`
	Days           []dailyCompletionResponse `json:"days"`
	TotalCompleted int                       `json:"total_completed"`
	ByCreatedVia   map[string]int            `json:"by_created_via"`
}

func completionReportHandler(todoUC *usecase.TodoUseCase, clock func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		to := model.DateOf(clock())
		from := to.AddDays(-(defaultReportDays - 1))
		for name, dst := range map[string]*model.Date{"from": &from, "to": &to} {
			v := r.URL.Query().Get(name)
			if v == "" {
				continue
			}
			d, err := model.ParseDate(v)
			if err != nil {
				handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, err.Error()))
				return
			}
			*dst = d
		}

		report, err := todoUC.Report(ctx, userFromContext(ctx).ID, from, to)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		resp := completionReportResponse{
			From:           report.From,
			To:             report.To,
			Days:           make([]dailyCompletionResponse, 0, len(report.Days)),
			TotalCompleted: report.TotalCompleted,
			ByCreatedVia:   make(map[string]int, len(report.ByCreatedVia)),
		}
		for _, d := range report.Days {
			resp.Days = append(resp.Days, dailyCompletionResponse{Date: d.Date, Count: d.Count})
		}
		for via, n := range report.ByCreatedVia {
			resp.ByCreatedVia[via.String()] = n
		}
		safe.WriteJSON(ctx, w, http.StatusOK, resp)
	}
}
