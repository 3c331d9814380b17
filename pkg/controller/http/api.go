package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/usecase"
	"github.com/secmon-lab/quadrant/pkg/utils/safe"
)

// maxRequestBodySize bounds JSON request bodies of the REST API
const maxRequestBodySize = 64 << 10

// defaultReportDays is the report range when none is given
const defaultReportDays = 7

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "malformed request body", goerr.V("reason", err.Error()))
	}
	return nil
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	SlackUserID string `json:"slack_user_id,omitempty"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		SlackUserID: u.SlackUserID.String(),
	}
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		safe.WriteJSON(r.Context(), w, http.StatusOK, newUserResponse(userFromContext(r.Context())))
	}
}

func putSlackUserHandler(userUC *usecase.UserUseCase) http.HandlerFunc {
	type request struct {
		SlackUserID string `json:"slack_user_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		user, err := userUC.SetSlackUserID(ctx, userFromContext(ctx).ID, types.SlackUserID(req.SlackUserID))
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, newUserResponse(user))
	}
}

// connectionResponse never carries the access token
type connectionResponse struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	WorkspaceName string    `json:"workspace_name,omitempty"`
	TeamName      string    `json:"team_name,omitempty"`
	Scope         string    `json:"scope,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newConnectionResponse(c *model.SlackConnection) connectionResponse {
	return connectionResponse{
		ID:            c.ID.String(),
		WorkspaceID:   c.WorkspaceID.String(),
		WorkspaceName: c.WorkspaceName,
		TeamName:      c.TeamName,
		Scope:         c.Scope,
		CreatedAt:     c.CreatedAt,
	}
}

func listConnectionsHandler(connUC *usecase.ConnectionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		conns, err := connUC.List(ctx, userFromContext(ctx).ID)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		resp := make([]connectionResponse, 0, len(conns))
		for _, c := range conns {
			resp = append(resp, newConnectionResponse(c))
		}
		safe.WriteJSON(ctx, w, http.StatusOK, map[string]any{"connections": resp})
	}
}

func connectHandler(connUC *usecase.ConnectionUseCase) http.HandlerFunc {
	type request struct {
		Code        string `json:"code"`
		RedirectURI string `json:"redirect_uri"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		conn, err := connUC.Connect(ctx, userFromContext(ctx).ID, req.Code, req.RedirectURI)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, newConnectionResponse(conn))
	}
}

func disconnectHandler(connUC *usecase.ConnectionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := types.SlackConnectionID(chi.URLParam(r, "connection_id"))
		if err := connUC.Disconnect(ctx, userFromContext(ctx).ID, id); err != nil {
			handleError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// webhookResponse exposes the URL, never the secret
type webhookResponse struct {
	ID           string     `json:"id"`
	WebhookID    string     `json:"webhook_id"`
	ConnectionID string     `json:"connection_id"`
	URL          string     `json:"url"`
	IsActive     bool       `json:"is_active"`
	EventCount   int64      `json:"event_count"`
	LastEventAt  *time.Time `json:"last_event_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Message      string     `json:"message,omitempty"`
}

func newWebhookResponse(res *usecase.WebhookResult) webhookResponse {
	wh := res.Webhook
	return webhookResponse{
		ID:           wh.ID.String(),
		WebhookID:    wh.WebhookID.String(),
		ConnectionID: wh.SlackConnectionID.String(),
		URL:          res.URL,
		IsActive:     wh.IsActive,
		EventCount:   wh.EventCount,
		LastEventAt:  wh.LastEventAt,
		CreatedAt:    wh.CreatedAt,
		UpdatedAt:    wh.UpdatedAt,
		Message:      string(res.Outcome),
	}
}

func listWebhooksHandler(webhookUC *usecase.WebhookUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		results, err := webhookUC.List(ctx, userFromContext(ctx).ID)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		resp := make([]webhookResponse, 0, len(results))
		for _, res := range results {
			resp = append(resp, newWebhookResponse(res))
		}
		safe.WriteJSON(ctx, w, http.StatusOK, map[string]any{"webhooks": resp})
	}
}

func createWebhookHandler(webhookUC *usecase.WebhookUseCase) http.HandlerFunc {
	type request struct {
		ConnectionID string `json:"connection_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		res, err := webhookUC.CreateOrReactivate(ctx, userFromContext(ctx).ID, types.SlackConnectionID(req.ConnectionID))
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		status := http.StatusOK
		if res.Outcome == usecase.WebhookCreated {
			status = http.StatusCreated
		}
		safe.WriteJSON(ctx, w, status, newWebhookResponse(res))
	}
}

func deactivateWebhookHandler(webhookUC *usecase.WebhookUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := types.WebhookID(chi.URLParam(r, "webhook_id"))
		if err := webhookUC.Deactivate(ctx, id, userFromContext(ctx).ID); err != nil {
			handleError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type emojiSettingsBody struct {
	TodayEmoji    string `json:"today_emoji"`
	TomorrowEmoji string `json:"tomorrow_emoji"`
	LaterEmoji    string `json:"later_emoji"`
}

func getEmojiSettingsHandler(settingsUC *usecase.EmojiSettingsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s, err := settingsUC.Get(ctx, userFromContext(ctx).ID)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, emojiSettingsBody{
			TodayEmoji:    s.TodayEmoji,
			TomorrowEmoji: s.TomorrowEmoji,
			LaterEmoji:    s.LaterEmoji,
		})
	}
}

func putEmojiSettingsHandler(settingsUC *usecase.EmojiSettingsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req emojiSettingsBody
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		s, err := settingsUC.Put(ctx, userFromContext(ctx).ID, req.TodayEmoji, req.TomorrowEmoji, req.LaterEmoji)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, emojiSettingsBody{
			TodayEmoji:    s.TodayEmoji,
			TomorrowEmoji: s.TomorrowEmoji,
			LaterEmoji:    s.LaterEmoji,
		})
	}
}
