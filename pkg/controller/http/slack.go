package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	slackmodel "github.com/secmon-lab/quadrant/pkg/domain/model/slack"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/usecase"
	"github.com/secmon-lab/quadrant/pkg/utils/errutil"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
	"github.com/secmon-lab/quadrant/pkg/utils/safe"
)

const (
	slackTimestampHeader = "X-Slack-Request-Timestamp"
	slackSignatureHeader = "X-Slack-Signature"

	// Replay window, inclusive at both ends
	slackMaxTimestampSkew = 300

	// Slack event payloads are far smaller; anything larger is not from Slack
	maxSlackBodySize = 1 << 20
)

// VerifySlackRequest reports whether rawBody was signed by Slack with
// signingSecret at a time within five minutes of now. It never panics.
func VerifySlackRequest(header http.Header, rawBody []byte, signingSecret string, now time.Time) bool {
	return verifySlackSignature(signingSecret, header.Get(slackTimestampHeader), header.Get(slackSignatureHeader), rawBody, now) == nil
}

// verifySlackSignature verifies the Slack request signature
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte, now time.Time) error {
	if signingSecret == "" {
		return goerr.New("signing secret is not configured")
	}
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}
	if signature == "" {
		return goerr.New("missing signature")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	skew := now.Unix() - ts
	if skew > slackMaxTimestampSkew || skew < -slackMaxTimestampSkew {
		return goerr.New("timestamp out of range", goerr.V("timestamp", timestamp), goerr.V("now", now.Unix()))
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal handles a length mismatch by returning false
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware rejects requests not signed by Slack. The verified
// body is restored on the request for the next handler.
func SlackSignatureMiddleware(signingSecret string, clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSlackBodySize))
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			safe.Close(ctx, r.Body)

			if !VerifySlackRequest(r.Header, body, signingSecret, clock()) {
				logging.From(ctx).Warn("rejected slack request",
					"path", r.URL.Path,
					"has_timestamp", r.Header.Get(slackTimestampHeader) != "",
					"has_signature", r.Header.Get(slackSignatureHeader) != "",
					"has_secret", signingSecret != "",
					"body_size", len(body),
				)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// slackEventsHandler handles Events API requests addressed to one webhook
func slackEventsHandler(reactionUC *usecase.ReactionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		webhookID := types.WebhookID(chi.URLParam(r, "webhook_id"))

		// Read body (already verified by middleware)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
			return
		}

		payload, err := slackmodel.ParsePayload(body)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		resp, err := reactionUC.Accept(ctx, webhookID, payload)
		switch {
		case errors.Is(err, usecase.ErrWebhookNotFound):
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			return
		case errors.Is(err, usecase.ErrSlackUserNotConfigured):
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		case err != nil:
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		if resp.Challenge != "" {
			safe.WriteJSON(ctx, w, http.StatusOK, challengeResponse{Challenge: resp.Challenge})
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, okResponse{OK: true})
	}
}
