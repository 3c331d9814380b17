package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/usecase"
	"github.com/secmon-lab/quadrant/pkg/utils/errutil"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
)

type AuthUseCase = usecase.AuthUseCaseInterface

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const userKey contextKey = "user"

func contextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// userFromContext returns the authenticated user. Routes behind authMiddleware
// always have one.
func userFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// authMiddleware resolves the bearer token of the request to a user
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" && !authUC.IsNoAuthn() {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(usecase.ErrUnauthorized, "authorization header is missing"), http.StatusUnauthorized)
				return
			}

			user, err := authUC.Authenticate(ctx, token)
			if err != nil {
				errutil.HandleHTTP(ctx, w, err, statusOf(err))
				return
			}

			ctx = contextWithUser(ctx, user)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
