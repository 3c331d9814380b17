package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

// acceptableSkew tolerates clock drift between the token issuer and this server
const acceptableSkew = 10 * time.Second

// AuthUseCaseInterface authenticates API requests
type AuthUseCaseInterface interface {
	// Authenticate validates a bearer token and returns the user it belongs to
	Authenticate(ctx context.Context, token string) (*model.User, error)
	IsNoAuthn() bool
}

// AuthUseCase validates access tokens issued by an external identity
// provider. The token subject is the user ID.
type AuthUseCase struct {
	users    *UserUseCase
	keyOpt   jwt.ParseOption
	issuer   string
	audience string
	clock    func() time.Time
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithHMACSecret verifies HS256 signed tokens with secret
func WithHMACSecret(secret string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.keyOpt = jwt.WithKey(jwa.HS256, []byte(secret))
	}
}

// WithKeySet verifies tokens against the public keys of set
func WithKeySet(set jwk.Set) AuthOption {
	return func(uc *AuthUseCase) {
		uc.keyOpt = jwt.WithKeySet(set)
	}
}

func WithIssuer(issuer string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.issuer = issuer
	}
}

func WithAudience(audience string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.audience = audience
	}
}

func WithAuthClock(clock func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.clock = clock
	}
}

func NewAuthUseCase(repo interfaces.Repository, options ...AuthOption) (*AuthUseCase, error) {
	uc := &AuthUseCase{
		clock: time.Now,
	}
	for _, opt := range options {
		opt(uc)
	}
	if uc.keyOpt == nil {
		return nil, goerr.New("either an HMAC secret or a key set is required for token validation")
	}
	uc.users = NewUserUseCase(repo, uc.clock)

	return uc, nil
}

// FetchKeySet downloads the identity provider's JWKS
func FetchKeySet(ctx context.Context, jwksURL string) (jwk.Set, error) {
	set, err := jwk.Fetch(ctx, jwksURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("url", jwksURL))
	}
	return set, nil
}

func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, goerr.Wrap(ErrUnauthorized, "token is empty")
	}

	opts := []jwt.ParseOption{
		uc.keyOpt,
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(acceptableSkew),
		jwt.WithClock(jwt.ClockFunc(uc.clock)),
	}
	if uc.issuer != "" {
		opts = append(opts, jwt.WithIssuer(uc.issuer))
	}
	if uc.audience != "" {
		opts = append(opts, jwt.WithAudience(uc.audience))
	}

	parsed, err := jwt.ParseString(token, opts...)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthorized, "invalid token", goerr.V("reason", err.Error()))
	}

	sub := parsed.Subject()
	if sub == "" {
		return nil, goerr.Wrap(ErrUnauthorized, "token has no subject")
	}

	var email string
	if v, ok := parsed.Get("email"); ok {
		email, _ = v.(string)
	}

	return uc.users.EnsureUser(ctx, types.UserID(sub), email)
}

func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}
