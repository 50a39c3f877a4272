package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/coreybb/mylist/datastore"
	"github.com/coreybb/mylist/models"
	"github.com/coreybb/mylist/webutil"
)

var (
	ErrMissingAuthHeader   = errors.New("missing authorization header")
	ErrMalformedAuthHeader = errors.New("malformed authorization header")
	ErrUnsupportedScheme   = errors.New("unsupported authentication scheme")
	ErrUserNotFound        = errors.New("token subject has no account")
)

const bearerScheme = "bearer"

// UserLookup is the read-only view of the user store the gate needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// Gate turns a request's Authorization header into a verified user ID.
// It never mutates state.
type Gate struct {
	tokens *TokenService
	users  UserLookup
	logger *zap.Logger
}

func NewGate(tokens *TokenService, users UserLookup, logger *zap.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, logger: logger}
}

// ResolveCaller authenticates r and returns the caller's user ID.
func (g *Gate) ResolveCaller(r *http.Request) (int64, error) {
	header := r.Header.Get(webutil.HeaderAuthorization)
	if header == "" {
		return 0, ErrMissingAuthHeader
	}

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return 0, ErrMalformedAuthHeader
	}
	if !strings.EqualFold(parts[0], bearerScheme) {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parts[0])
	}

	userID, err := g.tokens.Validate(parts[1])
	if err != nil {
		return 0, err
	}

	if _, err := g.users.GetUserByID(r.Context(), userID); err != nil {
		if errors.Is(err, datastore.ErrUserNotFound) {
			return 0, fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
		}
		return 0, fmt.Errorf("failed to look up token subject %d: %w", userID, err)
	}
	return userID, nil
}

// Middleware rejects unauthenticated requests and stores the caller's ID
// in the request context for the handlers behind it.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := g.ResolveCaller(r)
		if err != nil {
			g.logger.Debug("Request rejected by auth gate",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			webutil.RespondWithAppError(w, r, ToHTTPError(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), userID)))
	})
}

// ToHTTPError maps gate and token failures to 401 responses. Other errors
// are returned unchanged.
func ToHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		return webutil.ErrUnauthorizedWrap(webutil.CodeMissingAuthHeader, "Missing Authorization header", err)
	case errors.Is(err, ErrMalformedAuthHeader):
		return webutil.ErrUnauthorizedWrap(webutil.CodeMalformedAuthHeader, "Invalid Authorization header format", err)
	case errors.Is(err, ErrUnsupportedScheme):
		return webutil.ErrUnauthorizedWrap(webutil.CodeUnsupportedScheme, "Invalid authentication scheme", err)
	case errors.Is(err, ErrTokenExpired):
		return webutil.ErrUnauthorizedWrap(webutil.CodeInvalidToken, "Token has expired", err)
	case errors.Is(err, ErrTokenInvalid):
		return webutil.ErrUnauthorizedWrap(webutil.CodeInvalidToken, "Problem decoding the access token", err)
	case errors.Is(err, ErrUserNotFound):
		return webutil.ErrUnauthorizedWrap(webutil.CodeUserNotFound, "User not found", err)
	default:
		return err
	}
}
