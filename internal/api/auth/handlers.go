// internal/api/auth/handlers.go
package auth

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/ratelimit"
)

const authQueryTimeout = 5 * time.Second

var (
	store      *appdb.DB
	tokens     *TokenIssuer
	limiter    *ratelimit.Limiter
	trustProxy bool
	initOnce   sync.Once
)

// Options configure the auth handlers.
type Options struct {
	Tokens     *TokenIssuer
	Limiter    *ratelimit.Limiter
	TrustProxy bool
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, opts Options) {
	if database == nil || opts.Tokens == nil {
		return
	}
	initOnce.Do(func() {
		store = database
		tokens = opts.Tokens
		limiter = opts.Limiter
		trustProxy = opts.TrustProxy
	})
}

// IssueToken signs a bearer token for user at the given token version with
// the configured issuer.
func IssueToken(user models.User, version int64) (string, error) {
	if tokens == nil {
		return "", errors.New("auth tokens not initialized")
	}
	return tokens.Issue(user, version)
}

// UserFromRequest resolves the bearer token on r into the current user. It
// returns nil without error when no token is sent. The role is read from the
// database so revoked admins lose access before their token expires, and
// tokens issued before the last password change are rejected.
func UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	header := r.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" {
		return nil, nil
	}
	raw, ok := BearerToken(header)
	if !ok {
		return nil, ErrInvalidToken
	}
	if tokens == nil || store == nil {
		return nil, errors.New("auth not initialized")
	}

	userID, claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	row, err := store.Queries.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if claims.Version != row.TokenVersion {
		return nil, ErrInvalidToken
	}

	return &authz.AuthUser{
		ID:    row.ID,
		Email: row.Email,
		Role:  models.Role(row.Role),
	}, nil
}

// POST /auth/register
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := store
	if database == nil || tokens == nil {
		logger.Error().Msg("Auth handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req models.RegisterRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := req.Normalize()
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy)
	if limiter != nil {
		if result := limiter.CheckRegister(ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("register", req.Email, ip, result.Reason)
			writeTooManyRequests(w, result.RetryAfter)
			return
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	var created dbgen.User
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		count, err := txdb.Queries.CountUsers(ctx)
		if err != nil {
			return err
		}
		role := models.RoleUser
		if count == 0 {
			role = models.RoleOwner
		}

		phone := req.Phone
		created, err = txdb.Queries.CreateUser(ctx, dbgen.CreateUserParams{
			Name:         req.Name,
			Email:        req.Email,
			Phone:        apiutil.ToNullString(&phone),
			PasswordHash: hash,
			Role:         string(role),
		})
		if err != nil {
			if appdb.IsUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "email is already registered", Err: err}
			}
			return err
		}
		return nil
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to register")
		return
	}
	if limiter != nil {
		limiter.RecordRegister(ip)
	}

	user := models.UserFromDB(created)
	token, err := tokens.Issue(user, created.TokenVersion)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue token")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	logger.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("User registered")
	if err := apiutil.WriteJSON(w, http.StatusCreated, models.AuthResponse{Token: token, User: user}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write register response")
	}
}

// POST /auth/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := store
	if database == nil || tokens == nil {
		logger.Error().Msg("Auth handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req models.LoginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy)
	if limiter != nil {
		if result := limiter.CheckLogin(email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("login", email, ip, result.Reason)
			writeTooManyRequests(w, result.RetryAfter)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	row, err := database.Queries.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Failed to load user for login")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	if err != nil || !VerifyPassword(row.PasswordHash, req.Password) {
		if limiter != nil && limiter.RecordLoginFailure(email, ip) {
			logger.Warn().Str("email", ratelimit.SanitizeIdentifier(email)).Msg("Login locked out after repeated failures")
		}
		apiutil.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if limiter != nil {
		limiter.ResetLogin(email)
	}

	user := models.UserFromDB(row)
	token, err := tokens.Issue(user, row.TokenVersion)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue token")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write login response")
	}
}

func writeTooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	apiutil.WriteError(w, http.StatusTooManyRequests, "too many attempts, try again later")
}
