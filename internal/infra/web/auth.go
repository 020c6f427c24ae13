package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/infra/logging"
	"companion-marketplace/internal/usecase"
)

// ===== Session/JWT primitives =====

type AuthManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewAuthManager(secret, issuer string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// ExplorerClaims is the token contract: Subject carries the account user id,
// FullName seeds the profile on first contact.
type ExplorerClaims struct {
	FullName string `json:"full_name"`
	Admin    bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

func (a *AuthManager) Mint(userID, fullName string, admin bool) (string, error) {
	now := time.Now()
	claims := ExplorerClaims{
		FullName: fullName,
		Admin:    admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*ExplorerClaims, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return nil, errors.New("missing token")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *AuthManager) parse(tok string) (*ExplorerClaims, error) {
	claims := &ExplorerClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// ===== Request principal =====

type principalKey struct{}

type principal struct {
	Explorer *model.Explorer
	Admin    bool
}

func principalFrom(ctx context.Context) (*principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*principal)
	return p, ok
}

// authenticate resolves the bearer token into an explorer profile, creating
// the profile on first contact.
func authenticate(auth *AuthManager, explorers usecase.ExplorerUseCase, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.ParseFromRequest(r)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			explorer, err := explorers.RegisterOrFetch(r.Context(), claims.Subject, claims.FullName)
			if err != nil {
				l := logging.With(r.Context(), logger)
				l.Error().Err(err).Str("user_id", claims.Subject).Msg("resolve explorer failed")
				writeMessage(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, &principal{Explorer: explorer, Admin: claims.Admin})
			ctx = logging.WithExplorerID(ctx, explorer.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok || !p.Admin {
			writeMessage(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
