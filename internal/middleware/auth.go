package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role identifies which side of the marketplace the caller is on.
type Role string

const (
	RolePassenger Role = "PASSENGER"
	RoleSailor    Role = "SAILOR"
)

// Actor is the authenticated caller extracted from the bearer token.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Claims is the JWT payload this API verifies. Token issuance lives in the
// auth system outside this service; we only parse and validate.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type actorContextKey struct{}

// ActorFrom returns the authenticated Actor stored by NewAuthHandler.
// The second return is false on routes that skipped authentication.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorContextKey{}).(Actor)
	return a, ok
}

// WithActor returns a context carrying the given Actor, exactly as
// NewAuthHandler would store it. Handler tests use this to bypass token
// verification without changing how handlers read their caller.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// NewAuthHandler returns a middleware that requires a valid
// `Authorization: Bearer <jwt>` header signed with secret (HS256).
// The token's subject is the actor id and the `role` claim must be
// PASSENGER or SAILOR. On success the Actor is stored in the request
// context for handlers to read via ActorFrom.
func NewAuthHandler(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			var claims Claims
			token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				unauthorized(w, "invalid subject claim")
				return
			}
			if claims.Role != RolePassenger && claims.Role != RoleSailor {
				unauthorized(w, "invalid role claim")
				return
			}

			actor := Actor{ID: id, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorContextKey{}, actor)))
		})
	}
}

// RequireRole returns a middleware that rejects authenticated callers whose
// role does not match. Wire it inside NewAuthHandler so the Actor is present.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			if actor.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": "forbidden", "message": "wrong role for this endpoint"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
