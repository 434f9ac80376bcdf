package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/errs"
	"ticket-market/core/status"

	"github.com/golang-jwt/jwt/v5"
)

type actorCtxKey struct{}

// AccessClaims is the payload of the bearer token issued by the identity
// provider. Subject carries the user id.
type AccessClaims struct {
	Role           string `json:"role"`
	OrganizationID string `json:"org,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the bearer token into a status.Actor on the request
// context. Requests without a token pass through anonymously; a token that
// does not verify is rejected.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeErrorResponse(w, &errs.HttpError{Code: http.StatusUnauthorized, Message: "Unauthorized"})
				return
			}

			actor, err := parseAccessToken(raw, secret)
			if err != nil {
				slog.DebugContext(r.Context(), "rejected access token", common.ExtractTraceIDFromCtx(r.Context()),
					slog.Any(constant.LogFieldErr, err))
				writeErrorResponse(w, &errs.HttpError{Code: http.StatusUnauthorized, Message: "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorCtxKey{}, actor)))
		})
	}
}

func parseAccessToken(raw string, secret []byte) (status.Actor, error) {
	token, err := jwt.ParseWithClaims(raw, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return status.Actor{}, err
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return status.Actor{}, fmt.Errorf("invalid access token claims")
	}

	if claims.Subject == "" {
		return status.Actor{}, fmt.Errorf("access token has no subject")
	}

	return status.Actor{
		UserID:         claims.Subject,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
	}, nil
}

// requireActor writes a 401 and reports false when the request is anonymous.
func requireActor(w http.ResponseWriter, r *http.Request) (status.Actor, bool) {
	actor, ok := r.Context().Value(actorCtxKey{}).(status.Actor)
	if !ok {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusUnauthorized, Message: "Unauthorized"})
		return status.Actor{}, false
	}

	return actor, true
}

func withActor(r *http.Request, actor status.Actor) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), actorCtxKey{}, actor))
}
