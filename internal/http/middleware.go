package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ctgpost/MarketingWebTools/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

type Sessions interface {
	Create(ctx context.Context) *session.Session
	Get(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionCtx loads the session named by the session_id URL parameter.
func SessionCtx(sessions Sessions, logger *zap.Logger) func(http.Handler) http.Handler {
	rs := newResponder(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "session_id")
			if id == "" {
				rs.respondError(w, http.StatusBadRequest, "invalid_session_id", "session_id is required")
				return
			}

			s, err := sessions.Get(r.Context(), id)
			if errors.Is(err, session.ErrSessionNotFound) {
				rs.respondError(w, http.StatusNotFound, "not_found", "session not found")
				return
			}
			if err != nil {
				rs.logger.Error("load session failed", zap.String("session_id", id), zap.Error(err))
				rs.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			ctx := withSession(r.Context(), s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

func withSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}
