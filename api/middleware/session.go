package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
)

const sessionHeader = "X-Booking-Session"

type contextKey string

const ctxSessionID contextKey = "booking_session_id"

// BookingSession resolves the caller's booking session. A missing or blank
// header mints a fresh session id, which is always echoed back so the
// storefront can persist it.
func BookingSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(sessionHeader)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionHeader, sessionID)

			ctx := context.WithValue(r.Context(), ctxSessionID, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the booking session id resolved by
// BookingSession, or "" outside its scope.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}
