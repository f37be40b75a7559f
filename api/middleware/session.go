package middleware

import (
	"net/http"

	"github.com/angelmondragon/luxehome-backend/api/responses"
	"github.com/angelmondragon/luxehome-backend/pkg/auth/session"
	"github.com/angelmondragon/luxehome-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
)

// Session attaches the storefront session that owns the cart. The id is read
// from the session header or cookie, refreshed, and echoed back on both.
func Session(resolver session.Resolver, cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(cfg.Header)
			if presented == "" {
				if cookie, err := r.Cookie(cfg.CookieName); err == nil {
					presented = cookie.Value
				}
			}

			sessionID, created, err := resolver.Resolve(r.Context(), presented)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve session"))
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(resolver.TTL().Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(cfg.Header, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
				if created {
					logg.Debug(ctx, "session.created")
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
