package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/cinelog/cinelog/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// requireUser verifies the bearer token, provisions the profile row on first
// contact, and stores the acting identity in the request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}

		identity, err := s.verifier.Verify(token)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}

		if _, err := s.repo.Profiles.Ensure(r.Context(), identity.UserID, identity.Username); err != nil {
			s.logger.Printf("provision profile for %s: %v", identity.UserID, err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve user profile")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFrom returns the acting identity stored by requireUser.
func identityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

// verifyAdmin checks the static admin token used for catalog ingestion.
func (s *Server) verifyAdmin(header string) bool {
	token, ok := bearerToken(header)
	return ok && token == s.cfg.AdminToken
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}
