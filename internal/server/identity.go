package server

import (
	"context"
	"net/http"
)

type contextKey int

const userInfoKey contextKey = iota

// UserInfo is the caller's identity. Without Tailscale every caller is the
// local user.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

var localUser = UserInfo{Login: "local", DisplayName: "Local User"}

// UserFromContext returns the identity attached by the identify middleware.
func UserFromContext(ctx context.Context) UserInfo {
	if u, ok := ctx.Value(userInfoKey).(UserInfo); ok {
		return u
	}
	return localUser
}

// identify resolves the tailnet user behind the request's remote address.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.ts == nil {
			next.ServeHTTP(w, r)
			return
		}
		who, err := s.ts.WhoIs(r.Context(), r.RemoteAddr)
		if err != nil || who == nil || who.UserProfile == nil {
			s.log.Warn("tailscale whois failed", "remote", r.RemoteAddr, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		u := UserInfo{Login: who.UserProfile.LoginName, DisplayName: who.UserProfile.DisplayName}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userInfoKey, u)))
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, UserFromContext(r.Context()))
}
