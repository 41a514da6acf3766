package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"ommrepo/internal/session"
)

type discordUser struct {
	Username string `json:"username"`
}

type discordGuildMember struct {
	Roles []string `json:"roles"`
}

// statusError marks a non-2xx response from the Discord API.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("Discord returned status %d", e.code)
}

// handleAuthRedirect starts the OAuth flow by sending the browser to
// Discord's authorization endpoint.
func (s *Server) handleAuthRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.oauth.AuthCodeURL(uuid.NewString()), http.StatusSeeOther)
}

// handleAuthorized is the OAuth callback: it exchanges the code for an
// access token, fetches the user's profile and guild membership, checks
// the required role, and issues the session cookie.
func (s *Server) handleAuthorized(w http.ResponseWriter, r *http.Request) {

	code := r.URL.Query().Get("code")
	if code == "" {
		httpError(w, http.StatusBadRequest, errors.New("missing authorization code"))
		return
	}

	// Route the exchange through the injected client so tests can stub
	// the provider.
	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, s.client)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("failed to authorize: %w", err))
		return
	}

	var user discordUser
	if err := s.discordGet(r.Context(), "/users/@me", token.AccessToken, &user); err != nil {
		httpError(w, http.StatusInternalServerError, fmt.Errorf("failed to fetch Discord user: %w", err))
		return
	}

	var member discordGuildMember
	if err := s.discordGet(r.Context(), "/users/@me/guilds/"+s.cfg.DiscordGuildID+"/member", token.AccessToken, &member); err != nil {
		status := http.StatusInternalServerError
		var se *statusError
		if errors.As(err, &se) {
			// Not being a guild member is an authorization failure, not a
			// provider outage.
			status = http.StatusUnauthorized
		}
		httpError(w, status, fmt.Errorf("failed to fetch Discord guild member: %w", err))
		return
	}

	if !slices.Contains(member.Roles, s.cfg.DiscordGuildRoleID) {
		httpError(w, http.StatusUnauthorized, errors.New("user does not have the required guild role"))
		return
	}

	sessionToken, err := session.Issue(user.Username, s.cfg.JWTSecret, session.TTL)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	http.SetCookie(w, s.sessionCookie(sessionToken))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// discordGet performs an authenticated GET against the Discord API and
// decodes the JSON response into out.
func (s *Server) discordGet(ctx context.Context, path string, accessToken string, out any) error {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to request Discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse Discord response: %w", err)
	}

	return nil
}

func (s *Server) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.publicHost,
		SameSite: http.SameSiteLaxMode,
	}
}
