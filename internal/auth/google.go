// Package auth implements the Google OAuth login flow. A successful
// callback mints the HS256 session token the rest of the API authenticates
// with; guests bypass this package entirely.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "interview-backend/internal/shared/auth"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/users"
)

const (
	stateTTL         = 5 * time.Minute
	userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleService drives the two-legged redirect dance with Google.
type GoogleService struct {
	conf       *oauth2.Config
	uiRedirect string
	states     *stateJar
	users      *users.Service
	now        func() time.Time
}

// NewGoogleService builds a GoogleService. The users service is optional;
// when present, successful logins upsert the profile row.
func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string, userSvc *users.Service) *GoogleService {
	return &GoogleService{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect: uiRedirect,
		states:     newStateJar(),
		users:      userSvc,
		now:        time.Now,
	}
}

// RegisterRoutes attaches the login entry point and the provider callback.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if s.conf.ClientID == "" || s.conf.ClientSecret == "" || s.conf.RedirectURL == "" {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	s.states.issue(state, s.now())
	c.Redirect(http.StatusFound, s.conf.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

func (s *GoogleService) callback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.redeem(state, s.now()) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}

	profile, err := s.loadProfile(ctx, token)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	userID := "google:" + profile.Sub
	s.persistProfile(c, userID, profile)

	jwt, err := sharedauth.SignJWT(sharedauth.Claims{
		Sub:     userID,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}

	target, err := appendToken(s.uiRedirect, jwt)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// persistProfile is best-effort: login proceeds when the row cannot be
// written and the identity endpoint falls back to token claims.
func (s *GoogleService) persistProfile(c *gin.Context, userID string, p googleProfile) {
	if s.users == nil {
		return
	}
	err := s.users.UpsertFromAuth(c.Request.Context(), users.User{
		ID:         userID,
		Email:      p.Email,
		FullName:   p.Name,
		GivenName:  p.GivenName,
		FamilyName: p.FamilyName,
		PictureURL: p.Picture,
	})
	if err != nil {
		telemetry.Error("auth.user_upsert_failed", map[string]any{
			"err":        err.Error(),
			"request_id": c.GetString("requestId"),
		})
	}
}

type googleProfile struct {
	Sub        string `json:"sub"`
	LegacyID   string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func (s *GoogleService) loadProfile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	resp, err := s.conf.Client(ctx, token).Get(userinfoEndpoint)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return googleProfile{}, err
	}
	if p.Sub == "" {
		// v2 userinfo payloads carry "id" instead of "sub".
		p.Sub = p.LegacyID
	}
	if p.Sub == "" {
		return googleProfile{}, errors.New("userinfo payload has no subject")
	}
	return p, nil
}

// stateJar tracks outstanding OAuth state tokens. Each is single-use and
// expires after stateTTL.
type stateJar struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

func newStateJar() *stateJar {
	return &stateJar{expires: make(map[string]time.Time)}
}

// issue registers a fresh state and prunes anything already expired, so
// abandoned logins do not accumulate.
func (j *stateJar) issue(state string, now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for s, exp := range j.expires {
		if now.After(exp) {
			delete(j.expires, s)
		}
	}
	j.expires[state] = now.Add(stateTTL)
}

// redeem removes the state and reports whether it was still live.
func (j *stateJar) redeem(state string, now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	exp, ok := j.expires[state]
	delete(j.expires, state)
	return ok && now.Before(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
