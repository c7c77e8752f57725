package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/essaypilot/essaypilot/internal/config"
	"github.com/essaypilot/essaypilot/internal/models"
	"github.com/essaypilot/essaypilot/internal/sessions"
	"github.com/essaypilot/essaypilot/internal/users"
)

// fake user repo
type fakeUserRepo struct{}

func (f *fakeUserRepo) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

func (f *fakeUserRepo) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return &models.User{Sub: sub, Email: "a@b.c", Name: "Alice"}, nil
}

// fake sessions repo
type fakeSessionsRepo struct {
	store map[string]*sessions.Session
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *sessions.Session) error {
	if f.store == nil {
		f.store = map[string]*sessions.Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}

func (f *fakeSessionsRepo) GetByRefresh(ctx context.Context, refresh string) (*sessions.Session, error) {
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessionsRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.store, refresh)
	return nil
}

func newAuthTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "auth-test-secret-32-bytes-xxxxxx"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 7 * 24 * time.Hour
	return cfg
}

func TestLogin_PasswordGrantSuccess(t *testing.T) {
	// craft an id_token with payload claims
	claims := map[string]interface{}{"sub": "test-sub", "email": "a@b.c", "name": "Alice"}
	b, _ := json.Marshal(claims)
	idToken := "hdr." + base64.RawURLEncoding.EncodeToString(b) + ".sig"

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "password", r.Form.Get("grant_type"))
		require.Equal(t, "alice", r.Form.Get("username"))
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at", "id_token": idToken})
	}))
	defer tokenSrv.Close()

	cfg := newAuthTestConfig()
	cfg.OIDC.Issuer = tokenSrv.URL
	cfg.OIDC.ClientID = "cid"
	cfg.OIDC.ClientSecret = "csecret"

	h := NewAuthHandler(cfg, users.NewService(&fakeUserRepo{}), sessions.NewService(&fakeSessionsRepo{}))

	// the fake issuer has no discovery document, so allow payload-only parsing
	t.Setenv("ALLOW_INSECURE_TOKEN", "true")

	r := gin.New()
	h.Register(r.Group("/"))

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got["accessToken"])
	require.NotEmpty(t, got["refreshToken"])
	require.EqualValues(t, 900, got["expiresIn"])
}

func TestLogin_BadCredentials(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenSrv.Close()

	cfg := newAuthTestConfig()
	cfg.OIDC.Issuer = tokenSrv.URL

	h := NewAuthHandler(cfg, users.NewService(&fakeUserRepo{}), sessions.NewService(&fakeSessionsRepo{}))

	r := gin.New()
	h.Register(r.Group("/"))

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_Success(t *testing.T) {
	cfg := newAuthTestConfig()
	sSvc := sessions.NewService(&fakeSessionsRepo{})
	h := NewAuthHandler(cfg, users.NewService(&fakeUserRepo{}), sSvc)

	rt, err := sSvc.CreateSession(context.Background(), "sub-refresh", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)

	body := fmt.Sprintf(`{"refreshToken":%q}`, rt)
	req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got["accessToken"])
}

func TestRefresh_Invalid(t *testing.T) {
	cfg := newAuthTestConfig()
	h := NewAuthHandler(cfg, users.NewService(&fakeUserRepo{}), sessions.NewService(&fakeSessionsRepo{}))

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)

	req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(`{"refreshToken":"does-not-exist"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_BlacklistsAccessAndDeletesRefresh(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	sessions.SetBlacklistClient(client)
	defer sessions.SetBlacklistClient(nil)

	cfg := newAuthTestConfig()
	sSvc := sessions.NewService(&fakeSessionsRepo{})
	h := NewAuthHandler(cfg, users.NewService(&fakeUserRepo{}), sSvc)

	rt, err := sSvc.CreateSession(context.Background(), "sub-1", time.Hour)
	require.NoError(t, err)

	// craft an access token with exp in the future
	exp := time.Now().Add(2 * time.Minute).Unix()
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"sub":"sub-1","exp":%d}`, exp)))
	access := "hdr." + payload + ".sig"

	r := gin.New()
	h.Register(r.Group("/"))

	body := fmt.Sprintf(`{"refreshToken":%q}`, rt)
	req := httptest.NewRequest("POST", "/auth/logout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// refresh session should be deleted
	sess, err := sSvc.ValidateRefresh(context.Background(), rt)
	require.NoError(t, err)
	require.Nil(t, sess)

	// access token should be blacklisted in redis
	require.True(t, m.Exists("blacklist:access:"+access))
}

func TestParseExpFromJWT_VariousFormats(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"s1","exp":1700000000}`))
	expTime, err := parseExpFromJWT("hdr." + payload + ".sig")
	require.NoError(t, err)
	require.Equal(t, int64(1700000000), expTime.Unix())

	// missing exp
	nopayload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"s2"}`))
	_, err = parseExpFromJWT("hdr." + nopayload + ".sig")
	require.Error(t, err)

	// malformed token
	_, err = parseExpFromJWT("not-a-jwt")
	require.Error(t, err)
}
