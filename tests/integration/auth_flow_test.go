// Package integration contains end-to-end tests that exercise the full
// HTTP API against an embedded SQLite database.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gwan-project/landing-auth/internal/auth"
	"github.com/gwan-project/landing-auth/internal/cache/memory"
	"github.com/gwan-project/landing-auth/internal/handler"
	"github.com/gwan-project/landing-auth/internal/lock"
	"github.com/gwan-project/landing-auth/internal/notification"
	"github.com/gwan-project/landing-auth/internal/repository/sqlite"
	"github.com/gwan-project/landing-auth/internal/service"
	"github.com/gwan-project/landing-auth/internal/storage/filesystem"
)

// testEnv is an in-process instance of the full API.
type testEnv struct {
	server *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	ctx := context.Background()

	db, err := sqlite.NewDB(ctx, sqlite.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
		JournalMode:  "WAL",
		BusyTimeout:  5000,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	store, err := filesystem.NewStore(t.TempDir(), "http://localhost/images", logger)
	require.NoError(t, err)

	cache := memory.NewCache()
	t.Cleanup(cache.Stop)
	locker := lock.NewMemoryLocker()

	// Codes are echoed in responses so the flow can be driven end to end
	// without a mail server.
	notifier := notification.NewRouter(
		notification.NewLogSender("email", logger),
		notification.NewLogSender("whatsapp", logger),
		logger,
	)

	tokens := auth.NewTokenManager("integration-test-secret-0123456789abcdef", "landing-auth-test", time.Hour)

	accounts := sqlite.NewAccountRepository(db)
	characters := sqlite.NewCharacterRepository(db)
	analyses := sqlite.NewAnalysisRepository(db)

	registrationSvc := service.NewRegistrationService(accounts, notifier, true, logger)
	activationSvc := service.NewActivationService(accounts, tokens, logger)
	loginSvc := service.NewLoginService(accounts, notifier, tokens, locker, true, logger)
	profileSvc := service.NewProfileService(accounts, characters, store, locker, logger)
	analysisSvc := service.NewAnalysisService(characters, analyses, nil, false, logger)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler: handler.NewAuthHandler(handler.AuthHandlerConfig{
			Registration: registrationSvc,
			Activation:   activationSvc,
			Login:        loginSvc,
			Profile:      profileSvc,
			Logger:       logger,
		}),
		UploadHandler: handler.NewUploadHandler(handler.UploadHandlerConfig{
			Profile:  profileSvc,
			Analysis: analysisSvc,
			Logger:   logger,
		}),
		HealthHandler: handler.NewHealthHandler(db, logger),
		Tokens:        tokens,
		MaxBodySize:   25 * 1024 * 1024,
		Logger:        logger,
	})

	server := httptest.NewServer(router.Handler())
	t.Cleanup(server.Close)

	return &testEnv{server: server, client: server.Client()}
}

// apiResponse mirrors the API envelope with data left raw.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) postJSON(t *testing.T, path, token string, body any) (*http.Response, apiResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(t, req)
}

func (e *testEnv) get(t *testing.T, path, token string) (*http.Response, apiResponse) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(t, req)
}

func (e *testEnv) postImage(t *testing.T, path, token, filename string) (*http.Response, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="image"; filename=%q`, filename)}
	header["Content-Type"] = []string{"image/png"}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return e.do(t, req)
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, apiResponse) {
	t.Helper()
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope apiResponse
	require.NoError(t, json.Unmarshal(raw, &envelope), "body: %s", raw)
	return resp, envelope
}

func decodeData(t *testing.T, envelope apiResponse, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func TestFullAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	// Register
	resp, envelope := env.postJSON(t, "/api/auth/register", "", map[string]string{
		"name":  "Alice Tan",
		"email": "alice@example.com",
		"phone": "+6281234567890",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, envelope.Success)

	var registered struct {
		User struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"user"`
		ActivationCode string `json:"activation_code"`
	}
	decodeData(t, envelope, &registered)
	require.Equal(t, "PENDING", registered.User.Status)
	require.Len(t, registered.ActivationCode, 6)

	// Activate with the echoed code
	resp, envelope = env.postJSON(t, "/api/auth/activate/"+registered.User.ID, "", map[string]string{
		"code": registered.ActivationCode,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session struct {
		User struct {
			Status string `json:"status"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decodeData(t, envelope, &session)
	require.Equal(t, "ACTIVATED", session.User.Status)
	require.NotEmpty(t, session.Token)

	// A second activation with the same code must fail
	resp, envelope = env.postJSON(t, "/api/auth/activate/"+registered.User.ID, "", map[string]string{
		"code": registered.ActivationCode,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.False(t, envelope.Success)

	// Request and validate a login code
	resp, envelope = env.postJSON(t, "/api/auth/login-request", "", map[string]string{
		"contact": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginIssued struct {
		Channel   string `json:"channel"`
		LoginCode string `json:"login_code"`
	}
	decodeData(t, envelope, &loginIssued)
	require.Equal(t, "email", loginIssued.Channel)
	require.Len(t, loginIssued.LoginCode, 6)

	resp, envelope = env.postJSON(t, "/api/auth/login-validate", "", map[string]string{
		"contact": "alice@example.com",
		"code":    loginIssued.LoginCode,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, envelope, &session)
	require.NotEmpty(t, session.Token)
	token := session.Token

	// The login code is single use
	resp, _ = env.postJSON(t, "/api/auth/login-validate", "", map[string]string{
		"contact": "alice@example.com",
		"code":    loginIssued.LoginCode,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Me reflects the live status
	resp, envelope = env.get(t, "/api/auth/me", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		User struct {
			Status string `json:"status"`
			Email  string `json:"email"`
		} `json:"user"`
	}
	decodeData(t, envelope, &me)
	require.Equal(t, "ACTIVATED", me.User.Status)
	require.Equal(t, "alice@example.com", me.User.Email)

	// Upload a character image
	resp, envelope = env.postImage(t, "/api/upload/character", token, "hero.png")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var character struct {
		ID       string `json:"id"`
		ImageURL string `json:"image_url"`
	}
	decodeData(t, envelope, &character)
	require.NotEmpty(t, character.ImageURL)

	// Re-upload replaces the same character
	resp, envelope = env.postImage(t, "/api/upload/character", token, "hero-v2.png")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var replaced struct {
		ID string `json:"id"`
	}
	decodeData(t, envelope, &replaced)
	require.Equal(t, character.ID, replaced.ID)

	// Complete the profile
	resp, envelope = env.postImage(t, "/api/auth/complete-profile", token, "profile.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var completed struct {
		User struct {
			Status string `json:"status"`
		} `json:"user"`
		ProfileImageURL string `json:"profile_image_url"`
	}
	decodeData(t, envelope, &completed)
	require.Equal(t, "COMPLETED", completed.User.Status)
	require.NotEmpty(t, completed.ProfileImageURL)

	// Analysis is disabled in this environment
	resp, _ = env.postJSON(t, "/api/upload/character/process", token, map[string]string{})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthFlowRejections(t *testing.T) {
	env := newTestEnv(t)

	// Duplicate registration
	register := map[string]string{
		"name":  "Bob Lim",
		"email": "bob@example.com",
		"phone": "+6287712345678",
	}
	resp, _ := env.postJSON(t, "/api/auth/register", "", register)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, envelope := env.postJSON(t, "/api/auth/register", "", register)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.False(t, envelope.Success)

	// Login before activation
	resp, _ = env.postJSON(t, "/api/auth/login-request", "", map[string]string{
		"contact": "bob@example.com",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong login code shape
	resp, _ = env.postJSON(t, "/api/auth/login-validate", "", map[string]string{
		"contact": "bob@example.com",
		"code":    "abc",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Protected endpoints require a token
	resp, _ = env.get(t, "/api/auth/me", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.get(t, "/api/upload/character", "invalid-token")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Health endpoints are open
	resp, _ = env.get(t, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.get(t, "/ready", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
