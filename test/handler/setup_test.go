package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/credoauth/credo/internal/handler"
	"github.com/credoauth/credo/internal/repo"
	"github.com/credoauth/credo/internal/service"
	"github.com/credoauth/credo/test/testutil"
)

type noopSender struct{}

func (noopSender) Send(to, subject, body string) error {
	return nil
}

type testEnv struct {
	router    http.Handler
	users     *repo.UserRepo
	emailOTPs *repo.EmailOTPRepo
	resets    *repo.PasswordResetRepo
}

func setupEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, cleanup := testutil.OpenTestDB(t)
	userRepo := repo.NewUserRepo(conn)
	emailOTPRepo := repo.NewEmailOTPRepo(conn)
	resetRepo := repo.NewPasswordResetRepo(conn)

	sender := noopSender{}
	verifyService := service.NewEmailVerificationService(userRepo, emailOTPRepo, sender)
	resetService := service.NewPasswordResetService(userRepo, resetRepo, sender)
	authService := service.NewAuthService(userRepo, verifyService, []byte("test-secret"), time.Hour)

	engine := gin.New()
	api := engine.Group("/api")
	handler.RegisterRoutes(api, handler.RouterDeps{
		Auth:         handler.NewAuthHandler(authService),
		Verification: handler.NewVerificationHandler(verifyService),
		Password:     handler.NewPasswordHandler(resetService),
		JWTSecret:    []byte("test-secret"),
	})

	env := &testEnv{
		router:    engine,
		users:     userRepo,
		emailOTPs: emailOTPRepo,
		resets:    resetRepo,
	}
	return env, cleanup
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func register(t *testing.T, env *testEnv, email, pw string) (token string) {
	t.Helper()
	resp := doJSON(t, env.router, http.MethodPost, "/api/register",
		map[string]string{"name": "Test User", "email": email, "password": pw}, "")
	require.Equal(t, http.StatusCreated, resp.Code)
	body := decodeBody(t, resp)
	token, _ = body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}
