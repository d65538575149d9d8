package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joinfdhs/regportal/internal/domain/rbac"
	"github.com/joinfdhs/regportal/internal/gateway"
	"github.com/joinfdhs/regportal/internal/ui/auth"
	"github.com/joinfdhs/regportal/internal/ui/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv — обработчики, собранные поверх фейкового шлюза.
type testEnv struct {
	gw         *gateway.Client
	sessionMgr *auth.SessionManager
	authorizer *middleware.Authorizer

	auth      *AuthHandler
	register  *RegisterHandler
	dashboard *DashboardHandler
}

// newTestEnv поднимает httptest-шлюз и собирает обработчики.
func newTestEnv(t *testing.T, gatewayHandler http.Handler) *testEnv {
	t.Helper()

	srv := httptest.NewServer(gatewayHandler)
	t.Cleanup(srv.Close)

	gw, err := gateway.New(srv.URL, "", testLogger())
	if err != nil {
		t.Fatalf("Ошибка создания клиента шлюза: %v", err)
	}

	sm, err := auth.NewSessionManager("test-secret-0123456789abcdef0123", false, time.Hour)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}

	return &testEnv{
		gw:         gw,
		sessionMgr: sm,
		authorizer: middleware.NewAuthorizer(sm, testLogger()),
		auth:       NewAuthHandler(gw, sm, testLogger()),
		register:   NewRegisterHandler(gw, testLogger()),
		dashboard:  NewDashboardHandler(gw, testLogger()),
	}
}

// sessionCookie выпускает валидный session cookie для роли.
func (e *testEnv) sessionCookie(t *testing.T, role rbac.Role) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	err := e.sessionMgr.SetSessionCookie(w, &auth.SessionData{
		Token:    "session-token",
		Username: "user@example.org",
		Role:     role,
		FullName: "Тестовый Пользователь",
	})
	if err != nil {
		t.Fatalf("Ошибка установки cookie: %v", err)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("Session cookie не найден")
	return nil
}

// sessionCookieFromResponse извлекает session cookie из ответа (nil — не установлен).
func sessionCookieFromResponse(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}
