package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/joinfdhs/regportal/internal/domain/rbac"
	"github.com/joinfdhs/regportal/internal/ui/auth"
	"github.com/joinfdhs/regportal/internal/ui/middleware"
)

// withSession кладёт сессию в контекст запроса, как это делает Authorizer.
func withSession(r *http.Request, role rbac.Role) *http.Request {
	session := &auth.SessionData{
		Token:    "session-token",
		Username: "user@example.org",
		Role:     role,
		FullName: "Тестовый Пользователь",
	}
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeySession, session))
}

// countingGateway — фейковый шлюз, считающий запросы по путям.
type countingGateway struct {
	mu     sync.Mutex
	counts map[string]int
	inner  http.Handler
}

func newCountingGateway(inner http.Handler) *countingGateway {
	return &countingGateway{counts: map[string]int{}, inner: inner}
}

func (g *countingGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.counts[r.URL.Path]++
	g.mu.Unlock()
	g.inner.ServeHTTP(w, r)
}

func (g *countingGateway) count(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[path]
}

// adminGateway отвечает на все запросы кабинета администратора.
func adminGateway() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getRegistrationApplicationByStatus":
			json.NewEncoder(w).Encode(map[string]any{
				"userDetails": []map[string]any{
					{"data": map[string]any{
						"fullName": "Пётр Претендентов",
						"email":    "p@example.org",
						"userType": "Mentor",
					}},
				},
			})
		case "/registerUser":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"message": "User created"})
		case "/GetDataFromUsertype":
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"fullName": "Мария Менторова", "email": "m@example.org"},
				},
			})
		case "/getUserProfile":
			json.NewEncoder(w).Encode(map[string]any{
				"fullName":    "Тестовый Пользователь",
				"email":       "user@example.org",
				"phoneNumber": "9876543210",
			})
		default:
			http.NotFound(w, r)
		}
	})
}

// TestProcessApplication_SingleRefetch проверяет, что после обработки
// заявки список перечитывается ровно один раз.
func TestProcessApplication_SingleRefetch(t *testing.T) {
	counting := newCountingGateway(adminGateway())
	env := newTestEnv(t, counting)

	form := url.Values{"email": {"p@example.org"}, "status": {"approve"}}
	req := httptest.NewRequest(http.MethodPost, "/admin-dashboard/applications/process",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req = withSession(req, rbac.RoleAdmin)

	w := httptest.NewRecorder()
	env.dashboard.HandleProcessApplication(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Статус: want %d, got %d", http.StatusOK, w.Code)
	}
	if got := counting.count("/registerUser"); got != 1 {
		t.Errorf("Вызовов /registerUser: want 1, got %d", got)
	}
	if got := counting.count("/getRegistrationApplicationByStatus"); got != 1 {
		t.Errorf("Перечитываний списка: want ровно 1, got %d", got)
	}
	if !strings.Contains(w.Body.String(), "User created") {
		t.Error("Фрагмент должен содержать сообщение об успехе")
	}
}

// TestProcessApplication_Outcomes проверяет, что 200, 201 и 409 шлюза —
// не ошибки: таблица рендерится с соответствующим alert.
func TestProcessApplication_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantInBody string
	}{
		{"created", 201, "User created"},
		{"updated", 200, "User created"},
		{"conflict", 409, "уже зарегистрирован"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/registerUser" {
					w.WriteHeader(tt.status)
					json.NewEncoder(w).Encode(map[string]string{"message": "User created"})
					return
				}
				json.NewEncoder(w).Encode(map[string]any{"userDetails": []any{}})
			}))

			form := url.Values{"email": {"p@example.org"}, "status": {"deny"}}
			req := httptest.NewRequest(http.MethodPost, "/admin-dashboard/applications/process",
				strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.Header.Set("HX-Request", "true")
			req = withSession(req, rbac.RoleSuperAdmin)

			w := httptest.NewRecorder()
			env.dashboard.HandleProcessApplication(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Статус: want %d, got %d", http.StatusOK, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantInBody) {
				t.Errorf("Фрагмент должен содержать %q", tt.wantInBody)
			}
		})
	}
}

// TestProcessApplication_NoJS проверяет fallback без HTMX:
// обычный POST возвращает redirect на страницу заявок без перечитывания.
func TestProcessApplication_NoJS(t *testing.T) {
	counting := newCountingGateway(adminGateway())
	env := newTestEnv(t, counting)

	form := url.Values{"email": {"p@example.org"}, "status": {"approve"}}
	req := httptest.NewRequest(http.MethodPost, "/admin-dashboard/applications/process",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withSession(req, rbac.RoleAdmin)

	w := httptest.NewRecorder()
	env.dashboard.HandleProcessApplication(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("Статус: want %d, got %d", http.StatusFound, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin-dashboard?view=dashboard" {
		t.Errorf("Location: want %q, got %q", "/admin-dashboard?view=dashboard", loc)
	}
	// Перечитывание выполнит последующий GET кабинета
	if got := counting.count("/getRegistrationApplicationByStatus"); got != 0 {
		t.Errorf("Redirect-путь не должен перечитывать список, got %d", got)
	}
}

// TestProcessApplication_InvalidStatus проверяет отказ на статусе
// вне approve/deny: шлюз не вызывается.
func TestProcessApplication_InvalidStatus(t *testing.T) {
	counting := newCountingGateway(adminGateway())
	env := newTestEnv(t, counting)

	form := url.Values{"email": {"p@example.org"}, "status": {"maybe"}}
	req := httptest.NewRequest(http.MethodPost, "/admin-dashboard/applications/process",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req = withSession(req, rbac.RoleAdmin)

	w := httptest.NewRecorder()
	env.dashboard.HandleProcessApplication(w, req)

	if got := counting.count("/registerUser"); got != 0 {
		t.Errorf("Некорректный статус не должен уходить в шлюз, got %d вызовов", got)
	}
	if !strings.Contains(w.Body.String(), "Некорректный запрос") {
		t.Error("Фрагмент должен содержать сообщение об ошибке")
	}
}

// TestListings_LowercaseUserType проверяет значение query-параметра
// userType: шлюз ожидает его в нижнем регистре, а не в wire-формате роли.
func TestListings_LowercaseUserType(t *testing.T) {
	tests := []struct {
		name    string
		handler func(*DashboardHandler) http.HandlerFunc
		want    string
	}{
		{"mentors", func(h *DashboardHandler) http.HandlerFunc { return h.HandleMentorsPartial }, "mentor"},
		{"students", func(h *DashboardHandler) http.HandlerFunc { return h.HandleStudentsPartial }, "student"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserType string
			env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserType = r.URL.Query().Get("userType")
				json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
			}))

			req := httptest.NewRequest(http.MethodGet, "/admin-dashboard/partials/"+tt.name, nil)
			req = withSession(req, rbac.RoleAdmin)

			w := httptest.NewRecorder()
			tt.handler(env.dashboard)(w, req)

			if gotUserType != tt.want {
				t.Errorf("userType: want %q, got %q", tt.want, gotUserType)
			}
		})
	}
}

// TestAdminDashboard_MalformedListing проверяет политику деградации:
// не-массив в data — страница 200 с alert, а не 5xx.
func TestAdminDashboard_MalformedListing(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": "не-массив"})
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard?view=registeredUsers", nil)
	req = withSession(req, rbac.RoleAdmin)

	w := httptest.NewRecorder()
	env.dashboard.HandleAdminDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Статус: want %d (деградация до пустого), got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "Не удалось загрузить список") {
		t.Error("Страница должна содержать alert о неудачной загрузке")
	}
}

// TestAdminDashboard_IndependentTables проверяет независимость таблиц:
// отказ по менторам не мешает списку студентов.
func TestAdminDashboard_IndependentTables(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("userType") == "mentor" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"fullName": "Степан Студентов", "email": "s@example.org"},
			},
		})
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard?view=registeredUsers", nil)
	req = withSession(req, rbac.RoleAdmin)

	w := httptest.NewRecorder()
	env.dashboard.HandleAdminDashboard(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "Степан Студентов") {
		t.Error("Список студентов должен рендериться несмотря на отказ по менторам")
	}
	if !strings.Contains(body, "Не удалось загрузить список") {
		t.Error("Таблица менторов должна содержать alert")
	}
}

// TestProfileUpdate_ValidationBlocksGateway проверяет, что некорректная
// парольная тройка не доходит до шлюза.
func TestProfileUpdate_ValidationBlocksGateway(t *testing.T) {
	counting := newCountingGateway(adminGateway())
	env := newTestEnv(t, counting)

	form := url.Values{
		"fullName":    {"Тестовый Пользователь"},
		"phoneNumber": {"9876543210"},
		"oldPassword": {"старый-пароль"},
		// newPassword и confirmNewPassword пусты — тройка неполная
	}
	req := httptest.NewRequest(http.MethodPost, "/mentor-dashboard/profile",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withSession(req, rbac.RoleMentor)

	w := httptest.NewRecorder()
	env.dashboard.HandleMentorProfile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Статус: want %d, got %d", http.StatusOK, w.Code)
	}
	if got := counting.count("/UpdateMentorProfile"); got != 0 {
		t.Errorf("Невалидная форма не должна уходить в шлюз, got %d вызовов", got)
	}
}

// TestProfileUpdate_Success проверяет успешное обновление профиля
// с сообщением шлюза в alert.
func TestProfileUpdate_Success(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/UpdateStudentProfile" {
			json.NewEncoder(w).Encode(map[string]string{"message": "Profile updated successfully"})
			return
		}
		http.NotFound(w, r)
	}))

	form := url.Values{
		"fullName":    {"Степан Студентов"},
		"phoneNumber": {"9876543210"},
	}
	req := httptest.NewRequest(http.MethodPost, "/student-dashboard/profile",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withSession(req, rbac.RoleStudent)

	w := httptest.NewRecorder()
	env.dashboard.HandleStudentProfile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Статус: want %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "Profile updated successfully") {
		t.Error("Страница должна содержать сообщение шлюза об успехе")
	}
}
