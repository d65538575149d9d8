package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joinfdhs/regportal/internal/domain/rbac"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "", testLogger())
	if err != nil {
		t.Fatalf("Ошибка создания клиента: %v", err)
	}
	return c, srv
}

// TestLogin_Success проверяет успешный логин и выбор endpoint по роли.
func TestLogin_Success(t *testing.T) {
	tests := []struct {
		role         rbac.Role
		wantEndpoint string
	}{
		{rbac.RoleAdmin, "/Login"},
		{rbac.RoleSuperAdmin, "/Login"},
		{rbac.RoleMentor, "/Login"},
		{rbac.RoleStudent, "/LOGINSTUDENT"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			var gotPath string
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path

				var body map[string]string
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("Ошибка декодирования тела запроса: %v", err)
				}
				if body["username"] != "user@example.org" || body["password"] != "секрет" {
					t.Errorf("Неожиданное тело запроса: %v", body)
				}

				json.NewEncoder(w).Encode(map[string]any{
					"idToken":     "token-abc",
					"username":    "user@example.org",
					"userType":    tt.role.String(),
					"fullName":    "Тестовый Пользователь",
					"isFirstTime": true,
				})
			}))

			result, err := c.Login(context.Background(), tt.role, "user@example.org", "секрет")
			if err != nil {
				t.Fatalf("Login вернул ошибку: %v", err)
			}

			if gotPath != tt.wantEndpoint {
				t.Errorf("Endpoint: want %q, got %q", tt.wantEndpoint, gotPath)
			}
			if result.IDToken != "token-abc" {
				t.Errorf("IDToken: want %q, got %q", "token-abc", result.IDToken)
			}
			if !result.IsFirstTime {
				t.Error("IsFirstTime должен быть true")
			}
		})
	}
}

// TestLogin_KnownStatuses проверяет, что ошибочные статусы логина
// возвращаются как *StatusError с серверным сообщением.
func TestLogin_KnownStatuses(t *testing.T) {
	for _, status := range []int{401, 402, 404, 212, 500} {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"message": "отказ шлюза"})
		}))

		_, err := c.Login(context.Background(), rbac.RoleAdmin, "u", "p")
		if err == nil {
			t.Fatalf("статус %d: ожидалась ошибка", status)
		}

		se := AsStatusError(err)
		if se == nil {
			t.Fatalf("статус %d: ожидался *StatusError, получено %v", status, err)
		}
		if se.StatusCode != status {
			t.Errorf("StatusCode: want %d, got %d", status, se.StatusCode)
		}
		if se.Message != "отказ шлюза" {
			t.Errorf("Message: want %q, got %q", "отказ шлюза", se.Message)
		}
	}
}

// TestLogin_MissingFields проверяет, что ответ 200 без обязательных полей — ошибка.
func TestLogin_MissingFields(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Нет idToken
		json.NewEncoder(w).Encode(map[string]string{
			"username": "u", "userType": "Admin", "fullName": "X",
		})
	}))

	_, err := c.Login(context.Background(), rbac.RoleAdmin, "u", "p")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Ожидался ErrMalformedResponse, получено: %v", err)
	}
}

// TestRawTokenHeader проверяет, что Authorization несёт сырой токен без схемы.
func TestRawTokenHeader(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))

	if _, err := c.UsersByType(context.Background(), "raw-token-123", "mentor"); err != nil {
		t.Fatalf("UsersByType вернул ошибку: %v", err)
	}

	if gotAuth != "raw-token-123" {
		t.Errorf("Authorization: want %q, got %q", "raw-token-123", gotAuth)
	}
	if strings.HasPrefix(gotAuth, "Bearer") {
		t.Error("Authorization не должен содержать схему Bearer")
	}
}

// TestUsersByType_Success проверяет разбор списка пользователей.
func TestUsersByType_Success(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/GetDataFromUsertype" {
			t.Errorf("Путь: want /GetDataFromUsertype, got %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("userType")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"fullName": "Мария Менторова", "email": "m@example.org", "userType": "Mentor"},
			},
		})
	}))

	users, err := c.UsersByType(context.Background(), "t", "mentor")
	if err != nil {
		t.Fatalf("UsersByType вернул ошибку: %v", err)
	}

	if gotQuery != "mentor" {
		t.Errorf("userType: want %q, got %q", "mentor", gotQuery)
	}
	if len(users) != 1 {
		t.Fatalf("Количество пользователей: want 1, got %d", len(users))
	}
	if users[0].FullName != "Мария Менторова" {
		t.Errorf("FullName: want %q, got %q", "Мария Менторова", users[0].FullName)
	}
}

// TestUsersByType_NonArrayData проверяет, что не-массив в data —
// это ErrMalformedResponse, а не пустой список и не паника.
func TestUsersByType_NonArrayData(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": "не-массив"})
	}))

	_, err := c.UsersByType(context.Background(), "t", "student")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Ожидался ErrMalformedResponse, получено: %v", err)
	}
}

// TestApplicationsByStatus проверяет разбор вложенной формы userDetails[].data.
func TestApplicationsByStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "new" {
			t.Errorf("status: want new, got %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"userDetails": []map[string]any{
				{"data": map[string]string{
					"fullName": "Пётр Претендент",
					"email":    "p@example.org",
					"status":   "new",
				}},
			},
		})
	}))

	apps, err := c.ApplicationsByStatus(context.Background(), "t", "new")
	if err != nil {
		t.Fatalf("ApplicationsByStatus вернул ошибку: %v", err)
	}

	if len(apps) != 1 {
		t.Fatalf("Количество заявок: want 1, got %d", len(apps))
	}
	if apps[0].Email != "p@example.org" {
		t.Errorf("Email: want %q, got %q", "p@example.org", apps[0].Email)
	}
}

// TestProcessApplication проверяет, что 200, 201 и 409 — различимые
// не-ошибочные исходы, а прочие статусы — ошибки.
func TestProcessApplication(t *testing.T) {
	tests := []struct {
		status  int
		wantErr bool
	}{
		{200, false},
		{201, false},
		{409, false},
		{500, true},
	}

	for _, tt := range tests {
		var gotBody map[string]string
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]string{"message": "исход"})
		}))

		outcome, err := c.ProcessApplication(context.Background(), "t", "p@example.org", "approve")
		if tt.wantErr {
			if err == nil {
				t.Errorf("статус %d: ожидалась ошибка", tt.status)
			}
			continue
		}
		if err != nil {
			t.Fatalf("статус %d: неожиданная ошибка: %v", tt.status, err)
		}
		if outcome.StatusCode != tt.status {
			t.Errorf("StatusCode: want %d, got %d", tt.status, outcome.StatusCode)
		}

		// Контракт тела: username, status, пустые remarks
		if gotBody["username"] != "p@example.org" {
			t.Errorf("username: want p@example.org, got %q", gotBody["username"])
		}
		if gotBody["status"] != "approve" {
			t.Errorf("status: want approve, got %q", gotBody["status"])
		}
		if remarks, ok := gotBody["remarks"]; !ok || remarks != "" {
			t.Errorf("remarks должны присутствовать и быть пустыми, got %q (present=%v)", remarks, ok)
		}
	}
}

// TestRegisterStudent проверяет регистрацию студента: 201 — успех,
// прочие статусы — *StatusError.
func TestRegisterStudent(t *testing.T) {
	for _, status := range []int{201, 401, 402, 404, 405} {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/StudentRegistration" {
				t.Errorf("Путь: want /StudentRegistration, got %s", r.URL.Path)
			}
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"message": "ответ шлюза"})
		}))

		err := c.RegisterStudent(context.Background(), &StudentRegistration{
			FullName: "Степан Студентов",
			Email:    "s@example.org",
		})

		if status == 201 {
			if err != nil {
				t.Errorf("статус 201: неожиданная ошибка: %v", err)
			}
			continue
		}
		se := AsStatusError(err)
		if se == nil || se.StatusCode != status {
			t.Errorf("статус %d: ожидался *StatusError с тем же кодом, получено: %v", status, err)
		}
	}
}

// TestUpdateProfile_PasswordTripleOmitted проверяет, что пустая парольная
// тройка полностью отсутствует в JSON-теле запроса.
func TestUpdateProfile_PasswordTripleOmitted(t *testing.T) {
	var rawBody map[string]json.RawMessage
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/UpdateMentorProfile" {
			t.Errorf("Путь: want /UpdateMentorProfile, got %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&rawBody)
		json.NewEncoder(w).Encode(map[string]string{"message": "обновлено"})
	}))

	msg, err := c.UpdateProfile(context.Background(), "t", rbac.RoleMentor, &ProfileUpdate{
		FullName:    "Мария Менторова",
		PhoneNumber: "9876543210",
		MBBSNumber:  "MBBS-1",
	})
	if err != nil {
		t.Fatalf("UpdateProfile вернул ошибку: %v", err)
	}
	if msg != "обновлено" {
		t.Errorf("Сообщение: want %q, got %q", "обновлено", msg)
	}

	for _, key := range []string{"oldPassword", "newPassword", "confirmNewPassword"} {
		if _, ok := rawBody[key]; ok {
			t.Errorf("Поле %q не должно присутствовать в теле при пустой тройке", key)
		}
	}
}

// TestUpdateProfile_PasswordTripleIncluded проверяет включение полной тройки.
func TestUpdateProfile_PasswordTripleIncluded(t *testing.T) {
	var rawBody map[string]json.RawMessage
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&rawBody)
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	_, err := c.UpdateProfile(context.Background(), "t", rbac.RoleStudent, &ProfileUpdate{
		FullName:           "Степан Студентов",
		PhoneNumber:        "9876543210",
		OldPassword:        "старый-пароль",
		NewPassword:        "новый-пароль",
		ConfirmNewPassword: "новый-пароль",
	})
	if err != nil {
		t.Fatalf("UpdateProfile вернул ошибку: %v", err)
	}

	for _, key := range []string{"oldPassword", "newPassword", "confirmNewPassword"} {
		if _, ok := rawBody[key]; !ok {
			t.Errorf("Поле %q должно присутствовать в теле при заполненной тройке", key)
		}
	}
}

// TestProfile проверяет запрос профиля.
func TestProfile(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("username"); got != "a@example.org" {
			t.Errorf("username: want a@example.org, got %s", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"fullName":   "Анна Администратор",
			"email":      "a@example.org",
			"EmployeeID": "EMP-7",
			"userType":   "Admin",
		})
	}))

	p, err := c.Profile(context.Background(), "t", "a@example.org")
	if err != nil {
		t.Fatalf("Profile вернул ошибку: %v", err)
	}
	if p.EmployeeID != "EMP-7" {
		t.Errorf("EmployeeID: want EMP-7, got %q", p.EmployeeID)
	}
}

// TestCheckReady проверяет readiness-пробу шлюза.
func TestCheckReady(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound) // любой HTTP-ответ означает достижимость
	}))

	status, _ := c.CheckReady()
	if status != "ok" {
		t.Errorf("CheckReady: want ok, got %s", status)
	}

	// Недоступный шлюз
	dead, err := New("http://127.0.0.1:1", "", testLogger())
	if err != nil {
		t.Fatalf("Ошибка создания клиента: %v", err)
	}
	status, _ = dead.CheckReady()
	if status != "fail" {
		t.Errorf("CheckReady для недоступного шлюза: want fail, got %s", status)
	}
}
