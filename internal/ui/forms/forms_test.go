package forms

import "testing"

// TestRequired проверяет валидатор обязательного поля.
func TestRequired(t *testing.T) {
	e := New()
	e.Required("fullName", "", "Полное имя")
	e.Required("email", "user@example.org", "Email")

	if !e.Any() {
		t.Fatal("Ожидалась ошибка для пустого поля")
	}
	if e.Get("fullName") == "" {
		t.Error("Пустое fullName должно давать ошибку")
	}
	if e.Get("email") != "" {
		t.Errorf("Заполненное email не должно давать ошибку, получено: %q", e.Get("email"))
	}
}

// TestEmail проверяет валидатор формы email.
func TestEmail(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"user@example.org", false},
		{"user.name@sub.example.org", false},
		{"", false}, // пустое — забота Required
		{"user", true},
		{"user@", true},
		{"user@example", true},
		{"us er@example.org", true},
	}

	for _, tt := range tests {
		e := New()
		e.Email("email", tt.value)
		if got := e.Any(); got != tt.wantErr {
			t.Errorf("Email(%q): ошибка = %v, ожидалось %v", tt.value, got, tt.wantErr)
		}
	}
}

// TestPhone проверяет валидатор телефона (ровно 10 цифр).
func TestPhone(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"9876543210", false},
		{"", false}, // пустое — забота Required
		{"98765", true},
		{"98765432101", true},
		{"98765-4321", true},
		{"+9876543210", true},
	}

	for _, tt := range tests {
		e := New()
		e.Phone("phoneNumber", tt.value)
		if got := e.Any(); got != tt.wantErr {
			t.Errorf("Phone(%q): ошибка = %v, ожидалось %v", tt.value, got, tt.wantErr)
		}
	}
}

// TestPasswordTriple проверяет композитное правило смены пароля:
// всё пусто — молчание, частично заполнено — ошибки, несовпадение и
// короткий пароль — ошибки.
func TestPasswordTriple(t *testing.T) {
	tests := []struct {
		name                string
		old, new_, confirm  string
		wantErr             bool
		wantField           string
	}{
		{"всё пусто — смена не запрошена", "", "", "", false, ""},
		{"валидная тройка", "старый1", "новый-пароль", "новый-пароль", false, ""},
		{"только старый пароль", "старый1", "", "", true, "newPassword"},
		{"только новый пароль", "", "новый-пароль", "новый-пароль", true, "oldPassword"},
		{"несовпадение", "старый1", "новый-пароль", "другой-пароль", true, "confirmNewPassword"},
		{"короткий новый пароль", "старый1", "abc", "abc", true, "newPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			e.PasswordTriple(tt.old, tt.new_, tt.confirm)

			if got := e.Any(); got != tt.wantErr {
				t.Fatalf("ошибка = %v, ожидалось %v (ошибки: %v)", got, tt.wantErr, e)
			}
			if tt.wantField != "" && e.Get(tt.wantField) == "" {
				t.Errorf("Ожидалась ошибка в поле %q, получено: %v", tt.wantField, e)
			}
		})
	}
}

// TestPasswordTriple_OtherFieldErrors проверяет, что ошибки других полей
// формы не гасят проверки самой тройки: несовпадение паролей видно
// одновременно с ошибкой, например, пустого fullName.
func TestPasswordTriple_OtherFieldErrors(t *testing.T) {
	e := New()
	e.Required("fullName", "", "Полное имя")
	e.PasswordTriple("старый1", "новый-пароль", "другой-пароль")

	if e.Get("fullName") == "" {
		t.Error("Ожидалась ошибка поля fullName")
	}
	if e.Get("confirmNewPassword") == "" {
		t.Errorf("Несовпадение паролей должно давать ошибку независимо от других полей, получено: %v", e)
	}

	e = New()
	e.Required("phoneNumber", "", "Телефон")
	e.PasswordTriple("старый1", "abc", "abc")

	if e.Get("newPassword") == "" {
		t.Errorf("Короткий пароль должен давать ошибку независимо от других полей, получено: %v", e)
	}
}

// TestPasswordChangeRequested проверяет детектор запроса смены пароля.
func TestPasswordChangeRequested(t *testing.T) {
	if PasswordChangeRequested("", "", "") {
		t.Error("Пустая тройка не должна считаться запросом смены")
	}
	if !PasswordChangeRequested("старый", "", "") {
		t.Error("Частично заполненная тройка должна считаться запросом смены")
	}
}
