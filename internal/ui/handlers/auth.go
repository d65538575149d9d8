// auth.go — вход, выход и первичная смена пароля.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/joinfdhs/regportal/internal/domain/rbac"
	"github.com/joinfdhs/regportal/internal/gateway"
	"github.com/joinfdhs/regportal/internal/ui/auth"
	"github.com/joinfdhs/regportal/internal/ui/forms"
	"github.com/joinfdhs/regportal/internal/ui/middleware"
	"github.com/joinfdhs/regportal/internal/ui/pages"
	"github.com/joinfdhs/regportal/internal/ui/pages/partials"
)

// AuthHandler — обработчики аутентификации портала.
type AuthHandler struct {
	gw             *gateway.Client
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(gw *gateway.Client, sessionManager *auth.SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		gw:             gw,
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui_auth")),
	}
}

// HandleLanding — GET /
// Главная страница. Залогиненного пользователя сразу уводит в его кабинет.
func (h *AuthHandler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	if session, err := h.sessionManager.GetSessionFromRequest(r); err == nil && session != nil {
		http.Redirect(w, r, session.Role.DashboardPath(), http.StatusFound)
		return
	}
	render(w, r, h.logger, pages.Landing())
}

// HandleUnauthorized — GET /unauthorized
func (h *AuthHandler) HandleUnauthorized(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, pages.Unauthorized())
}

// ShowLogin — GET /Login
// Форма входа; после успешной регистрации показывает flash (?registered=1).
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	data := &pages.LoginPage{}
	if r.URL.Query().Get("registered") == "1" {
		data.Alert = &partials.AlertData{
			Kind:    "success",
			Message: "Заявка на регистрацию отправлена. Войдите после одобрения.",
		}
	}
	render(w, r, h.logger, pages.Login(data))
}

// HandleLogin — POST /Login
// Логин через шлюз. Успех записывает полную сессию и перенаправляет:
// первый вход → /reset, иначе — дашборд роли. Любая ошибка повторно
// рендерит форму с сообщением, навигации не происходит.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	failed := func(message string) {
		render(w, r, h.logger, pages.Login(&pages.LoginPage{
			Username: username,
			Role:     r.PostFormValue("role"),
			Alert:    &partials.AlertData{Kind: "error", Message: message},
		}))
	}

	role, err := rbac.ParseRole(r.PostFormValue("role"))
	if err != nil {
		failed(msgLoginFailed)
		return
	}

	if username == "" || password == "" {
		failed("Укажите email и пароль.")
		return
	}

	result, err := h.gw.Login(r.Context(), role, username, password)
	if err != nil {
		h.logger.Warn("Неудачный вход",
			slog.String("username", username),
			slog.String("role", role.String()),
			slog.String("error", err.Error()),
		)
		// Известные статусы шлюза несут осмысленное сообщение
		failed(userMessage(err, 401, 402, 404, 212))
		return
	}

	// Роль берём из ответа шлюза; неизвестная роль — жёсткий отказ
	actualRole, err := rbac.ParseRole(result.UserType)
	if err != nil {
		h.logger.Error("Шлюз вернул неизвестную роль",
			slog.String("username", username),
			slog.String("user_type", result.UserType),
		)
		failed(msgLoginFailed)
		return
	}

	session := &auth.SessionData{
		Token:    result.IDToken,
		Username: result.Username,
		Role:     actualRole,
		FullName: result.FullName,
	}
	if err := h.sessionManager.SetSessionCookie(w, session); err != nil {
		h.logger.Error("Ошибка записи сессии", slog.String("error", err.Error()))
		failed(msgLoginFailed)
		return
	}

	h.logger.Info("Успешный вход",
		slog.String("username", session.Username),
		slog.String("role", session.Role.String()),
		slog.Bool("first_time", result.IsFirstTime),
	)

	// Первый вход — принудительная смена пароля независимо от роли
	if result.IsFirstTime {
		http.Redirect(w, r, "/reset", http.StatusFound)
		return
	}
	http.Redirect(w, r, session.Role.DashboardPath(), http.StatusFound)
}

// HandleLogout — POST /logout
// Очищает сессию одним действием (cookie — единственное хранилище)
// и уводит на главную. Обращения к шлюзу нет.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessionManager.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// ShowReset — GET /reset
// Форма первичной смены пароля (любая аутентифицированная роль).
func (h *AuthHandler) ShowReset(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	render(w, r, h.logger, pages.Reset(&pages.ResetPage{
		User:   &pages.NavUser{FullName: session.FullName, Role: session.Role},
		Errors: forms.New(),
	}))
}

// HandleReset — POST /reset
// Валидирует парольную тройку и отправляет её через endpoint обновления
// профиля роли. Остальные поля профиля сохраняются как есть.
func (h *AuthHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	user := &pages.NavUser{FullName: session.FullName, Role: session.Role}

	oldPassword := r.PostFormValue("oldPassword")
	newPassword := r.PostFormValue("newPassword")
	confirmNewPassword := r.PostFormValue("confirmNewPassword")

	errs := forms.New()
	errs.Required("oldPassword", oldPassword, "Текущий пароль")
	errs.Required("newPassword", newPassword, "Новый пароль")
	errs.Required("confirmNewPassword", confirmNewPassword, "Подтверждение пароля")
	errs.PasswordTriple(oldPassword, newPassword, confirmNewPassword)

	if errs.Any() {
		render(w, r, h.logger, pages.Reset(&pages.ResetPage{User: user, Errors: errs}))
		return
	}

	// Профиль перечитывается, чтобы обновление не затёрло остальные поля
	profile, err := h.gw.Profile(r.Context(), session.Token, session.Username)
	if err != nil {
		h.logger.Error("Ошибка загрузки профиля для смены пароля",
			slog.String("username", session.Username),
			slog.String("error", err.Error()),
		)
		render(w, r, h.logger, pages.Reset(&pages.ResetPage{
			User:   user,
			Errors: forms.New(),
			Alert:  &partials.AlertData{Kind: "error", Message: msgGatewayUnavailable},
		}))
		return
	}

	update := &gateway.ProfileUpdate{
		FullName:           profile.FullName,
		PhoneNumber:        profile.PhoneNumber,
		StateOfResidence:   profile.StateOfResidence,
		CollegeName:        profile.CollegeName,
		EmployeeID:         profile.EmployeeID,
		MBBSNumber:         profile.MBBSNumber,
		Specialization:     profile.Specialization,
		RollNumber:         profile.RollNumber,
		OldPassword:        oldPassword,
		NewPassword:        newPassword,
		ConfirmNewPassword: confirmNewPassword,
	}

	if _, err := h.gw.UpdateProfile(r.Context(), session.Token, session.Role, update); err != nil {
		h.logger.Warn("Ошибка смены пароля",
			slog.String("username", session.Username),
			slog.String("error", err.Error()),
		)
		render(w, r, h.logger, pages.Reset(&pages.ResetPage{
			User:   user,
			Errors: forms.New(),
			Alert:  &partials.AlertData{Kind: "error", Message: userMessage(err, 401, 402, 404, 405)},
		}))
		return
	}

	h.logger.Info("Пароль изменён при первом входе", slog.String("username", session.Username))
	http.Redirect(w, r, session.Role.DashboardPath(), http.StatusFound)
}
