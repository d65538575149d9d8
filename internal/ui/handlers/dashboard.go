// dashboard.go — личные кабинеты: заявки, списки пользователей, профиль.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/joinfdhs/regportal/internal/domain/model"
	"github.com/joinfdhs/regportal/internal/domain/rbac"
	"github.com/joinfdhs/regportal/internal/gateway"
	"github.com/joinfdhs/regportal/internal/ui/auth"
	"github.com/joinfdhs/regportal/internal/ui/forms"
	"github.com/joinfdhs/regportal/internal/ui/middleware"
	"github.com/joinfdhs/regportal/internal/ui/pages"
	"github.com/joinfdhs/regportal/internal/ui/pages/partials"
)

// DashboardHandler — обработчики кабинетов всех ролей.
type DashboardHandler struct {
	gw     *gateway.Client
	logger *slog.Logger
}

// NewDashboardHandler создаёт новый DashboardHandler.
func NewDashboardHandler(gw *gateway.Client, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		gw:     gw,
		logger: logger.With(slog.String("component", "ui_dashboard")),
	}
}

// navUser строит данные шапки из сессии.
func navUser(session *auth.SessionData) *pages.NavUser {
	return &pages.NavUser{FullName: session.FullName, Role: session.Role}
}

// --- Загрузка списков (политика деградации до пустого) ---

// fetchApplications загружает заявки со статусом new.
// Любая ошибка шлюза — пустой список плюс alert, страница не падает.
func (h *DashboardHandler) fetchApplications(ctx context.Context, token string) ([]model.RegistrationApplication, *partials.AlertData) {
	apps, err := h.gw.ApplicationsByStatus(ctx, token, model.ApplicationStatusNew)
	if err != nil {
		h.logger.Error("Ошибка загрузки заявок", slog.String("error", err.Error()))
		return nil, &partials.AlertData{Kind: "error", Message: "Не удалось загрузить заявки. " + msgGatewayUnavailable}
	}
	return apps, nil
}

// fetchUsers загружает пользователей указанного типа с той же деградацией.
func (h *DashboardHandler) fetchUsers(ctx context.Context, token string, role rbac.Role) ([]model.UserRecord, *partials.AlertData) {
	users, err := h.gw.UsersByType(ctx, token, role.ListingUserType())
	if err != nil {
		h.logger.Error("Ошибка загрузки списка пользователей",
			slog.String("user_type", role.String()),
			slog.String("error", err.Error()),
		)
		return nil, &partials.AlertData{Kind: "error", Message: "Не удалось загрузить список. " + msgGatewayUnavailable}
	}
	return users, nil
}

// --- Кабинет администратора ---

// HandleAdminDashboard — GET /admin-dashboard
// Разделы по query-параметру view: dashboard (заявки) | registeredUsers | settings.
func (h *DashboardHandler) HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	view := r.URL.Query().Get("view")
	switch view {
	case pages.ViewRegisteredUsers, pages.ViewSettings:
	default:
		view = pages.ViewDashboard
	}

	data := &pages.AdminDashboardPage{User: navUser(session), View: view}

	switch view {
	case pages.ViewDashboard:
		data.Applications, data.AppsAlert = h.fetchApplications(r.Context(), session.Token)
	case pages.ViewRegisteredUsers:
		// Таблицы независимы: отказ одной не мешает другой
		data.Mentors, data.MentorsAlert = h.fetchUsers(r.Context(), session.Token, rbac.RoleMentor)
		data.Students, data.StudentsAlert = h.fetchUsers(r.Context(), session.Token, rbac.RoleStudent)
	case pages.ViewSettings:
		data.Profile = h.loadProfileForm(r.Context(), session, "/admin-dashboard/profile", nil)
	}

	render(w, r, h.logger, pages.AdminDashboard(data))
}

// HandleProcessApplication — POST /admin-dashboard/applications/process
// Approve/deny заявки. После любого исхода — ровно одна повторная загрузка
// списка (локальных мутаций нет); фрагмент таблицы перерисовывается HTMX.
func (h *DashboardHandler) HandleProcessApplication(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	email := r.PostFormValue("email")
	status := r.PostFormValue("status")

	var alert *partials.AlertData
	if email == "" || (status != model.ApplicationStatusApprove && status != model.ApplicationStatusDeny) {
		alert = &partials.AlertData{Kind: "error", Message: "Некорректный запрос обработки заявки."}
	} else {
		outcome, err := h.gw.ProcessApplication(r.Context(), session.Token, email, status)
		switch {
		case err != nil:
			h.logger.Error("Ошибка обработки заявки",
				slog.String("email", email),
				slog.String("status", status),
				slog.String("error", err.Error()),
			)
			alert = &partials.AlertData{Kind: "error", Message: "Не удалось обработать заявку. " + msgGatewayUnavailable}
		case outcome.StatusCode == http.StatusConflict:
			alert = &partials.AlertData{Kind: "info", Message: "Пользователь уже зарегистрирован."}
		default:
			h.logger.Info("Заявка обработана",
				slog.String("email", email),
				slog.String("status", status),
				slog.Int("gateway_status", outcome.StatusCode),
			)
			msg := outcome.Message
			if msg == "" {
				msg = "Заявка обработана."
			}
			alert = &partials.AlertData{Kind: "success", Message: msg}
		}
	}

	// Без JS форма отправляется обычным POST — возвращаем на страницу заявок,
	// повторную загрузку выполнит GET кабинета
	if r.Header.Get("HX-Request") == "" {
		http.Redirect(w, r, "/admin-dashboard?view="+pages.ViewDashboard, http.StatusFound)
		return
	}

	// Единственная повторная загрузка после действия
	apps, fetchAlert := h.fetchApplications(r.Context(), session.Token)
	if fetchAlert != nil {
		alert = fetchAlert
	}

	render(w, r, h.logger, partials.ApplicationsTable(apps, alert))
}

// HandleApplicationsPartial — GET /admin-dashboard/partials/applications
func (h *DashboardHandler) HandleApplicationsPartial(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	apps, alert := h.fetchApplications(r.Context(), session.Token)
	render(w, r, h.logger, partials.ApplicationsTable(apps, alert))
}

// HandleMentorsPartial — GET /admin-dashboard/partials/mentors
func (h *DashboardHandler) HandleMentorsPartial(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	mentors, alert := h.fetchUsers(r.Context(), session.Token, rbac.RoleMentor)
	render(w, r, h.logger, partials.UserTable("mentors", "Менторы",
		"/admin-dashboard/partials/mentors", mentors, alert))
}

// HandleStudentsPartial — GET /admin-dashboard/partials/students
func (h *DashboardHandler) HandleStudentsPartial(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	students, alert := h.fetchUsers(r.Context(), session.Token, rbac.RoleStudent)
	render(w, r, h.logger, partials.UserTable("students", "Студенты",
		"/admin-dashboard/partials/students", students, alert))
}

// HandleAdminProfile — POST /admin-dashboard/profile
func (h *DashboardHandler) HandleAdminProfile(w http.ResponseWriter, r *http.Request) {
	h.handleProfileUpdate(w, r, "/admin-dashboard/profile", func(form *partials.ProfileFormData, user *pages.NavUser) templ.Component {
		return pages.AdminDashboard(&pages.AdminDashboardPage{
			User: user, View: pages.ViewSettings, Profile: form,
		})
	})
}

// --- Кабинет ментора ---

// HandleMentorDashboard — GET /mentor-dashboard
func (h *DashboardHandler) HandleMentorDashboard(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	view := r.URL.Query().Get("view")
	if view != pages.ViewSettings {
		view = pages.ViewDashboard
	}

	data := &pages.MentorDashboardPage{User: navUser(session), View: view}

	switch view {
	case pages.ViewSettings:
		data.Profile = h.loadProfileForm(r.Context(), session, "/mentor-dashboard/profile", nil)
	default:
		data.Students, data.StudentsAlert = h.fetchUsers(r.Context(), session.Token, rbac.RoleStudent)
	}

	render(w, r, h.logger, pages.MentorDashboard(data))
}

// HandleMentorStudentsPartial — GET /mentor-dashboard/partials/students
func (h *DashboardHandler) HandleMentorStudentsPartial(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	students, alert := h.fetchUsers(r.Context(), session.Token, rbac.RoleStudent)
	render(w, r, h.logger, partials.UserTable("students", "Студенты",
		"/mentor-dashboard/partials/students", students, alert))
}

// HandleMentorProfile — POST /mentor-dashboard/profile
func (h *DashboardHandler) HandleMentorProfile(w http.ResponseWriter, r *http.Request) {
	h.handleProfileUpdate(w, r, "/mentor-dashboard/profile", func(form *partials.ProfileFormData, user *pages.NavUser) templ.Component {
		return pages.MentorDashboard(&pages.MentorDashboardPage{
			User: user, View: pages.ViewSettings, Profile: form,
		})
	})
}

// --- Кабинет студента ---

// HandleStudentDashboard — GET /student-dashboard
// Внутри страницы только раздел настроек; основной раздел — /student-dashboard/enrol.
func (h *DashboardHandler) HandleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	data := &pages.StudentDashboardPage{
		User:    navUser(session),
		View:    pages.ViewSettings,
		Profile: h.loadProfileForm(r.Context(), session, "/student-dashboard/profile", nil),
	}

	render(w, r, h.logger, pages.StudentDashboard(data))
}

// HandleStudentEnrol — GET /student-dashboard/enrol
func (h *DashboardHandler) HandleStudentEnrol(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	render(w, r, h.logger, pages.StudentEnrol(navUser(session)))
}

// HandleStudentProfile — POST /student-dashboard/profile
func (h *DashboardHandler) HandleStudentProfile(w http.ResponseWriter, r *http.Request) {
	h.handleProfileUpdate(w, r, "/student-dashboard/profile", func(form *partials.ProfileFormData, user *pages.NavUser) templ.Component {
		return pages.StudentDashboard(&pages.StudentDashboardPage{
			User: user, View: pages.ViewSettings, Profile: form,
		})
	})
}

// --- Профиль ---

// profileFields возвращает редактируемые поля профиля для роли.
func profileFields(role rbac.Role) []string {
	fields := []string{"fullName", "phoneNumber", "stateOfResidence", "collegeName"}
	switch role {
	case rbac.RoleAdmin, rbac.RoleSuperAdmin:
		return append(fields, "EmployeeID")
	case rbac.RoleMentor:
		return append(fields, "mbbsNumber", "specialization")
	case rbac.RoleStudent:
		return append(fields, "RollNumber")
	}
	return fields
}

// loadProfileForm загружает профиль и готовит данные формы настроек.
// Ошибка загрузки — пустая форма с alert.
func (h *DashboardHandler) loadProfileForm(ctx context.Context, session *auth.SessionData, action string, alert *partials.AlertData) *partials.ProfileFormData {
	form := &partials.ProfileFormData{
		Action: action,
		Role:   session.Role,
		Email:  session.Username,
		Values: map[string]string{},
		Errors: forms.New(),
		Alert:  alert,
	}

	profile, err := h.gw.Profile(ctx, session.Token, session.Username)
	if err != nil {
		h.logger.Error("Ошибка загрузки профиля",
			slog.String("username", session.Username),
			slog.String("error", err.Error()),
		)
		form.Alert = &partials.AlertData{Kind: "error", Message: "Не удалось загрузить профиль. " + msgGatewayUnavailable}
		return form
	}

	form.Values = profileValues(profile)
	return form
}

// handleProfileUpdate — общая обработка POST формы профиля для всех ролей.
// Невалидная форма не доходит до шлюза; парольная тройка уходит в payload
// только целиком.
func (h *DashboardHandler) handleProfileUpdate(
	w http.ResponseWriter, r *http.Request,
	action string,
	page func(*partials.ProfileFormData, *pages.NavUser) templ.Component,
) {
	session := middleware.SessionFromContext(r.Context())
	user := navUser(session)

	fields := profileFields(session.Role)
	values := formValues(r, fields...)

	oldPassword := r.PostFormValue("oldPassword")
	newPassword := r.PostFormValue("newPassword")
	confirmNewPassword := r.PostFormValue("confirmNewPassword")

	errs := forms.New()
	errs.Required("fullName", values["fullName"], "Полное имя")
	errs.Required("phoneNumber", values["phoneNumber"], "Телефон")
	errs.Phone("phoneNumber", values["phoneNumber"])
	errs.PasswordTriple(oldPassword, newPassword, confirmNewPassword)

	form := &partials.ProfileFormData{
		Action: action,
		Role:   session.Role,
		Email:  session.Username,
		Values: values,
		Errors: errs,
	}

	if errs.Any() {
		render(w, r, h.logger, page(form, user))
		return
	}

	update := &gateway.ProfileUpdate{
		FullName:         values["fullName"],
		PhoneNumber:      values["phoneNumber"],
		StateOfResidence: values["stateOfResidence"],
		CollegeName:      values["collegeName"],
		EmployeeID:       values["EmployeeID"],
		MBBSNumber:       values["mbbsNumber"],
		Specialization:   values["specialization"],
		RollNumber:       values["RollNumber"],
	}
	if forms.PasswordChangeRequested(oldPassword, newPassword, confirmNewPassword) {
		update.OldPassword = oldPassword
		update.NewPassword = newPassword
		update.ConfirmNewPassword = confirmNewPassword
	}

	msg, err := h.gw.UpdateProfile(r.Context(), session.Token, session.Role, update)
	if err != nil {
		h.logger.Warn("Ошибка обновления профиля",
			slog.String("username", session.Username),
			slog.String("error", err.Error()),
		)
		form.Alert = &partials.AlertData{Kind: "error", Message: userMessage(err, 401, 402, 404, 405)}
		render(w, r, h.logger, page(form, user))
		return
	}

	h.logger.Info("Профиль обновлён", slog.String("username", session.Username))
	if msg == "" {
		msg = "Профиль обновлён."
	}
	form.Alert = &partials.AlertData{Kind: "success", Message: msg}
	render(w, r, h.logger, page(form, user))
}
