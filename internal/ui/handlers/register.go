// register.go — публичные формы регистрации студентов и менторов.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/joinfdhs/regportal/internal/gateway"
	"github.com/joinfdhs/regportal/internal/ui/forms"
	"github.com/joinfdhs/regportal/internal/ui/pages"
	"github.com/joinfdhs/regportal/internal/ui/pages/partials"
)

// Поля форм регистрации.
var (
	studentFields = []string{"fullName", "email", "phoneNumber", "RollNumber", "collegeName", "stateOfResidence"}
	mentorFields  = []string{"fullName", "email", "phoneNumber", "mbbsNumber", "specialization", "collegeName", "stateOfResidence"}
)

// Человекочитаемые подписи полей для сообщений об обязательности.
var fieldLabels = map[string]string{
	"fullName":         "Полное имя",
	"email":            "Email",
	"phoneNumber":      "Телефон",
	"RollNumber":       "Номер зачётки",
	"mbbsNumber":       "Номер MBBS",
	"specialization":   "Специализация",
	"collegeName":      "Колледж",
	"stateOfResidence": "Штат проживания",
}

// RegisterHandler — обработчики регистрации.
type RegisterHandler struct {
	gw     *gateway.Client
	logger *slog.Logger
}

// NewRegisterHandler создаёт новый RegisterHandler.
func NewRegisterHandler(gw *gateway.Client, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{
		gw:     gw,
		logger: logger.With(slog.String("component", "ui_register")),
	}
}

// ShowStudentForm — GET /StudentRegister
func (h *RegisterHandler) ShowStudentForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, pages.StudentRegister(&pages.RegisterPage{
		Values: map[string]string{},
		Errors: forms.New(),
	}))
}

// ShowMentorForm — GET /MentorRegister
func (h *RegisterHandler) ShowMentorForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, pages.MentorRegister(&pages.RegisterPage{
		Values: map[string]string{},
		Errors: forms.New(),
	}))
}

// validateRegistration выполняет серверную валидацию формы регистрации.
func validateRegistration(values map[string]string, fields []string) forms.Errors {
	errs := forms.New()
	for _, f := range fields {
		errs.Required(f, values[f], fieldLabels[f])
	}
	errs.Email("email", values["email"])
	errs.Phone("phoneNumber", values["phoneNumber"])
	return errs
}

// HandleStudentForm — POST /StudentRegister
// Успех (201) перенаправляет на /Login с flash; любая ошибка повторно
// рендерит заполненную форму с alert, без навигации.
func (h *RegisterHandler) HandleStudentForm(w http.ResponseWriter, r *http.Request) {
	values := formValues(r, studentFields...)

	errs := validateRegistration(values, studentFields)
	if errs.Any() {
		render(w, r, h.logger, pages.StudentRegister(&pages.RegisterPage{Values: values, Errors: errs}))
		return
	}

	err := h.gw.RegisterStudent(r.Context(), &gateway.StudentRegistration{
		FullName:         values["fullName"],
		Email:            values["email"],
		PhoneNumber:      values["phoneNumber"],
		RollNumber:       values["RollNumber"],
		CollegeName:      values["collegeName"],
		StateOfResidence: values["stateOfResidence"],
	})

	h.finish(w, r, err, values, func(page *pages.RegisterPage) templ.Component {
		return pages.StudentRegister(page)
	})
}

// HandleMentorForm — POST /MentorRegister
func (h *RegisterHandler) HandleMentorForm(w http.ResponseWriter, r *http.Request) {
	values := formValues(r, mentorFields...)

	errs := validateRegistration(values, mentorFields)
	if errs.Any() {
		render(w, r, h.logger, pages.MentorRegister(&pages.RegisterPage{Values: values, Errors: errs}))
		return
	}

	err := h.gw.RegisterMentor(r.Context(), &gateway.MentorRegistration{
		FullName:         values["fullName"],
		Email:            values["email"],
		PhoneNumber:      values["phoneNumber"],
		MBBSNumber:       values["mbbsNumber"],
		Specialization:   values["specialization"],
		CollegeName:      values["collegeName"],
		StateOfResidence: values["stateOfResidence"],
	})

	h.finish(w, r, err, values, func(page *pages.RegisterPage) templ.Component {
		return pages.MentorRegister(page)
	})
}

// finish завершает обработку регистрации: успех — redirect на /Login,
// ошибка — повторный рендер формы с сообщением по статусу шлюза.
func (h *RegisterHandler) finish(
	w http.ResponseWriter, r *http.Request,
	err error,
	values map[string]string,
	page func(*pages.RegisterPage) templ.Component,
) {
	if err == nil {
		h.logger.Info("Заявка на регистрацию создана", slog.String("email", values["email"]))
		http.Redirect(w, r, "/Login?registered=1", http.StatusFound)
		return
	}

	h.logger.Warn("Отказ в регистрации",
		slog.String("email", values["email"]),
		slog.String("error", err.Error()),
	)

	data := &pages.RegisterPage{Values: values, Errors: forms.New()}

	se := gateway.AsStatusError(err)
	switch {
	case se == nil:
		data.Alert = &partials.AlertData{Kind: "error", Message: msgGatewayUnavailable}
	case se.StatusCode == 401:
		data.Errors["email"] = "Некорректный адрес электронной почты"
		data.Alert = &partials.AlertData{Kind: "error", Message: "Проверьте адрес электронной почты."}
	case se.StatusCode == 402:
		data.Errors["phoneNumber"] = "Некорректный номер телефона"
		data.Alert = &partials.AlertData{Kind: "error", Message: "Проверьте номер телефона."}
	case se.StatusCode == 404:
		data.Alert = &partials.AlertData{Kind: "error", Message: "Пользователь с таким email уже существует."}
	case se.StatusCode == 405:
		msg := "Заполнены не все обязательные поля."
		if se.Message != "" {
			msg += " " + se.Message
		}
		data.Alert = &partials.AlertData{Kind: "error", Message: msg}
	default:
		data.Alert = &partials.AlertData{Kind: "error", Message: msgGatewayUnavailable}
	}

	render(w, r, h.logger, page(data))
}
