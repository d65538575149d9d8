// Пакет handlers — HTTP-обработчики портала.
// Ошибки шлюза никогда не уходят пользователю как 5xx: обработчики
// превращают их в alert на странице. Граница паник — middleware.Recoverer.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/joinfdhs/regportal/internal/domain/model"
	"github.com/joinfdhs/regportal/internal/gateway"
)

// Типовые сообщения пользователю.
const (
	msgGatewayUnavailable = "Сервис временно недоступен. Попробуйте позже."
	msgLoginFailed        = "Не удалось выполнить вход. Проверьте данные и попробуйте ещё раз."
)

// render отдаёт компонент как HTML-ответ.
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// userMessage выбирает сообщение для пользователя из ошибки шлюза:
// серверное сообщение известного статуса, иначе generic.
func userMessage(err error, knownStatuses ...int) string {
	se := gateway.AsStatusError(err)
	if se == nil || se.Message == "" {
		return msgGatewayUnavailable
	}
	for _, status := range knownStatuses {
		if se.StatusCode == status {
			return se.Message
		}
	}
	return msgGatewayUnavailable
}

// profileValues раскладывает профиль в значения полей формы.
func profileValues(p *model.Profile) map[string]string {
	return map[string]string{
		"fullName":         p.FullName,
		"phoneNumber":      p.PhoneNumber,
		"stateOfResidence": p.StateOfResidence,
		"collegeName":      p.CollegeName,
		"EmployeeID":       p.EmployeeID,
		"mbbsNumber":       p.MBBSNumber,
		"specialization":   p.Specialization,
		"RollNumber":       p.RollNumber,
	}
}

// formValues собирает значения перечисленных полей из POST-формы.
func formValues(r *http.Request, fields ...string) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f] = r.PostFormValue(f)
	}
	return values
}
