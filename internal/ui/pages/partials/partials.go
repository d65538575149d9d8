// Пакет partials — переиспользуемые фрагменты страниц портала.
// Фрагменты отдаются и целиком в составе страниц, и отдельно по HTMX
// (кнопки Refresh перерисовывают одну таблицу без перезагрузки страницы).
package partials

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/joinfdhs/regportal/internal/domain/model"
	"github.com/joinfdhs/regportal/internal/domain/rbac"
	"github.com/joinfdhs/regportal/internal/ui/forms"
)

// AlertData — сообщение пользователю над таблицей или формой.
type AlertData struct {
	// Kind — success, error или info (класс CSS).
	Kind string
	// Message — текст сообщения.
	Message string
}

// Alert рендерит блок сообщения. Пустое сообщение — пустой вывод.
func Alert(a *AlertData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if a == nil || a.Message == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, `<div class="alert alert-%s" role="alert">%s</div>`,
			templ.EscapeString(a.Kind), templ.EscapeString(a.Message))
		return err
	})
}

// na заменяет пустое значение на N/A для табличного вывода.
func na(s string) string {
	if s == "" {
		return "N/A"
	}
	return templ.EscapeString(s)
}

// UserTable рендерит таблицу пользователей с кнопкой Refresh (HTMX).
// id — якорь фрагмента, refreshURL — endpoint перерисовки.
// При ошибке загрузки таблица пустая, alert объясняет причину.
func UserTable(id, title, refreshURL string, users []model.UserRecord, alert *AlertData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		fmt.Fprintf(&b, `<div id="%s" class="table-block">`, templ.EscapeString(id))
		fmt.Fprintf(&b, `<div class="table-header"><h3>%s</h3>`, templ.EscapeString(title))
		fmt.Fprintf(&b, `<button class="btn btn-secondary" hx-get="%s" hx-target="#%s" hx-swap="outerHTML">Обновить</button></div>`,
			templ.EscapeString(refreshURL), templ.EscapeString(id))

		if err := Alert(alert).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<table class="data-table"><thead><tr>` +
			`<th>Полное имя</th><th>Email</th><th>Телефон</th><th>Колледж</th><th>Штат</th>` +
			`</tr></thead><tbody>`)

		if len(users) == 0 {
			b.WriteString(`<tr><td colspan="5" class="empty">Нет записей</td></tr>`)
		}
		for _, u := range users {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				na(u.FullName), na(u.Email), na(u.PhoneNumber), na(u.CollegeName), na(u.StateOfResidence))
		}

		b.WriteString(`</tbody></table></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ApplicationsTable рендерит таблицу заявок со статусом new и кнопками
// Approve/Deny. Действия выполняются через HTMX POST и перерисовывают
// всю таблицу результатом повторной загрузки списка.
func ApplicationsTable(apps []model.RegistrationApplication, alert *AlertData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<div id="applications" class="table-block">`)
		b.WriteString(`<div class="table-header"><h3>Заявки на регистрацию</h3>`)
		b.WriteString(`<button class="btn btn-secondary" hx-get="/admin-dashboard/partials/applications" hx-target="#applications" hx-swap="outerHTML">Обновить</button></div>`)

		if err := Alert(alert).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<table class="data-table"><thead><tr>` +
			`<th>Полное имя</th><th>Email</th><th>Телефон</th><th>Колледж</th><th>Действия</th>` +
			`</tr></thead><tbody>`)

		if len(apps) == 0 {
			b.WriteString(`<tr><td colspan="5" class="empty">Новых заявок нет</td></tr>`)
		}
		for _, app := range apps {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td class="actions">`,
				na(app.FullName), na(app.Email), na(app.PhoneNumber), na(app.CollegeName))
			writeProcessButton(&b, app.Email, model.ApplicationStatusApprove, "btn-success", "Одобрить")
			writeProcessButton(&b, app.Email, model.ApplicationStatusDeny, "btn-danger", "Отклонить")
			b.WriteString(`</td></tr>`)
		}

		b.WriteString(`</tbody></table></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// writeProcessButton рендерит форму-кнопку approve/deny для одной заявки.
func writeProcessButton(b *strings.Builder, email, status, class, label string) {
	// method/action — fallback для браузеров без JS
	fmt.Fprintf(b,
		`<form method="post" action="/admin-dashboard/applications/process" hx-post="/admin-dashboard/applications/process" hx-target="#applications" hx-swap="outerHTML">`+
			`<input type="hidden" name="email" value="%s">`+
			`<input type="hidden" name="status" value="%s">`+
			`<button type="submit" class="btn %s">%s</button></form>`,
		templ.EscapeString(email), templ.EscapeString(status), class, label)
}

// ProfileFormData — данные формы профиля.
type ProfileFormData struct {
	// Action — URL отправки формы (зависит от дашборда).
	Action string
	// Role — роль пользователя, определяет видимые поля.
	Role rbac.Role
	// Email — логин, показывается только для чтения.
	Email string
	// Values — текущие значения редактируемых полей по именам.
	Values map[string]string
	// Errors — ошибки валидации по именам полей.
	Errors forms.Errors
	// Alert — сообщение об исходе предыдущей отправки.
	Alert *AlertData
}

// ProfileForm рендерит форму редактирования профиля с роль-специфичными
// полями и секцией смены пароля (заполняется только целиком).
func ProfileForm(data *ProfileFormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<div id="profile" class="profile-block"><h3>Настройки профиля</h3>`)

		if err := Alert(data.Alert).Render(ctx, &b); err != nil {
			return err
		}

		fmt.Fprintf(&b, `<form method="post" action="%s" class="profile-form">`, templ.EscapeString(data.Action))

		fmt.Fprintf(&b, `<div class="form-field"><label>Email</label><input type="text" value="%s" disabled></div>`,
			templ.EscapeString(data.Email))

		writeField(&b, data, "fullName", "Полное имя", "text")
		writeField(&b, data, "phoneNumber", "Телефон", "text")
		writeField(&b, data, "stateOfResidence", "Штат проживания", "text")
		writeField(&b, data, "collegeName", "Колледж", "text")

		switch data.Role {
		case rbac.RoleAdmin, rbac.RoleSuperAdmin:
			writeField(&b, data, "EmployeeID", "Табельный номер", "text")
		case rbac.RoleMentor:
			writeField(&b, data, "mbbsNumber", "Номер MBBS", "text")
			writeField(&b, data, "specialization", "Специализация", "text")
		case rbac.RoleStudent:
			writeField(&b, data, "RollNumber", "Номер зачётки", "text")
		}

		b.WriteString(`<h4>Смена пароля</h4><p class="hint">Заполните все три поля или оставьте их пустыми.</p>`)
		writeField(&b, data, "oldPassword", "Текущий пароль", "password")
		writeField(&b, data, "newPassword", "Новый пароль", "password")
		writeField(&b, data, "confirmNewPassword", "Подтверждение пароля", "password")

		b.WriteString(`<button type="submit" class="btn btn-primary">Сохранить</button></form></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// writeField рендерит поле формы с текущим значением и inline-ошибкой.
func writeField(b *strings.Builder, data *ProfileFormData, name, label, inputType string) {
	value := ""
	if inputType != "password" {
		value = data.Values[name]
	}

	fmt.Fprintf(b, `<div class="form-field"><label for="%s">%s</label>`, name, templ.EscapeString(label))
	fmt.Fprintf(b, `<input type="%s" id="%s" name="%s" value="%s">`,
		inputType, name, name, templ.EscapeString(value))
	if msg := data.Errors.Get(name); msg != "" {
		fmt.Fprintf(b, `<span class="field-error">%s</span>`, templ.EscapeString(msg))
	}
	b.WriteString(`</div>`)
}
