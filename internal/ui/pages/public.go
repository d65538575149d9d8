// public.go — публичные страницы: главная, вход, регистрация, /unauthorized.
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/joinfdhs/regportal/internal/domain/rbac"
	"github.com/joinfdhs/regportal/internal/ui/forms"
	"github.com/joinfdhs/regportal/internal/ui/pages/partials"
)

// Landing — главная страница для неаутентифицированных посетителей.
func Landing() templ.Component {
	return layout("Главная", nil, raw(
		`<section class="hero">`+
			`<h1>Платформа FDHS</h1>`+
			`<p>Регистрация студентов и менторов, личные кабинеты и обработка заявок.</p>`+
			`<div class="hero-actions">`+
			`<a class="btn btn-primary" href="/Login">Войти</a>`+
			`<a class="btn btn-secondary" href="/StudentRegister">Я студент</a>`+
			`<a class="btn btn-secondary" href="/MentorRegister">Я ментор</a>`+
			`</div></section>`))
}

// Unauthorized — страница отказа в доступе (роль не подходит маршруту).
func Unauthorized() templ.Component {
	return layout("Доступ запрещён", nil, raw(
		`<section class="error-page">`+
			`<h1>Доступ запрещён</h1>`+
			`<p>У вашей учётной записи нет прав на просмотр этой страницы.</p>`+
			`<a class="btn btn-primary" href="/">На главную</a>`+
			`</section>`))
}

// LoginPage — данные формы входа.
type LoginPage struct {
	// Username — введённый логин (сохраняется при ошибке).
	Username string
	// Role — выбранная роль.
	Role string
	// Alert — ошибка входа или flash-сообщение после регистрации.
	Alert *partials.AlertData
}

// Login — форма входа с селектором роли.
func Login(data *LoginPage) templ.Component {
	return layout("Вход", nil, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<section class="form-page"><h1>Вход</h1>`)

		if err := partials.Alert(data.Alert).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<form method="post" action="/Login" class="auth-form">`)

		b.WriteString(`<div class="form-field"><label for="role">Роль</label><select id="role" name="role">`)
		for _, role := range rbac.AllRoles {
			selected := ""
			if data.Role == role.String() {
				selected = " selected"
			}
			fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`,
				templ.EscapeString(role.String()), selected, templ.EscapeString(role.String()))
		}
		b.WriteString(`</select></div>`)

		fmt.Fprintf(&b, `<div class="form-field"><label for="username">Email</label>`+
			`<input type="text" id="username" name="username" value="%s" required></div>`,
			templ.EscapeString(data.Username))
		b.WriteString(`<div class="form-field"><label for="password">Пароль</label>` +
			`<input type="password" id="password" name="password" required></div>`)

		b.WriteString(`<button type="submit" class="btn btn-primary">Войти</button></form></section>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

// RegisterPage — данные формы регистрации (студент или ментор).
type RegisterPage struct {
	// Values — введённые значения по именам полей (сохраняются при ошибке).
	Values map[string]string
	// Errors — ошибки валидации по именам полей.
	Errors forms.Errors
	// Alert — ошибка шлюза или соединения.
	Alert *partials.AlertData
}

// registerField рендерит поле формы регистрации с inline-ошибкой.
func registerField(b *strings.Builder, data *RegisterPage, name, label string) {
	fmt.Fprintf(b, `<div class="form-field"><label for="%s">%s</label>`, name, templ.EscapeString(label))
	fmt.Fprintf(b, `<input type="text" id="%s" name="%s" value="%s">`,
		name, name, templ.EscapeString(data.Values[name]))
	if msg := data.Errors.Get(name); msg != "" {
		fmt.Fprintf(b, `<span class="field-error">%s</span>`, templ.EscapeString(msg))
	}
	b.WriteString(`</div>`)
}

// StudentRegister — форма регистрации студента.
func StudentRegister(data *RegisterPage) templ.Component {
	return layout("Регистрация студента", nil, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<section class="form-page"><h1>Регистрация студента</h1>`)
		if err := partials.Alert(data.Alert).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<form method="post" action="/StudentRegister" class="auth-form">`)
		registerField(&b, data, "fullName", "Полное имя")
		registerField(&b, data, "email", "Email")
		registerField(&b, data, "phoneNumber", "Телефон")
		registerField(&b, data, "RollNumber", "Номер зачётки")
		registerField(&b, data, "collegeName", "Колледж")
		registerField(&b, data, "stateOfResidence", "Штат проживания")
		b.WriteString(`<button type="submit" class="btn btn-primary">Отправить заявку</button></form></section>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

// MentorRegister — форма регистрации ментора.
func MentorRegister(data *RegisterPage) templ.Component {
	return layout("Регистрация ментора", nil, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<section class="form-page"><h1>Регистрация ментора</h1>`)
		if err := partials.Alert(data.Alert).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<form method="post" action="/MentorRegister" class="auth-form">`)
		registerField(&b, data, "fullName", "Полное имя")
		registerField(&b, data, "email", "Email")
		registerField(&b, data, "phoneNumber", "Телефон")
		registerField(&b, data, "mbbsNumber", "Номер MBBS")
		registerField(&b, data, "specialization", "Специализация")
		registerField(&b, data, "collegeName", "Колледж")
		registerField(&b, data, "stateOfResidence", "Штат проживания")
		b.WriteString(`<button type="submit" class="btn btn-primary">Отправить заявку</button></form></section>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

// ResetPage — данные формы первичной смены пароля.
type ResetPage struct {
	User   *NavUser
	Errors forms.Errors
	Alert  *partials.AlertData
}

// Reset — форма смены пароля при первом входе.
func Reset(data *ResetPage) templ.Component {
	return layout("Смена пароля", data.User, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<section class="form-page"><h1>Смена пароля</h1>`)
		b.WriteString(`<p>Это ваш первый вход. Установите новый пароль, чтобы продолжить.</p>`)
		if err := partials.Alert(data.Alert).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<form method="post" action="/reset" class="auth-form">`)
		for _, f := range []struct{ name, label string }{
			{"oldPassword", "Текущий пароль"},
			{"newPassword", "Новый пароль"},
			{"confirmNewPassword", "Подтверждение пароля"},
		} {
			fmt.Fprintf(&b, `<div class="form-field"><label for="%s">%s</label>`+
				`<input type="password" id="%s" name="%s">`, f.name, templ.EscapeString(f.label), f.name, f.name)
			if msg := data.Errors.Get(f.name); msg != "" {
				fmt.Fprintf(&b, `<span class="field-error">%s</span>`, templ.EscapeString(msg))
			}
			b.WriteString(`</div>`)
		}
		b.WriteString(`<button type="submit" class="btn btn-primary">Сменить пароль</button></form></section>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}
