// Пакет pages — страницы портала как templ-компоненты.
// Вёрстка минимальна: стили в /static/css/app.css, интерактив таблиц — HTMX.
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/joinfdhs/regportal/internal/domain/rbac"
)

// NavUser — данные залогиненного пользователя для шапки страницы.
type NavUser struct {
	FullName string
	Role     rbac.Role
}

// layout оборачивает содержимое страницы в общий каркас: head со стилями
// и HTMX, шапка с навигацией, подвал.
func layout(title string, user *NavUser, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="ru"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<title>%s — Портал FDHS</title>`, templ.EscapeString(title))
		b.WriteString(`<link rel="stylesheet" href="/static/css/app.css">`)
		b.WriteString(`<script src="/static/js/portal.js" defer></script>`)
		b.WriteString(`</head><body>`)

		b.WriteString(`<header class="topbar"><a class="brand" href="/">Портал FDHS</a><nav>`)
		if user == nil {
			b.WriteString(`<a href="/Login">Вход</a>`)
			b.WriteString(`<a href="/StudentRegister">Регистрация студента</a>`)
			b.WriteString(`<a href="/MentorRegister">Регистрация ментора</a>`)
		} else {
			fmt.Fprintf(&b, `<span class="whoami">%s (%s)</span>`,
				templ.EscapeString(user.FullName), templ.EscapeString(user.Role.String()))
			b.WriteString(`<form method="post" action="/logout" class="inline"><button type="submit" class="btn btn-link">Выйти</button></form>`)
		}
		b.WriteString(`</nav></header>`)

		b.WriteString(`<main class="container">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		if err := content.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// raw — компонент из готовой HTML-строки (для статических блоков).
func raw(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}
