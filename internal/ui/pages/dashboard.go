// dashboard.go — страницы личных кабинетов: админ, ментор, студент.
// Внутреннее состояние кабинета — query-параметр view; меню слева
// переключает разделы обычными ссылками.
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/joinfdhs/regportal/internal/domain/model"
	"github.com/joinfdhs/regportal/internal/ui/pages/partials"
)

// Разделы кабинета (значения query-параметра view).
const (
	ViewDashboard       = "dashboard"
	ViewRegisteredUsers = "registeredUsers"
	ViewSettings        = "settings"
)

// menuItem — пункт бокового меню кабинета.
type menuItem struct {
	Label  string
	Href   string
	Active bool
}

// dashboardLayout оборачивает содержимое раздела в каркас кабинета с меню.
func dashboardLayout(title string, user *NavUser, menu []menuItem, content templ.Component) templ.Component {
	inner := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<div class="dashboard"><aside class="sidebar"><ul>`)
		for _, item := range menu {
			class := ""
			if item.Active {
				class = ` class="active"`
			}
			fmt.Fprintf(&b, `<li%s><a href="%s">%s</a></li>`,
				class, templ.EscapeString(item.Href), templ.EscapeString(item.Label))
		}
		b.WriteString(`</ul></aside><div class="content">`)

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></div>`)
		return err
	})

	return layout(title, user, inner)
}

// AdminDashboardPage — данные кабинета администратора.
type AdminDashboardPage struct {
	User *NavUser
	View string

	// Раздел dashboard: заявки со статусом new.
	Applications []model.RegistrationApplication
	AppsAlert    *partials.AlertData

	// Раздел registeredUsers: независимые таблицы менторов и студентов.
	Mentors       []model.UserRecord
	MentorsAlert  *partials.AlertData
	Students      []model.UserRecord
	StudentsAlert *partials.AlertData

	// Раздел settings.
	Profile *partials.ProfileFormData
}

// AdminDashboard — кабинет администратора и суперадминистратора.
func AdminDashboard(data *AdminDashboardPage) templ.Component {
	menu := []menuItem{
		{Label: "Заявки", Href: "/admin-dashboard?view=" + ViewDashboard, Active: data.View == ViewDashboard},
		{Label: "Пользователи", Href: "/admin-dashboard?view=" + ViewRegisteredUsers, Active: data.View == ViewRegisteredUsers},
		{Label: "Настройки", Href: "/admin-dashboard?view=" + ViewSettings, Active: data.View == ViewSettings},
	}

	var content templ.Component
	switch data.View {
	case ViewRegisteredUsers:
		content = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			mentors := partials.UserTable("mentors", "Менторы",
				"/admin-dashboard/partials/mentors", data.Mentors, data.MentorsAlert)
			if err := mentors.Render(ctx, w); err != nil {
				return err
			}
			students := partials.UserTable("students", "Студенты",
				"/admin-dashboard/partials/students", data.Students, data.StudentsAlert)
			return students.Render(ctx, w)
		})
	case ViewSettings:
		content = partials.ProfileForm(data.Profile)
	default:
		content = partials.ApplicationsTable(data.Applications, data.AppsAlert)
	}

	return dashboardLayout("Кабинет администратора", data.User, menu, content)
}

// MentorDashboardPage — данные кабинета ментора.
type MentorDashboardPage struct {
	User *NavUser
	View string

	Students      []model.UserRecord
	StudentsAlert *partials.AlertData

	Profile *partials.ProfileFormData
}

// MentorDashboard — кабинет ментора: список студентов и настройки.
func MentorDashboard(data *MentorDashboardPage) templ.Component {
	menu := []menuItem{
		{Label: "Студенты", Href: "/mentor-dashboard?view=" + ViewDashboard, Active: data.View == ViewDashboard},
		{Label: "Настройки", Href: "/mentor-dashboard?view=" + ViewSettings, Active: data.View == ViewSettings},
	}

	var content templ.Component
	switch data.View {
	case ViewSettings:
		content = partials.ProfileForm(data.Profile)
	default:
		content = partials.UserTable("students", "Студенты",
			"/mentor-dashboard/partials/students", data.Students, data.StudentsAlert)
	}

	return dashboardLayout("Кабинет ментора", data.User, menu, content)
}

// StudentDashboardPage — данные кабинета студента.
type StudentDashboardPage struct {
	User *NavUser
	View string

	Profile *partials.ProfileFormData
}

// StudentDashboard — кабинет студента. Пункт «Обучение» ведёт на отдельный
// маршрут зачисления; внутри страницы рендерится только раздел настроек.
func StudentDashboard(data *StudentDashboardPage) templ.Component {
	menu := []menuItem{
		{Label: "Обучение", Href: "/student-dashboard/enrol", Active: false},
		{Label: "Настройки", Href: "/student-dashboard?view=" + ViewSettings, Active: data.View == ViewSettings},
	}

	content := partials.ProfileForm(data.Profile)

	return dashboardLayout("Кабинет студента", data.User, menu, content)
}

// StudentEnrol — страница зачисления студента (основной раздел кабинета).
func StudentEnrol(user *NavUser) templ.Component {
	menu := []menuItem{
		{Label: "Обучение", Href: "/student-dashboard/enrol", Active: true},
		{Label: "Настройки", Href: "/student-dashboard?view=" + ViewSettings, Active: false},
	}

	content := raw(`<section class="enrol">` +
		`<h2>Обучение</h2>` +
		`<p>Здесь появятся доступные курсы и статус вашего зачисления. ` +
		`Следите за объявлениями платформы.</p>` +
		`</section>`)

	return dashboardLayout("Кабинет студента", user, menu, content)
}
