// Пакет rbac — роли пользователей портала и правила маршрутизации по ролям.
// Роль приходит от шлюза как открытая строка (userType); внутри портала
// используется закрытый enum с исчерпывающим сопоставлением — неизвестная
// роль является жёсткой ошибкой на этапе парсинга, а не runtime-fallback.
package rbac

import "fmt"

// Role — закрытый тип роли пользователя.
type Role string

// Роли, известные порталу. Значения совпадают с wire-форматом шлюза
// (поле userType в ответе Login).
const (
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "Super admin"
	RoleMentor     Role = "Mentor"
	RoleStudent    Role = "Student"
)

// AllRoles — все роли в порядке отображения на странице логина.
var AllRoles = []Role{RoleAdmin, RoleSuperAdmin, RoleMentor, RoleStudent}

// ParseRole преобразует строку userType от шлюза в Role.
// Единственное место, где неизвестная строка превращается в ошибку.
func ParseRole(userType string) (Role, error) {
	switch Role(userType) {
	case RoleAdmin, RoleSuperAdmin, RoleMentor, RoleStudent:
		return Role(userType), nil
	default:
		return "", fmt.Errorf("неизвестная роль пользователя: %q", userType)
	}
}

// String возвращает wire-представление роли.
func (r Role) String() string {
	return string(r)
}

// DashboardPath возвращает маршрут дашборда роли после успешного логина.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return "/admin-dashboard"
	case RoleMentor:
		return "/mentor-dashboard"
	case RoleStudent:
		return "/student-dashboard/enrol"
	}
	// Недостижимо для значений, прошедших ParseRole.
	return "/"
}

// LoginEndpoint возвращает endpoint логина на шлюзе.
// Student использует отдельный endpoint — фиксированный внешний контракт.
func (r Role) LoginEndpoint() string {
	if r == RoleStudent {
		return "/LOGINSTUDENT"
	}
	return "/Login"
}

// ListingUserType возвращает значение query-параметра userType для
// GetDataFromUsertype. Шлюз ожидает его в нижнем регистре, в отличие
// от wire-формата роли в ответе Login — фиксированный внешний контракт.
func (r Role) ListingUserType() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleSuperAdmin:
		return "super admin"
	case RoleMentor:
		return "mentor"
	case RoleStudent:
		return "student"
	}
	return ""
}

// UpdateProfileEndpoint возвращает endpoint обновления профиля роли.
func (r Role) UpdateProfileEndpoint() string {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return "/UpdateAdminAndSuperAdminProfile"
	case RoleMentor:
		return "/UpdateMentorProfile"
	case RoleStudent:
		return "/UpdateStudentProfile"
	}
	return ""
}

// In проверяет, входит ли роль в набор allowed.
// Пустой набор означает «любая аутентифицированная роль».
func (r Role) In(allowed []Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
