// Пакет middleware — HTTP middleware портала.
// auth.go — авторизатор маршрутов: проверка сессии из cookie и роли
// пользователя на каждом запросе.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joinfdhs/regportal/internal/domain/rbac"
	"github.com/joinfdhs/regportal/internal/ui/auth"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий).
type contextKey string

const (
	// ContextKeySession — данные сессии в контексте запроса.
	ContextKeySession contextKey = "portal_session"
)

// Authorizer — middleware авторизации маршрутов портала.
// Решение принимается синхронно по содержимому cookie, без обращения
// к шлюзу, и переоценивается на каждом запросе.
type Authorizer struct {
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewAuthorizer создаёт новый Authorizer.
func NewAuthorizer(sessionManager *auth.SessionManager, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "authorizer")),
	}
}

// Protect возвращает middleware, пускающее на маршрут только роли из allowed.
// Пустой allowed означает «любая аутентифицированная роль».
// Отсутствие или повреждение сессии → очистка cookie и redirect на главную;
// аутентифицирован, но роль не входит в allowed → redirect на /unauthorized.
func (a *Authorizer) Protect(allowed ...rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Извлекаем сессию из cookie
			session, err := a.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				a.logger.Debug("Ошибка чтения сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie эквивалентен отсутствию сессии
				a.sessionManager.ClearSessionCookie(w)
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			// 2. Сессия отсутствует — на главную
			if session == nil {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			// 3. Роль вне разрешённого набора — на /unauthorized
			if !session.Role.In(allowed) {
				a.logger.Debug("Доступ запрещён по роли",
					slog.String("username", session.Username),
					slog.String("role", session.Role.String()),
					slog.String("path", r.URL.Path),
				)
				http.Redirect(w, r, "/unauthorized", http.StatusFound)
				return
			}

			// 4. Помещаем сессию в контекст
			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil если сессия не найдена (маршрут не прошёл через Protect).
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeySession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}
