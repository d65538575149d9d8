// recover.go — глобальная граница ошибок: перехват паник в обработчиках.
// Паника не должна ронять процесс или обрывать соединение без ответа —
// пользователь получает страницу 500, инцидент уходит в лог.
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer возвращает middleware, перехватывающий паники обработчиков.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With(slog.String("component", "recoverer"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					// http.ErrAbortHandler — штатный механизм обрыва, пропускаем
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					log.Error("Паника в обработчике",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)

					http.Error(w, "Внутренняя ошибка сервера. Попробуйте ещё раз.", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
