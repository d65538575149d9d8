// Пакет server — HTTP-сервер портала с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joinfdhs/regportal/internal/config"
	"github.com/joinfdhs/regportal/internal/domain/rbac"
	"github.com/joinfdhs/regportal/internal/ui/handlers"
	"github.com/joinfdhs/regportal/internal/ui/middleware"
	"github.com/joinfdhs/regportal/internal/ui/static"
)

// Handlers — набор обработчиков, монтируемых в маршруты сервера.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Register  *handlers.RegisterHandler
	Dashboard *handlers.DashboardHandler
	Health    *HealthHandler
}

// Server — HTTP-сервер портала.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// authorizer гейтит кабинеты по ролям; публичные маршруты идут мимо него.
func New(cfg *config.Config, logger *slog.Logger, h *Handlers, authorizer *middleware.Authorizer) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// --- Публичные маршруты ---
	router.Get("/", h.Auth.HandleLanding)
	router.Get("/Login", h.Auth.ShowLogin)
	router.Post("/Login", h.Auth.HandleLogin)
	router.Post("/logout", h.Auth.HandleLogout)
	router.Get("/unauthorized", h.Auth.HandleUnauthorized)

	router.Get("/StudentRegister", h.Register.ShowStudentForm)
	router.Post("/StudentRegister", h.Register.HandleStudentForm)
	router.Get("/MentorRegister", h.Register.ShowMentorForm)
	router.Post("/MentorRegister", h.Register.HandleMentorForm)

	// --- Первичная смена пароля (любая аутентифицированная роль) ---
	router.Group(func(r chi.Router) {
		r.Use(authorizer.Protect())
		r.Get("/reset", h.Auth.ShowReset)
		r.Post("/reset", h.Auth.HandleReset)
	})

	// --- Кабинет администратора ---
	router.Route("/admin-dashboard", func(r chi.Router) {
		r.Use(authorizer.Protect(rbac.RoleAdmin, rbac.RoleSuperAdmin))
		r.Get("/", h.Dashboard.HandleAdminDashboard)
		r.Post("/applications/process", h.Dashboard.HandleProcessApplication)
		r.Get("/partials/applications", h.Dashboard.HandleApplicationsPartial)
		r.Get("/partials/mentors", h.Dashboard.HandleMentorsPartial)
		r.Get("/partials/students", h.Dashboard.HandleStudentsPartial)
		r.Post("/profile", h.Dashboard.HandleAdminProfile)
	})

	// --- Кабинет ментора ---
	router.Route("/mentor-dashboard", func(r chi.Router) {
		r.Use(authorizer.Protect(rbac.RoleMentor))
		r.Get("/", h.Dashboard.HandleMentorDashboard)
		r.Get("/partials/students", h.Dashboard.HandleMentorStudentsPartial)
		r.Post("/profile", h.Dashboard.HandleMentorProfile)
	})

	// --- Кабинет студента ---
	router.Route("/student-dashboard", func(r chi.Router) {
		r.Use(authorizer.Protect(rbac.RoleStudent))
		r.Get("/", h.Dashboard.HandleStudentDashboard)
		r.Get("/enrol", h.Dashboard.HandleStudentEnrol)
		r.Post("/profile", h.Dashboard.HandleStudentProfile)
	})

	// --- Health, метрики, статика ---
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
