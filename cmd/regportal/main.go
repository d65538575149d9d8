// Точка входа портала регистрации FDHS.
// Загружает конфигурацию, создаёт клиент шлюза и менеджер сессий,
// инициализирует обработчики, запускает мониторинг зависимостей
// (topologymetrics) и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joinfdhs/regportal/internal/config"
	"github.com/joinfdhs/regportal/internal/gateway"
	"github.com/joinfdhs/regportal/internal/server"
	"github.com/joinfdhs/regportal/internal/service"
	"github.com/joinfdhs/regportal/internal/ui/auth"
	uihandlers "github.com/joinfdhs/regportal/internal/ui/handlers"
	uimiddleware "github.com/joinfdhs/regportal/internal/ui/middleware"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Портал регистрации запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("gateway_url", cfg.GatewayURL),
	)

	// 3. Клиент шлюза платформы
	gwClient, err := gateway.New(cfg.GatewayURL, cfg.GatewayCACertPath, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента шлюза", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Менеджер сессий (зашифрованная cookie)
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SecureCookie, cfg.SessionTTL)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Авторизатор маршрутов и обработчики
	authorizer := uimiddleware.NewAuthorizer(sessionMgr, logger)

	handlers := &server.Handlers{
		Auth:      uihandlers.NewAuthHandler(gwClient, sessionMgr, logger),
		Register:  uihandlers.NewRegisterHandler(gwClient, logger),
		Dashboard: uihandlers.NewDashboardHandler(gwClient, logger),
		Health:    server.NewHealthHandler(gwClient),
	}

	// 6. topologymetrics — мониторинг шлюза
	ctx := context.Background()
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"regportal",
		cfg.DephealthGroup,
		cfg.GatewayURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 7. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, handlers, authorizer)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Портал регистрации остановлен")
}
