// Пакет config — загрузка и валидация конфигурации портала регистрации
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации портала.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Шлюз ---

	// Базовый URL внешнего шлюза (например, https://gateway.joinfdhs.org)
	GatewayURL string
	// Путь к CA-сертификату для TLS-соединений со шлюзом (опционально)
	GatewayCACertPath string

	// --- Сессии ---

	// Секрет шифрования сессионной cookie (минимум 32 символа)
	SessionSecret string
	// Время жизни сессионной cookie
	SessionTTL time.Duration
	// Выставлять ли флаг Secure на cookie (true за TLS-терминатором)
	SecureCookie bool

	// --- Мониторинг ---

	// Имя группы topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// FP_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("FP_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("FP_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("FP_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// FP_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("FP_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("FP_LOG_LEVEL: %w", err)
	}

	// FP_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("FP_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FP_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Шлюз ---

	// FP_GATEWAY_URL — обязательный
	cfg.GatewayURL, err = getEnvRequired("FP_GATEWAY_URL")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.GatewayURL = strings.TrimRight(cfg.GatewayURL, "/")

	// FP_GATEWAY_CA_CERT_PATH — путь к CA-сертификату шлюза (опционально)
	cfg.GatewayCACertPath = getEnvDefault("FP_GATEWAY_CA_CERT_PATH", "")

	// --- Сессии ---

	// FP_SESSION_SECRET — обязательный, минимум 32 символа
	cfg.SessionSecret, err = getEnvRequired("FP_SESSION_SECRET")
	if err != nil {
		return nil, err
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("FP_SESSION_SECRET: длина %d меньше минимальной (32 символа)", len(cfg.SessionSecret))
	}

	// FP_SESSION_TTL — время жизни сессии (по умолчанию 24h)
	cfg.SessionTTL, err = getEnvDuration("FP_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("FP_SESSION_TTL: %w", err)
	}

	// FP_SECURE_COOKIE — флаг Secure на cookie (по умолчанию false)
	cfg.SecureCookie, err = getEnvBool("FP_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("FP_SECURE_COOKIE: %w", err)
	}

	// --- Мониторинг ---

	// FP_DEPHEALTH_GROUP — имя группы topologymetrics (по умолчанию fdhs)
	cfg.DephealthGroup = getEnvDefault("FP_DEPHEALTH_GROUP", "fdhs")

	// FP_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("FP_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FP_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// FP_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("FP_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
