// Пакет gateway — HTTP-клиент внешнего шлюза платформы регистрации.
// Шлюз — чёрный ящик: вся бизнес-логика на его стороне, портал только
// вызывает endpoints и отображает данные. Поддерживает TLS с кастомным CA
// (FP_GATEWAY_CA_CERT_PATH).
//
// Контракт авторизации: заголовок Authorization несёт сырое значение токена,
// без префикса схемы — фиксированный внешний контракт шлюза.
package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joinfdhs/regportal/internal/domain/model"
	"github.com/joinfdhs/regportal/internal/domain/rbac"
)

// ErrMalformedResponse — шлюз ответил успешным статусом, но тело не
// соответствует ожидаемой форме (например, data не массив).
// Обработчики деградируют такие списки до пустых, не роняя страницу.
var ErrMalformedResponse = errors.New("некорректный формат ответа шлюза")

// StatusError — ошибка со статус-кодом шлюза и серверным сообщением.
// Обработчики сопоставляют известные коды с пользовательскими сообщениями.
type StatusError struct {
	// StatusCode — HTTP статус ответа шлюза.
	StatusCode int
	// Message — текст из поля message (или error) тела ответа.
	Message string
}

// Error реализует интерфейс error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("шлюз вернул статус %d: %s", e.StatusCode, e.Message)
}

// AsStatusError извлекает *StatusError из цепочки ошибок.
// Возвращает nil, если ошибка не содержит статус-кода (сетевая и т.п.).
func AsStatusError(err error) *StatusError {
	var se *StatusError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// Client — HTTP-клиент шлюза.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент шлюза.
// baseURL — базовый URL шлюза (фиксирован для деплоймента).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
func New(baseURL, caCertPath string, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата шлюза: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат шлюза добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "gateway_client")),
	}, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// --- Логин ---

// LoginResult — успешный ответ шлюза на логин.
type LoginResult struct {
	IDToken     string `json:"idToken"`
	Username    string `json:"username"`
	UserType    string `json:"userType"`
	FullName    string `json:"fullName"`
	IsFirstTime bool   `json:"isFirstTime"`
}

// Login выполняет логин через шлюз. Endpoint выбирается по роли:
// Student использует /LOGINSTUDENT, остальные роли — /Login.
// Успех требует статуса 200 и всех обязательных полей ответа
// (idToken, userType, fullName, username); иначе — ошибка.
func (c *Client) Login(ctx context.Context, role rbac.Role, username, password string) (*LoginResult, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	resp, err := c.doJSON(ctx, http.MethodPost, role.LoginEndpoint(), "", body)
	if err != nil {
		return nil, fmt.Errorf("запрос логина: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("декодирование ответа логина: %w", err)
	}

	// Отсутствие обязательных полей — отказ, эквивалентный ошибке сети.
	if result.IDToken == "" || result.UserType == "" || result.FullName == "" || result.Username == "" {
		return nil, fmt.Errorf("ответ логина: %w: отсутствуют обязательные поля", ErrMalformedResponse)
	}

	return &result, nil
}

// --- Регистрация ---

// StudentRegistration — payload POST /StudentRegistration.
type StudentRegistration struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	RollNumber       string `json:"RollNumber"`
	CollegeName      string `json:"collegeName"`
	StateOfResidence string `json:"stateOfResidence"`
}

// MentorRegistration — payload POST /MentorRegistration.
type MentorRegistration struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	MBBSNumber       string `json:"mbbsNumber"`
	Specialization   string `json:"specialization"`
	CollegeName      string `json:"collegeName"`
	StateOfResidence string `json:"stateOfResidence"`
}

// RegisterStudent создаёт заявку на регистрацию студента.
// Успех — статус 201; прочие статусы возвращаются как *StatusError
// (401 — email, 402 — телефон, 404 — дубликат, 405 — отсутствующие поля).
func (c *Client) RegisterStudent(ctx context.Context, reg *StudentRegistration) error {
	return c.register(ctx, "/StudentRegistration", reg)
}

// RegisterMentor создаёт заявку на регистрацию ментора.
func (c *Client) RegisterMentor(ctx context.Context, reg *MentorRegistration) error {
	return c.register(ctx, "/MentorRegistration", reg)
}

// register выполняет POST регистрации на указанный endpoint.
func (c *Client) register(ctx context.Context, endpoint string, payload any) error {
	resp, err := c.doJSON(ctx, http.MethodPost, endpoint, "", payload)
	if err != nil {
		return fmt.Errorf("запрос регистрации: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return c.statusError(resp)
	}

	return nil
}

// --- Списки пользователей и заявок ---

// UsersByType возвращает список пользователей указанного типа.
// GET /GetDataFromUsertype?userType= — требует токен.
// Если поле data не массив — возвращает ErrMalformedResponse.
func (c *Client) UsersByType(ctx context.Context, token, userType string) ([]model.UserRecord, error) {
	endpoint := "/GetDataFromUsertype?userType=" + url.QueryEscape(userType)

	resp, err := c.doJSON(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, fmt.Errorf("запрос списка пользователей (%s): %w", userType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	// data валидируется отдельно: success-статус с не-массивом в data —
	// это malformed response, а не пустой список.
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("декодирование списка пользователей: %w: %w", ErrMalformedResponse, err)
	}

	var users []model.UserRecord
	if err := json.Unmarshal(envelope.Data, &users); err != nil {
		return nil, fmt.Errorf("поле data не является массивом: %w", ErrMalformedResponse)
	}

	return users, nil
}

// applicationEnvelope — элемент списка заявок: поля строки вложены в data.
type applicationEnvelope struct {
	Data model.RegistrationApplication `json:"data"`
}

// ApplicationsByStatus возвращает заявки на регистрацию с указанным статусом.
// GET /getRegistrationApplicationByStatus?status= — требует токен.
func (c *Client) ApplicationsByStatus(ctx context.Context, token, status string) ([]model.RegistrationApplication, error) {
	endpoint := "/getRegistrationApplicationByStatus?status=" + url.QueryEscape(status)

	resp, err := c.doJSON(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, fmt.Errorf("запрос списка заявок (%s): %w", status, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var envelope struct {
		UserDetails json.RawMessage `json:"userDetails"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("декодирование списка заявок: %w: %w", ErrMalformedResponse, err)
	}

	var items []applicationEnvelope
	if err := json.Unmarshal(envelope.UserDetails, &items); err != nil {
		return nil, fmt.Errorf("поле userDetails не является массивом: %w", ErrMalformedResponse)
	}

	apps := make([]model.RegistrationApplication, 0, len(items))
	for _, item := range items {
		apps = append(apps, item.Data)
	}

	return apps, nil
}

// --- Обработка заявок ---

// ProcessOutcome — исход обработки заявки. Статусы 200, 201 и 409 —
// различимые не-ошибочные исходы (approve выполнен, пользователь создан,
// пользователь уже зарегистрирован).
type ProcessOutcome struct {
	// StatusCode — HTTP статус ответа шлюза (200, 201 или 409).
	StatusCode int
	// Message — серверное сообщение для отображения пользователю.
	Message string
}

// ProcessApplication выполняет approve/deny заявки.
// POST /registerUser {username, status, remarks: ""} — требует токен.
func (c *Client) ProcessApplication(ctx context.Context, token, email, status string) (*ProcessOutcome, error) {
	body := map[string]string{
		"username": email,
		"status":   status,
		"remarks":  "",
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/registerUser", token, body)
	if err != nil {
		return nil, fmt.Errorf("запрос обработки заявки: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		return &ProcessOutcome{
			StatusCode: resp.StatusCode,
			Message:    readMessage(resp.Body),
		}, nil
	default:
		return nil, c.statusError(resp)
	}
}

// --- Профиль ---

// Profile возвращает профиль пользователя.
// GET /getUserProfile?username= — требует токен.
func (c *Client) Profile(ctx context.Context, token, username string) (*model.Profile, error) {
	endpoint := "/getUserProfile?username=" + url.QueryEscape(username)

	resp, err := c.doJSON(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, fmt.Errorf("запрос профиля: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var profile model.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("декодирование профиля: %w: %w", ErrMalformedResponse, err)
	}

	return &profile, nil
}

// ProfileUpdate — payload обновления профиля. Поля с omitempty включаются
// только при наличии значения; парольная тройка — только целиком
// (инвариант проверяется на уровне формы до вызова шлюза).
type ProfileUpdate struct {
	FullName         string `json:"fullName"`
	PhoneNumber      string `json:"phoneNumber"`
	StateOfResidence string `json:"stateOfResidence,omitempty"`
	CollegeName      string `json:"collegeName,omitempty"`
	EmployeeID       string `json:"EmployeeID,omitempty"`
	MBBSNumber       string `json:"mbbsNumber,omitempty"`
	Specialization   string `json:"specialization,omitempty"`
	RollNumber       string `json:"RollNumber,omitempty"`

	OldPassword        string `json:"oldPassword,omitempty"`
	NewPassword        string `json:"newPassword,omitempty"`
	ConfirmNewPassword string `json:"confirmNewPassword,omitempty"`
}

// UpdateProfile обновляет профиль пользователя через endpoint его роли.
// Возвращает серверное сообщение об успехе.
func (c *Client) UpdateProfile(ctx context.Context, token string, role rbac.Role, update *ProfileUpdate) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, role.UpdateProfileEndpoint(), token, update)
	if err != nil {
		return "", fmt.Errorf("запрос обновления профиля: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError(resp)
	}

	return readMessage(resp.Body), nil
}

// --- Readiness ---

// CheckReady проверяет доступность шлюза для readiness probe.
// Любой HTTP-ответ означает достижимость; ошибка транспорта — fail.
func (c *Client) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "fail", err.Error()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("шлюз недоступен: %v", err)
	}
	defer resp.Body.Close()

	return "ok", fmt.Sprintf("шлюз отвечает (статус %d)", resp.StatusCode)
}

// BaseURL возвращает базовый URL шлюза (для dephealth-метрик).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- HTTP helpers ---

// doJSON выполняет HTTP-запрос к шлюзу.
// token — сырое значение Authorization (пустая строка — без авторизации).
// body — сериализуется в JSON (nil — без тела).
func (c *Client) doJSON(ctx context.Context, method, endpoint, token string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("сериализация тела запроса: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Сырой токен без префикса схемы — контракт шлюза.
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	return c.httpClient.Do(req)
}

// statusError строит *StatusError из не-успешного ответа шлюза.
func (c *Client) statusError(resp *http.Response) error {
	msg := readMessage(resp.Body)

	c.logger.Debug("Шлюз вернул ошибочный статус",
		slog.Int("status", resp.StatusCode),
		slog.String("message", msg),
	)

	return &StatusError{
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}

// readMessage извлекает серверное сообщение из тела ответа.
// Шлюз использует поле message; некоторые endpoints отвечают полем error.
func readMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return ""
	}

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}

	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Error
}
