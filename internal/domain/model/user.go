// Пакет model — доменные модели портала.
// Все структуры — read-only проекции данных шлюза: портал их не мутирует,
// только перечитывает (re-fetch после действий).
package model

// UserRecord — строка таблицы зарегистрированных пользователей.
// Поля заполняются из ответа GET /GetDataFromUsertype; отсутствующие
// значения остаются пустыми строками и отображаются как "N/A".
type UserRecord struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	CollegeName string `json:"collegeName"`
	UserType    string `json:"userType"`

	// Опциональные роль-специфичные поля.
	StateOfResidence        string     `json:"stateOfResidence,omitempty"`
	MBBSNumber              string     `json:"mbbsNumber,omitempty"`
	Specialization          string     `json:"specialization,omitempty"`
	StudentEnrollmentNumber string     `json:"studentEnrollmentNumber,omitempty"`
	SubmitDate              *Timestamp `json:"submitDate,omitempty"`
}

// Статусы заявки на регистрацию. Жизненный цикл: new → approve | deny.
// Переходы выполняет шлюз; портал только наблюдает и инициирует их.
const (
	ApplicationStatusNew     = "new"
	ApplicationStatusApprove = "approve"
	ApplicationStatusDeny    = "deny"
)

// RegistrationApplication — заявка на регистрацию, ожидающая решения админа.
// В ответе GET /getRegistrationApplicationByStatus поля строки вложены
// в объект data.
type RegistrationApplication struct {
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	PhoneNumber      string     `json:"phoneNumber"`
	CollegeName      string     `json:"collegeName"`
	StateOfResidence string     `json:"stateOfResidence"`
	MBBSNumber       string     `json:"mbbsNumber"`
	Specialization   string     `json:"specialization"`
	Status           string     `json:"status"`
	ProcessedBy      string     `json:"processedBy"`
	ProcessedDate    string     `json:"processedDate"`
	SubmitDate       *Timestamp `json:"submitDate,omitempty"`
}

// Profile — профиль пользователя (ответ GET /getUserProfile).
// Набор значимых полей зависит от роли: EmployeeID у админов,
// MBBSNumber/Specialization у менторов, RollNumber у студентов.
type Profile struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	StateOfResidence string `json:"stateOfResidence"`
	CollegeName      string `json:"collegeName"`
	EmployeeID       string `json:"EmployeeID"`
	MBBSNumber       string `json:"mbbsNumber"`
	Specialization   string `json:"specialization"`
	RollNumber       string `json:"RollNumber"`
	UserType         string `json:"userType"`
}

// Timestamp — серверный формат даты шлюза (Firestore-подобный):
// {"_seconds": N, "_nanoseconds": M}.
type Timestamp struct {
	Seconds     int64 `json:"_seconds"`
	Nanoseconds int64 `json:"_nanoseconds"`
}
