// Пакет forms — серверная валидация HTML-форм портала.
// Валидаторы возвращают ошибки по именам полей; обработчики рендерят их
// inline рядом с полями. Валидация выполняется до обращения к шлюзу:
// невалидная форма никогда не порождает сетевой вызов.
package forms

import "regexp"

var (
	// emailRe — примитивная проверка формы email (локальная часть@домен.зона).
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// phoneRe — телефон: ровно 10 цифр, без разделителей.
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// Минимальная длина нового пароля.
const MinPasswordLength = 6

// Errors — ошибки валидации по именам полей формы.
type Errors map[string]string

// Any сообщает, есть ли хотя бы одна ошибка.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Get возвращает текст ошибки поля (пустая строка — поле валидно).
func (e Errors) Get(field string) string {
	return e[field]
}

// Required добавляет ошибку, если значение поля пустое.
func (e Errors) Required(field, value, label string) {
	if value == "" {
		e[field] = label + ": обязательное поле"
	}
}

// Email добавляет ошибку, если значение не похоже на email.
// Пустое значение пропускается (комбинируйте с Required).
func (e Errors) Email(field, value string) {
	if value == "" {
		return
	}
	if !emailRe.MatchString(value) {
		e[field] = "Некорректный адрес электронной почты"
	}
}

// Phone добавляет ошибку, если значение — не 10 цифр.
// Пустое значение пропускается (комбинируйте с Required).
func (e Errors) Phone(field, value string) {
	if value == "" {
		return
	}
	if !phoneRe.MatchString(value) {
		e[field] = "Телефон должен состоять ровно из 10 цифр"
	}
}

// PasswordTriple — композитное правило смены пароля.
// Все три поля пустые — смена не запрошена, правило молчит.
// Заполнено хотя бы одно — обязательны все три, новый пароль должен
// совпадать с подтверждением и быть не короче MinPasswordLength.
func (e Errors) PasswordTriple(oldPassword, newPassword, confirmNewPassword string) {
	if oldPassword == "" && newPassword == "" && confirmNewPassword == "" {
		return
	}

	e.Required("oldPassword", oldPassword, "Текущий пароль")
	e.Required("newPassword", newPassword, "Новый пароль")
	e.Required("confirmNewPassword", confirmNewPassword, "Подтверждение пароля")
	// Только ошибки самой тройки: ошибки других полей формы не должны
	// гасить проверку длины и совпадения
	if e["oldPassword"] != "" || e["newPassword"] != "" || e["confirmNewPassword"] != "" {
		return
	}

	if len(newPassword) < MinPasswordLength {
		e["newPassword"] = "Новый пароль должен быть не короче 6 символов"
		return
	}
	if newPassword != confirmNewPassword {
		e["confirmNewPassword"] = "Пароли не совпадают"
	}
}

// PasswordChangeRequested сообщает, запрошена ли смена пароля
// (заполнено хотя бы одно поле тройки).
func PasswordChangeRequested(oldPassword, newPassword, confirmNewPassword string) bool {
	return oldPassword != "" || newPassword != "" || confirmNewPassword != ""
}

// New создаёт пустой набор ошибок.
func New() Errors {
	return make(Errors)
}
