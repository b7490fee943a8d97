package api

import (
	ozzo "github.com/go-ozzo/ozzo-validation"

	"github.com/iudanet/blogapi/internal/validation"
)

// SignUpRequest представляет запрос на регистрацию нового пользователя
type SignUpRequest struct {
	Email           string `json:"email"`            // email, он же логин
	Password        string `json:"password"`         // пароль в открытом виде
	ConfirmPassword string `json:"confirm_password"` // подтверждение пароля
	Name            string `json:"name"`             // отображаемое имя
}

// Validate проверяет поля запроса. Совпадение пароля и подтверждения
// проверяется при регистрации.
func (r SignUpRequest) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Email, validation.EmailRules()...),
		ozzo.Field(&r.Password, validation.PasswordRules()...),
		ozzo.Field(&r.ConfirmPassword, ozzo.Required),
		ozzo.Field(&r.Name, ozzo.Required, validation.NotBlank, ozzo.Length(1, 100)),
	)
}

// SignUpResponse представляет ответ на успешную регистрацию
type SignUpResponse struct {
	ID    string `json:"id"`    // UUID пользователя
	Email string `json:"email"` // email в нижнем регистре
	Name  string `json:"name"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate проверяет наличие обязательных полей
func (r LoginRequest) Validate() error {
	return ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Email, ozzo.Required),
		ozzo.Field(&r.Password, ozzo.Required),
	)
}

// AuthResponse представляет ответ с access токеном
type AuthResponse struct {
	Token     string `json:"token"`      // JWT access token
	ExpiresIn int64  `json:"expires_in"` // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Details map[string]string `json:"details,omitempty"` // ошибки по полям запроса
	Error   string            `json:"error"`             // текст HTTP статуса
	Message string            `json:"message,omitempty"` // описание ошибки
	Status  int               `json:"status"`            // HTTP статус
}
