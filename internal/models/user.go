package models

import "time"

// User представляет автора блога
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время создания
	UpdatedAt    time.Time `json:"updated_at"` // время последнего обновления
	ID           string    `json:"id"`         // UUID пользователя
	Email        string    `json:"email"`      // уникальный email, хранится в нижнем регистре
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля
	Name         string    `json:"name"`       // отображаемое имя
}
