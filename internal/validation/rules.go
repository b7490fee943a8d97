// Package validation содержит общие правила проверки входных данных API
// поверх ozzo-validation.
package validation

import (
	"errors"
	"fmt"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

const (
	// MinPasswordLen минимальная длина пароля при регистрации
	MinPasswordLen = 8
	// MaxPasswordLen ограничение bcrypt на длину пароля в байтах
	MaxPasswordLen = 72
	// MaxEmailLen максимальная длина email
	MaxEmailLen = 254
)

// EmailRules правила для email адреса.
func EmailRules() []ozzo.Rule {
	return []ozzo.Rule{
		ozzo.Required,
		ozzo.Length(3, MaxEmailLen),
		is.Email,
	}
}

// PasswordRules правила для пароля нового пользователя.
func PasswordRules() []ozzo.Rule {
	return []ozzo.Rule{
		ozzo.Required,
		ozzo.Length(MinPasswordLen, MaxPasswordLen),
	}
}

// UUID проверяет, что строка является корректным UUID.
// Пустая строка пропускается, обязательность задается ozzo.Required.
var UUID = ozzo.By(func(value interface{}) error {
	s, err := asString(value)
	if err != nil || s == "" {
		return err
	}
	if _, err := uuid.Parse(s); err != nil {
		return errors.New("must be a valid UUID")
	}
	return nil
})

// EachString применяет правила к каждому элементу []string.
// Ошибка содержит индекс первого невалидного элемента.
func EachString(rules ...ozzo.Rule) ozzo.Rule {
	return ozzo.By(func(value interface{}) error {
		items, ok := value.([]string)
		if !ok {
			return fmt.Errorf("must be a list of strings")
		}
		for i, item := range items {
			if err := ozzo.Validate(item, rules...); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	})
}

// UniqueFold отклоняет []string с повторами без учета регистра и
// окружающих пробелов.
var UniqueFold = ozzo.By(func(value interface{}) error {
	items, ok := value.([]string)
	if !ok {
		return fmt.Errorf("must be a list of strings")
	}
	seen := make(map[string]int, len(items))
	for i, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if first, dup := seen[key]; dup {
			return fmt.Errorf("item %d: duplicates item %d (%s)", i, first, item)
		}
		seen[key] = i
	}
	return nil
})

// NotBlank отклоняет строки, состоящие только из пробелов.
var NotBlank = ozzo.By(func(value interface{}) error {
	s, err := asString(value)
	if err != nil || s == "" {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case *string:
		if v == nil {
			return "", nil
		}
		return *v, nil
	default:
		return "", fmt.Errorf("must be a string")
	}
}
