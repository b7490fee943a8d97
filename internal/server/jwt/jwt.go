// Package jwt выпускает и проверяет подписанные HS256 access токены.
//
// Codec не хранит состояния кроме секрета и источника времени, поэтому
// один экземпляр безопасно использовать из любого числа горутин.
package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// MinSecretLen минимальная длина HMAC ключа в байтах (256 бит для HS256)
const MinSecretLen = 32

// MinTTL минимальный срок жизни токена: exp хранится с точностью до секунды
const MinTTL = time.Second

var (
	// ErrTokenInvalid возвращается для любого токена, который нельзя принять:
	// поврежденного, с неверной подписью, чужим алгоритмом или истекшего.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrInvalidArgument возвращается Encode при пустом subject или неположительном ttl.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrWeakSecret возвращается для пустого или слишком короткого секрета.
	ErrWeakSecret = errors.New("jwt secret is too short")
)

// registered claims, которые Encode выставляет сам и не принимает из extraClaims
var registeredClaims = map[string]struct{}{
	"sub": {}, "iat": {}, "exp": {}, "nbf": {}, "iss": {}, "aud": {}, "jti": {},
}

// Claims содержимое проверенного токена.
type Claims struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
	Subject   string
}

// Codec кодирует и проверяет токены.
type Codec struct {
	now    func() time.Time
	secret []byte
}

// Option настраивает Codec.
type Option func(*Codec)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec создает Codec. secret уже декодирован из base64 (см. DecodeSecret)
// и копируется, дальнейшие изменения исходного среза на Codec не влияют.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrWeakSecret, len(secret), MinSecretLen)
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// DecodeSecret декодирует секрет из конфигурации.
// Принимает стандартный base64, а также URL-safe и варианты без паддинга.
func DecodeSecret(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: secret is empty", ErrWeakSecret)
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var lastErr error
	for _, enc := range encodings {
		decoded, err := enc.DecodeString(encoded)
		if err == nil {
			return decoded, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to decode base64 secret: %w", lastErr)
}

// Encode выпускает токен для subject со сроком жизни ttl.
// Ключи зарегистрированных claims в extraClaims игнорируются.
func (c *Codec) Encode(subject string, extraClaims map[string]any, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: subject is empty", ErrInvalidArgument)
	}
	if ttl < MinTTL {
		return "", fmt.Errorf("%w: ttl must be at least %s, got %s", ErrInvalidArgument, MinTTL, ttl)
	}

	now := c.now()
	claims := gojwt.MapClaims{}
	for k, v := range extraClaims {
		if _, reserved := registeredClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = gojwt.NewNumericDate(now)
	claims["exp"] = gojwt.NewNumericDate(ceilSecond(now.Add(ttl)))

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// DecodeAndVerify проверяет подпись и срок действия токена.
// Токен действителен строго до момента exp, допуск на рассинхрон часов не применяется.
func (c *Codec) DecodeAndVerify(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrTokenInvalid)
	}

	parsed, err := gojwt.ParseWithClaims(token, gojwt.MapClaims{}, c.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(c.now),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	mc, ok := parsed.Claims.(gojwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrTokenInvalid)
	}

	return toClaims(mc)
}

// ExtractSubject проверяет токен и возвращает его subject.
func (c *Codec) ExtractSubject(token string) (string, error) {
	claims, err := c.DecodeAndVerify(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject is empty", ErrTokenInvalid)
	}
	return claims.Subject, nil
}

// ceilSecond округляет вверх до целой секунды, иначе NumericDate
// отбросит дробную часть и токен истечет раньше now+ttl
func ceilSecond(t time.Time) time.Time {
	if truncated := t.Truncate(time.Second); !truncated.Equal(t) {
		return truncated.Add(time.Second)
	}
	return t
}

func (c *Codec) keyFunc(token *gojwt.Token) (interface{}, error) {
	// Проверяем что используется правильный алгоритм подписи
	if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.secret, nil
}

func toClaims(mc gojwt.MapClaims) (*Claims, error) {
	sub, err := mc.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: exp claim is missing", ErrTokenInvalid)
	}

	claims := &Claims{
		Subject:   sub,
		ExpiresAt: exp.Time,
		Extra:     make(map[string]any),
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	for k, v := range mc {
		if _, reserved := registeredClaims[k]; !reserved {
			claims.Extra[k] = v
		}
	}

	return claims, nil
}
