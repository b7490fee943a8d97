package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/blogapi/internal/server/auth"
	"github.com/iudanet/blogapi/internal/server/respond"
)

// Access уровень доступа к маршруту
type Access int

const (
	// Authenticated маршрут требует личность в контексте запроса
	Authenticated Access = iota
	// Public маршрут доступен без токена
	Public
)

// String возвращает название уровня доступа
func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "authenticated"
}

// Rule правило доступа к маршруту.
//
// Method пустой совпадает с любым методом. Pattern с суффиксом "/**"
// совпадает с самим префиксом и со всеми путями под ним,
// иначе путь должен совпасть точно.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}

	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// Policy упорядоченный список правил. Первое совпавшее правило решает.
type Policy struct {
	rules    []Rule
	fallback Access
}

// NewPolicy создает политику. fallback применяется, если ни одно правило не совпало.
func NewPolicy(fallback Access, rules ...Rule) *Policy {
	return &Policy{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}
}

// Decide возвращает уровень доступа для метода и пути.
func (p *Policy) Decide(method, path string) Access {
	for _, rule := range p.rules {
		if rule.matches(method, path) {
			return rule.Access
		}
	}
	return p.fallback
}

// AuthorizeMiddleware отклоняет запросы без личности к защищенным маршрутам.
// Должно стоять после IdentityMiddleware.
func AuthorizeMiddleware(logger *slog.Logger, policy *Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.Decide(r.Method, r.URL.Path) == Public {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := auth.IdentityFromContext(r.Context()); !ok {
				logger.InfoContext(r.Context(), "Unauthenticated request to protected route",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				respond.Error(w, logger, http.StatusUnauthorized, "authentication required", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
