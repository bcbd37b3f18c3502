package middleware

import (
	"context"
	"net/http"
	"time"
)

// WithTimeout ограничивает время работы хранилищ в рамках запроса.
// Ответ не обрывается: хендлер сам получает ErrUnavailable по истечении контекста.
func WithTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
