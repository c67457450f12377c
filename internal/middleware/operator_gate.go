package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

const operatorKeyHeader = "X-Operator-Key"

// OperatorGate:
// - Si key está vacía => modo dev: todos los requests pasan.
// - Si key está seteada => exige X-Operator-Key igual a la key; si no, 401.
// La consola del operador es la única consumidora esperada de la API.
func OperatorGate(key string) func(http.Handler) http.Handler {
	key = strings.TrimSpace(key)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := strings.TrimSpace(r.Header.Get(operatorKeyHeader))
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "operator key required",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
