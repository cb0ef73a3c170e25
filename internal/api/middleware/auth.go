package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/GNG-SchedulingService/internal/api/handlers"
)

type ctxKey string

const providerIDKey ctxKey = "providerID"

// HeaderProviderID заголовок с идентификатором провайдера
// Аутентификацию выполняет API-gateway, сервис доверяет заголовку
const HeaderProviderID = "X-Provider-ID"

const msgProviderIDRequired = "требуется заголовок X-Provider-ID"

// ProviderAuth извлекает ID провайдера из заголовка и кладёт его в контекст
// Запросы без корректного заголовка отклоняются
func ProviderAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerID, err := strconv.ParseInt(r.Header.Get(HeaderProviderID), 10, 64)
		if err != nil || providerID <= 0 {
			handlers.RespondError(w, http.StatusUnauthorized, msgProviderIDRequired)
			return
		}

		ctx := context.WithValue(r.Context(), providerIDKey, providerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ProviderID возвращает ID провайдера из контекста запроса
func ProviderID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(providerIDKey).(int64)
	return id, ok
}
