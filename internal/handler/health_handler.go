package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker はデータベース接続の死活確認に必要なインターフェース。
// *sql.DB がそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// NewHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// GET /health
// DB接続が確認できない場合は503を返す。
func NewHealthHandler(checker HealthChecker, environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := checker.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "データベースに接続できません。",
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"message":     "API is healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": environment,
		})
	}
}
