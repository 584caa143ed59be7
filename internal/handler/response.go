package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/pitchboard/internal/middleware"
	"github.com/hitoshi/pitchboard/internal/model"
)

// writeDataResponse は成功レスポンスの統一エンベロープを書き込む。
func writeDataResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeMessageResponse はデータを伴わない成功レスポンスを書き込む。
func writeMessageResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": message,
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeUnauthorized は401の統一レスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIError以外のエラーは詳細をログのみに記録し、一般的な500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodePitchNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
