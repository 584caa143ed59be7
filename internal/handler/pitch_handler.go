package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pitchboard/internal/middleware"
	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/pitch"
)

// PitchServiceInterface はピッチハンドラーが必要とするサービスインターフェース。
type PitchServiceInterface interface {
	Create(ctx context.Context, userID string, input pitch.CreateInput) (*model.Pitch, error)
	List(ctx context.Context, userID string) ([]*model.Pitch, error)
	Get(ctx context.Context, userID, pitchID string) (*model.Pitch, error)
	Update(ctx context.Context, userID, pitchID string, input pitch.UpdateInput) (*model.Pitch, error)
	Delete(ctx context.Context, userID, pitchID string) error
}

// PitchHandler はピッチ管理のHTTPハンドラー。
// 全エンドポイントはセッションミドルウェアの内側に配置され、
// コンテキストから解決済みプリンシパルを受け取る。
type PitchHandler struct {
	service PitchServiceInterface
}

// NewPitchHandler はPitchHandlerを生成する。
func NewPitchHandler(service PitchServiceInterface) *PitchHandler {
	return &PitchHandler{
		service: service,
	}
}

// pitchResponse はピッチ情報のAPIレスポンス。
type pitchResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// toPitchResponse はドメインのPitchをAPIレスポンス型に変換する。
func toPitchResponse(p *model.Pitch) pitchResponse {
	return pitchResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// createPitchRequest はピッチ作成リクエストのボディ。
type createPitchRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// updatePitchRequest はピッチ更新リクエストのボディ。
// 省略されたフィールドは既存値を維持する。
type updatePitchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Status      *string `json:"status"`
}

// ListPitches はユーザーのピッチ一覧を取得する。
// GET /api/pitches
func (h *PitchHandler) ListPitches(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	pitches, err := h.service.List(r.Context(), principal.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]pitchResponse, len(pitches))
	for i, p := range pitches {
		results[i] = toPitchResponse(p)
	}

	writeDataResponse(w, http.StatusOK, results)
}

// CreatePitch はピッチを新規作成する。
// POST /api/pitches
func (h *PitchHandler) CreatePitch(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createPitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("body", "リクエストボディの解析に失敗しました"))
		return
	}

	created, err := h.service.Create(r.Context(), principal.ID, pitch.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeDataResponse(w, http.StatusCreated, toPitchResponse(created))
}

// GetPitch は指定IDのピッチを取得する。
// GET /api/pitches/{id}
func (h *PitchHandler) GetPitch(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	pitchID := chi.URLParam(r, "id")

	found, err := h.service.Get(r.Context(), principal.ID, pitchID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeDataResponse(w, http.StatusOK, toPitchResponse(found))
}

// UpdatePitch は指定IDのピッチを部分更新する。
// PUT /api/pitches/{id}
func (h *PitchHandler) UpdatePitch(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	pitchID := chi.URLParam(r, "id")

	var req updatePitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("body", "リクエストボディの解析に失敗しました"))
		return
	}

	updated, err := h.service.Update(r.Context(), principal.ID, pitchID, pitch.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Status:      req.Status,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeDataResponse(w, http.StatusOK, toPitchResponse(updated))
}

// DeletePitch は指定IDのピッチを削除する。
// DELETE /api/pitches/{id}
func (h *PitchHandler) DeletePitch(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	pitchID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), principal.ID, pitchID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeMessageResponse(w, http.StatusOK, "ピッチを削除しました。")
}
