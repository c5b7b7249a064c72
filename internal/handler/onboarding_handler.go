package handler

import (
	"context"
	"net/http"
)

// PreferenceServiceInterface はオンボーディングハンドラーが必要とするサービスインターフェース。
type PreferenceServiceInterface interface {
	Save(ctx context.Context, userID string, assets []string, investorType string, contentTypes []string) (*preferenceResponse, error)
	Load(ctx context.Context, userID string) (*preferenceResponse, error)
}

// OnboardingHandler はユーザー設定のHTTPハンドラー。
type OnboardingHandler struct {
	service PreferenceServiceInterface
}

// NewOnboardingHandler はOnboardingHandlerを生成する。
func NewOnboardingHandler(service PreferenceServiceInterface) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

// onboardingRequest はオンボーディングのリクエストボディ。
// 要素ごとの空文字チェックと正規化はサービス層で行う。
type onboardingRequest struct {
	Assets       []string `json:"assets" validate:"required,min=1"`
	InvestorType string   `json:"investorType" validate:"required"`
	ContentTypes []string `json:"contentTypes" validate:"required,min=1"`
}

// preferenceEnvelope は {"preference": {...}} 形式のレスポンス。
type preferenceEnvelope struct {
	Preference *preferenceResponse `json:"preference"`
}

// Save は設定を保存する。既存の設定は上書きする。
// POST /api/onboarding
func (h *OnboardingHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req onboardingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pref, err := h.service.Save(r.Context(), userID, req.Assets, req.InvestorType, req.ContentTypes)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preferenceEnvelope{Preference: pref})
}

// Get は保存済みの設定を返す。
// GET /api/onboarding/preferences
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	pref, err := h.service.Load(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preferenceEnvelope{Preference: pref})
}
