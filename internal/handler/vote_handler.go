package handler

import (
	"context"
	"net/http"
)

// VoteServiceInterface は投票ハンドラーが必要とするサービスインターフェース。
type VoteServiceInterface interface {
	SetVote(ctx context.Context, userID, section, itemID string, value any) (*voteResponse, error)
	ClearVote(ctx context.Context, userID, section, itemID string) error
}

// VoteHandler は投票のHTTPハンドラー。
type VoteHandler struct {
	service VoteServiceInterface
}

// NewVoteHandler はVoteHandlerを生成する。
func NewVoteHandler(service VoteServiceInterface) *VoteHandler {
	return &VoteHandler{service: service}
}

// setVoteRequest は投票のリクエストボディ。
// valueは数値・文字列のどちらも受け付けるためanyで受け取り、サービス層で解釈する。
type setVoteRequest struct {
	Section string `json:"section"`
	ItemID  string `json:"itemId"`
	Value   any    `json:"value"`
}

// clearVoteRequest は投票取り消しのリクエストボディ。
type clearVoteRequest struct {
	Section string `json:"section"`
	ItemID  string `json:"itemId"`
}

type voteEnvelope struct {
	Vote *voteResponse `json:"vote"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// SetVote は投票を保存する。同じアイテムへの再投票は上書きする。
// POST /api/votes
func (h *VoteHandler) SetVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req setVoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vote, err := h.service.SetVote(r.Context(), userID, req.Section, req.ItemID, req.Value)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, voteEnvelope{Vote: vote})
}

// ClearVote は投票を取り消す。未投票の場合も成功とする。
// DELETE /api/votes
func (h *VoteHandler) ClearVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req clearVoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ClearVote(r.Context(), userID, req.Section, req.ItemID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
