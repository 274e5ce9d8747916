package handlers

import (
	"net/http"

	"member_gate/internal/middleware"
	"member_gate/internal/service"
	"member_gate/internal/webutil"
)

type AccountHandler struct {
	service service.AccountService
}

func NewAccountHandler(s service.AccountService) *AccountHandler {
	return &AccountHandler{service: s}
}

// GetMe は認証済みユーザー自身のアカウント情報と導出済みのアクセス状態を返します
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	accountID, err := middleware.GetAccountIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	me, err := h.service.GetMe(r.Context(), accountID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, me, logger)
}

// ResendVerification はメール確認用のリンクを再送します
func (h *AccountHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	accountID, err := middleware.GetAccountIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.ResendVerification(r.Context(), accountID); err != nil {
		// サービス層でログは出力済みなので、ここではエラー処理に専念
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "確認メールを再送しました。メールボックスをご確認ください。",
	}, logger)
}
