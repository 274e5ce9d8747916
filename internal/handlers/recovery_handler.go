package handlers

import (
	"errors"
	"net/http"

	"member_gate/internal/middleware"
	"member_gate/internal/model"
	"member_gate/internal/service"
	"member_gate/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type RecoveryHandler struct {
	service service.RecoveryService
}

func NewRecoveryHandler(s service.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{service: s}
}

// Request はパスワード再設定メールの送信を申請します。
// メールアドレスが登録済みかどうかをレスポンスから判別できないよう、常に同じ成功レスポンスを返します
func (h *RecoveryHandler) Request(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.RecoveryRequestRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode recovery request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			appErr := webutil.NewValidationErrorResponse(validationErrors)
			webutil.HandleError(w, logger, appErr)
		} else {
			webutil.HandleError(w, logger, err)
		}
		return
	}

	if err := h.service.Request(r.Context(), req.Email); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "ご入力のメールアドレスにパスワード再設定用のリンクを送信しました。メールが届かない場合は、迷惑メールフォルダもご確認ください。",
	}, logger)
}

// VerifyToken はリカバリートークンの有効性を検証します。状態は変更しないため、
// 画面表示時と送信直前の二重チェックのように何度呼んでも安全です
func (h *RecoveryHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.VerifyTokenRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode verify-token request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			appErr := webutil.NewValidationErrorResponse(validationErrors)
			webutil.HandleError(w, logger, appErr)
		} else {
			webutil.HandleError(w, logger, err)
		}
		return
	}

	info, err := h.service.VerifyToken(r.Context(), req.Token)
	if err != nil {
		// トークン起因のエラーは valid:false の判定結果として返す(UIが理由を表示できるように)
		var appErr *model.AppError
		if errors.As(err, &appErr) && errors.Is(err, model.ErrInvalidInput) {
			webutil.RespondWithJSON(w, http.StatusBadRequest, &model.VerifyTokenResponse{
				Valid: false,
				Error: &appErr.Detail,
			}, logger)
			return
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, &model.VerifyTokenResponse{
		Valid:  true,
		Email:  info.Email,
		UserID: info.AccountID.String(),
	}, logger)
}

// ResetPassword はリカバリートークンを使って新しいパスワードを設定します
func (h *RecoveryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.ResetPasswordRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode reset-password request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			appErr := webutil.NewValidationErrorResponse(validationErrors)
			webutil.HandleError(w, logger, appErr)
		} else {
			webutil.HandleError(w, logger, err)
		}
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "パスワードが正常に更新されました。新しいパスワードでログインしてください。",
	}, logger)
}
