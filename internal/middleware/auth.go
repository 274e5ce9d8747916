package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"member_gate/internal/config"
	"member_gate/internal/model"
	"member_gate/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BearerAuthMiddleware は Authorization ヘッダーの Bearer トークンを検証するミドルウェア。
// トークンはIDプロバイダが発行したHS256 JWTで、署名鍵はプロバイダと共有する。
// subject がそのままアカウントID(IDプロバイダ発行のID)になる。
func BearerAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			// 1. Authorization ヘッダーからトークンを取得
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Bearer auth failed: Authorization header missing")
				appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーが必要です。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			// "Bearer {token}" の形式を検証
			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				logger.Warn("Bearer auth failed: Invalid Authorization header format")
				appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーの形式が正しくありません。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}
			tokenString := headerParts[1]

			// 2. JWTをパースし、署名と有効期限を検証
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWT.SecretKey), nil
			})
			if err != nil {
				logger.Warn("Bearer auth failed: Invalid token", "error", err)
				appErr := model.NewAppError("UNAUTHORIZED", "トークンが無効です。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			// 3. ペイロードから subject (アカウントID) を取得
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				logger.Warn("Bearer auth failed: Unknown claims type or invalid token")
				appErr := model.NewAppError("UNAUTHORIZED", "トークンが無効です。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			subject, err := claims.GetSubject()
			if err != nil {
				logger.Warn("Bearer auth failed: Subject (sub) claim missing", "error", err)
				appErr := model.NewAppError("UNAUTHORIZED", "トークンにユーザー情報が含まれていません。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			accountID, err := uuid.Parse(subject)
			if err != nil {
				logger.Warn("Bearer auth failed: Invalid subject (sub) format", "subject", subject, "error", err)
				appErr := model.NewAppError("UNAUTHORIZED", "トークンのユーザー情報が不正です。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			// 4. リクエストコンテキストにアカウントIDをセット
			ctx := context.WithValue(r.Context(), model.AccountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccountIDFromContext はコンテキストから呼び出し元のアカウントIDを取得します。
func GetAccountIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.AccountIDKey).(uuid.UUID)
	if !ok {
		// ミドルウェアが正しく動作していない等の内部エラー
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからユーザー情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}
