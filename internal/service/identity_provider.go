package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"member_gate/internal/config"
	"member_gate/internal/middleware"

	"github.com/google/uuid"
)

// IdentityProvider はクレデンシャルを所有する外部のIDプロバイダへの操作。
// パスワードのハッシュ化・保存・セッション発行はすべてプロバイダ側の責務で、
// このコアは管理APIを呼び出すだけ。
type IdentityProvider interface {
	// GenerateVerificationLink はメール確認用リンクをプロバイダに発行させる
	GenerateVerificationLink(ctx context.Context, email string) (string, error)
	// SetPassword は指定IDのユーザーのパスワードを新しい値に差し替える
	SetPassword(ctx context.Context, accountID uuid.UUID, newPassword string) error
}

// httpIdentityProvider はIDプロバイダの管理APIを呼び出すHTTP実装
type httpIdentityProvider struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewHTTPIdentityProvider(cfg *config.IdentityConfig) IdentityProvider {
	return &httpIdentityProvider{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type generateLinkRequest struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

type generateLinkResponse struct {
	ActionLink string `json:"action_link"`
}

func (p *httpIdentityProvider) GenerateVerificationLink(ctx context.Context, email string) (string, error) {
	logger := middleware.GetLogger(ctx)

	var resp generateLinkResponse
	err := p.doJSON(ctx, http.MethodPost, "/admin/generate_link",
		&generateLinkRequest{Type: "signup", Email: email}, &resp)
	if err != nil {
		logger.Error("Failed to generate verification link", "error", err)
		return "", err
	}
	if resp.ActionLink == "" {
		return "", fmt.Errorf("identity provider returned empty action link")
	}
	return resp.ActionLink, nil
}

type updateUserRequest struct {
	Password string `json:"password"`
}

func (p *httpIdentityProvider) SetPassword(ctx context.Context, accountID uuid.UUID, newPassword string) error {
	logger := middleware.GetLogger(ctx)

	path := fmt.Sprintf("/admin/users/%s", accountID)
	if err := p.doJSON(ctx, http.MethodPut, path, &updateUserRequest{Password: newPassword}, nil); err != nil {
		logger.Error("Failed to set password via identity provider", "error", err, "account_id", accountID)
		return err
	}
	return nil
}

// doJSON は管理APIへの1回のJSONリクエストを実行する。
// リトライはしない。呼び出し元(ハンドラ1回の実行)の中で無制限に再試行しない方針。
func (p *httpIdentityProvider) doJSON(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.serviceKey)

	res, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("identity provider returned status %d: %s", res.StatusCode, string(b))
	}

	if respBody != nil {
		if err := json.NewDecoder(res.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decoding identity provider response: %w", err)
		}
	}
	return nil
}
