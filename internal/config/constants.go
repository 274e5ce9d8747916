// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "MemberGate"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort = ":8080"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
)

// プロトコル上の固定値(設定での変更は不可)
const (
	// ResendLimitPerWindow は確認メール再送の上限回数(ローリングウィンドウあたり)
	ResendLimitPerWindow = 3
	// ResendWindow は再送回数を数えるローリングウィンドウ幅
	ResendWindow = time.Hour
	// MinPasswordLength はパスワード再設定時の最小文字数
	MinPasswordLength = 6
)
