// Package config は環境変数からの設定読み込みを担当します。
// 必須の認証情報が欠けている場合は起動時エラーとし、呼び出しごとの
// エラーにはしません。
package config

import (
	"fmt"
	"os"
	"time"
)

// Config は解析コアの動作設定です。
type Config struct {
	// APIKey は Gemini API の認証キー。必須。
	APIKey string
	// Model は構造化分類に使うモデル名。
	Model string
	// ImageModel は画像生成（セグメンテーション、ヒートマップ）に使うモデル名。
	ImageModel string
	// SourceCacheTTL は取得済みソース画像のキャッシュ有効期間。
	SourceCacheTTL time.Duration
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load は環境変数から設定を構築します。
// GEMINI_API_KEY が未設定の場合はエラーを返します。
func Load() (*Config, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("環境変数 GEMINI_API_KEY が設定されていません")
	}

	ttl := time.Hour
	if raw := os.Getenv("SOURCE_CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SOURCE_CACHE_TTL を解釈できません %q: %w", raw, err)
		}
		ttl = d
	}

	return &Config{
		APIKey:         key,
		Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ImageModel:     getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		SourceCacheTTL: ttl,
	}, nil
}
