package analyzer

import "strings"

// ErrorCategory は解析失敗の安定した分類です。
type ErrorCategory string

const (
	CategoryInvalidCredential     ErrorCategory = "invalid_credential"
	CategoryQuotaExceeded         ErrorCategory = "quota_exceeded"
	CategoryContentSafetyBlocked  ErrorCategory = "content_safety_blocked"
	CategoryServiceUnavailable    ErrorCategory = "service_unavailable"
	CategoryInvalidResponseFormat ErrorCategory = "invalid_response_format"
	CategoryMissingArtifact       ErrorCategory = "missing_artifact"
	CategoryUnknown               ErrorCategory = "unknown"
)

// classifyRule は (部分文字列, カテゴリ) の順序付きルールです。
// 上から順に評価し、最初に一致したカテゴリが採用されます。
// 文字列照合による分類は本質的にベストエフォートであり、網羅的ではありません。
type classifyRule struct {
	substr   string
	category ErrorCategory
}

var classifyRules = []classifyRule{
	{"api key not valid", CategoryInvalidCredential},
	{"quota", CategoryQuotaExceeded},
	{"rate limit", CategoryQuotaExceeded},
	{"blocked", CategoryContentSafetyBlocked},
	{"safety", CategoryContentSafetyBlocked},
	{"500", CategoryServiceUnavailable},
	{"server error", CategoryServiceUnavailable},
}

// Classify はゲートウェイ由来の失敗をエラーメッセージの部分一致
// （大文字小文字を区別しない）でカテゴリに対応付けます。
// どのルールにも一致しない失敗は CategoryUnknown になります。
func Classify(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, r := range classifyRules {
		if strings.Contains(msg, r.substr) {
			return r.category
		}
	}
	return CategoryUnknown
}

var categoryMessages = map[ErrorCategory]string{
	CategoryInvalidCredential:     "APIキーが無効です。認証情報を確認してください。",
	CategoryQuotaExceeded:         "APIの利用上限に達しました。しばらく待ってから再試行してください。",
	CategoryContentSafetyBlocked:  "安全性フィルターによりリクエストがブロックされました。別の画像でお試しください。",
	CategoryServiceUnavailable:    "推論サービスが一時的に利用できません。時間をおいて再試行してください。",
	CategoryInvalidResponseFormat: "モデルの応答を診断結果として解釈できませんでした。再解析をお試しください。",
	CategoryMissingArtifact:       "期待された生成画像が応答に含まれていませんでした。再解析をお試しください。",
	CategoryUnknown:               "解析中に不明なエラーが発生しました。再解析をお試しください。",
}

// Message はカテゴリに 1:1 で対応する固定の利用者向けメッセージを返します。
// 未定義のカテゴリでも失敗せず、Unknown のメッセージを返します。
func (c ErrorCategory) Message() string {
	if msg, ok := categoryMessages[c]; ok {
		return msg
	}
	return categoryMessages[CategoryUnknown]
}
