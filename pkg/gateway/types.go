package gateway

import (
	"errors"
	"time"
)

const (
	// UseImageCompression が真の場合、閾値を超えるソース画像を送信前に JPEG 再圧縮します。
	UseImageCompression     = true
	ImageCompressionQuality = 75
	// MaxInlineImageBytes を超えるソース画像が再圧縮の対象になります。
	MaxInlineImageBytes = 4 << 20

	cacheKeySource = "source:"
)

// ErrNoImagePayload は、画像出力を期待したレスポンスに画像パーツが
// 含まれていなかったことを示します。
var ErrNoImagePayload = errors.New("レスポンスに画像データが含まれていません")

// ErrEmptyResponse は、構造化出力を期待したレスポンスにテキストパーツが
// 含まれていなかったことを示します。
var ErrEmptyResponse = errors.New("レスポンスにテキストが含まれていません")

// SourceCacher は取得済みソース画像のキャッシュ操作を抽象化するインターフェースです。
type SourceCacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value any, d time.Duration)
}

// Options はゲートウェイの動作パラメータです。
type Options struct {
	// Model は構造化分類リクエストに使うモデル名。
	Model string
	// ImageModel は画像出力リクエストに使うモデル名。
	ImageModel string
	// SourceCacheTTL は FetchSource のキャッシュ有効期間。
	SourceCacheTTL time.Duration
}
