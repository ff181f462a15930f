package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
)

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RecompressIfLarge は maxBytes を超える画像だけを JPEG に再圧縮します。
// 医用画像は高解像度の PNG で届くことが多く、推論リクエストのペイロードを
// 抑えるために送信前に通します。圧縮に失敗した場合は元データを返します。
func RecompressIfLarge(data []byte, maxBytes int, quality int) []byte {
	if maxBytes <= 0 || len(data) <= maxBytes {
		return data
	}
	compressed, err := CompressToJPEG(data, quality)
	if err != nil || len(compressed) >= len(data) {
		return data
	}
	return compressed
}

// DetectImageMIME はバイト列の MIME タイプを判定し、画像であればそれを返します。
// 画像でない場合は空文字列を返します。投入時の非画像ファイル排除に使います。
func DetectImageMIME(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return ""
	}
	return mimeType
}
