package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// テスト用の PNG をメモリ上で生成するヘルパー
func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("PNG生成に失敗したのだ: %v", err)
	}
	return buf.Bytes()
}

func TestCompressToJPEG(t *testing.T) {
	t.Run("PNGがJPEGに変換されるのだ", func(t *testing.T) {
		data := makePNG(t, 64, 64)

		out, err := CompressToJPEG(data, 75)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// JPEG マジックナンバー FF D8 の確認
		if len(out) < 2 || out[0] != 0xFF || out[1] != 0xD8 {
			t.Error("出力が JPEG 形式ではないのだ")
		}
	})

	t.Run("画像でないデータはエラーになるのだ", func(t *testing.T) {
		if _, err := CompressToJPEG([]byte("not an image"), 75); err == nil {
			t.Error("expected error for non-image data")
		}
	})
}

func TestRecompressIfLarge(t *testing.T) {
	t.Run("閾値以下のデータはそのまま返るのだ", func(t *testing.T) {
		data := makePNG(t, 16, 16)
		out := RecompressIfLarge(data, len(data)+1, 75)
		if !bytes.Equal(out, data) {
			t.Error("閾値以下なら元データがそのまま返るべきなのだ")
		}
	})

	t.Run("閾値超過のデータは縮むか元のまま返るのだ", func(t *testing.T) {
		data := makePNG(t, 256, 256)
		out := RecompressIfLarge(data, 1, 50)
		if len(out) > len(data) {
			t.Error("再圧縮で元より大きくなってはいけないのだ")
		}
	})

	t.Run("壊れたデータでも元データが返るのだ", func(t *testing.T) {
		data := []byte("broken broken broken broken broken")
		out := RecompressIfLarge(data, 1, 50)
		if !bytes.Equal(out, data) {
			t.Error("圧縮失敗時は元データを返すべきなのだ")
		}
	})
}

func TestDetectImageMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"PNG", makePNGHeader(), "image/png"},
		{"テキスト", []byte("plain text file"), ""},
		{"空データ", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectImageMIME(tt.data); got != tt.want {
				t.Errorf("DetectImageMIME() = %q, want %q", got, tt.want)
			}
		})
	}
}

func makePNGHeader() []byte {
	return []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
}
