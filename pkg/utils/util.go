package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// StripCodeFences は、モデルが JSON をコードフェンスで囲って返した場合に
// フェンスを取り除きます。フェンスが無ければ入力をそのまま返します。
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParsePercent は "85%" や "85.5 %" のようなテキストをパーセント数値として解釈します。
// 解釈できない場合はエラーを返します。
func ParsePercent(s string) (float64, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimSuffix(t, "%")
	t = strings.TrimSpace(t)
	if t == "" {
		return 0, fmt.Errorf("パーセント値が空です: %q", s)
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("パーセント値を解釈できません %q: %w", s, err)
	}
	return v, nil
}
