package security

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// TextSanitizer は外部APIから取得した文字列をプレーンテキストに変換する。
// bluemondayのポリシーはゴルーチン間で共有できる。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はタグを一切許可しないTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// PlainText はHTMLタグを除去し、文字参照を展開し、連続する空白を1つにまとめる。
func (s *TextSanitizer) PlainText(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := s.policy.Sanitize(raw)
	// StrictPolicyは出力をエスケープするため、ここで元の文字に戻す。
	// 二重エスケープされた入力も1回で展開されるよう、変化がなくなるまで繰り返す。
	for i := 0; i < 3; i++ {
		unescaped := html.UnescapeString(stripped)
		if unescaped == stripped {
			break
		}
		stripped = unescaped
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// ImageURL は画像URLとして安全な絶対URLのみを返す。
// http/https以外のスキームや不正なURLは空文字列になる。
func (s *TextSanitizer) ImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	default:
		return ""
	}
}
