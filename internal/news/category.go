package news

import (
	"strings"

	"github.com/hitoshi/newsman/internal/model"
)

// Categories は指定可能なニュースカテゴリ。
// 総合ニュースは空文字列で指定し、この一覧には含めない。
var Categories = []string{
	"business",
	"technology",
	"health",
	"science",
	"sports",
	"entertainment",
	"world",
}

// PrefetchCategories は総合ニュース（空文字列）を先頭に、全カテゴリを並べて返す。
func PrefetchCategories() []string {
	return append([]string{""}, Categories...)
}

// NormalizeCategory はカテゴリを小文字化して検証する。
// 未対応のカテゴリはINVALID_CATEGORYのAPIErrorになる。
func NormalizeCategory(category string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return "", nil
	}
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", model.NewInvalidCategoryError(category)
}
