package news

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/hitoshi/newsman/internal/model"
)

// TitleKey は記事の同一性判定に使う正規化済みタイトルを返す。
// NFC正規化、大文字小文字の畳み込み、空白の圧縮を行う。
func TitleKey(title string) string {
	folded := cases.Fold().String(norm.NFC.String(title))
	return strings.Join(strings.Fields(folded), " ")
}

// Merge は各グループを順に連結し、TitleKeyが重複する記事を除く。
// 先に現れた記事が残る。除外した件数も返す。
func Merge(groups ...[]model.NormalizedArticle) ([]model.NormalizedArticle, int) {
	total := 0
	for _, g := range groups {
		total += len(g)
	}

	seen := make(map[string]struct{}, total)
	merged := make([]model.NormalizedArticle, 0, total)
	for _, g := range groups {
		for _, a := range g {
			key := TitleKey(a.Title)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, a)
		}
	}
	return merged, total - len(merged)
}

// Search はタイトルにqueryを含む記事だけを返す。大文字小文字は区別しない。
// queryが空の場合はそのまま返す。
func Search(articles []model.NormalizedArticle, query string) []model.NormalizedArticle {
	q := TitleKey(query)
	if q == "" {
		return articles
	}
	out := make([]model.NormalizedArticle, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(TitleKey(a.Title), q) {
			out = append(out, a)
		}
	}
	return out
}
