package news

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstImage はHTML断片の中で最初に現れるimg要素のsrcを返す。
// 見つからない場合やパースできない場合は空文字列を返す。
func FirstImage(fragment string) string {
	if !strings.Contains(fragment, "<img") && !strings.Contains(fragment, "<IMG") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
