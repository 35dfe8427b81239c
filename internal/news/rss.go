package news

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/newsman/internal/model"
)

// RSSProvider はRSS/Atomフィードを取得元として扱う。
// フィードはカテゴリを持たないため、どのカテゴリでも同じ記事を返す。
type RSSProvider struct {
	name       string
	feedURL    string
	httpClient *http.Client
}

// NewRSSProvider はRSSProviderを生成する。
func NewRSSProvider(name, feedURL string, httpClient *http.Client) *RSSProvider {
	return &RSSProvider{name: name, feedURL: feedURL, httpClient: httpClient}
}

func (p *RSSProvider) Name() string { return p.name }

func (p *RSSProvider) Fetch(ctx context.Context, _ string) ([]model.NormalizedArticle, error) {
	header := http.Header{}
	header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	body, err := get(ctx, p.httpClient, p.name, p.feedURL, header)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &DecodeError{Provider: p.name, Err: err}
	}
	return NormalizeFeed(feed, p.name), nil
}

// NormalizeFeed はgofeedのフィードを共通形式に変換する。
// 配信元名はフィードのタイトル、無ければプロバイダ名とする。
func NormalizeFeed(feed *gofeed.Feed, fallbackSource string) []model.NormalizedArticle {
	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = fallbackSource
	}

	out := make([]model.NormalizedArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := model.NormalizedArticle{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
			Image:       feedItemImage(item),
			Source:      source,
			Content:     firstNonEmpty(item.Content, item.Description),
		}
		switch {
		case item.PublishedParsed != nil:
			t := item.PublishedParsed.UTC()
			a.PublishedAt = &t
		case item.UpdatedParsed != nil:
			t := item.UpdatedParsed.UTC()
			a.PublishedAt = &t
		}
		out = append(out, a)
	}
	return out
}

// feedItemImage は記事画像を item.Image、画像のenclosure、本文中の最初のimgの順に探す。
func feedItemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if img := FirstImage(item.Content); img != "" {
		return img
	}
	return FirstImage(item.Description)
}
