package news

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/newsman/internal/model"
)

const gnewsDefaultEndpoint = "https://gnews.io/api/v4/top-headlines"

// GNewsResponse はGNews top-headlines APIのレスポンス。
type GNewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []GNewsArticle `json:"articles"`
}

// GNewsArticle はGNewsの記事1件。
type GNewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// GNewsProvider はGNewsからインドネシアのトップニュースを取得する。
type GNewsProvider struct {
	name       string
	apiKey     string
	httpClient *http.Client
	endpoint   string // テスト用に差し替え可能
}

// NewGNewsProvider はGNewsProviderを生成する。endpointが空なら既定のURLを使う。
func NewGNewsProvider(name, apiKey, endpoint string, httpClient *http.Client) *GNewsProvider {
	if endpoint == "" {
		endpoint = gnewsDefaultEndpoint
	}
	return &GNewsProvider{name: name, apiKey: apiKey, httpClient: httpClient, endpoint: endpoint}
}

func (p *GNewsProvider) Name() string { return p.name }

// Fetch はカテゴリ別のトップニュースを取得する。空カテゴリはgeneralとして問い合わせる。
func (p *GNewsProvider) Fetch(ctx context.Context, category string) ([]model.NormalizedArticle, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = "general"
	}
	q := u.Query()
	q.Set("category", category)
	q.Set("lang", "id")
	q.Set("country", "id")
	q.Set("apikey", p.apiKey)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Accept", "application/json")

	var resp GNewsResponse
	if err := getJSON(ctx, p.httpClient, p.name, u.String(), header, &resp); err != nil {
		return nil, err
	}
	return NormalizeGNews(&resp), nil
}

// NormalizeGNews はGNewsのレスポンスを共通形式に変換する。
// 画像URLはhttpsに揃え、配信元名が無い場合は"GNews"とする。
func NormalizeGNews(resp *GNewsResponse) []model.NormalizedArticle {
	out := make([]model.NormalizedArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		source := a.Source.Name
		if source == "" {
			source = "GNews"
		}
		out = append(out, model.NormalizedArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Image:       upgradeHTTPS(a.Image),
			PublishedAt: parsePublished(a.PublishedAt),
			Source:      source,
			Content:     a.Content,
		})
	}
	return out
}

func upgradeHTTPS(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}
