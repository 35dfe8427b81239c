package news

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hitoshi/newsman/internal/model"
)

const indonesiaNewsDefaultEndpoint = "https://indonesia-news.p.rapidapi.com/news/nasional"

// IndonesiaNewsResponse はRapidAPI経由のIndonesia News APIのレスポンス。
type IndonesiaNewsResponse struct {
	Data []IndonesiaNewsItem `json:"data"`
}

// IndonesiaNewsItem はIndonesia Newsの記事1件。
// 配信元によって埋まるフィールドが異なる。
type IndonesiaNewsItem struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	ContentSnippet string `json:"contentSnippet"`
	Content        string `json:"content"`
	Link           string `json:"link"`
	URL            string `json:"url"`
	Image          string `json:"image"`
	Thumbnail      string `json:"thumbnail"`
	IsoDate        string `json:"isoDate"`
	PubDate        string `json:"pubDate"`
}

// IndonesiaNewsProvider は国内ニュース（nasional）を取得する。カテゴリは無視する。
type IndonesiaNewsProvider struct {
	name       string
	apiKey     string
	httpClient *http.Client
	endpoint   string
}

// NewIndonesiaNewsProvider はIndonesiaNewsProviderを生成する。
func NewIndonesiaNewsProvider(name, apiKey, endpoint string, httpClient *http.Client) *IndonesiaNewsProvider {
	if endpoint == "" {
		endpoint = indonesiaNewsDefaultEndpoint
	}
	return &IndonesiaNewsProvider{name: name, apiKey: apiKey, httpClient: httpClient, endpoint: endpoint}
}

func (p *IndonesiaNewsProvider) Name() string { return p.name }

func (p *IndonesiaNewsProvider) Fetch(ctx context.Context, _ string) ([]model.NormalizedArticle, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("x-rapidapi-host", u.Host)
	header.Set("x-rapidapi-key", p.apiKey)

	var resp IndonesiaNewsResponse
	if err := getJSON(ctx, p.httpClient, p.name, u.String(), header, &resp); err != nil {
		return nil, err
	}
	return NormalizeIndonesiaNews(&resp), nil
}

// NormalizeIndonesiaNews はIndonesia Newsのレスポンスを共通形式に変換する。
func NormalizeIndonesiaNews(resp *IndonesiaNewsResponse) []model.NormalizedArticle {
	out := make([]model.NormalizedArticle, 0, len(resp.Data))
	for _, a := range resp.Data {
		out = append(out, model.NormalizedArticle{
			Title:       a.Title,
			Description: firstNonEmpty(a.Description, a.ContentSnippet),
			URL:         firstNonEmpty(a.Link, a.URL),
			Image:       firstNonEmpty(a.Image, a.Thumbnail),
			PublishedAt: parsePublished(a.IsoDate, a.PubDate),
			Source:      "Indonesia News",
			Content:     firstNonEmpty(a.Content, a.ContentSnippet),
		})
	}
	return out
}
