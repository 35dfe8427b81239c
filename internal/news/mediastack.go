package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hitoshi/newsman/internal/model"
)

// Mediastackの無料プランはhttpのみ受け付ける。
const mediastackDefaultEndpoint = "http://api.mediastack.com/v1/news"

// MediastackResponse はMediastack news APIのレスポンス。
type MediastackResponse struct {
	Data  []MediastackArticle `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// MediastackArticle はMediastackの記事1件。
type MediastackArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
	Category    string `json:"category"`
}

// MediastackProvider はMediastackからインドネシアの最新ニュースを取得する。
// カテゴリ指定は行わず、常に最新20件を取得する。
type MediastackProvider struct {
	name       string
	accessKey  string
	httpClient *http.Client
	endpoint   string
}

// NewMediastackProvider はMediastackProviderを生成する。
func NewMediastackProvider(name, accessKey, endpoint string, httpClient *http.Client) *MediastackProvider {
	if endpoint == "" {
		endpoint = mediastackDefaultEndpoint
	}
	return &MediastackProvider{name: name, accessKey: accessKey, httpClient: httpClient, endpoint: endpoint}
}

func (p *MediastackProvider) Name() string { return p.name }

func (p *MediastackProvider) Fetch(ctx context.Context, _ string) ([]model.NormalizedArticle, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("access_key", p.accessKey)
	q.Set("countries", "id")
	q.Set("languages", "id")
	q.Set("limit", "20")
	q.Set("sort", "published_desc")
	u.RawQuery = q.Encode()

	var resp MediastackResponse
	if err := getJSON(ctx, p.httpClient, p.name, u.String(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s: api error %s: %s", p.name, resp.Error.Code, resp.Error.Message)
	}
	return NormalizeMediastack(&resp), nil
}

// NormalizeMediastack はMediastackのレスポンスを共通形式に変換する。
// 本文は提供されないため概要を本文として扱う。
func NormalizeMediastack(resp *MediastackResponse) []model.NormalizedArticle {
	out := make([]model.NormalizedArticle, 0, len(resp.Data))
	for _, a := range resp.Data {
		source := a.Source
		if source == "" {
			source = "Mediastack"
		}
		out = append(out, model.NormalizedArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Image:       a.Image,
			PublishedAt: parsePublished(a.PublishedAt),
			Source:      source,
			Content:     a.Description,
		})
	}
	return out
}
