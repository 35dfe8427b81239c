package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ニュースプロバイダの種別
const (
	ProviderKindIndonesiaNews = "indonesianews"
	ProviderKindGNews         = "gnews"
	ProviderKindMediastack    = "mediastack"
	ProviderKindRSS           = "rss"
)

// ProviderSpec はニュースプロバイダ1件の設定。
// カタログ内の並び順がマージ時の優先順位になる。
type ProviderSpec struct {
	Name     string        `yaml:"name"`
	Kind     string        `yaml:"kind"`
	Enabled  *bool         `yaml:"enabled"`
	Timeout  time.Duration `yaml:"timeout"`
	Endpoint string        `yaml:"endpoint"` // 省略時は種別ごとの既定URL。rssでは必須
}

// IsEnabled はプロバイダが有効かを返す。enabled省略時は有効とみなす。
func (p ProviderSpec) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// ProviderCatalog はYAMLで定義するプロバイダ一覧。
type ProviderCatalog struct {
	Providers []ProviderSpec `yaml:"providers"`
}

// DefaultProviderCatalog はファイル未指定時のプロバイダ一覧を返す。
func DefaultProviderCatalog() *ProviderCatalog {
	return &ProviderCatalog{
		Providers: []ProviderSpec{
			{Name: "indonesia-news", Kind: ProviderKindIndonesiaNews},
			{Name: "gnews", Kind: ProviderKindGNews},
			{Name: "mediastack", Kind: ProviderKindMediastack},
		},
	}
}

// LoadProviderCatalog はYAMLファイルからプロバイダ一覧を読み込む。
// pathが空の場合はDefaultProviderCatalogを返す。
func LoadProviderCatalog(path string) (*ProviderCatalog, error) {
	if path == "" {
		return DefaultProviderCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider catalog: %w", err)
	}

	return ParseProviderCatalog(data)
}

// ParseProviderCatalog はYAMLバイト列をパースし、内容を検証する。
func ParseProviderCatalog(data []byte) (*ProviderCatalog, error) {
	var catalog ProviderCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse provider catalog: %w", err)
	}

	if len(catalog.Providers) == 0 {
		return nil, fmt.Errorf("provider catalog has no providers")
	}

	seen := make(map[string]bool, len(catalog.Providers))
	for i, p := range catalog.Providers {
		if p.Name == "" {
			return nil, fmt.Errorf("provider #%d: name is required", i+1)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("provider %q: duplicate name", p.Name)
		}
		seen[p.Name] = true

		switch p.Kind {
		case ProviderKindIndonesiaNews, ProviderKindGNews, ProviderKindMediastack:
		case ProviderKindRSS:
			if p.Endpoint == "" {
				return nil, fmt.Errorf("provider %q: endpoint is required for rss", p.Name)
			}
		default:
			return nil, fmt.Errorf("provider %q: unknown kind %q", p.Name, p.Kind)
		}

		if p.Timeout < 0 {
			return nil, fmt.Errorf("provider %q: timeout must not be negative", p.Name)
		}
	}

	return &catalog, nil
}
