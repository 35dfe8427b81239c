package news

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/newsman/internal/config"
)

// Credentials はプロバイダ種別ごとのAPIキー。
type Credentials struct {
	GNewsAPIKey      string
	MediastackAPIKey string
	RapidAPIKey      string
}

// EndpointValidator はカタログで指定されたエンドポイントを検証する。
type EndpointValidator interface {
	ValidateEndpoint(rawURL string) error
}

// BuildSources はプロバイダカタログからSourceを組み立てる。
// 無効化されたプロバイダとAPIキー未設定のプロバイダは除外してログに残す。
// 明示的なエンドポイントはvalidatorで検証する（nilなら検証しない）。
func BuildSources(
	catalog *config.ProviderCatalog,
	creds Credentials,
	defaultTimeout time.Duration,
	httpClient *http.Client,
	validator EndpointValidator,
) ([]Source, error) {
	sources := make([]Source, 0, len(catalog.Providers))
	for _, spec := range catalog.Providers {
		if !spec.IsEnabled() {
			slog.Info("news provider disabled", slog.String("provider", spec.Name))
			continue
		}
		if spec.Endpoint != "" && validator != nil {
			if err := validator.ValidateEndpoint(spec.Endpoint); err != nil {
				return nil, fmt.Errorf("provider %q: %w", spec.Name, err)
			}
		}

		var p Provider
		switch spec.Kind {
		case config.ProviderKindIndonesiaNews:
			if creds.RapidAPIKey == "" {
				slog.Warn("news provider skipped: RAPIDAPI_KEY is not set", slog.String("provider", spec.Name))
				continue
			}
			p = NewIndonesiaNewsProvider(spec.Name, creds.RapidAPIKey, spec.Endpoint, httpClient)
		case config.ProviderKindGNews:
			if creds.GNewsAPIKey == "" {
				slog.Warn("news provider skipped: GNEWS_API_KEY is not set", slog.String("provider", spec.Name))
				continue
			}
			p = NewGNewsProvider(spec.Name, creds.GNewsAPIKey, spec.Endpoint, httpClient)
		case config.ProviderKindMediastack:
			if creds.MediastackAPIKey == "" {
				slog.Warn("news provider skipped: MEDIASTACK_API_KEY is not set", slog.String("provider", spec.Name))
				continue
			}
			p = NewMediastackProvider(spec.Name, creds.MediastackAPIKey, spec.Endpoint, httpClient)
		case config.ProviderKindRSS:
			p = NewRSSProvider(spec.Name, spec.Endpoint, httpClient)
		default:
			return nil, fmt.Errorf("provider %q: unknown kind %q", spec.Name, spec.Kind)
		}

		timeout := spec.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		sources = append(sources, Source{Provider: p, Timeout: timeout})
	}
	return sources, nil
}
