package news

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/newsman/internal/config"
)

type fakeValidator struct{ err error }

func (f fakeValidator) ValidateEndpoint(string) error { return f.err }

func TestBuildSources(t *testing.T) {
	off := false
	catalog := &config.ProviderCatalog{Providers: []config.ProviderSpec{
		{Name: "indonesia-news", Kind: config.ProviderKindIndonesiaNews},
		{Name: "gnews", Kind: config.ProviderKindGNews, Timeout: 3 * time.Second},
		{Name: "mediastack", Kind: config.ProviderKindMediastack},
		{Name: "antara", Kind: config.ProviderKindRSS, Endpoint: "https://www.antaranews.com/rss/terkini.xml"},
		{Name: "disabled", Kind: config.ProviderKindRSS, Endpoint: "https://example.com/rss", Enabled: &off},
	}}

	sources, err := BuildSources(catalog, Credentials{GNewsAPIKey: "g"}, 8*time.Second, http.DefaultClient, fakeValidator{})
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "gnews", sources[0].Provider.Name())
	assert.Equal(t, 3*time.Second, sources[0].Timeout)
	assert.Equal(t, "antara", sources[1].Provider.Name())
	assert.Equal(t, 8*time.Second, sources[1].Timeout)
}

func TestBuildSources_RejectsEndpoint(t *testing.T) {
	catalog := &config.ProviderCatalog{Providers: []config.ProviderSpec{
		{Name: "internal", Kind: config.ProviderKindRSS, Endpoint: "http://10.0.0.1/rss"},
	}}

	_, err := BuildSources(catalog, Credentials{}, time.Second, http.DefaultClient, fakeValidator{err: errors.New("internal")})
	assert.Error(t, err)
}
