package news

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeGNews(t *testing.T) {
	resp := &GNewsResponse{Articles: []GNewsArticle{
		{Title: "A", URL: "https://a", Image: "http://img/a.jpg", PublishedAt: "2026-03-01T10:00:00Z"},
		{Title: "B", URL: "https://b", Image: ""},
	}}
	resp.Articles[0].Source.Name = "Kompas"

	got := NormalizeGNews(resp)
	require.Len(t, got, 2)

	assert.Equal(t, "https://img/a.jpg", got[0].Image)
	assert.Equal(t, "Kompas", got[0].Source)
	require.NotNil(t, got[0].PublishedAt)
	assert.True(t, got[0].PublishedAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, "GNews", got[1].Source)
	assert.Empty(t, got[1].Image)
	assert.Nil(t, got[1].PublishedAt)
}

func TestNormalizeIndonesiaNews_Fallbacks(t *testing.T) {
	resp := &IndonesiaNewsResponse{Data: []IndonesiaNewsItem{
		{
			Title:          "Primary",
			Description:    "desc",
			ContentSnippet: "snippet",
			Content:        "content",
			Link:           "https://link",
			URL:            "https://url",
			Image:          "https://image",
			Thumbnail:      "https://thumb",
			IsoDate:        "2026-01-02T03:04:05Z",
		},
		{
			Title:          "Fallback",
			ContentSnippet: "snippet only",
			URL:            "https://url-only",
			Thumbnail:      "https://thumb-only",
			PubDate:        "Mon, 02 Jan 2026 03:04:05 +0700",
		},
	}}

	got := NormalizeIndonesiaNews(resp)
	require.Len(t, got, 2)

	assert.Equal(t, "desc", got[0].Description)
	assert.Equal(t, "https://link", got[0].URL)
	assert.Equal(t, "https://image", got[0].Image)
	assert.Equal(t, "content", got[0].Content)
	assert.Equal(t, "Indonesia News", got[0].Source)

	assert.Equal(t, "snippet only", got[1].Description)
	assert.Equal(t, "https://url-only", got[1].URL)
	assert.Equal(t, "https://thumb-only", got[1].Image)
	assert.Equal(t, "snippet only", got[1].Content)
	require.NotNil(t, got[1].PublishedAt)
	assert.Equal(t, 2026, got[1].PublishedAt.Year())
}

func TestNormalizeMediastack(t *testing.T) {
	resp := &MediastackResponse{Data: []MediastackArticle{
		{Title: "M", Description: "ringkasan", URL: "https://m", PublishedAt: "2026-02-03T04:05:06+00:00"},
		{Title: "N", Description: "x", URL: "https://n", Source: "detik"},
	}}

	got := NormalizeMediastack(resp)
	require.Len(t, got, 2)
	assert.Equal(t, "ringkasan", got[0].Content)
	assert.Equal(t, "Mediastack", got[0].Source)
	assert.NotNil(t, got[0].PublishedAt)
	assert.Equal(t, "detik", got[1].Source)
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Antara Terkini</title>
  <link>https://www.antaranews.com</link>
  <item>
    <title>Berita dengan enclosure</title>
    <link>https://www.antaranews.com/berita/1</link>
    <description>Ringkasan satu</description>
    <enclosure url="https://img.antaranews.com/1.jpg" type="image/jpeg" length="100"/>
    <pubDate>Mon, 02 Mar 2026 08:00:00 +0700</pubDate>
  </item>
  <item>
    <title>Berita dengan gambar di deskripsi</title>
    <link>https://www.antaranews.com/berita/2</link>
    <description><![CDATA[<p><img src="https://img.antaranews.com/2.jpg" alt="x"/>Ringkasan dua</p>]]></description>
  </item>
</channel>
</rss>`

func TestNormalizeFeed(t *testing.T) {
	feed, err := gofeed.NewParser().Parse(strings.NewReader(sampleRSS))
	require.NoError(t, err)

	got := NormalizeFeed(feed, "antara")
	require.Len(t, got, 2)

	assert.Equal(t, "Antara Terkini", got[0].Source)
	assert.Equal(t, "https://img.antaranews.com/1.jpg", got[0].Image)
	assert.Equal(t, "Ringkasan satu", got[0].Content)
	require.NotNil(t, got[0].PublishedAt)

	assert.Equal(t, "https://img.antaranews.com/2.jpg", got[1].Image)
	assert.Nil(t, got[1].PublishedAt)
}

func TestFirstImage(t *testing.T) {
	assert.Equal(t, "", FirstImage(""))
	assert.Equal(t, "", FirstImage("<p>tanpa gambar</p>"))
	assert.Equal(t, "https://a/1.png", FirstImage(`<div><img alt="none"><img src=" https://a/1.png "><img src="https://a/2.png"></div>`))
}
