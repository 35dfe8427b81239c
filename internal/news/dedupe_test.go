package news

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hitoshi/newsman/internal/model"
)

func TestTitleKey(t *testing.T) {
	// 合成済み文字と結合文字列は同じキーになる
	assert.Equal(t, TitleKey("Caf\u00e9 Baru"), TitleKey("Cafe\u0301 baru"))
	assert.Equal(t, TitleKey("Harga  BBM\tNaik"), TitleKey(" harga bbm naik "))
	assert.NotEqual(t, TitleKey("Harga BBM naik"), TitleKey("Harga BBM turun"))
	assert.Equal(t, "", TitleKey("   "))
}

func TestMerge_FirstSeenWins(t *testing.T) {
	first := []model.NormalizedArticle{
		{Title: "Gempa di Cianjur", URL: "https://a/1", Source: "A"},
		{Title: "Pemilu 2029", URL: "https://a/2", Source: "A"},
	}
	second := []model.NormalizedArticle{
		{Title: "GEMPA DI  CIANJUR", URL: "https://b/1", Source: "B"},
		{Title: "Timnas menang", URL: "https://b/2", Source: "B"},
	}
	third := []model.NormalizedArticle{
		{Title: "timnas menang", URL: "https://c/1", Source: "C"},
	}

	merged, dropped := Merge(first, second, third)

	assert.Equal(t, 2, dropped)
	if assert.Len(t, merged, 3) {
		assert.Equal(t, "https://a/1", merged[0].URL)
		assert.Equal(t, "https://a/2", merged[1].URL)
		assert.Equal(t, "https://b/2", merged[2].URL)
	}
}

func TestMerge_Empty(t *testing.T) {
	merged, dropped := Merge()
	assert.Empty(t, merged)
	assert.Zero(t, dropped)
}

func TestSearch(t *testing.T) {
	articles := []model.NormalizedArticle{
		{Title: "Harga Beras Naik"},
		{Title: "Timnas Indonesia menang"},
		{Title: "Beras impor tiba"},
	}

	assert.Len(t, Search(articles, ""), 3)
	assert.Len(t, Search(articles, "  "), 3)

	got := Search(articles, "BERAS")
	if assert.Len(t, got, 2) {
		assert.Equal(t, "Harga Beras Naik", got[0].Title)
		assert.Equal(t, "Beras impor tiba", got[1].Title)
	}
	assert.Empty(t, Search(articles, "cuaca"))
}

func TestNormalizeCategory(t *testing.T) {
	c, err := NormalizeCategory(" Business ")
	assert.NoError(t, err)
	assert.Equal(t, "business", c)

	c, err = NormalizeCategory("")
	assert.NoError(t, err)
	assert.Equal(t, "", c)

	_, err = NormalizeCategory("politics")
	var apiErr *model.APIError
	if assert.ErrorAs(t, err, &apiErr) {
		assert.Equal(t, model.ErrCodeInvalidCategory, apiErr.Code)
	}
}

func TestPrefetchCategories_StartsWithGeneral(t *testing.T) {
	got := PrefetchCategories()
	assert.Len(t, got, len(Categories)+1)
	assert.Equal(t, "", got[0])
	assert.Equal(t, Categories, got[1:])

	// 返り値の変更がCategoriesに波及しない
	got[1] = "changed"
	assert.Equal(t, "business", Categories[0])
}
