package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedBundle(t *testing.T) {
	b, err := Load("en")
	require.NoError(t, err)

	assert.Equal(t, "en", b.DefaultLanguage())
	assert.Contains(t, b.Languages(), "fa")
	assert.Equal(t, "New expense", b.Message(KeyDongCreatedTitle, "en"))
	assert.Equal(t, "دنگ جدید", b.Message(KeyDongCreatedTitle, "fa"))
}

func TestBundle_MessageFallback(t *testing.T) {
	b, err := Load("en")
	require.NoError(t, err)

	// unsupported language falls back to default
	assert.Equal(t, "New expense", b.Message(KeyDongCreatedTitle, "xx"))
	// unknown key returns the key
	assert.Equal(t, "no_such_key", b.Message("no_such_key", "en"))
}

func TestBundle_Language(t *testing.T) {
	b, err := Load("fa")
	require.NoError(t, err)

	assert.Equal(t, "de", b.Language("DE"))
	assert.Equal(t, "fa", b.Language(""))
	assert.Equal(t, "fa", b.Language("zz"))
}

func TestBundle_Render(t *testing.T) {
	b, err := Load("en")
	require.NoError(t, err)

	got := b.Render(KeyDongCreatedBody, "en", map[string]string{
		"name":     "Sara",
		"title":    "Pizza",
		"amount":   "100",
		"currency": "EUR",
	})
	assert.Equal(t, `Sara added "Pizza": 100 EUR`, got)
}

func TestBundle_LookupCategory(t *testing.T) {
	b, err := Load("en")
	require.NoError(t, err)

	key, ok := b.LookupCategory("  غذا ")
	require.True(t, ok)
	assert.Equal(t, "food", key.Key)

	title, ok := key.Title("de")
	require.True(t, ok)
	assert.Equal(t, "Essen", title)

	key, ok = b.LookupCategory("food")
	require.True(t, ok)
	assert.Equal(t, "food", key.Key)

	_, ok = b.LookupCategory("Crypto")
	assert.False(t, ok)
}

func TestParse_CustomBundle(t *testing.T) {
	data := []byte(`
languages: [en]
messages:
  greeting:
    en: "hi {name}"
categories:
  pets:
    en: "Pets"
`)
	b, err := Parse(data, "en")
	require.NoError(t, err)

	assert.Equal(t, "hi Ali", b.Render("greeting", "en", map[string]string{"name": "Ali"}))
	_, ok := b.LookupCategory("pets")
	assert.True(t, ok)
}
