package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogs(t *testing.T) {
	tr, err := LoadEmbedded("")
	require.NoError(t, err)

	assert.Equal(t, []string{"en-US", "ru-RU"}, tr.Locales())
	assert.True(t, tr.Has("general.errors.no-island"))
	assert.True(t, tr.Has("protection.flags.CAULDRON_WITCHERY_ISLAND_PROTECTION.name"))
}

func TestTranslateMatchesLocale(t *testing.T) {
	tr, err := LoadEmbedded("")
	require.NoError(t, err)

	assert.Equal(t, "&cЗдесь нет вашего острова!", tr.Translate("ru", "general.errors.no-island"))
	assert.Equal(t, "&cYou do not have an island here!", tr.Translate("en-GB", "general.errors.no-island"))
	// Неизвестная локаль - базовая
	assert.Equal(t, "&cYou do not have an island here!", tr.Translate("ja-JP", "general.errors.no-island"))
	assert.Equal(t, "&cYou do not have an island here!", tr.Translate("!!", "general.errors.no-island"))
}

func TestTranslatePlaceholdersAndMissingKeys(t *testing.T) {
	tr, err := LoadEmbedded("")
	require.NoError(t, err)

	msg := tr.Translate("en-US", "protection.protected", "[description]", "Cauldron Witchery")
	assert.Equal(t, "&cCauldron Witchery is protected on this island.", msg)

	assert.Equal(t, "no.such.key", tr.Translate("en-US", "no.such.key"))
}

func TestFallbackToBaseForMissingTranslation(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en-US.yaml": {Data: []byte("a:\n  b: base\n  c: only-base\n")},
		"locales/de-DE.yaml": {Data: []byte("a:\n  b: deutsch\n")},
	}
	tr, err := LoadFromFS(fsys, "en-US")
	require.NoError(t, err)

	assert.Equal(t, "deutsch", tr.Translate("de", "a.b"))
	assert.Equal(t, "only-base", tr.Translate("de", "a.c"))
}

func TestLoadRequiresBaseLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/de-DE.yaml": {Data: []byte("a: b\n")},
	}
	_, err := LoadFromFS(fsys, "en-US")
	assert.Error(t, err)
}
