// Package i18n holds the message templates and the category-title
// translation table. Both are loaded from an embedded YAML bundle.
package i18n

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

//go:embed bundle.yaml
var defaultBundleYAML []byte

// Message keys
const (
	KeyDongCreatedTitle  = "dong_created_title"
	KeyDongCreatedBody   = "dong_created_body"
	KeyJointCreatedTitle = "joint_created_title"
	KeyJointCreatedBody  = "joint_created_body"
)

// CategoryKey is one interned category title with its per-language translations.
type CategoryKey struct {
	Key    string
	Titles map[string]string // language -> title
}

// Title returns the translation for lang and whether one exists.
func (k CategoryKey) Title(lang string) (string, bool) {
	t, ok := k.Titles[lang]
	return t, ok
}

type bundleFile struct {
	Languages  []string                     `mapstructure:"languages"`
	Messages   map[string]map[string]string `mapstructure:"messages"`
	Categories map[string]map[string]string `mapstructure:"categories"`
}

// Bundle is the read-only localization table.
type Bundle struct {
	defaultLanguage string
	languages       []string
	messages        map[string]map[string]string
	categories      map[string]CategoryKey
	titleIndex      map[string]string // normalized title (any language) -> category key
}

// Load reads the embedded bundle with defaultLanguage as fallback.
func Load(defaultLanguage string) (*Bundle, error) {
	return Parse(defaultBundleYAML, defaultLanguage)
}

// Parse reads a bundle from YAML.
func Parse(data []byte, defaultLanguage string) (*Bundle, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to read localization bundle: %w", err)
	}

	var file bundleFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode localization bundle: %w", err)
	}

	b := &Bundle{
		defaultLanguage: strings.ToLower(defaultLanguage),
		languages:       file.Languages,
		messages:        file.Messages,
		categories:      make(map[string]CategoryKey, len(file.Categories)),
		titleIndex:      make(map[string]string),
	}
	if b.messages == nil {
		b.messages = map[string]map[string]string{}
	}

	for key, titles := range file.Categories {
		b.categories[key] = CategoryKey{Key: key, Titles: titles}
		for _, title := range titles {
			b.titleIndex[normalize(title)] = key
		}
	}

	return b, nil
}

// DefaultLanguage returns the fallback language
func (b *Bundle) DefaultLanguage() string {
	return b.defaultLanguage
}

// Languages returns the supported languages
func (b *Bundle) Languages() []string {
	return b.languages
}

// Language picks lang when it is supported, else the default language.
func (b *Bundle) Language(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, l := range b.languages {
		if l == lang {
			return l
		}
	}
	return b.defaultLanguage
}

// Message returns the template for key in lang, falling back to the default
// language and finally to the key itself.
func (b *Bundle) Message(key, lang string) string {
	byLang, ok := b.messages[key]
	if !ok {
		return key
	}
	if msg, ok := byLang[strings.ToLower(lang)]; ok && msg != "" {
		return msg
	}
	if msg, ok := byLang[b.defaultLanguage]; ok && msg != "" {
		return msg
	}
	return key
}

// Render fills {placeholders} of the message template for key.
func (b *Bundle) Render(key, lang string, vars map[string]string) string {
	msg := b.Message(key, lang)
	if len(vars) == 0 {
		return msg
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(vars)*2)
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", vars[name])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// LookupCategory finds the translation key whose title in any language
// matches title (case-insensitive).
func (b *Bundle) LookupCategory(title string) (CategoryKey, bool) {
	key, ok := b.titleIndex[normalize(title)]
	if !ok {
		return CategoryKey{}, false
	}
	return b.categories[key], true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
