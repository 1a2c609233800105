package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale локаль по умолчанию, в которой обязаны быть все ключи
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// Translator хранит каталоги сообщений по локалям и подбирает ближайшую локаль
type Translator struct {
	base     string
	catalogs map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// LoadEmbedded загружает каталоги, встроенные в бинарник
func LoadEmbedded(base string) (*Translator, error) {
	return LoadFromFS(embeddedLocales, base)
}

// LoadFromFS загружает locales/*.yaml из fsys. Имя файла - тег локали.
func LoadFromFS(fsys fs.FS, base string) (*Translator, error) {
	if base == "" {
		base = BaseLocale
	}

	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	t := &Translator{
		base:     base,
		catalogs: make(map[string]map[string]string),
	}

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", p, err)
		}
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", p, err)
		}

		locale := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if _, err := language.Parse(locale); err != nil {
			return nil, fmt.Errorf("locale %s: invalid tag %q: %w", p, locale, err)
		}

		messages := make(map[string]string)
		flatten("", raw, messages)
		t.catalogs[locale] = messages
	}

	if _, ok := t.catalogs[base]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined", base)
	}

	// Базовая локаль первой: matcher возвращает ее при отсутствии совпадения
	t.tags = append(t.tags, language.MustParse(base))
	for _, locale := range t.Locales() {
		if locale != base {
			t.tags = append(t.tags, language.MustParse(locale))
		}
	}
	t.matcher = language.NewMatcher(t.tags)
	return t, nil
}

// flatten разворачивает вложенные ключи YAML в ключи через точку
func flatten(prefix string, in map[string]interface{}, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Locales возвращает отсортированный список загруженных локалей
func (t *Translator) Locales() []string {
	locales := make([]string, 0, len(t.catalogs))
	for l := range t.catalogs {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	return locales
}

// Match подбирает ближайшую загруженную локаль
func (t *Translator) Match(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return t.base
	}
	_, idx, _ := t.matcher.Match(tag)
	return t.tags[idx].String()
}

// Has проверяет наличие ключа в базовой локали
func (t *Translator) Has(key string) bool {
	_, ok := t.catalogs[t.base][key]
	return ok
}

// Translate возвращает сообщение для локали с подстановкой переменных.
// vars - пары "[placeholder]", "значение". Отсутствующий ключ возвращается как есть.
func (t *Translator) Translate(locale, key string, vars ...string) string {
	msg, ok := t.catalogs[t.Match(locale)][key]
	if !ok {
		msg, ok = t.catalogs[t.base][key]
		if !ok {
			return key
		}
	}

	if len(vars) >= 2 {
		if len(vars)%2 != 0 {
			vars = vars[:len(vars)-1]
		}
		msg = strings.NewReplacer(vars...).Replace(msg)
	}
	return msg
}
