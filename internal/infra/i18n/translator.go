package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

const fallbackLang = "en"

var displayNames = map[string]string{
	"en": "English",
	"ru": "Русский",
}

// Translator resolves message ids to templates with {name} placeholders.
// Keys missing from the selected language fall back to English, then to the key itself.
type Translator struct {
	lang         string
	translations map[string]string
	fallback     map[string]string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	lang := strings.ToLower(strings.TrimSpace(langCode))
	translations, err := loadLocale(fsys, lang)
	if err != nil {
		return nil, err
	}
	t := &Translator{lang: lang, translations: translations}
	if lang != fallbackLang {
		// the fallback file is optional for non-default languages
		if fb, err := loadLocale(fsys, fallbackLang); err == nil {
			t.fallback = fb
		}
	}
	return t, nil
}

func loadLocale(fsys fs.FS, lang string) (map[string]string, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", lang))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file %s: %w", filePath, err)
	}
	return translations, nil
}

// T translates key and substitutes name/value pairs, e.g. T("range_added", "range_info", s).
func (t *Translator) T(key string, args ...any) string {
	format, ok := t.translations[key]
	if !ok {
		format, ok = t.fallback[key]
	}
	if !ok {
		return key
	}
	if len(args) < 2 {
		return format
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(args[i])+"}", fmt.Sprint(args[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(format)
}

func (t *Translator) Lang() string { return t.lang }

// DisplayName returns the human name of the active language.
func (t *Translator) DisplayName() string {
	if name, ok := displayNames[t.lang]; ok {
		return name
	}
	return t.lang
}
