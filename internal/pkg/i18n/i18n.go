package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

type Translations map[string]string

//go:embed locales
var embedded embed.FS

var (
	locales      = make(map[string]Translations)
	mu           sync.RWMutex
	defaultsOnce sync.Once
)

// LoadTranslations reads <locale>/email.yaml for every locale directory at
// the root of fsys. Locales already loaded are replaced.
func LoadTranslations(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}

	loaded := make(map[string]Translations, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := path.Join(locale, "email.yaml")

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			continue
		}

		var doc struct {
			Email Translations `yaml:"EMAIL"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}
		loaded[locale] = doc.Email
	}

	mu.Lock()
	defer mu.Unlock()
	for locale, trans := range loaded {
		locales[locale] = trans
	}
	return nil
}

func loadDefaults() {
	defaultsOnce.Do(func() {
		sub, err := fs.Sub(embedded, "locales")
		if err != nil {
			return
		}
		_ = LoadTranslations(sub)
	})
}

// Translate looks key up in locale, then in the default locale, and returns
// the key itself when neither has it.
func Translate(locale, key string) string {
	loadDefaults()

	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != DefaultLocale {
		if trans, ok := locales[DefaultLocale]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

func Translatef(locale, key string, args ...any) string {
	return fmt.Sprintf(Translate(locale, key), args...)
}
