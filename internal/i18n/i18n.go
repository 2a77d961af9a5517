// Package i18n holds the small message catalog used by the status display
// and the terminal UI.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when no preference has been stored.
const DefaultLanguage = "es"

//go:embed locales.yaml
var locales []byte

type Catalog struct {
	messages map[string]map[string]string
	codes    []string
	tags     []language.Tag
	matcher  language.Matcher
	fallback string
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(locales, DefaultLanguage)
}

// MustLoad is Load for package initialisation paths.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from YAML keyed by language code. The fallback
// language is listed first so the matcher prefers it on a weak match.
func Parse(data []byte, fallback string) (*Catalog, error) {
	var messages map[string]map[string]string
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse locales: %w", err)
	}
	if _, ok := messages[fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q missing from locales", fallback)
	}

	codes := make([]string, 0, len(messages))
	for code := range messages {
		if code != fallback {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	codes = append([]string{fallback}, codes...)

	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("invalid language code %q: %w", code, err)
		}
		tags = append(tags, tag)
	}

	return &Catalog{
		messages: messages,
		codes:    codes,
		tags:     tags,
		matcher:  language.NewMatcher(tags),
		fallback: fallback,
	}, nil
}

// Languages lists the supported codes, fallback first.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.codes...)
}

func (c *Catalog) Fallback() string {
	return c.fallback
}

// Match maps a user supplied code such as "en-GB" or "ES" to a supported
// language. It reports false when nothing matches.
func (c *Catalog) Match(code string) (string, bool) {
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	_, index, confidence := c.matcher.Match(tag)
	if confidence == language.No {
		return "", false
	}
	return c.codes[index], true
}

// Next returns the language after lang in Languages order, wrapping around.
func (c *Catalog) Next(lang string) string {
	for i, code := range c.codes {
		if code == lang {
			return c.codes[(i+1)%len(c.codes)]
		}
	}
	return c.fallback
}

// Text looks key up in lang, then in the fallback language. Unknown keys
// render as the key itself.
func (c *Catalog) Text(lang, key string) string {
	if msg, ok := c.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := c.messages[c.fallback][key]; ok {
		return msg
	}
	return key
}

func (c *Catalog) Textf(lang, key string, args ...any) string {
	return fmt.Sprintf(c.Text(lang, key), args...)
}
