// Package locale maps language tags to serial-number templates.
package locale

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"code.selman.me/uniqname/naming"
)

//go:embed catalog.toml
var builtinTOML string

// Entry is one template/pattern pair as written in TOML.
type Entry struct {
	Locale  string `toml:"locale"`
	Format  string `toml:"format"`
	Pattern string `toml:"pattern"`
}

type catalogFile struct {
	Templates []Entry `toml:"templates"`
}

var builtin = sync.OnceValue(func() []Entry {
	var f catalogFile
	if _, err := toml.Decode(builtinTOML, &f); err != nil {
		panic(fmt.Sprintf("locale: decode built-in catalog: %v", err))
	}
	return f.Templates
})

// Builtin returns the entries shipped with the binary.
func Builtin() []Entry {
	return append([]Entry(nil), builtin()...)
}

// Merge returns base with overrides applied. An override replaces the base
// entry for the same locale; new locales are appended.
func Merge(base, overrides []Entry) []Entry {
	out := append([]Entry(nil), base...)
	index := make(map[string]int, len(out))
	for i, e := range out {
		index[canonical(e.Locale)] = i
	}
	for _, e := range overrides {
		key := canonical(e.Locale)
		if i, ok := index[key]; ok {
			out[i] = e
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}

func canonical(s string) string {
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	return tag.String()
}

// Catalog resolves the template for a language.
type Catalog struct {
	entries   []Entry
	tags      []language.Tag
	templates []*naming.Template
	matcher   language.Matcher
}

// LoadCatalog validates every entry and builds a Catalog. The first entry
// for "und" is the fallback; without one the default template is used.
func LoadCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{}
	hasUnd := false
	for _, e := range entries {
		tag, err := language.Parse(e.Locale)
		if err != nil {
			return nil, fmt.Errorf("locale: parse %q: %w", e.Locale, err)
		}
		tmpl, err := naming.NewTemplate(e.Format, e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("locale: %s: %w", tag, err)
		}
		if tag == language.Und && !hasUnd {
			hasUnd = true
			c.prepend(e, tag, tmpl)
			continue
		}
		c.entries = append(c.entries, e)
		c.tags = append(c.tags, tag)
		c.templates = append(c.templates, tmpl)
	}
	if !hasUnd {
		def := naming.Default()
		c.prepend(Entry{Locale: "und", Format: def.FormatString(), Pattern: def.Pattern()}, language.Und, def)
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func (c *Catalog) prepend(e Entry, tag language.Tag, tmpl *naming.Template) {
	c.entries = append([]Entry{e}, c.entries...)
	c.tags = append([]language.Tag{tag}, c.tags...)
	c.templates = append([]*naming.Template{tmpl}, c.templates...)
}

// Template returns the best template for tag, or the fallback.
func (c *Catalog) Template(tag language.Tag) *naming.Template {
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		slog.Debug("no template for locale, using fallback", "locale", tag)
		return c.templates[0]
	}
	return c.templates[idx]
}

// Locales returns the catalog's tags, fallback first.
func (c *Catalog) Locales() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// Entries returns the validated entries, fallback first.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Detect reads the message locale from the environment using the POSIX
// precedence LC_ALL, LC_MESSAGES, LANG. It returns language.Und when nothing
// usable is set.
func Detect(getenv func(string) string) language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(key); v != "" {
			return ParsePOSIX(v)
		}
	}
	return language.Und
}

// ParsePOSIX converts a POSIX locale such as "de_DE.UTF-8@euro" to a tag.
func ParsePOSIX(s string) language.Tag {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "", "C", "POSIX":
		return language.Und
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		slog.Debug("unparsable locale", "locale", s, "err", err)
		return language.Und
	}
	return tag
}
