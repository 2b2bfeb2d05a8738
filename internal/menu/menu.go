// Package menu resolves dish identifiers to display names in the requested
// language. Menus are static JSON keyed by numeric id, then language code.
package menu

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"

	"golang.org/x/text/language"
)

//go:embed data/*.json
var embedded embed.FS

// Category names a course.
type Category string

const (
	Starters Category = "starters"
	Mains    Category = "mains"
)

// Categories lists every course in menu order.
var Categories = []Category{Starters, Mains}

// DefaultLanguage is used when a requested language is unknown or a dish has
// no translation.
var DefaultLanguage = language.English

// Item is one dish in a resolved menu listing.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Provider serves bilingual menus.
type Provider struct {
	// dishes: category -> id -> language code -> name
	dishes    map[Category]map[string]map[string]string
	supported []language.Tag
	matcher   language.Matcher
}

// Load reads starters.json and mains.json from fsys.
func Load(fsys fs.FS) (*Provider, error) {
	dishes := make(map[Category]map[string]map[string]string, len(Categories))
	for _, cat := range Categories {
		raw, err := fs.ReadFile(fsys, string(cat)+".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s menu: %w", cat, err)
		}
		var entries map[string]map[string]string
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse %s menu: %w", cat, err)
		}
		dishes[cat] = entries
	}
	return newProvider(dishes), nil
}

// Embedded returns the provider for the menus compiled into the binary. A
// broken menu file yields empty menus and a logged error rather than a crash.
func Embedded() *Provider {
	sub, err := fs.Sub(embedded, "data")
	if err == nil {
		var p *Provider
		if p, err = Load(sub); err == nil {
			return p
		}
	}
	slog.Error("Error loading menus, serving empty menus", "error", err)
	return newProvider(map[Category]map[string]map[string]string{Starters: {}, Mains: {}})
}

func newProvider(dishes map[Category]map[string]map[string]string) *Provider {
	seen := map[string]bool{DefaultLanguage.String(): true}
	supported := []language.Tag{DefaultLanguage}
	for _, entries := range dishes {
		for _, names := range entries {
			for code := range names {
				if seen[code] {
					continue
				}
				tag, err := language.Parse(code)
				if err != nil {
					continue
				}
				seen[code] = true
				supported = append(supported, tag)
			}
		}
	}
	// Stable order after the default keeps matching deterministic.
	sort.Slice(supported[1:], func(i, j int) bool {
		return supported[i+1].String() < supported[j+1].String()
	})

	return &Provider{
		dishes:    dishes,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}
}

// Languages returns the language codes present in the menus, default first.
func (p *Provider) Languages() []string {
	codes := make([]string, len(p.supported))
	for i, tag := range p.supported {
		codes[i] = tag.String()
	}
	return codes
}

// Resolve maps a requested language (a tag or Accept-Language value) to the
// closest supported language code.
func (p *Provider) Resolve(lang string) string {
	if lang == "" {
		return DefaultLanguage.String()
	}
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage.String()
	}
	_, index, confidence := p.matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage.String()
	}
	return p.supported[index].String()
}

// Name returns the display name of dish id in category, falling back to the
// default language, then to "Unknown <category> <id>".
func (p *Provider) Name(cat Category, id, lang string) string {
	names, ok := p.dishes[cat][id]
	if !ok {
		return fmt.Sprintf("Unknown %s %s", cat, id)
	}
	if name, ok := names[p.Resolve(lang)]; ok {
		return name
	}
	if name, ok := names[DefaultLanguage.String()]; ok {
		return name
	}
	return fmt.Sprintf("Unknown %s %s", cat, id)
}

// Menu returns id -> display name for category. Unknown categories are empty.
func (p *Provider) Menu(cat Category, lang string) map[string]string {
	menu := make(map[string]string, len(p.dishes[cat]))
	for id := range p.dishes[cat] {
		menu[id] = p.Name(cat, id, lang)
	}
	return menu
}

// List returns category's dishes ordered by numeric id. Non-numeric ids are
// skipped since they cannot be ordered or sent as numbers.
func (p *Provider) List(cat Category, lang string) []Item {
	items := make([]Item, 0, len(p.dishes[cat]))
	for id, name := range p.Menu(cat, lang) {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		items = append(items, Item{ID: n, Name: name})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// All returns every category's menu in lang.
func (p *Provider) All(lang string) map[Category]map[string]string {
	all := make(map[Category]map[string]string, len(Categories))
	for _, cat := range Categories {
		all[cat] = p.Menu(cat, lang)
	}
	return all
}
