package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CategoryDefinition describes a content niche. Keyword lists are data, not
// logic: the built-in catalog below can be replaced wholesale from a JSON file.
type CategoryDefinition struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"displayName"`
	Keywords         []string `json:"keywords"`
	FallbackKeywords []string `json:"fallbackKeywords,omitempty"`
	ExcludeKeywords  []string `json:"excludeKeywords,omitempty"`
	// Broad niches need many query angles; the planner generates multi-word
	// query variants for them instead of a single joined query.
	Broad bool `json:"broad,omitempty"`
	// Lenient niches accept records matching the fallback keyword set even
	// when the primary keywords miss.
	Lenient bool `json:"lenient,omitempty"`
}

// CategoryCatalog resolves unified category identifiers. "prod:<id>" refers to
// a niche definition here; "yt:<id>" passes through to the platform taxonomy.
type CategoryCatalog struct {
	byID  map[string]*CategoryDefinition
	order []string
}

func NewCategoryCatalog(defs []CategoryDefinition) *CategoryCatalog {
	catalog := &CategoryCatalog{byID: make(map[string]*CategoryDefinition, len(defs))}
	for i := range defs {
		def := defs[i]
		id := strings.ToLower(strings.TrimSpace(def.ID))
		if id == "" {
			continue
		}
		if _, exists := catalog.byID[id]; exists {
			continue
		}
		def.ID = id
		catalog.byID[id] = &def
		catalog.order = append(catalog.order, id)
	}
	return catalog
}

// BuiltinCategoryCatalog returns the catalog of curated niche definitions
// shipped with the service.
func BuiltinCategoryCatalog() *CategoryCatalog {
	return NewCategoryCatalog(builtinCategories)
}

// LoadCategoryCatalog reads a JSON catalog from path, or returns the built-in
// catalog when path is empty.
func LoadCategoryCatalog(path string) (*CategoryCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return BuiltinCategoryCatalog(), nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category catalog: %w", err)
	}
	var defs []CategoryDefinition
	if err := json.Unmarshal(payload, &defs); err != nil {
		return nil, fmt.Errorf("parse category catalog: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("category catalog %s is empty", path)
	}
	return NewCategoryCatalog(defs), nil
}

func (c *CategoryCatalog) Lookup(id string) (*CategoryDefinition, bool) {
	def, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return def, ok
}

func (c *CategoryCatalog) List() []CategoryDefinition {
	items := make([]CategoryDefinition, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, *c.byID[id])
	}
	return items
}

// ResolvedCategory is the parsed form of the request's category parameter.
type ResolvedCategory struct {
	// NativeID is set for "yt:<id>" references and rides along to providers
	// whose trending endpoint accepts a platform taxonomy id.
	NativeID string
	// Niche is set for "prod:<id>" references and drives keyword-search
	// planning plus relevance filtering.
	Niche *CategoryDefinition
}

var ErrUnknownCategory = fmt.Errorf("unknown category")

// ResolveCategoryRef parses a unified category identifier: "all" (or empty)
// means no category filter, "yt:<id>" a platform-native category, and
// "prod:<id>" a niche from the catalog.
func (c *CategoryCatalog) ResolveCategoryRef(ref string) (ResolvedCategory, error) {
	value := strings.ToLower(strings.TrimSpace(ref))
	switch {
	case value == "" || value == "all":
		return ResolvedCategory{}, nil
	case strings.HasPrefix(value, "yt:"):
		id := strings.TrimPrefix(value, "yt:")
		if id == "" {
			return ResolvedCategory{}, fmt.Errorf("%w: %q", ErrUnknownCategory, ref)
		}
		return ResolvedCategory{NativeID: id}, nil
	case strings.HasPrefix(value, "prod:"):
		id := strings.TrimPrefix(value, "prod:")
		def, ok := c.Lookup(id)
		if !ok {
			return ResolvedCategory{}, fmt.Errorf("%w: %q", ErrUnknownCategory, ref)
		}
		return ResolvedCategory{Niche: def}, nil
	default:
		return ResolvedCategory{}, fmt.Errorf("%w: %q", ErrUnknownCategory, ref)
	}
}

var builtinCategories = []CategoryDefinition{
	{
		ID:               "gaming",
		DisplayName:      "Gaming",
		Keywords:         []string{"gameplay", "speedrun", "gaming moments", "game highlights", "lets play"},
		FallbackKeywords: []string{"gaming", "game"},
		ExcludeKeywords:  []string{"board game unboxing"},
		Broad:            true,
		Lenient:          true,
	},
	{
		ID:               "fitness",
		DisplayName:      "Fitness",
		Keywords:         []string{"home workout", "gym transformation", "fitness challenge", "workout routine"},
		FallbackKeywords: []string{"workout", "fitness"},
		ExcludeKeywords:  []string{"supplement scam"},
		Lenient:          true,
	},
	{
		ID:               "cooking",
		DisplayName:      "Cooking",
		Keywords:         []string{"easy recipe", "street food", "cooking hack", "one pan dinner"},
		FallbackKeywords: []string{"recipe", "cooking", "food"},
		Broad:            true,
		Lenient:          true,
	},
	{
		ID:               "tech",
		DisplayName:      "Tech",
		Keywords:         []string{"smartphone review", "tech unboxing", "gadget test", "coding tips"},
		FallbackKeywords: []string{"tech", "gadget"},
	},
	{
		ID:               "motivation",
		DisplayName:      "Motivation",
		Keywords:         []string{"morning routine", "discipline habits", "success mindset", "motivational speech"},
		FallbackKeywords: []string{"motivation", "mindset"},
		Lenient:          true,
	},
	{
		ID:               "asmr",
		DisplayName:      "ASMR",
		Keywords:         []string{"asmr triggers", "satisfying sounds", "asmr eating"},
		FallbackKeywords: []string{"asmr", "satisfying"},
	},
}
