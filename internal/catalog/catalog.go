// Package catalog holds the compiled-in list of downloadable language packs
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"langpack-manager/pkg/fuzzy"
	"langpack-manager/pkg/models"
)

// packs is the static catalog. Sizes are the declared archive sizes used
// for the pre-flight free-space check.
var packs = []models.LanguagePackInfo{
	{
		ID:         "en-es",
		Name:       "English - Spanish",
		SourceLang: "en",
		TargetLang: "es",
		SizeBytes:  444 * 1024 * 1024,
		RemoteFile: "en-es.zip",
	},
	{
		ID:         "en-fr",
		Name:       "English - French",
		SourceLang: "en",
		TargetLang: "fr",
		SizeBytes:  431 * 1024 * 1024,
		RemoteFile: "en-fr.zip",
	},
	{
		ID:         "en-de",
		Name:       "English - German",
		SourceLang: "en",
		TargetLang: "de",
		SizeBytes:  452 * 1024 * 1024,
		RemoteFile: "en-de.zip",
	},
	{
		ID:         "en-pt",
		Name:       "English - Portuguese",
		SourceLang: "en",
		TargetLang: "pt",
		SizeBytes:  438 * 1024 * 1024,
		RemoteFile: "en-pt.zip",
	},
	{
		ID:         "en-it",
		Name:       "English - Italian",
		SourceLang: "en",
		TargetLang: "it",
		SizeBytes:  427 * 1024 * 1024,
		RemoteFile: "en-it.zip",
	},
	{
		ID:         "en-zh",
		Name:       "English - Chinese",
		SourceLang: "en",
		TargetLang: "zh",
		SizeBytes:  489 * 1024 * 1024,
		RemoteFile: "en-zh.zip",
	},
}

// Catalog resolves pack metadata and download URLs.
type Catalog struct {
	baseURL string
	byID    map[string]models.LanguagePackInfo
	matcher *fuzzy.Matcher
}

// New creates a catalog resolving download URLs against the given base URL.
func New(baseURL string) *Catalog {
	byID := make(map[string]models.LanguagePackInfo, len(packs))
	for _, p := range packs {
		byID[p.ID] = p
	}
	return &Catalog{
		baseURL: baseURL,
		byID:    byID,
		matcher: fuzzy.NewMatcher(),
	}
}

// Get returns the catalog entry for the given pack ID.
func (c *Catalog) Get(packID string) (models.LanguagePackInfo, error) {
	pack, ok := c.byID[packID]
	if !ok {
		return models.LanguagePackInfo{}, fmt.Errorf("unknown language pack: %s", packID)
	}
	return pack, nil
}

// All returns every catalog entry sorted by ID.
func (c *Catalog) All() []models.LanguagePackInfo {
	all := make([]models.LanguagePackInfo, 0, len(c.byID))
	for _, p := range c.byID {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Search returns catalog entries whose ID, name or language pair fuzzily
// matches the query, best matches first. An empty query returns everything.
func (c *Catalog) Search(query string) []models.LanguagePackInfo {
	if strings.TrimSpace(query) == "" {
		return c.All()
	}

	type scored struct {
		pack  models.LanguagePackInfo
		score float64
	}

	var results []scored
	for _, p := range c.All() {
		haystack := strings.Join([]string{p.ID, p.Name, p.SourceLang, p.TargetLang}, " ")
		score := c.matcher.Score(query, haystack)
		if score > 0 {
			results = append(results, scored{pack: p, score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	matched := make([]models.LanguagePackInfo, 0, len(results))
	for _, r := range results {
		matched = append(matched, r.pack)
	}
	return matched
}

// DownloadURL returns the full archive URL for the given pack ID.
func (c *Catalog) DownloadURL(packID string) (string, error) {
	pack, err := c.Get(packID)
	if err != nil {
		return "", err
	}
	return pack.DownloadURL(c.baseURL), nil
}
