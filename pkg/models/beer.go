package models

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot source values
const (
	SourceLive   = "live"   // Fetched from the website on this refresh
	SourceCached = "cached" // Served from the prior snapshot after a fetch failure
)

// Bitterness buckets derived from IBU
const (
	BitternessLow    = "low"    // IBU < 20
	BitternessMedium = "medium" // IBU 20-40
	BitternessHigh   = "high"   // IBU > 40
)

// Alcohol strength buckets derived from ABV
const (
	StrengthLight    = "light"    // ABV < 5%
	StrengthModerate = "moderate" // ABV 5-8%
	StrengthStrong   = "strong"   // ABV > 8%
)

// Body preference buckets
const (
	BodyLight  = "light"
	BodyMedium = "medium"
	BodyFull   = "full"
)

// Beer represents one entry in the brewery catalog. Immutable once fetched;
// a new fetch replaces the whole snapshot, never individual entries.
type Beer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Style       string  `json:"style"`
	ABV         float64 `json:"abv"`
	IBU         *int    `json:"ibu,omitempty"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// Validate checks the invariants every catalog entry must satisfy.
// Records that fail validation are dropped from the snapshot.
func (b *Beer) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("beer id must be non-empty")
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("beer %q: name must be non-empty", b.ID)
	}
	if strings.TrimSpace(b.Style) == "" {
		return fmt.Errorf("beer %q: style must be non-empty", b.ID)
	}
	if b.ABV < 0 || b.ABV > 20 {
		return fmt.Errorf("beer %q: ABV %.1f out of range [0,20]", b.ID, b.ABV)
	}
	if b.IBU != nil && (*b.IBU < 0 || *b.IBU > 120) {
		return fmt.Errorf("beer %q: IBU %d out of range [0,120]", b.ID, *b.IBU)
	}
	return nil
}

// BitternessBucket maps the beer's IBU into the low/medium/high buckets used
// by the preference profile. Returns "" when the IBU is unknown.
func (b *Beer) BitternessBucket() string {
	if b.IBU == nil {
		return ""
	}
	switch {
	case *b.IBU < 20:
		return BitternessLow
	case *b.IBU <= 40:
		return BitternessMedium
	default:
		return BitternessHigh
	}
}

// StrengthBucket maps the beer's ABV into the light/moderate/strong buckets
// used by the preference profile.
func (b *Beer) StrengthBucket() string {
	switch {
	case b.ABV < 5:
		return StrengthLight
	case b.ABV <= 8:
		return StrengthModerate
	default:
		return StrengthStrong
	}
}

// BeerDetails extends a catalog entry with tasting notes and brewing detail
// scraped from the beer's own page, when available.
type BeerDetails struct {
	Beer           Beer     `json:"beer"`
	TastingNotes   string   `json:"tasting_notes,omitempty"`
	Ingredients    string   `json:"ingredients,omitempty"`
	BrewingProcess string   `json:"brewing_process,omitempty"`
	FoodPairings   []string `json:"food_pairings,omitempty"`
}

// CatalogSnapshot is an immutable view of the beer catalog at a point in
// time. Snapshots are replaced wholesale; partial updates are disallowed.
type CatalogSnapshot struct {
	Beers     []Beer    `json:"beers"`
	FetchedAt time.Time `json:"fetched_at"`
	Source    string    `json:"source"`
}

// FindByID returns the beer with the given id, or false if absent.
func (s *CatalogSnapshot) FindByID(id string) (*Beer, bool) {
	for i := range s.Beers {
		if s.Beers[i].ID == id {
			return &s.Beers[i], true
		}
	}
	return nil, false
}

// Age returns how long ago the snapshot was fetched.
func (s *CatalogSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
