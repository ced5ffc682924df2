package services

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/catalog"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

//go:embed pairings.yaml
var pairingRulesYAML []byte

// minPairingSuggestions is the floor on suggestions per beer; the generic
// list pads styles with fewer specific rules.
const minPairingSuggestions = 3

// PairingService resolves beer-to-food and food-to-beer pairings from the
// embedded rules table. Lookups never fail: unknown styles fall back to the
// generic suggestions.
type PairingService interface {
	// PairingsFor returns at least three food suggestions for the beer.
	PairingsFor(beer models.Beer) []models.FoodSuggestion

	// BeersFor returns catalog beers whose style pairs with the given food.
	// Food matching is case-insensitive and singular/plural tolerant.
	BeersFor(ctx context.Context, food string) ([]models.Beer, error)
}

type pairingRules struct {
	Styles  map[string][]models.FoodSuggestion `yaml:"styles"`
	Generic []models.FoodSuggestion            `yaml:"generic"`
}

type pairingService struct {
	rules pairingRules
	// styleKeys sorted longest first so "pale ale" wins over "ale".
	styleKeys []string
	store     *catalog.Store
	logger    *zap.Logger
}

// NewPairingService parses the embedded rules table. The snapshot store is
// used only for reverse (food-to-beer) lookups.
func NewPairingService(store *catalog.Store, logger *zap.Logger) (PairingService, error) {
	var rules pairingRules
	if err := yaml.Unmarshal(pairingRulesYAML, &rules); err != nil {
		return nil, fmt.Errorf("parse pairing rules: %w", err)
	}
	if len(rules.Generic) < minPairingSuggestions {
		return nil, fmt.Errorf("pairing rules need at least %d generic entries, have %d",
			minPairingSuggestions, len(rules.Generic))
	}

	keys := make([]string, 0, len(rules.Styles))
	for k := range rules.Styles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	return &pairingService{
		rules:     rules,
		styleKeys: keys,
		store:     store,
		logger:    logger.Named("pairings"),
	}, nil
}

var _ PairingService = (*pairingService)(nil)

func (s *pairingService) PairingsFor(beer models.Beer) []models.FoodSuggestion {
	suggestions := append([]models.FoodSuggestion(nil), s.rulesForStyle(beer.Style)...)

	// Pad with generic suggestions, skipping foods already present.
	for _, g := range s.rules.Generic {
		if len(suggestions) >= minPairingSuggestions {
			break
		}
		if !containsFood(suggestions, g.Food) {
			suggestions = append(suggestions, g)
		}
	}
	return suggestions
}

func (s *pairingService) BeersFor(ctx context.Context, food string) ([]models.Beer, error) {
	snap, err := s.store.Get(ctx)
	if err != nil && len(snap.Beers) == 0 {
		return nil, err
	}

	want := normalizeFood(food)
	var matches []models.Beer
	for _, beer := range snap.Beers {
		for _, suggestion := range s.PairingsFor(beer) {
			if foodMatches(suggestion.Food, want) {
				matches = append(matches, beer)
				break
			}
		}
	}

	if len(matches) == 0 {
		s.logger.Debug("No pairing match for food", zap.String("food", food))
	}
	return matches, nil
}

// rulesForStyle resolves the rule list for a catalog style name. The first
// (longest) key contained in the style wins; unknown styles get the generic
// list.
func (s *pairingService) rulesForStyle(style string) []models.FoodSuggestion {
	lower := strings.ToLower(style)
	for _, key := range s.styleKeys {
		if strings.Contains(lower, key) {
			return s.rules.Styles[key]
		}
	}
	return s.rules.Generic
}

// normalizeFood lowercases and singularizes each word so "tacos" matches
// "street taco" and vice versa.
func normalizeFood(food string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(food)))
	for i, w := range words {
		words[i] = inflection.Singular(w)
	}
	return strings.Join(words, " ")
}

// foodMatches reports whether a rule's food and the normalized query share
// a word, after singularization. "tacos" matches "spicy tacos" and
// "street tacos".
func foodMatches(ruleFood, want string) bool {
	rule := normalizeFood(ruleFood)
	if rule == want || strings.Contains(rule, want) || strings.Contains(want, rule) {
		return true
	}
	ruleWords := strings.Fields(rule)
	for _, w := range strings.Fields(want) {
		for _, rw := range ruleWords {
			if w == rw {
				return true
			}
		}
	}
	return false
}

func containsFood(list []models.FoodSuggestion, food string) bool {
	for _, s := range list {
		if strings.EqualFold(s.Food, food) {
			return true
		}
	}
	return false
}
