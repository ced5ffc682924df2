package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tasting steps, in the order a guided evaluation walks through them.
const (
	StepAppearance = "appearance"
	StepAroma      = "aroma"
	StepTaste      = "taste"
	StepMouthfeel  = "mouthfeel"
)

// Feedback polarity values
const (
	PolarityLiked    = "liked"
	PolarityDisliked = "disliked"
	PolarityNeutral  = "neutral"
)

// FeedbackEvent captures one user statement about a beer during tasting.
// Events are created once, never mutated, and appended to the session log.
type FeedbackEvent struct {
	ID        uuid.UUID `json:"id"`
	BeerID    string    `json:"beer_id"`
	Step      string    `json:"step"`
	Polarity  string    `json:"polarity"`
	Tags      []string  `json:"tags,omitempty"`
	Note      string    `json:"note,omitempty"`
	Rating    int       `json:"rating,omitempty"` // 1-5, 0 when unset
	CreatedAt time.Time `json:"created_at"`
}

// NewFeedbackEvent builds an event with a fresh id and timestamp.
// Tags are lowercased and trimmed so profile folding is case-insensitive.
func NewFeedbackEvent(beerID, step, polarity string, tags []string, note string) FeedbackEvent {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			normalized = append(normalized, tag)
		}
	}
	return FeedbackEvent{
		ID:        uuid.New(),
		BeerID:    beerID,
		Step:      step,
		Polarity:  polarity,
		Tags:      normalized,
		Note:      note,
		CreatedAt: time.Now(),
	}
}

// Validate checks the constructor constraints from the data model.
func (e *FeedbackEvent) Validate() error {
	if strings.TrimSpace(e.BeerID) == "" {
		return fmt.Errorf("feedback event: beer id must be non-empty")
	}
	if !ValidStep(e.Step) {
		return fmt.Errorf("feedback event: invalid tasting step %q", e.Step)
	}
	if !ValidPolarity(e.Polarity) {
		return fmt.Errorf("feedback event: invalid polarity %q", e.Polarity)
	}
	if e.Rating != 0 && (e.Rating < 1 || e.Rating > 5) {
		return fmt.Errorf("feedback event: rating %d out of range [1,5]", e.Rating)
	}
	return nil
}

// ValidStep reports whether s is one of the four tasting steps.
func ValidStep(s string) bool {
	switch s {
	case StepAppearance, StepAroma, StepTaste, StepMouthfeel:
		return true
	}
	return false
}

// ValidPolarity reports whether p is a known polarity value.
func ValidPolarity(p string) bool {
	switch p {
	case PolarityLiked, PolarityDisliked, PolarityNeutral:
		return true
	}
	return false
}
