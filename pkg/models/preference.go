package models

// PreferenceProfile is the derived summary of a user's stated likes and
// dislikes. It is never mutated directly: the preference service folds
// feedback events into it and maintains its invariants, chiefly that
// LikedTags and DislikedTags stay disjoint.
type PreferenceProfile struct {
	PreferredStyles  []string `json:"preferred_styles,omitempty"`
	Bitterness       string   `json:"bitterness_preference,omitempty"` // low/medium/high
	AlcoholTolerance string   `json:"alcohol_tolerance,omitempty"`     // light/moderate/strong
	Body             string   `json:"body_preference,omitempty"`       // light/medium/full
	LikedTags        []string `json:"liked_tags,omitempty"`
	DislikedTags     []string `json:"disliked_tags,omitempty"`

	// BucketVotes counts bucket statements per dimension so the active
	// bucket can be recomputed as the mode after every fold. Keys are
	// dimension names ("bitterness", "alcohol", "body"), values map a
	// bucket value to its statement count.
	BucketVotes map[string]map[string]int `json:"bucket_votes,omitempty"`

	// BucketRecency records the statement sequence number at which each
	// bucket value was last stated, used to break mode ties toward the most
	// recently stated value.
	BucketRecency map[string]map[string]int `json:"bucket_recency,omitempty"`

	// FoldSeq increments once per folded bucket statement, stamping each
	// statement's recency. Two statements never share a stamp, even inside
	// one event.
	FoldSeq int `json:"fold_seq,omitempty"`
}

// Clone deep-copies the profile so folds and store round-trips never alias
// the original's slices and maps.
func (p PreferenceProfile) Clone() PreferenceProfile {
	out := p
	out.PreferredStyles = append([]string(nil), p.PreferredStyles...)
	out.LikedTags = append([]string(nil), p.LikedTags...)
	out.DislikedTags = append([]string(nil), p.DislikedTags...)
	if p.BucketVotes != nil {
		out.BucketVotes = make(map[string]map[string]int, len(p.BucketVotes))
		for dim, votes := range p.BucketVotes {
			inner := make(map[string]int, len(votes))
			for k, v := range votes {
				inner[k] = v
			}
			out.BucketVotes[dim] = inner
		}
	}
	if p.BucketRecency != nil {
		out.BucketRecency = make(map[string]map[string]int, len(p.BucketRecency))
		for dim, recency := range p.BucketRecency {
			inner := make(map[string]int, len(recency))
			for k, v := range recency {
				inner[k] = v
			}
			out.BucketRecency[dim] = inner
		}
	}
	return out
}

// Conflict records a preference update where a tag moved between the liked
// and disliked sets because a later statement contradicted an earlier one.
type Conflict struct {
	Tag  string `json:"tag"`
	From string `json:"from"` // polarity the tag was recorded under before
	To   string `json:"to"`   // polarity of the statement that won
}

// IsEmpty reports whether no preference signal has been recorded yet.
// Scoring against an empty profile returns the neutral midpoint.
func (p *PreferenceProfile) IsEmpty() bool {
	return len(p.PreferredStyles) == 0 &&
		len(p.LikedTags) == 0 &&
		len(p.DislikedTags) == 0 &&
		p.Bitterness == "" &&
		p.AlcoholTolerance == "" &&
		p.Body == ""
}

// HasStyle reports whether style is among the preferred styles.
// Comparison is exact; callers normalize case before storing.
func (p *PreferenceProfile) HasStyle(style string) bool {
	return contains(p.PreferredStyles, style)
}

// Likes reports whether tag is in the liked set.
func (p *PreferenceProfile) Likes(tag string) bool {
	return contains(p.LikedTags, tag)
}

// Dislikes reports whether tag is in the disliked set.
func (p *PreferenceProfile) Dislikes(tag string) bool {
	return contains(p.DislikedTags, tag)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
