package playlist

import "sort"

// Item is a read-only snapshot of one entry in the server playlist,
// captured at the start of a run.
type Item struct {
	ID       string `json:"id"` // playlist item identifier used by the move API
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Position int    `json:"position"` // current index in the server playlist
}

// Tier is the matching strategy level at which a match was accepted,
// surfaced to the user for review before execution.
type Tier int

const (
	TierExact Tier = iota
	TierTitleArtistFuzzy
	TierTitleOnly
	TierUnmatched
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierTitleArtistFuzzy:
		return "title_artist_fuzzy"
	case TierTitleOnly:
		return "title_only"
	default:
		return "unmatched"
	}
}

// MatchResult pairs one imported track with the server item it matched,
// if any. Results preserve import order.
type MatchResult struct {
	Imported ImportedTrack
	Item     *Item // nil when unmatched
	Tier     Tier
	Score    float64
}

// Matched reports whether a server item was found for the imported track.
func (r MatchResult) Matched() bool { return r.Item != nil }

// Default acceptance thresholds, tunable via configuration.
const (
	DefaultFuzzyThreshold     = 0.80
	DefaultTitleOnlyThreshold = 0.85
)

// Relative weight of title vs artist similarity in the combined fuzzy
// score. Titles discriminate better than artists.
const (
	titleWeight  = 0.7
	artistWeight = 0.3
)

// Matcher assigns server items to imported tracks using tiered fallbacks:
// exact normalized equality, then fuzzy title+artist, then title alone.
//
// Matching is greedy in import order with no backtracking: earlier imported
// tracks have priority, and each server item is consumed by at most one
// result. Ties always break toward the lowest current position, so output
// is deterministic for identical inputs.
type Matcher struct {
	scorer             Scorer
	fuzzyThreshold     float64
	titleOnlyThreshold float64
}

// NewMatcher creates a Matcher. A nil scorer selects [JaroWinklerScorer];
// non-positive thresholds select the defaults.
func NewMatcher(scorer Scorer, fuzzyThreshold, titleOnlyThreshold float64) *Matcher {
	if scorer == nil {
		scorer = JaroWinklerScorer{}
	}
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = DefaultFuzzyThreshold
	}
	if titleOnlyThreshold <= 0 {
		titleOnlyThreshold = DefaultTitleOnlyThreshold
	}
	return &Matcher{
		scorer:             scorer,
		fuzzyThreshold:     fuzzyThreshold,
		titleOnlyThreshold: titleOnlyThreshold,
	}
}

// candidate caches normalized fields for one server item.
type candidate struct {
	item     Item
	title    string
	artist   string
	consumed bool
}

// Match produces one MatchResult per imported track, in import order.
func (m *Matcher) Match(imported []ImportedTrack, items []Item) []MatchResult {
	candidates := make([]*candidate, len(items))
	for i, item := range items {
		candidates[i] = &candidate{
			item:   item,
			title:  Normalize(item.Title),
			artist: Normalize(item.Artist),
		}
	}
	// Position order makes "first hit wins" equal "lowest position wins".
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].item.Position < candidates[j].item.Position
	})

	results := make([]MatchResult, 0, len(imported))
	for _, track := range imported {
		result := m.matchOne(track, candidates)
		results = append(results, result)
	}
	return results
}

func (m *Matcher) matchOne(track ImportedTrack, candidates []*candidate) MatchResult {
	title := Normalize(track.Title)
	artist := Normalize(track.Artist)

	if c := findExact(candidates, title, artist); c != nil {
		return consume(track, c, TierExact, 1)
	}

	if artist != "" {
		if c, score := m.findFuzzy(candidates, title, artist); c != nil {
			return consume(track, c, TierTitleArtistFuzzy, score)
		}
	}

	if c, score := m.findTitleOnly(candidates, title); c != nil {
		return consume(track, c, TierTitleOnly, score)
	}

	return MatchResult{Imported: track, Tier: TierUnmatched}
}

// findExact returns the unconsumed candidate with equal normalized title
// and, when the import carries an artist, equal normalized artist. Walking
// in position order resolves duplicates toward the front of the list.
func findExact(candidates []*candidate, title, artist string) *candidate {
	for _, c := range candidates {
		if c.consumed || c.title != title {
			continue
		}
		if artist != "" && c.artist != artist {
			continue
		}
		return c
	}
	return nil
}

// findFuzzy returns the best-scoring unconsumed candidate above the fuzzy
// threshold, combining title and artist similarity.
func (m *Matcher) findFuzzy(candidates []*candidate, title, artist string) (*candidate, float64) {
	var best *candidate
	bestScore := 0.0
	for _, c := range candidates {
		if c.consumed {
			continue
		}
		score := titleWeight*m.scorer.Score(title, c.title) + artistWeight*m.scorer.Score(artist, c.artist)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == nil || bestScore < m.fuzzyThreshold {
		return nil, 0
	}
	return best, bestScore
}

// findTitleOnly matches on title similarity alone. Used directly when the
// import has no artist, and as a final fallback otherwise.
func (m *Matcher) findTitleOnly(candidates []*candidate, title string) (*candidate, float64) {
	var best *candidate
	bestScore := 0.0
	for _, c := range candidates {
		if c.consumed {
			continue
		}
		score := m.scorer.Score(title, c.title)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == nil || bestScore < m.titleOnlyThreshold {
		return nil, 0
	}
	return best, bestScore
}

func consume(track ImportedTrack, c *candidate, tier Tier, score float64) MatchResult {
	c.consumed = true
	item := c.item
	return MatchResult{Imported: track, Item: &item, Tier: tier, Score: score}
}
