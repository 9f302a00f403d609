package search

import (
	"log/slog"
	"sort"
	"strings"
)

// Blocklist exposes the set of release titles excluded from selection.
type Blocklist interface {
	ActiveTitles() (map[string]bool, error)
}

// Selector picks the best release for a quality profile.
type Selector struct {
	formats   []CustomFormat
	blocklist Blocklist
	log       *slog.Logger
}

// NewSelector creates a selector scoring with the given custom formats.
// blocklist may be nil when no exclusions apply.
func NewSelector(formats []CustomFormat, blocklist Blocklist, log *slog.Logger) *Selector {
	if log == nil {
		log = slog.Default()
	}
	return &Selector{
		formats:   formats,
		blocklist: blocklist,
		log:       log.With("component", "selector"),
	}
}

// SelectBest filters candidates against the profile's enabled tiers and
// the blocklist, scores the survivors, and returns the winner. The
// result is deterministic: ties break on ascending title. Returns
// ErrNoResults when candidates is empty, ErrNoQualifyingRelease when
// nothing passes the tier filter or the top score falls below the
// profile's minimum.
func (s *Selector) SelectBest(candidates []Release, profile Profile) (*Selection, error) {
	if len(candidates) == 0 {
		return nil, ErrNoResults
	}

	enabled := profile.EnabledTiers()
	eligible := make([]Release, 0, len(candidates))
	for _, c := range candidates {
		// A profile with no enabled tiers accepts everything.
		if len(enabled) == 0 {
			eligible = append(eligible, c)
			continue
		}
		for _, tier := range enabled {
			if TierMatches(tier, c.Title) {
				eligible = append(eligible, c)
				break
			}
		}
	}
	if len(eligible) == 0 {
		s.log.Debug("no candidate matched any enabled tier",
			"profile", profile.Name, "candidates", len(candidates))
		return nil, ErrNoQualifyingRelease
	}

	if s.blocklist != nil {
		blocked, err := s.blocklist.ActiveTitles()
		if err != nil {
			return nil, err
		}
		kept := eligible[:0]
		for _, c := range eligible {
			if blocked[strings.ToLower(c.Title)] {
				s.log.Debug("skipping blocklisted release", "title", c.Title)
				continue
			}
			kept = append(kept, c)
		}
		eligible = kept
	}
	if len(eligible) == 0 {
		return nil, ErrNoQualifyingRelease
	}

	type scored struct {
		release   Release
		score     int
		breakdown string
	}
	results := make([]scored, 0, len(eligible))
	for _, c := range eligible {
		score, breakdown := ScoreFormats(c.Title, s.formats)
		results = append(results, scored{c, score, breakdown})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].release.Title < results[j].release.Title
	})

	best := results[0]
	if best.score < profile.MinFormatScore {
		s.log.Info("best release below minimum format score",
			"title", best.release.Title, "score", best.score,
			"min", profile.MinFormatScore)
		return nil, ErrNoQualifyingRelease
	}

	return &Selection{
		Release:   best.release,
		Score:     best.score,
		Breakdown: best.breakdown,
	}, nil
}
