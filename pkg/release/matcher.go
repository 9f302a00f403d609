package release

import (
	"regexp"

	"github.com/hbollon/go-edlib"
)

var numberRegex = regexp.MustCompile(`\b(\d+)\b`)

// MatchConfidence is the confidence level of a fuzzy title match.
type MatchConfidence int

const (
	ConfidenceNone   MatchConfidence = iota // score < 0.70
	ConfidenceLow                           // score >= 0.70
	ConfidenceMedium                        // score >= 0.85
	ConfidenceHigh                          // score >= 0.95
)

func (c MatchConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// MatchResult is the outcome of a fuzzy title match.
type MatchResult struct {
	Title      string  // matched candidate title
	Score      float64 // Jaro-Winkler similarity (0.0-1.0)
	Confidence MatchConfidence
}

// MatchTitle finds the best match for a parsed title among candidates.
// Jaro-Winkler favors prefix matches, which suits media titles; sequence
// numbers ("Movie 2" vs "Movie 3") adjust the score so sequels don't
// cross-match.
func MatchTitle(parsed string, candidates []string) MatchResult {
	if len(candidates) == 0 {
		return MatchResult{Confidence: ConfidenceNone}
	}

	normalizedParsed := CleanTitle(parsed)
	parsedNumbers := numberRegex.FindAllString(normalizedParsed, -1)

	best := MatchResult{Confidence: ConfidenceNone}

	for _, candidate := range candidates {
		normalizedCandidate := CleanTitle(candidate)

		score := float64(edlib.JaroWinklerSimilarity(normalizedParsed, normalizedCandidate))
		candidateNumbers := numberRegex.FindAllString(normalizedCandidate, -1)
		score = adjustScoreForNumbers(score, parsedNumbers, candidateNumbers)

		if score > best.Score {
			best.Title = candidate
			best.Score = score
		}
	}

	switch {
	case best.Score >= 0.95:
		best.Confidence = ConfidenceHigh
	case best.Score >= 0.85:
		best.Confidence = ConfidenceMedium
	case best.Score >= 0.70:
		best.Confidence = ConfidenceLow
	default:
		best.Confidence = ConfidenceNone
		best.Title = ""
	}

	return best
}

// adjustScoreForNumbers applies a bonus when sequence numbers agree and a
// penalty when they disagree or are missing from the candidate.
func adjustScoreForNumbers(score float64, parsedNums, candidateNums []string) float64 {
	if len(parsedNums) == 0 {
		return score
	}
	if len(candidateNums) == 0 {
		return score * 0.85
	}

	candidateSet := make(map[string]bool, len(candidateNums))
	for _, n := range candidateNums {
		candidateSet[n] = true
	}
	for _, n := range parsedNums {
		if candidateSet[n] {
			return min(score*1.05, 1.0)
		}
	}

	return score * 0.90
}
