package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func requiredSpec(pattern string) FormatSpec {
	return FormatSpec{Pattern: pattern, Required: true}
}

func TestScoreFormats(t *testing.T) {
	formats := []CustomFormat{
		{Name: "x265", Score: 10, Specs: []FormatSpec{requiredSpec(`x265|hevc`)}},
		{Name: "DDP", Score: 5, Specs: []FormatSpec{requiredSpec(`ddp|eac3`)}},
		{Name: "BadGroup", Score: -100, Specs: []FormatSpec{requiredSpec(`-YIFY\b`)}},
	}

	total, breakdown := ScoreFormats("Movie.2024.1080p.WEB-DL.DDP5.1.x265-GRP", formats)
	assert.Equal(t, 15, total)
	assert.Equal(t, "x265 +10, DDP +5", breakdown)

	total, breakdown = ScoreFormats("Movie.2024.1080p.x264-YIFY", formats)
	assert.Equal(t, -100, total)
	assert.Equal(t, "BadGroup -100", breakdown)

	total, breakdown = ScoreFormats("Plain.Release", formats)
	assert.Equal(t, 0, total)
	assert.Equal(t, "-", breakdown)
}

func TestScoreFormats_NegatedSpecShortCircuits(t *testing.T) {
	formats := []CustomFormat{
		{
			Name:  "WEB not remux",
			Score: 20,
			Specs: []FormatSpec{
				requiredSpec(`web`),
				{Pattern: `remux`, Required: true, Negate: true},
			},
		},
	}

	total, _ := ScoreFormats("Movie.2024.WEB-DL-GRP", formats)
	assert.Equal(t, 20, total)

	total, breakdown := ScoreFormats("Movie.2024.WEB.REMUX-GRP", formats)
	assert.Equal(t, 0, total)
	assert.Equal(t, "-", breakdown)
}

func TestScoreFormats_OptionalSpecsIgnored(t *testing.T) {
	formats := []CustomFormat{
		{
			Name:  "OnlyOptional",
			Score: 50,
			Specs: []FormatSpec{{Pattern: `anything`, Required: false}},
		},
	}
	total, breakdown := ScoreFormats("anything goes here", formats)
	assert.Equal(t, 0, total, "a rule with no required specs never contributes")
	assert.Equal(t, "-", breakdown)
}

func TestScoreFormats_ResolutionSpec(t *testing.T) {
	formats := []CustomFormat{
		{
			Name:  "FHD",
			Score: 10,
			Specs: []FormatSpec{{Pattern: "1080p", Required: true, IsResolution: true}},
		},
	}

	total, _ := ScoreFormats("Movie.2024.1080p.WEB-GRP", formats)
	assert.Equal(t, 10, total)

	// Word-bounded numeric match: bare "1080" also qualifies.
	total, _ = ScoreFormats("Movie 2024 1080 WEB", formats)
	assert.Equal(t, 10, total)

	// "21080" must not.
	total, _ = ScoreFormats("Movie 21080 WEB", formats)
	assert.Equal(t, 0, total)
}

func TestScoreFormats_Deterministic(t *testing.T) {
	formats := []CustomFormat{
		{Name: "A", Score: 1, Specs: []FormatSpec{requiredSpec(`web`)}},
		{Name: "B", Score: 2, Specs: []FormatSpec{requiredSpec(`1080p`)}},
	}
	title := "Movie.2024.1080p.WEB-GRP"

	t1, b1 := ScoreFormats(title, formats)
	t2, b2 := ScoreFormats(title, formats)
	assert.Equal(t, t1, t2)
	assert.Equal(t, b1, b2)

	// Reordering rules that all match permutes the breakdown but the
	// total is commutative.
	reversed := []CustomFormat{formats[1], formats[0]}
	t3, b3 := ScoreFormats(title, reversed)
	assert.Equal(t, t1, t3)
	assert.Equal(t, "B +2, A +1", b3)
}

func TestScoreFormats_InvalidPatternFallsBackToSubstring(t *testing.T) {
	formats := []CustomFormat{
		{Name: "Broken", Score: 7, Specs: []FormatSpec{requiredSpec(`[unclosed`)}},
	}
	total, _ := ScoreFormats("release with [unclosed bracket", formats)
	assert.Equal(t, 7, total)
}
