// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package analysis

import "github.com/poiesic/sift/core"

// Tier weights for feedback pattern matches.
const (
	strongWeight   = 3.0
	moderateWeight = 2.0
	subtleWeight   = 1.0
)

// Normalizers map a class's weighted sum into a [0,1] strength.
const (
	positiveNormalizer = 3.0
	negativeNormalizer = 3.0
	partialNormalizer  = 2.0
)

// feedbackTiers holds the strong/moderate/subtle pattern lists for one
// sentiment class.
type feedbackTiers struct {
	strong   []string
	moderate []string
	subtle   []string
}

var positiveTiers = feedbackTiers{
	strong: []string{
		"perfect", "that worked", "works great", "works perfectly",
		"exactly what i needed", "solved it", "that did it", "excellent",
	},
	moderate: []string{
		"worked", "that fixed", "looks good", "thank you", "thanks", "great",
	},
	subtle: []string{
		"seems to work", "better now", "good", "nice",
	},
}

var negativeTiers = feedbackTiers{
	strong: []string{
		"still broken", "doesn't work", "does not work", "didn't work",
		"not working", "same error", "still failing", "made it worse",
	},
	moderate: []string{
		"broken", "error", "failed", "wrong", "nope", "still",
	},
	subtle: []string{
		"hmm", "not quite", "not sure",
	},
}

var partialTiers = feedbackTiers{
	strong: []string{
		"partially works", "partly works", "works but", "fixed one",
	},
	moderate: []string{
		"partially", "partly", "except", "however", "still need",
	},
	subtle: []string{
		"mostly", "almost", "getting closer",
	},
}

// Feedback is the classification of one follow-up message.
type Feedback struct {
	Sentiment core.Sentiment
	// Strength is the winning class's weighted sum mapped into [0,1].
	Strength float64
	// RawScores holds the weighted sums per class, for explainability.
	RawScores map[core.Sentiment]float64
}

// ClassifyFeedback classifies a follow-up to a solution attempt. Each
// sentiment class sums its tier matches (weights 3/2/1); the highest
// weighted sum wins. Ties, and text with no matches at all, classify
// as neutral with zero strength.
func ClassifyFeedback(text string) Feedback {
	positive := tierScore(text, positiveTiers)
	negative := tierScore(text, negativeTiers)
	partial := tierScore(text, partialTiers)

	raw := map[core.Sentiment]float64{
		core.SentimentPositive: positive,
		core.SentimentNegative: negative,
		core.SentimentPartial:  partial,
	}

	sentiment, score := winningClass(positive, negative, partial)
	if sentiment == core.SentimentNeutral {
		return Feedback{Sentiment: core.SentimentNeutral, RawScores: raw}
	}

	normalizer := positiveNormalizer
	switch sentiment {
	case core.SentimentNegative:
		normalizer = negativeNormalizer
	case core.SentimentPartial:
		normalizer = partialNormalizer
	}

	strength := score / normalizer
	if strength > 1.0 {
		strength = 1.0
	}

	return Feedback{Sentiment: sentiment, Strength: strength, RawScores: raw}
}

func tierScore(text string, tiers feedbackTiers) float64 {
	return strongWeight*float64(countMatches(text, tiers.strong)) +
		moderateWeight*float64(countMatches(text, tiers.moderate)) +
		subtleWeight*float64(countMatches(text, tiers.subtle))
}

// winningClass picks the class with the strictly highest weighted sum.
// Any tie at the top, including all zeros, yields neutral.
func winningClass(positive, negative, partial float64) (core.Sentiment, float64) {
	best := core.SentimentNeutral
	bestScore := 0.0
	tied := false

	for _, entry := range []struct {
		sentiment core.Sentiment
		score     float64
	}{
		{core.SentimentPositive, positive},
		{core.SentimentNegative, negative},
		{core.SentimentPartial, partial},
	} {
		if entry.score > bestScore {
			best = entry.sentiment
			bestScore = entry.score
			tied = false
		} else if entry.score == bestScore && entry.score > 0 {
			tied = true
		}
	}

	if tied || bestScore == 0 {
		return core.SentimentNeutral, 0
	}
	return best, bestScore
}

// ApplyFeedback maps a classified follow-up onto the solution message's
// enrichment:
//
//	positive: validated, confidence up to min(1+strength, 2.0)
//	negative: refuted, confidence down to max(1-strength*0.7, 0.3)
//	partial:  partial, confidence up to min(1+strength*0.3, 1.3)
//	neutral:  no change, confidence stays 1.0
//
// OutcomeCertainty carries the unsigned strength regardless of class.
func ApplyFeedback(e *core.Enrichment, f Feedback) {
	e.Sentiment = f.Sentiment
	e.OutcomeCertainty = f.Strength

	switch f.Sentiment {
	case core.SentimentPositive:
		e.IsValidated = true
		e.SolutionConfidence = core.ClampConfidence(1.0 + f.Strength)
		e.ValidationStrength = f.Strength
	case core.SentimentNegative:
		e.IsRefuted = true
		e.SolutionConfidence = core.ClampConfidence(1.0 - f.Strength*0.7)
		e.ValidationStrength = -f.Strength
	case core.SentimentPartial:
		e.IsPartial = true
		confidence := 1.0 + f.Strength*0.3
		if confidence > 1.3 {
			confidence = 1.3
		}
		e.SolutionConfidence = confidence
		e.ValidationStrength = f.Strength * 0.5
	default:
		e.SolutionConfidence = 1.0
	}
}
