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


package enrich

import (
	"github.com/poiesic/sift/analysis"
	"github.com/poiesic/sift/core"
)

// Enrich computes the content-only enrichment for one message: topic
// detection, solution-attempt detection, quality scoring, and category.
// Chain fields stay nil; they require the full transcript and are
// filled by Backfill. Enrich never fails; malformed or empty text
// yields the neutral enrichment.
func Enrich(message *core.Message) core.Enrichment {
	e := core.NewEnrichment()
	if message == nil {
		return e
	}

	analysis.AnalyzeTopics(message.Contents, &e)

	hasCode := analysis.HasCodeBlock(message.Contents)
	e.SolutionQualityScore = analysis.ScoreSolutionQuality(message.Contents, hasCode, nil)
	e.IsSolutionAttempt = analysis.IsSolutionAttempt(message.Contents, message.Role)
	if e.IsSolutionAttempt {
		e.SolutionCategory = analysis.CategorizeSolution(message.Contents)
	}

	return e
}
