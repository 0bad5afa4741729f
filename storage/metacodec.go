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


package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/poiesic/sift/core"
)

// Flat-map keys for enrichment fields at the storage boundary. The
// topic map is JSON-encoded; enums are their wire strings; floats use
// the shortest exact representation so encode/decode round-trips.
const (
	MetaDetectedTopics     = "detected_topics"
	MetaPrimaryTopic       = "primary_topic"
	MetaTopicConfidence    = "topic_confidence"
	MetaSolutionQuality    = "solution_quality_score"
	MetaIsSolutionAttempt  = "is_solution_attempt"
	MetaSolutionCategory   = "solution_category"
	MetaPreviousID         = "previous_id"
	MetaNextID             = "next_id"
	MetaRelatedSolutionID  = "related_solution_id"
	MetaFeedbackID         = "feedback_id"
	MetaSentiment          = "sentiment"
	MetaIsValidated        = "is_validated"
	MetaIsRefuted          = "is_refuted"
	MetaIsPartial          = "is_partial"
	MetaSolutionConfidence = "solution_confidence"
	MetaValidationStrength = "validation_strength"
	MetaOutcomeCertainty   = "outcome_certainty"
)

// EncodeEnrichment flattens an enrichment into the key/scalar map form
// attached to vector store records. Zero-valued fields are omitted, so
// decoding a map produced here reproduces the input exactly (an empty
// topic map is normalized to nil).
func EncodeEnrichment(e core.Enrichment) map[string]string {
	meta := make(map[string]string)

	if len(e.DetectedTopics) > 0 {
		// Map keys marshal in sorted order, so output is deterministic.
		encoded, err := json.Marshal(e.DetectedTopics)
		if err == nil {
			meta[MetaDetectedTopics] = string(encoded)
		}
	}
	if e.PrimaryTopic != "" {
		meta[MetaPrimaryTopic] = e.PrimaryTopic
	}
	putFloat(meta, MetaTopicConfidence, e.TopicConfidence)
	putFloat(meta, MetaSolutionQuality, e.SolutionQualityScore)
	putBool(meta, MetaIsSolutionAttempt, e.IsSolutionAttempt)
	if e.SolutionCategory != core.CategoryUnknown {
		meta[MetaSolutionCategory] = e.SolutionCategory.String()
	}
	putID(meta, MetaPreviousID, e.PreviousID)
	putID(meta, MetaNextID, e.NextID)
	putID(meta, MetaRelatedSolutionID, e.RelatedSolutionID)
	putID(meta, MetaFeedbackID, e.FeedbackID)
	if e.Sentiment != core.SentimentNeutral {
		meta[MetaSentiment] = e.Sentiment.String()
	}
	putBool(meta, MetaIsValidated, e.IsValidated)
	putBool(meta, MetaIsRefuted, e.IsRefuted)
	putBool(meta, MetaIsPartial, e.IsPartial)
	putFloat(meta, MetaSolutionConfidence, e.SolutionConfidence)
	putFloat(meta, MetaValidationStrength, e.ValidationStrength)
	putFloat(meta, MetaOutcomeCertainty, e.OutcomeCertainty)

	return meta
}

// DecodeEnrichment rebuilds a structured enrichment from its flat-map
// form. Missing keys decode to zero values; malformed values return an
// error wrapping ErrCodec.
func DecodeEnrichment(meta map[string]string) (core.Enrichment, error) {
	var e core.Enrichment

	if raw, ok := meta[MetaDetectedTopics]; ok {
		topics := make(map[string]float64)
		if err := json.Unmarshal([]byte(raw), &topics); err != nil {
			return e, fmt.Errorf("%w: %s: %w", ErrCodec, MetaDetectedTopics, err)
		}
		e.DetectedTopics = topics
	}
	e.PrimaryTopic = meta[MetaPrimaryTopic]

	var err error
	if e.TopicConfidence, err = getFloat(meta, MetaTopicConfidence); err != nil {
		return e, err
	}
	if e.SolutionQualityScore, err = getFloat(meta, MetaSolutionQuality); err != nil {
		return e, err
	}
	if e.IsSolutionAttempt, err = getBool(meta, MetaIsSolutionAttempt); err != nil {
		return e, err
	}
	if raw, ok := meta[MetaSolutionCategory]; ok {
		if e.SolutionCategory, err = core.ParseSolutionCategory(raw); err != nil {
			return e, fmt.Errorf("%w: %s: %w", ErrCodec, MetaSolutionCategory, err)
		}
	}
	if e.PreviousID, err = getID(meta, MetaPreviousID); err != nil {
		return e, err
	}
	if e.NextID, err = getID(meta, MetaNextID); err != nil {
		return e, err
	}
	if e.RelatedSolutionID, err = getID(meta, MetaRelatedSolutionID); err != nil {
		return e, err
	}
	if e.FeedbackID, err = getID(meta, MetaFeedbackID); err != nil {
		return e, err
	}
	if raw, ok := meta[MetaSentiment]; ok {
		if e.Sentiment, err = core.ParseSentiment(raw); err != nil {
			return e, fmt.Errorf("%w: %s: %w", ErrCodec, MetaSentiment, err)
		}
	}
	if e.IsValidated, err = getBool(meta, MetaIsValidated); err != nil {
		return e, err
	}
	if e.IsRefuted, err = getBool(meta, MetaIsRefuted); err != nil {
		return e, err
	}
	if e.IsPartial, err = getBool(meta, MetaIsPartial); err != nil {
		return e, err
	}
	if e.SolutionConfidence, err = getFloat(meta, MetaSolutionConfidence); err != nil {
		return e, err
	}
	if e.ValidationStrength, err = getFloat(meta, MetaValidationStrength); err != nil {
		return e, err
	}
	if e.OutcomeCertainty, err = getFloat(meta, MetaOutcomeCertainty); err != nil {
		return e, err
	}

	return e, nil
}

// DiffEnrichment computes the flat-map fields that change when moving
// from prev to next. A key present in prev but absent from next maps to
// the empty string, which MergeFields treats as a deletion. An identical
// pair yields an empty map: this is what makes back-fill idempotent.
func DiffEnrichment(prev, next core.Enrichment) map[string]string {
	oldMeta := EncodeEnrichment(prev)
	newMeta := EncodeEnrichment(next)

	diff := make(map[string]string)
	for key, value := range newMeta {
		if oldMeta[key] != value {
			diff[key] = value
		}
	}
	for key := range oldMeta {
		if _, ok := newMeta[key]; !ok {
			diff[key] = ""
		}
	}
	return diff
}

// MergeFields applies patch fields onto an encoded metadata map.
// Empty-string values delete the key.
func MergeFields(meta, fields map[string]string) map[string]string {
	merged := make(map[string]string, len(meta)+len(fields))
	for k, v := range meta {
		merged[k] = v
	}
	for k, v := range fields {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

func putFloat(meta map[string]string, key string, v float64) {
	if v != 0 {
		meta[key] = strconv.FormatFloat(v, 'g', -1, 64)
	}
}

func getFloat(meta map[string]string, key string) (float64, error) {
	raw, ok := meta[key]
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCodec, key, err)
	}
	return v, nil
}

func putBool(meta map[string]string, key string, v bool) {
	if v {
		meta[key] = "true"
	}
}

func getBool(meta map[string]string, key string) (bool, error) {
	raw, ok := meta[key]
	if !ok {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrCodec, key, err)
	}
	return v, nil
}

func putID(meta map[string]string, key string, id *core.ID) {
	if id != nil {
		meta[key] = strconv.FormatUint(uint64(*id), 10)
	}
}

func getID(meta map[string]string, key string) (*core.ID, error) {
	raw, ok := meta[key]
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCodec, key, err)
	}
	id := core.ID(v)
	return &id, nil
}
