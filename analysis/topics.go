package analysis

import "github.com/poiesic/sift/core"

// topicPatterns defines the fixed topic categories and the keyword and
// phrase lists that identify them. Single words match whole tokens;
// phrases match as substrings.
var topicPatterns = map[string][]string{
	"debugging": {
		"error", "exception", "panic", "crash", "bug", "traceback",
		"failed", "failure", "stack trace", "segfault", "broken",
	},
	"authentication": {
		"auth", "authentication", "login", "token", "jwt", "oauth",
		"password", "credential", "credentials", "session key",
	},
	"database": {
		"database", "sql", "query", "migration", "schema", "index",
		"transaction", "postgres", "sqlite", "connection pool",
	},
	"performance": {
		"slow", "performance", "latency", "memory", "leak", "cpu",
		"optimize", "optimization", "profiling", "bottleneck",
	},
	"deployment": {
		"deploy", "deployment", "docker", "kubernetes", "container",
		"release", "rollback", "pipeline", "ci", "production",
	},
	"testing": {
		"test", "tests", "testing", "assertion", "mock", "coverage",
		"fixture", "regression", "unit test", "integration test",
	},
	"configuration": {
		"config", "configuration", "setting", "settings", "yaml",
		"environment variable", "env", "flag", "flags", "dotfile",
	},
	"networking": {
		"network", "http", "tcp", "dns", "socket", "timeout", "proxy",
		"tls", "certificate", "firewall",
	},
	"frontend": {
		"css", "html", "react", "component", "render", "browser",
		"layout", "dom", "stylesheet", "responsive",
	},
	"api": {
		"api", "endpoint", "rest", "grpc", "request", "response",
		"payload", "webhook", "rate limit", "status code",
	},
}

// DetectTopics scores text against the fixed topic categories. For each
// topic, pattern occurrences are counted and normalized by text length
// (count / (wordCount * 0.01)), capped at 2.0. Topics scoring below 0.1
// are omitted. Empty input yields an empty map.
func DetectTopics(text string) map[string]float64 {
	words := wordCount(text)
	if words == 0 {
		return map[string]float64{}
	}

	scores := make(map[string]float64)
	for topic, patterns := range topicPatterns {
		count := countMatches(text, patterns)
		if count == 0 {
			continue
		}
		score := core.ClampTopicScore(float64(count) / (float64(words) * 0.01))
		if score < core.MinTopicScore {
			continue
		}
		scores[topic] = score
	}
	return scores
}

// PrimaryTopic returns the highest-scoring topic and its score. The
// score doubles as the topic confidence. Ties break alphabetically so
// the result is deterministic. Returns "" and 0 for an empty map.
func PrimaryTopic(scores map[string]float64) (string, float64) {
	best := ""
	bestScore := 0.0
	for topic, score := range scores {
		if score > bestScore || (score == bestScore && best != "" && topic < best) {
			best = topic
			bestScore = score
		}
	}
	return best, bestScore
}

// AnalyzeTopics populates the topic fields of an enrichment from text.
func AnalyzeTopics(text string, e *core.Enrichment) {
	scores := DetectTopics(text)
	if len(scores) == 0 {
		return
	}
	e.DetectedTopics = scores
	e.PrimaryTopic, e.TopicConfidence = PrimaryTopic(scores)
}
