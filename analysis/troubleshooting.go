package analysis

// troubleshootingMarkers indicate diagnostic content worth boosting
// when a query runs in troubleshooting mode.
var troubleshootingMarkers = []string{
	"error", "exception", "crash", "panic", "broken", "failed", "failing",
	"debug", "diagnose", "troubleshoot", "root cause", "stack trace",
}

// TroubleshootingSignal measures how strongly text reads as diagnostic
// content: 1.0 plus 0.3 per marker occurrence, clamped into [1.0, 2.5].
func TroubleshootingSignal(text string) float64 {
	signal := 1.0 + 0.3*float64(countMatches(text, troubleshootingMarkers))
	if signal > 2.5 {
		return 2.5
	}
	return signal
}
