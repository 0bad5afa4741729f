package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTroubleshootingSignal(t *testing.T) {
	assert.Equal(t, 1.0, TroubleshootingSignal("all quiet on the western front"))
	assert.InDelta(t, 1.6, TroubleshootingSignal("the error caused a crash"), 1e-9)
	assert.Equal(t, 2.5, TroubleshootingSignal("error error error panic crash debug traceback"))
}
