// Package pathloss implements the log-distance path-loss formula shared by
// the positional channel model, grounded on channel_positional.c's
// PathLossFromDistance() and styled after the teacher's own log-distance
// implementations in radiomodel/pathloss_model.go.
package pathloss

import (
	"math"
	"sync"

	"github.com/prathje/ext-2G4-channel/internal/logger"
)

// FreqConstant is 20*log10(2400) - 28, the fixed 2.4 GHz term of the
// log-distance model.
const FreqConstant = 39.60422483423212045872

// Floor is the minimum reported path loss, in dB.
const Floor = 20.0

const (
	MinDistanceExp     = 1.0
	MaxDistanceExp     = 4.0
	DefaultDistanceExp = 2.0
)

var (
	nearFieldMu     sync.Mutex
	nearFieldWarned bool
)

// FromDistance returns the path loss, in dB, for a distance in metres and a
// log-distance exponent. Negative distances are warned about and clamped;
// zero distance is silently clamped, matching the original's treatment of
// "a device standing on top of its peer" as a benign edge case rather than
// an error.
func FromDistance(distanceM, distanceExp float64) float64 {
	d := distanceM
	switch {
	case d < 0:
		logger.Warnf("pathloss: negative distance %g, clamping to 0.001m", d)
		d = 0.001
	case d == 0:
		d = 0.001
	}

	pl := distanceExp*10*math.Log10(d) + FreqConstant
	if pl < Floor {
		warnNearFieldOnce()
		pl = Floor
	}
	return pl
}

func warnNearFieldOnce() {
	nearFieldMu.Lock()
	defer nearFieldMu.Unlock()
	if nearFieldWarned {
		return
	}
	nearFieldWarned = true
	logger.Warnf("pathloss: distance below near-field threshold, flooring path loss at %g dB", Floor)
}

// ResetNearFieldWarning clears the latched near-field warning. Exposed for
// tests that need to observe the warning fire more than once per process.
func ResetNearFieldWarning() {
	nearFieldMu.Lock()
	defer nearFieldMu.Unlock()
	nearFieldWarned = false
}
