// Package channel implements the channel attenuation engine: the plug-in
// that answers, at every simulated time step, what the radio path loss is
// between a transmitter and a receiver. It exposes the host ABI of spec
// section 4.7 (init/calc/delete) through the Channel interface, in the
// same shape as the teacher's radiomodel.RadioModel/Create pattern.
package channel

import (
	"github.com/prathje/ext-2G4-channel/internal/chanerr"
)

// Time is the host's simulated time, in microseconds. It never moves
// backward across a Channel's lifetime.
type Time uint64

// DeviceId is a device index in [0, N).
type DeviceId int

// Attenuation is a decibel value.
type Attenuation float64

// ConfigError reports an out-of-range option or an unreadable required
// file, discovered during Init. Fatal.
type ConfigError = chanerr.ConfigError

// CorruptError reports a malformed record or out-of-order event in a
// matrix, trace, or position stream. Fatal.
type CorruptError = chanerr.CorruptError

// Channel is the per-simulation handle returned by Create. It owns all
// state for one channel model instance. The host calls Init once, then a
// monotonic sequence of Calc(now_k) with now_k non-decreasing, then
// Delete.
type Channel interface {
	// Init parses argv, allocates state, and loads or opens whatever file
	// the configuration names. numDevices fixes N for the channel's
	// lifetime. Returns a *ConfigError or *CorruptError on failure.
	Init(argv []string, numDevices int) error

	// Calc writes attenuation[i] = attenuation(i -> rx, now) for every i
	// with txUsed[i] true and i != rx; entries where txUsed[i] is false, and
	// the entry at index rx, are left untouched. The returned isiSnr is always 100.0 (spec's non-goal:
	// ISI-SNR is a reserved, non-functional field). txList and txNbr are
	// accepted for ABI parity with the host contract but unused.
	Calc(txUsed []bool, txList []DeviceId, txNbr int, rx DeviceId, now Time, attenuation []Attenuation) (isiSnr float64, err error)

	// Delete releases all state and closes any open files. Idempotent
	// against partial initialisation.
	Delete() error
}

// modelFactories maps configuration model names to constructors. A map
// registry, rather than a switch, so a new model only needs an entry here,
// mirroring radiomodel.Create's dispatch but open to extension.
var modelFactories = map[string]func() Channel{
	"matrix":     func() Channel { return newMatrixChannel() },
	"positional": func() Channel { return newPositionalChannel() },
}

// Create returns a new, uninitialised Channel for the named model. Valid
// names are "matrix" and "positional"; Init must be called before use.
func Create(modelName string) (Channel, error) {
	factory, ok := modelFactories[modelName]
	if !ok {
		return nil, &chanerr.ConfigError{Option: "model", Value: modelName, Reason: "unknown channel model"}
	}
	return factory(), nil
}
