package channel

import (
	"math"

	"github.com/prathje/ext-2G4-channel/internal/optargs"
	"github.com/prathje/ext-2G4-channel/internal/pathloss"
	"github.com/prathje/ext-2G4-channel/internal/poschan"
)

// disabledAttenuation is the sentinel attenuation reported for a pair
// involving a disabled device, per spec section 4.7's positional
// attenuation rule.
const disabledAttenuation = 1000.0

// positionalChannel implements Channel for the positional model: 3-D
// device positions evolving via a movement stream, attenuation derived
// from Euclidean distance through the log-distance path-loss formula
// (spec section 4.4-4.6), grounded on channel_positional.c.
type positionalChannel struct {
	stream      *poschan.Stream
	atxtra      float64
	defaultAtt  float64
	distanceExp float64
}

func newPositionalChannel() *positionalChannel {
	return &positionalChannel{}
}

func (c *positionalChannel) Init(argv []string, numDevices int) error {
	att := float64(defaultAtt)
	atxtra := float64(defaultAtXtra)
	distanceExp := pathloss.DefaultDistanceExp
	var streamPath string

	var table optargs.Table
	table.Float("att", &att, attMin, attMax)
	table.Float("atxtra", &atxtra, attMin, attMax)
	table.Float("distance_exp", &distanceExp, pathloss.MinDistanceExp, pathloss.MaxDistanceExp)
	table.String("position_stream_path", &streamPath)

	if err := table.Load(argv); err != nil {
		return err
	}

	// position_stream_path defaults to "none" (spec section 4.8): with no
	// stream configured, every device stays enabled and unpositioned for
	// the channel's whole lifetime, per channel_positional.c's handling of
	// a NULL position_stream_path.
	if streamPath != "" {
		stream, err := poschan.OpenStream(streamPath, numDevices)
		if err != nil {
			return err
		}
		c.stream = stream
	}
	c.atxtra = atxtra
	c.defaultAtt = att
	c.distanceExp = distanceExp
	return nil
}

func (c *positionalChannel) Calc(txUsed []bool, txList []DeviceId, txNbr int, rx DeviceId, now Time, attenuation []Attenuation) (float64, error) {
	if c.stream != nil {
		if err := c.stream.AdvanceUntil(uint64(now)); err != nil {
			return 0, err
		}
	}
	for i, used := range txUsed {
		if !used || i == int(rx) {
			continue
		}
		attenuation[i] = Attenuation(c.attenuation(i, int(rx), now))
	}
	return 100.0, nil
}

// attenuation implements spec section 4.7's positional attenuation rule
// for the ordered pair (tx, rx). With no position stream configured, every
// device is enabled but never has a position, so this always falls through
// to the default-attenuation case.
func (c *positionalChannel) attenuation(tx, rx int, now Time) float64 {
	if c.stream == nil {
		return c.defaultAtt + c.atxtra
	}
	if !c.stream.Enabled(tx) || !c.stream.Enabled(rx) {
		return disabledAttenuation
	}
	if !c.stream.HasPosition(tx) || !c.stream.HasPosition(rx) {
		return c.defaultAtt + c.atxtra
	}
	txPos := c.stream.PositionAt(tx, uint64(now))
	rxPos := c.stream.PositionAt(rx, uint64(now))
	dist := euclideanDistance(txPos, rxPos)
	return pathloss.FromDistance(dist, c.distanceExp) + c.atxtra
}

func euclideanDistance(a, b poschan.Position) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (c *positionalChannel) Delete() error {
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
	}
	return nil
}
