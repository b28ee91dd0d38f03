package channel

import (
	"github.com/prathje/ext-2G4-channel/internal/matrixchan"
	"github.com/prathje/ext-2G4-channel/internal/optargs"
)

// matrixChannel implements Channel for the matrix model: per-ordered-pair
// attenuation, either constant or trace-file-driven (spec section 4.2/4.3),
// grounded on channel_multiatt.c.
type matrixChannel struct {
	n int
	m *matrixchan.Matrix
}

func newMatrixChannel() *matrixChannel {
	return &matrixChannel{}
}

func (c *matrixChannel) Init(argv []string, numDevices int) error {
	att := float64(defaultAtt)
	atxtra := float64(defaultAtXtra)
	var matrixFile string

	var table optargs.Table
	table.Float("att", &att, attMin, attMax)
	table.Float("atxtra", &atxtra, attMin, attMax)
	table.String("att_matrix_file", &matrixFile)

	if err := table.Load(argv); err != nil {
		return err
	}

	c.n = numDevices
	c.m = matrixchan.NewMatrix(numDevices, att, atxtra)
	if matrixFile != "" {
		return c.m.Load(matrixFile)
	}
	c.m.FillUndefined()
	return nil
}

func (c *matrixChannel) Calc(txUsed []bool, txList []DeviceId, txNbr int, rx DeviceId, now Time, attenuation []Attenuation) (float64, error) {
	for i, used := range txUsed {
		if !used || i == int(rx) {
			continue
		}
		attenuation[i] = Attenuation(c.m.Attenuation(i, int(rx), uint64(now)))
	}
	return 100.0, nil
}

func (c *matrixChannel) Delete() error {
	if c.m != nil {
		c.m.Close()
		c.m = nil
	}
	return nil
}
