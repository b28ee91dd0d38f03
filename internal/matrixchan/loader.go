// Package matrixchan implements the matrix channel model's two leaf
// components: the matrix loader (spec section 4.2) and the trace file
// interpolator (spec section 4.3), grounded on channel_multiatt.c.
package matrixchan

import (
	"os"
	"strconv"
	"strings"

	"github.com/prathje/ext-2G4-channel/internal/chanerr"
	"github.com/prathje/ext-2G4-channel/internal/lineio"
	"github.com/prathje/ext-2G4-channel/internal/logger"
)

type descKind uint8

const (
	descUndefined descKind = iota
	descConstant
	descFromFile
)

type descriptor struct {
	kind  descKind
	value float64 // descConstant: final value including atxtra
	tr    *trace  // descFromFile only
}

func (d *descriptor) close() {
	if d.kind == descFromFile && d.tr != nil {
		d.tr.close()
	}
	*d = descriptor{}
}

// Matrix holds the n*n grid of per-ordered-pair path descriptors that
// drive the matrix channel model, laid out index = rx*n+tx as per the
// original's flat-array convention (spec section 9's design note on
// retaining that layout as an internal detail).
type Matrix struct {
	n          int
	defaultAtt float64
	atxtra     float64
	desc       []descriptor
}

// NewMatrix allocates an n-device matrix with every pair undefined.
func NewMatrix(n int, defaultAtt, atxtra float64) *Matrix {
	return &Matrix{n: n, defaultAtt: defaultAtt, atxtra: atxtra, desc: make([]descriptor, n*n)}
}

func (m *Matrix) index(tx, rx int) int { return rx*m.n + tx }

// Load reads a matrix file and installs descriptors for every record it
// defines, then default-fills any ordered pair left undefined. Fails with
// *chanerr.CorruptError on a malformed record, *chanerr.ConfigError if the
// file itself cannot be opened.
func (m *Matrix) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &chanerr.ConfigError{Option: "att_matrix_file", Value: path, Reason: err.Error()}
	}
	defer f.Close()

	r := lineio.NewReader(f, path)
	for {
		rec, rerr := r.ReadRecord()
		if rerr != nil {
			break
		}
		if err := m.processLine(path, rec); err != nil {
			return err
		}
	}
	m.fillDefaults(true)
	return nil
}

// FillUndefined installs the default constant for every pair, for use when
// no matrix file was configured at all. No redefinition warning is emitted
// since there is nothing to have been overridden.
func (m *Matrix) FillUndefined() {
	m.fillDefaults(false)
}

func (m *Matrix) fillDefaults(hadFile bool) {
	for tx := 0; tx < m.n; tx++ {
		for rx := 0; rx < m.n; rx++ {
			if tx == rx {
				continue
			}
			idx := m.index(tx, rx)
			if m.desc[idx].kind != descUndefined {
				continue
			}
			if hadFile {
				logger.Warnf("matrixchan: pair (tx=%d,rx=%d) undefined in matrix file, using default attenuation", tx, rx)
			}
			m.desc[idx] = descriptor{kind: descConstant, value: m.defaultAtt + m.atxtra}
		}
	}
}

func (m *Matrix) processLine(path, rec string) error {
	txTok, rest, ok := cutField(rec)
	if !ok {
		return &chanerr.CorruptError{File: path, Line: rec, Reason: "missing tx"}
	}
	rxTok, rest, ok := cutField(rest)
	if !ok {
		return &chanerr.CorruptError{File: path, Line: rec, Reason: "missing rx"}
	}
	rest = strings.TrimLeft(rest, " ")
	if rest == "" {
		return &chanerr.CorruptError{File: path, Line: rec, Reason: "missing value"}
	}

	tx, err := strconv.ParseUint(txTok, 10, 64)
	if err != nil {
		return &chanerr.CorruptError{File: path, Line: rec, Reason: "malformed tx index"}
	}
	rx, err := strconv.ParseUint(rxTok, 10, 64)
	if err != nil {
		return &chanerr.CorruptError{File: path, Line: rec, Reason: "malformed rx index"}
	}
	if tx >= uint64(m.n) || rx >= uint64(m.n) {
		logger.Warnf("matrixchan: %s: device index out of range in %q", path, rec)
		return nil
	}

	idx := m.index(int(tx), int(rx))
	if rest[0] == '"' {
		name, uerr := unquoteFilename(rest)
		if uerr != nil {
			return &chanerr.CorruptError{File: path, Line: rec, Reason: "malformed quoted filename"}
		}
		tr, oerr := openTrace(name)
		if oerr != nil {
			return oerr
		}
		if m.desc[idx].kind != descUndefined {
			logger.Warnf("matrixchan: %s: redefinition of pair (tx=%d,rx=%d)", path, tx, rx)
			m.desc[idx].close()
		}
		if tr.collapsed {
			m.desc[idx] = descriptor{kind: descConstant, value: tr.lastA + m.atxtra}
		} else {
			m.desc[idx] = descriptor{kind: descFromFile, tr: tr}
		}
		return nil
	}

	att, perr := strconv.ParseFloat(rest, 64)
	if perr != nil {
		return &chanerr.CorruptError{File: path, Line: rec, Reason: "malformed attenuation value"}
	}
	if m.desc[idx].kind != descUndefined {
		logger.Warnf("matrixchan: %s: redefinition of pair (tx=%d,rx=%d)", path, tx, rx)
		m.desc[idx].close()
	}
	m.desc[idx] = descriptor{kind: descConstant, value: att + m.atxtra}
	return nil
}

// Attenuation returns the current attenuation for the ordered pair
// (tx, rx) at simulated time now, advancing and possibly collapsing the
// pair's trace window as a side effect.
func (m *Matrix) Attenuation(tx, rx int, now uint64) float64 {
	d := &m.desc[m.index(tx, rx)]
	switch d.kind {
	case descFromFile:
		v, collapsed := d.tr.query(now)
		if collapsed {
			d.kind = descConstant
			d.value = v + m.atxtra
			d.tr = nil
			return d.value
		}
		return v + m.atxtra
	case descConstant:
		return d.value
	default:
		return m.defaultAtt + m.atxtra
	}
}

// Close releases every trace file handle still open.
func (m *Matrix) Close() {
	for i := range m.desc {
		m.desc[i].close()
	}
}

func cutField(s string) (field, rest string, ok bool) {
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return "", "", false
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", true
}

func unquoteFilename(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", &chanerr.CorruptError{Reason: "unterminated quoted filename"}
	}
	return s[1 : len(s)-1], nil
}
