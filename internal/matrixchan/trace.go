package matrixchan

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/prathje/ext-2G4-channel/internal/chanerr"
	"github.com/prathje/ext-2G4-channel/internal/lineio"
	"github.com/prathje/ext-2G4-channel/internal/logger"
)

// trace is the two-sample sliding window over an attenuation trace file,
// grounded on channel_multiatt.c's init_distance_file()/att_from_file().
type trace struct {
	f    *os.File
	r    *lineio.Reader
	path string

	lastT, nextT uint64
	lastA, nextA float64
	collapsed    bool
}

func openTrace(path string) (*trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &chanerr.ConfigError{Option: "att_matrix_file", Value: path, Reason: err.Error()}
	}
	tr := &trace{f: f, r: lineio.NewReader(f, path), path: path}
	if err := tr.init(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return tr, nil
}

func parseTraceRecord(path, rec string) (uint64, float64, error) {
	fields := strings.Fields(rec)
	if len(fields) != 2 {
		return 0, 0, &chanerr.CorruptError{File: path, Line: rec, Reason: "expected \"time att\""}
	}
	t, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, 0, &chanerr.CorruptError{File: path, Line: rec, Reason: "malformed timestamp"}
	}
	a, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, &chanerr.CorruptError{File: path, Line: rec, Reason: "malformed attenuation"}
	}
	return t, a, nil
}

// init reads the first two samples, per spec section 4.3's Initialise step.
func (tr *trace) init() error {
	rec, err := tr.r.ReadRecord()
	if err != nil {
		return &chanerr.CorruptError{File: tr.path, Reason: "empty trace file"}
	}
	t0, a0, perr := parseTraceRecord(tr.path, rec)
	if perr != nil {
		return perr
	}
	tr.lastT, tr.lastA = t0, a0

	rec, err = tr.r.ReadRecord()
	if err != nil {
		// single-line file: collapse to constant immediately.
		tr.nextT, tr.nextA = t0, a0
		tr.collapse()
		return nil
	}
	t1, a1, perr := parseTraceRecord(tr.path, rec)
	if perr != nil {
		return perr
	}
	tr.nextT, tr.nextA = t1, a1
	return nil
}

// query returns the interpolated attenuation (without atxtra applied) at
// now, per spec section 4.3's Query step, and whether the trace has
// collapsed to a constant (in which case the caller should stop calling
// query and retain the returned value as that constant).
func (tr *trace) query(now uint64) (float64, bool) {
	if tr.collapsed {
		return tr.lastA, true
	}

	for now >= tr.nextT {
		tr.lastT, tr.lastA = tr.nextT, tr.nextA
		rec, err := tr.r.ReadRecord()
		if err != nil {
			tr.collapse()
			return tr.lastA, true
		}
		t, a, perr := parseTraceRecord(tr.path, rec)
		if perr != nil {
			logger.Warnf("matrixchan: %s: %s, trace collapsed to last value", tr.path, errors.Cause(perr))
			tr.collapse()
			return tr.lastA, true
		}
		tr.nextT, tr.nextA = t, a
	}

	if now <= tr.lastT {
		return tr.lastA, false
	}
	frac := float64(now-tr.lastT) / float64(tr.nextT-tr.lastT)
	return tr.lastA + (tr.nextA-tr.lastA)*frac, false
}

func (tr *trace) collapse() {
	tr.collapsed = true
	tr.close()
}

func (tr *trace) close() {
	if tr.f != nil {
		_ = tr.f.Close()
		tr.f = nil
	}
}
