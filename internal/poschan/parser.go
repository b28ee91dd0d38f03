// Package poschan implements the positional channel model's two leaf
// components: the position stream parser (spec section 4.4) and the
// position interpolator & cache (spec section 4.5), grounded on
// channel_positional.c.
package poschan

import (
	"os"
	"strconv"
	"strings"

	"github.com/prathje/ext-2G4-channel/internal/chanerr"
	"github.com/prathje/ext-2G4-channel/internal/lineio"
	"github.com/prathje/ext-2G4-channel/internal/logger"
)

type deviceState struct {
	enabled     bool
	hasPosition bool

	lastTime, nextTime uint64
	lastPos, nextPos   Position

	cacheValid bool
	cacheTime  uint64
	cachePos   Position
}

// Stream is the forward-only, look-ahead position event parser described
// in spec section 4.4 as advance_until(now).
type Stream struct {
	f    *os.File
	r    *lineio.Reader
	path string

	devices []deviceState

	parsedTime  uint64
	initialized bool

	pendingLine string
	pendingTime uint64
	havePending bool
}

// OpenStream opens a position stream for n devices, all initially enabled
// and without a known position, and buffers its first event.
func OpenStream(path string, n int) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &chanerr.ConfigError{Option: "position_stream_path", Value: path, Reason: err.Error()}
	}
	s := &Stream{
		f:       f,
		r:       lineio.NewReader(f, path),
		path:    path,
		devices: make([]deviceState, n),
	}
	for i := range s.devices {
		s.devices[i].enabled = true
	}
	if err := s.readNext(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if s.havePending {
		logger.Tracef("poschan: %s: opened position stream, first event at t=%d", path, s.pendingTime)
	} else {
		logger.Tracef("poschan: %s: opened empty position stream", path)
	}
	return s, nil
}

// Close releases the underlying file handle.
func (s *Stream) Close() {
	if s.f != nil {
		_ = s.f.Close()
		s.f = nil
	}
}

// NumDevices returns the device count the stream was opened with.
func (s *Stream) NumDevices() int { return len(s.devices) }

// Enabled reports whether device d is currently enabled.
func (s *Stream) Enabled(d int) bool { return s.devices[d].enabled }

// HasPosition reports whether device d has ever received a set/move event.
func (s *Stream) HasPosition(d int) bool { return s.devices[d].hasPosition }

// AdvanceUntil applies every buffered event with timestamp <= now, per the
// advance protocol of spec section 4.4.
func (s *Stream) AdvanceUntil(now uint64) error {
	if s.initialized && now <= s.parsedTime {
		return nil
	}
	for s.havePending {
		if s.pendingTime > now {
			s.parsedTime = s.pendingTime - 1
			s.initialized = true
			return nil
		}
		if s.initialized && s.pendingTime <= s.parsedTime {
			return &chanerr.CorruptError{File: s.path, Line: s.pendingLine, Reason: "out-of-order position event"}
		}
		if err := s.applyLine(s.pendingLine); err != nil {
			return err
		}
		if err := s.readNext(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stream) readNext() error {
	rec, err := s.r.ReadRecord()
	if err != nil {
		s.havePending = false
		s.pendingLine = ""
		return nil
	}
	fields := strings.Fields(rec)
	if len(fields) == 0 {
		s.havePending = false
		return nil
	}
	t, perr := strconv.ParseUint(fields[0], 10, 64)
	if perr != nil {
		return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed event timestamp"}
	}
	s.pendingLine = rec
	s.pendingTime = t
	s.havePending = true
	return nil
}

func (s *Stream) applyLine(rec string) error {
	fields := strings.Fields(rec)
	if len(fields) < 3 {
		return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed position event"}
	}
	t, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed event timestamp"}
	}
	cmd := fields[1]
	devIdx, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed device index"}
	}
	if devIdx >= uint64(len(s.devices)) {
		logger.Warnf("poschan: %s: device index out of range in %q", s.path, rec)
		return nil
	}
	d := &s.devices[devIdx]

	switch cmd {
	case "enable":
		if len(fields) != 3 {
			return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed enable event"}
		}
		d.enabled = true
	case "disable":
		if len(fields) != 3 {
			return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed disable event"}
		}
		d.enabled = false
	case "set":
		if len(fields) != 6 {
			return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed set event"}
		}
		pos, perr := parsePosition(fields[3:6])
		if perr != nil {
			return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed coordinates"}
		}
		d.lastTime, d.lastPos = t, pos
		d.nextTime, d.nextPos = t, pos
		d.hasPosition = true
		d.cacheValid = false
	case "move":
		if len(fields) != 7 {
			return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed move event"}
		}
		pos, perr := parsePosition(fields[3:6])
		if perr != nil {
			return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed coordinates"}
		}
		dur, derr := strconv.ParseUint(fields[6], 10, 64)
		if derr != nil {
			return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "malformed move duration"}
		}
		if !d.hasPosition {
			return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "move before device has a position"}
		}
		cur := interpolate(d.lastPos, d.nextPos, d.lastTime, d.nextTime, t)
		d.lastTime, d.lastPos = t, cur
		d.nextTime = t + dur
		d.nextPos = pos
		d.cacheValid = false
	default:
		return &chanerr.CorruptError{File: s.path, Line: rec, Reason: "unknown event kind " + cmd}
	}
	return nil
}

func parsePosition(fields []string) (Position, error) {
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Position{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Position{}, err
	}
	z, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Position{}, err
	}
	return Position{X: x, Y: y, Z: z}, nil
}
