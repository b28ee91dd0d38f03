// Package lineio implements the normalising, record-oriented line reader
// that every textual stream in the channel attenuation engine (matrix
// files, attenuation traces, position streams) is read through.
//
// It is the Go-native replacement for the original att_readline()/
// stream_readline() C functions: both attenuation-matrix and positional
// channel models in the original implementation duplicated the same
// character-at-a-time normalising scanner. Here it is a single reusable
// component, following the teacher's habit of factoring one shared
// low-level primitive (see github.com/openthread/ot-ns/radiomodel/utils.go)
// out from several call sites that used to reimplement it.
package lineio

import (
	"bufio"
	"io"

	"github.com/prathje/ext-2G4-channel/internal/logger"
)

// MaxRecordLength is the maximum length of a normalised record, including
// its conceptual terminator, matching the original MAXLINESIZE.
const MaxRecordLength = 2048

const maxDataLen = MaxRecordLength - 1

// Reader reads one normalised record at a time from an underlying byte
// stream, per the grammar in spec section 4.1.
type Reader struct {
	br   *bufio.Reader
	name string // source name, used only for diagnostics
}

// NewReader wraps r as a Reader. name is used in warning/error messages
// (typically a file path) and may be empty.
func NewReader(r io.Reader, name string) *Reader {
	return &Reader{br: bufio.NewReader(r), name: name}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// ReadRecord returns the next non-empty normalised record, skipping blank
// lines and comment-only lines. It returns io.EOF once the stream is
// exhausted with no further record available.
func (r *Reader) ReadRecord() (string, error) {
	for {
		rec, sawByte, err := r.readNormalisedLine()
		if rec != "" {
			return rec, nil
		}
		if !sawByte || err != nil {
			return "", io.EOF
		}
		// blank/comment-only physical line: keep reading
	}
}

// readNormalisedLine reads and normalises a single physical line. sawByte
// reports whether any input byte at all was consumed (false only at a
// clean EOF with nothing left to read).
func (r *Reader) readNormalisedLine() (rec string, sawByte bool, err error) {
	buf := make([]byte, 0, 64)
	inString := false
	wasSpace := true
	truncated := false

	for {
		c, readErr := r.br.ReadByte()
		if readErr != nil {
			break
		}
		sawByte = true
		if c == '\n' {
			break
		}

		if inString {
			if c == '"' {
				inString = false
				wasSpace = false
			}
			if len(buf) >= maxDataLen {
				truncated = true
				r.discardToEOL()
				break
			}
			buf = append(buf, c)
			continue
		}

		switch {
		case c == '"':
			inString = true
			wasSpace = false
			if len(buf) >= maxDataLen {
				truncated = true
				r.discardToEOL()
				goto done
			}
			buf = append(buf, c)
		case isSpace(c):
			if wasSpace {
				continue
			}
			wasSpace = true
			if len(buf) >= maxDataLen {
				truncated = true
				r.discardToEOL()
				goto done
			}
			buf = append(buf, ' ')
		case c == ':':
			// elided entirely; treated as whitespace-equivalent so that
			// "tx rx : att" normalises to "tx rx att", not a double space.
			wasSpace = true
		case c == '#':
			r.discardToEOL()
			goto done
		default:
			wasSpace = false
			if len(buf) >= maxDataLen {
				truncated = true
				r.discardToEOL()
				goto done
			}
			buf = append(buf, c)
		}
	}
done:
	// a whitespace run at the end of the line (e.g. before a comment) leaves
	// no trailing space in the record.
	if !inString && len(buf) > 0 && buf[len(buf)-1] == ' ' {
		buf = buf[:len(buf)-1]
	}
	if truncated {
		logger.Warnf("lineio: %s: truncated record after %d bytes", r.name, maxDataLen)
	}
	return string(buf), sawByte, nil
}

// discardToEOL consumes and drops bytes up to and including the next
// newline, or until EOF.
func (r *Reader) discardToEOL() {
	for {
		c, err := r.br.ReadByte()
		if err != nil || c == '\n' {
			return
		}
	}
}
