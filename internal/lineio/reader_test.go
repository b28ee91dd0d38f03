package lineio

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecord_Normalisation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "0 1 30\n", []string{"0 1 30"}},
		{"collapses whitespace", "0    1   30\n", []string{"0 1 30"}},
		{"elides colon", "0 1 : 30\n", []string{"0 1 30"}},
		{"strips comment", "0 1 30 # a comment\n", []string{"0 1 30"}},
		{"comment-only line skipped", "# just a comment\n0 1 30\n", []string{"0 1 30"}},
		{"blank line skipped", "\n\n0 1 30\n", []string{"0 1 30"}},
		{"leading space suppressed", "   0 1 30\n", []string{"0 1 30"}},
		{"quoted content verbatim", `0 1 : "a file.txt"` + "\n", []string{`0 1 "a file.txt"`}},
		{"hash inside quotes literal", `0 1 "a#b"` + "\n", []string{`0 1 "a#b"`}},
		{"multiple records", "0 1 30\n1 0 40\n", []string{"0 1 30", "1 0 40"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tc.input), "test")
			var got []string
			for {
				rec, err := r.ReadRecord()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				got = append(got, rec)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadRecord_EOFWithoutTrailingNewline(t *testing.T) {
	r := NewReader(strings.NewReader("0 1 30"), "test")
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, "0 1 30", rec)

	_, err = r.ReadRecord()
	assert.Equal(t, io.EOF, err)
}

func TestReadRecord_EmptyStream(t *testing.T) {
	r := NewReader(strings.NewReader(""), "test")
	_, err := r.ReadRecord()
	assert.Equal(t, io.EOF, err)
}

func TestReadRecord_Truncation(t *testing.T) {
	long := strings.Repeat("a", maxDataLen+100)
	r := NewReader(strings.NewReader(long+"\n"), "test")
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Len(t, rec, maxDataLen)
}
