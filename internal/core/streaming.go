package core

// streaming.go provides the reader wrappers applied to uploaded files before
// CSV decoding:
//
//   - bomSkippingReader: drops a leading UTF-8 BOM written by spreadsheet tools
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?'
//
// Use WrapForDecode to apply both in the correct order. CountingReader
// tracks the raw upload size for run logging.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

// utf8BOM is the byte-order mark prepended by Excel and friends.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkippingReader removes a UTF-8 BOM from the start of a stream.
type bomSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader returns a reader that skips a leading UTF-8 BOM.
func NewBOMSkippingReader(r io.Reader) io.Reader {
	return &bomSkippingReader{r: bufio.NewReader(r)}
}

func (b *bomSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// utf8Sanitizer rewrites invalid UTF-8 bytes to '?' without buffering the
// whole stream. Incomplete sequences at a chunk boundary are carried over to
// the next Read.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

// NewUTF8Sanitizer returns a reader that replaces invalid UTF-8 with '?'.
func NewUTF8Sanitizer(r io.Reader) io.Reader {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	n := copy(p, s.pending)
	s.pending = s.pending[:0]

	m, err := s.r.Read(p[n:])
	n += m
	if n == 0 {
		return 0, err
	}

	atEOF := err == io.EOF
	w := 0
	for i := 0; i < n; {
		c := p[i]
		if c < utf8.RuneSelf {
			p[w] = c
			w++
			i++
			continue
		}

		if !atEOF && !utf8.FullRune(p[i:n]) {
			s.pending = append(s.pending, p[i:n]...)
			break
		}

		r, size := utf8.DecodeRune(p[i:n])
		if r == utf8.RuneError && size == 1 {
			p[w] = '?'
			w++
			i++
			continue
		}
		copy(p[w:], p[i:i+size])
		w += size
		i += size
	}
	return w, err
}

// CountingReader tracks the number of bytes read from an io.Reader.
type CountingReader struct {
	r         io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

// WrapForDecode strips the BOM, then sanitizes UTF-8.
func WrapForDecode(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(NewBOMSkippingReader(r))
}
