package core

// streaming.go turns an uploaded body into document text.
//
// The reader chain is:
//
//  1. byte counting on the raw body (for logs)
//  2. BOM detection: a UTF-8 BOM is dropped, UTF-16 BOMs switch to a
//     UTF-16 decoder, anything else passes through untouched
//  3. UTF-8 sanitizing: invalid bytes become '?'
//  4. a size cap enforced on the decoded text

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxDocumentSize caps decoded documents at 50MB.
const DefaultMaxDocumentSize int64 = 50 << 20

var (
	// ErrDocumentTooLarge is returned when a document exceeds the size cap.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrEmptyDocument is returned for a body with no content.
	ErrEmptyDocument = errors.New("empty document")
)

// Document is decoded text plus the raw byte count it came from.
type Document struct {
	Content  string
	RawBytes int64
}

// ReadDocument reads r through the chain above. maxSize <= 0 uses
// DefaultMaxDocumentSize.
func ReadDocument(r io.Reader, maxSize int64) (Document, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}

	counter := &countingReader{reader: r}
	decoded := transform.NewReader(counter, unicode.BOMOverride(encoding.Nop.NewDecoder()))
	clean := newUTF8Sanitizer(decoded)

	data, err := io.ReadAll(io.LimitReader(clean, maxSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > maxSize {
		return Document{}, fmt.Errorf("%w: exceeds %d bytes", ErrDocumentTooLarge, maxSize)
	}
	if len(data) == 0 {
		return Document{}, ErrEmptyDocument
	}
	return Document{Content: string(data), RawBytes: counter.n}, nil
}

// countingReader tracks bytes read from the underlying reader.
type countingReader struct {
	reader io.Reader
	n      int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.n += int64(n)
	return n, err
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' in constant memory.
// A multi-byte sequence split across reads is held back until it completes.
type utf8Sanitizer struct {
	reader io.Reader
	buf    []byte // buf[:held] is an incomplete trailing sequence
	held   int
	out    []byte
	spare  []byte
	err    error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{reader: r, buf: make([]byte, 32*1024)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		n, err := s.reader.Read(s.buf[s.held:])
		chunk := s.buf[:s.held+n]
		s.err = err

		keep := 0
		if err == nil {
			keep = incompleteTail(chunk)
		}
		s.out = appendSanitized(s.spare[:0], chunk[:len(chunk)-keep])
		s.spare = s.out
		s.held = copy(s.buf, chunk[len(chunk)-keep:])
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func appendSanitized(dst, src []byte) []byte {
	for i := 0; i < len(src); {
		if src[i] < utf8.RuneSelf {
			dst = append(dst, src[i])
			i++
			continue
		}
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, '?')
		} else {
			dst = append(dst, src[i:i+size]...)
		}
		i += size
	}
	return dst
}

// incompleteTail returns how many trailing bytes of b start a multi-byte
// sequence that is not yet complete.
func incompleteTail(b []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(b); i++ {
		c := b[len(b)-i]
		if c&0xC0 == 0x80 {
			continue
		}
		if c >= 0xC0 && !utf8.FullRune(b[len(b)-i:]) {
			return i
		}
		return 0
	}
	return 0
}
