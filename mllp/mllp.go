// Package mllp implements Minimal Lower Layer Protocol framing for HL7 v2
// messages: <VT> message <FS><CR>.
//
// Only framing is provided. Connections, listeners and retries belong to the
// caller, which hands a net.Conn (or any io.Reader/io.Writer) to NewReader
// and NewWriter.
package mllp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Frame characters.
const (
	StartBlock     = 0x0B
	EndBlock       = 0x1C
	CarriageReturn = 0x0D
)

// DefaultMaxSize bounds a single frame read by Reader.
const DefaultMaxSize = 16 << 20

// Framing errors.
var (
	ErrMissingStart  = errors.New("mllp: missing start block")
	ErrMissingEnd    = errors.New("mllp: missing end block")
	ErrFrameTooLarge = errors.New("mllp: frame too large")
)

// Wrap frames message. A message that is already framed is returned unchanged.
func Wrap(message []byte) []byte {
	if len(message) > 0 && message[0] == StartBlock {
		return message
	}
	out := make([]byte, 0, len(message)+3)
	out = append(out, StartBlock)
	out = append(out, message...)
	return append(out, EndBlock, CarriageReturn)
}

// Unwrap strips the frame from data. The trailing carriage return after the
// end block is optional.
func Unwrap(data []byte) ([]byte, error) {
	if len(data) == 0 || data[0] != StartBlock {
		return nil, ErrMissingStart
	}
	data = bytes.TrimSuffix(data[1:], []byte{CarriageReturn})
	if len(data) == 0 || data[len(data)-1] != EndBlock {
		return nil, ErrMissingEnd
	}
	return data[:len(data)-1], nil
}

// Reader reads framed messages from a stream.
type Reader struct {
	r       *bufio.Reader
	maxSize int
}

// NewReader returns a Reader with DefaultMaxSize.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), maxSize: DefaultMaxSize}
}

// SetMaxSize changes the largest frame ReadMessage accepts.
func (r *Reader) SetMaxSize(n int) *Reader {
	r.maxSize = n
	return r
}

// ReadMessage returns the next message without its frame. Bytes before the
// start block are discarded. io.EOF is returned when the stream ends cleanly
// between frames.
func (r *Reader) ReadMessage() ([]byte, error) {
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == StartBlock {
			break
		}
	}

	var msg []byte
	for {
		chunk, err := r.r.ReadSlice(EndBlock)
		msg = append(msg, chunk...)
		if len(msg) > r.maxSize+1 {
			return nil, fmt.Errorf("%w: over %d bytes", ErrFrameTooLarge, r.maxSize)
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingEnd
		}
		return nil, err
	}

	if b, err := r.r.Peek(1); err == nil && b[0] == CarriageReturn {
		_, _ = r.r.ReadByte()
	}
	return msg[:len(msg)-1], nil
}

// Writer writes framed messages to a stream.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMessage frames message and writes it in a single call.
func (w *Writer) WriteMessage(message []byte) error {
	_, err := w.w.Write(Wrap(message))
	return err
}
