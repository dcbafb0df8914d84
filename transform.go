package hl7

import (
	"context"
	"time"
)

// Transform decodes the pending raw text (see FromString) on its own goroutine
// and reports exactly one outcome. The optional done callback receives the
// error, then the same value is sent on the returned channel, which is closed.
//
// A message without pending text is validated instead: it must start with MSH.
// On success Segments and Transformed expose the structured result. Do not call
// Build or read Transformed until the outcome has been reported.
func (m *Message) Transform(ctx context.Context, done func(error)) <-chan error {
	result := make(chan error, 1)
	go func() {
		defer close(result)
		err := m.transform(ctx)
		if done != nil {
			done(err)
		}
		result <- err
	}()
	return result
}

func (m *Message) transform(ctx context.Context) error {
	start := time.Now()
	err := ctx.Err()
	if err == nil {
		if m.pending {
			err = m.Parse(m.raw)
		} else {
			err = m.validateHeader()
		}
	}
	if err == nil {
		m.raw = ""
		m.transformed = m.Document()
	}
	code, trigger := m.Type()
	emitTransformComplete(ctx, code, trigger, len(m.segments), time.Since(start), err)
	return err
}

func (m *Message) validateHeader() error {
	if len(m.segments) == 0 {
		return newParseError(ErrMissingHeader, 0, "no segments")
	}
	if first := m.segments[0]; !first.isHeader() {
		return newParseError(ErrMissingHeader, 1, "first segment is "+first.name)
	}
	return nil
}
