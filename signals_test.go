package hl7

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitParse(_ *testing.T) {
	ctx := context.Background()
	emitParseStart(ctx, 512)
	emitParseComplete(ctx, 512, 4, time.Millisecond, nil)
	emitParseComplete(ctx, 512, 0, time.Millisecond, errors.New("test error"))
}

func TestEmitBuildAndTransform(_ *testing.T) {
	ctx := context.Background()
	emitBuildComplete(ctx, 512, 4, time.Millisecond)
	emitTransformComplete(ctx, "ADT", "A04", 4, time.Millisecond, nil)
	emitTransformComplete(ctx, "", "", 0, time.Millisecond, errors.New("test error"))
}

func TestEmitProcessorCreated(_ *testing.T) {
	emitProcessorCreated(context.Background(), ContentTypeER7, 3)
}

func TestEmitBoundaries(_ *testing.T) {
	ctx := context.Background()
	emitBoundaryStart(ctx, SignalReceiveStart, ContentTypeER7)
	emitBoundaryStart(ctx, SignalLoadStart, ContentTypeER7)
	emitBoundaryStart(ctx, SignalStoreStart, ContentTypeER7)
	emitBoundaryStart(ctx, SignalSendStart, ContentTypeER7)

	testErr := errors.New("test error")
	emitReceiveComplete(ctx, ContentTypeER7, "ADT^A04", time.Millisecond, 1, nil)
	emitReceiveComplete(ctx, ContentTypeER7, "", time.Millisecond, 0, testErr)
	emitLoadComplete(ctx, ContentTypeER7, "ADT^A04", time.Millisecond, 1, nil)
	emitLoadComplete(ctx, ContentTypeER7, "", time.Millisecond, 0, testErr)
	emitStoreComplete(ctx, ContentTypeER7, "ADT^A04", 1024, time.Millisecond, 2, nil)
	emitStoreComplete(ctx, ContentTypeER7, "", 0, time.Millisecond, 0, testErr)
	emitSendComplete(ctx, ContentTypeER7, "ADT^A04", 512, time.Millisecond, 4, 1, nil)
	emitSendComplete(ctx, ContentTypeER7, "", 0, time.Millisecond, 0, 0, testErr)
}

func TestMessageType(t *testing.T) {
	tests := []struct {
		code, trigger, want string
	}{
		{"ADT", "A04", "ADT^A04"},
		{"ACK", "", "ACK"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := messageType(tt.code, tt.trigger); got != tt.want {
			t.Errorf("messageType(%q, %q) = %q, want %q", tt.code, tt.trigger, got, tt.want)
		}
	}
}

func TestSignalVariables(t *testing.T) {
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalParseStart", SignalParseStart},
		{"SignalParseComplete", SignalParseComplete},
		{"SignalBuildComplete", SignalBuildComplete},
		{"SignalTransformComplete", SignalTransformComplete},
		{"SignalProcessorCreated", SignalProcessorCreated},
		{"SignalReceiveStart", SignalReceiveStart},
		{"SignalReceiveComplete", SignalReceiveComplete},
		{"SignalLoadStart", SignalLoadStart},
		{"SignalLoadComplete", SignalLoadComplete},
		{"SignalStoreStart", SignalStoreStart},
		{"SignalStoreComplete", SignalStoreComplete},
		{"SignalSendStart", SignalSendStart},
		{"SignalSendComplete", SignalSendComplete},
	}
	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}
