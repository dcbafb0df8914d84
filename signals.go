package hl7

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for message lifecycle events.
var (
	SignalParseStart        = capitan.NewSignal("hl7.parse.start", "Parse of raw text beginning")
	SignalParseComplete     = capitan.NewSignal("hl7.parse.complete", "Parse of raw text finished")
	SignalBuildComplete     = capitan.NewSignal("hl7.build.complete", "Message encoded to wire text")
	SignalTransformComplete = capitan.NewSignal("hl7.transform.complete", "Transform outcome reported")
)

// Signals for processor events.
var (
	SignalProcessorCreated = capitan.NewSignal("hl7.processor.created", "Processor instantiated")
	SignalReceiveStart     = capitan.NewSignal("hl7.receive.start", "Receive operation beginning")
	SignalReceiveComplete  = capitan.NewSignal("hl7.receive.complete", "Receive operation finished")
	SignalLoadStart        = capitan.NewSignal("hl7.load.start", "Load operation beginning")
	SignalLoadComplete     = capitan.NewSignal("hl7.load.complete", "Load operation finished")
	SignalStoreStart       = capitan.NewSignal("hl7.store.start", "Store operation beginning")
	SignalStoreComplete    = capitan.NewSignal("hl7.store.complete", "Store operation finished")
	SignalSendStart        = capitan.NewSignal("hl7.send.start", "Send operation beginning")
	SignalSendComplete     = capitan.NewSignal("hl7.send.complete", "Send operation finished")
)

// Keys for typed event data.
var (
	KeyContentType    = capitan.NewStringKey("content_type")
	KeyMessageType    = capitan.NewStringKey("message_type")
	KeySize           = capitan.NewIntKey("size")
	KeySegmentCount   = capitan.NewIntKey("segment_count")
	KeyRuleCount      = capitan.NewIntKey("rule_count")
	KeyDuration       = capitan.NewDurationKey("duration")
	KeyError          = capitan.NewErrorKey("error")
	KeyEncryptedCount = capitan.NewIntKey("encrypted_count")
	KeyDecryptedCount = capitan.NewIntKey("decrypted_count")
	KeyHashedCount    = capitan.NewIntKey("hashed_count")
	KeyMaskedCount    = capitan.NewIntKey("masked_count")
	KeyRedactedCount  = capitan.NewIntKey("redacted_count")
)

func emitParseStart(ctx context.Context, size int) {
	capitan.Emit(ctx, SignalParseStart, KeySize.Field(size))
}

func emitParseComplete(ctx context.Context, size, segments int, duration time.Duration, err error) {
	complete(ctx, SignalParseComplete, err,
		KeySize.Field(size),
		KeySegmentCount.Field(segments),
		KeyDuration.Field(duration),
	)
}

func emitBuildComplete(ctx context.Context, size, segments int, duration time.Duration) {
	capitan.Emit(ctx, SignalBuildComplete,
		KeySize.Field(size),
		KeySegmentCount.Field(segments),
		KeyDuration.Field(duration),
	)
}

func emitTransformComplete(ctx context.Context, code, trigger string, segments int, duration time.Duration, err error) {
	complete(ctx, SignalTransformComplete, err,
		KeyMessageType.Field(messageType(code, trigger)),
		KeySegmentCount.Field(segments),
		KeyDuration.Field(duration),
	)
}

// emitProcessorCreated emits an event when a processor is created.
func emitProcessorCreated(ctx context.Context, contentType string, rules int) {
	capitan.Emit(ctx, SignalProcessorCreated,
		KeyContentType.Field(contentType),
		KeyRuleCount.Field(rules),
	)
}

// emitBoundaryStart emits the start signal of a processor boundary.
func emitBoundaryStart(ctx context.Context, signal capitan.Signal, contentType string) {
	capitan.Emit(ctx, signal, KeyContentType.Field(contentType))
}

// emitReceiveComplete emits an event when receive finishes.
func emitReceiveComplete(ctx context.Context, contentType, msgType string, duration time.Duration, hashed int, err error) {
	complete(ctx, SignalReceiveComplete, err,
		KeyContentType.Field(contentType),
		KeyMessageType.Field(msgType),
		KeyDuration.Field(duration),
		KeyHashedCount.Field(hashed),
	)
}

// emitLoadComplete emits an event when load finishes.
func emitLoadComplete(ctx context.Context, contentType, msgType string, duration time.Duration, decrypted int, err error) {
	complete(ctx, SignalLoadComplete, err,
		KeyContentType.Field(contentType),
		KeyMessageType.Field(msgType),
		KeyDuration.Field(duration),
		KeyDecryptedCount.Field(decrypted),
	)
}

// emitStoreComplete emits an event when store finishes.
func emitStoreComplete(ctx context.Context, contentType, msgType string, size int, duration time.Duration, encrypted int, err error) {
	complete(ctx, SignalStoreComplete, err,
		KeyContentType.Field(contentType),
		KeyMessageType.Field(msgType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyEncryptedCount.Field(encrypted),
	)
}

// emitSendComplete emits an event when send finishes.
func emitSendComplete(ctx context.Context, contentType, msgType string, size int, duration time.Duration, masked, redacted int, err error) {
	complete(ctx, SignalSendComplete, err,
		KeyContentType.Field(contentType),
		KeyMessageType.Field(msgType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyMaskedCount.Field(masked),
		KeyRedactedCount.Field(redacted),
	)
}

// complete emits signal at error severity when err is set.
func complete(ctx context.Context, signal capitan.Signal, err error, fields ...capitan.Field) {
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, signal, fields...)
		return
	}
	capitan.Emit(ctx, signal, fields...)
}

func messageType(code, trigger string) string {
	if trigger == "" {
		return code
	}
	return code + "^" + trigger
}
