package hl7

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Policy maps field paths to the actions applied at each boundary.
//
//	hl7.Policy{
//	    "PID.3":  {"receive.hash": "sha256"},
//	    "PID.19": {"store.encrypt": "aes", "load.decrypt": "aes", "send.redact": "***"},
//	    "PID.5":  {"send.mask": "name"},
//	}
//
// A path covers every leaf beneath it, in every repetition unless one is
// given, and in every occurrence of the segment unless SEG[n] selects one.
type Policy map[string]Actions

// Actions maps a {context}.{action} key to a capability: an algorithm, a mask
// type, or for send.redact the replacement text.
type Actions map[string]string

// Processor applies a Policy to messages as they cross a boundary.
// Use Receive/Load for ingress and Store/Send for egress.
//
// Processors are safe for concurrent use. Configuration methods (SetEncryptor,
// SetHasher, SetMasker) may be called at any time to update or rotate keys.
//
// Validation occurs automatically on first operation. Configure all required
// handlers before the first call to Receive, Load, Store, or Send.
type Processor struct {
	codec Codec

	mu         sync.RWMutex
	encryptors map[EncryptAlgo]Encryptor
	hashers    map[HashAlgo]Hasher
	maskers    map[MaskType]Masker

	validateOnce sync.Once
	validateErr  error

	// Per-context rules, immutable after construction
	receive receivePlan
	load    loadPlan
	store   storePlan
	send    sendPlan
}

type receivePlan struct {
	hash []rule
}

type loadPlan struct {
	decrypt []rule
}

type storePlan struct {
	encrypt []rule
}

type sendPlan struct {
	mask   []rule
	redact []rule
}

// rule is one resolved policy entry.
type rule struct {
	path       string
	coord      Coordinate
	capability string
}

// NewProcessor creates a Processor that encodes with codec and applies policy.
//
// The processor is created with builtin hashers and maskers. Encryptors must
// be configured via SetEncryptor before using Store/Load with encryption rules.
func NewProcessor(codec Codec, policy Policy) (*Processor, error) {
	p := &Processor{
		codec:      codec,
		encryptors: make(map[EncryptAlgo]Encryptor),
		hashers:    builtinHashers(),
		maskers:    builtinMaskers(),
	}
	if err := p.plan(policy); err != nil {
		return nil, err
	}

	emitProcessorCreated(context.Background(), codec.ContentType(), p.ruleCount())
	return p, nil
}

// plan resolves the policy in sorted path order so rule order is stable.
func (p *Processor) plan(policy Policy) error {
	paths := make([]string, 0, len(policy))
	for path := range policy {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		c, err := Resolve(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
		}
		if c.Field == 0 || (c.Segment == headerName && c.Field <= 2) {
			return newConfigError(ErrInvalidPolicy, "", path)
		}

		actions := policy[path]
		for key := range actions {
			if !isContextAction(key) {
				return newConfigError(ErrInvalidPolicy, key, path)
			}
		}
		for _, key := range contextActions {
			capability, ok := actions[key]
			if !ok {
				continue
			}
			if !validCapability(key, capability) {
				return newConfigError(ErrInvalidPolicy, capability, path)
			}
			r := rule{path: path, coord: c, capability: capability}
			switch key {
			case ActionReceiveHash:
				p.receive.hash = append(p.receive.hash, r)
			case ActionLoadDecrypt:
				p.load.decrypt = append(p.load.decrypt, r)
			case ActionStoreEncrypt:
				p.store.encrypt = append(p.store.encrypt, r)
			case ActionSendMask:
				p.send.mask = append(p.send.mask, r)
			case ActionSendRedact:
				p.send.redact = append(p.send.redact, r)
			}
		}
	}
	return nil
}

func isContextAction(key string) bool {
	for _, ca := range contextActions {
		if ca == key {
			return true
		}
	}
	return false
}

func (p *Processor) ruleCount() int {
	return len(p.receive.hash) + len(p.load.decrypt) + len(p.store.encrypt) +
		len(p.send.mask) + len(p.send.redact)
}

// SetEncryptor registers an encryptor for the given algorithm.
// Returns the processor for chaining. Safe for concurrent use.
func (p *Processor) SetEncryptor(algo EncryptAlgo, enc Encryptor) *Processor {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.encryptors[algo] = enc
	return p
}

// SetHasher registers a hasher for the given algorithm.
// Returns the processor for chaining. Safe for concurrent use.
func (p *Processor) SetHasher(algo HashAlgo, h Hasher) *Processor {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hashers[algo] = h
	return p
}

// SetMasker registers a masker for the given type.
// Returns the processor for chaining. Safe for concurrent use.
func (p *Processor) SetMasker(mt MaskType, m Masker) *Processor {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maskers[mt] = m
	return p
}

// Validate checks that every rule's encryptor, hasher or masker is registered.
// Validation also runs automatically on first operation.
func (p *Processor) Validate() error {
	p.validateOnce.Do(func() {
		p.mu.RLock()
		defer p.mu.RUnlock()
		p.validateErr = p.validateCapabilities()
	})
	return p.validateErr
}

func (p *Processor) validateCapabilities() error {
	for _, r := range p.receive.hash {
		if _, ok := p.hashers[HashAlgo(r.capability)]; !ok {
			return newConfigError(ErrMissingHasher, r.capability, r.path)
		}
	}
	for _, rules := range [][]rule{p.load.decrypt, p.store.encrypt} {
		for _, r := range rules {
			if _, ok := p.encryptors[EncryptAlgo(r.capability)]; !ok {
				return newConfigError(ErrMissingEncryptor, r.capability, r.path)
			}
		}
	}
	for _, r := range p.send.mask {
		if _, ok := p.maskers[MaskType(r.capability)]; !ok {
			return newConfigError(ErrMissingMasker, r.capability, r.path)
		}
	}
	return nil
}

// Receive decodes data from an external source and hashes the configured fields.
func (p *Processor) Receive(ctx context.Context, data []byte) (*Message, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	emitBoundaryStart(ctx, SignalReceiveStart, p.codec.ContentType())

	var (
		m      *Message
		hashed int
		retErr error
	)
	defer func() {
		emitReceiveComplete(ctx, p.codec.ContentType(), typeOf(m), time.Since(start), hashed, retErr)
	}()

	m, retErr = p.decode(data)
	if retErr != nil {
		return nil, retErr
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	hashed, retErr = p.each(m, p.receive.hash, func(r rule, leaf string) (string, error) {
		out, err := p.hashers[HashAlgo(r.capability)].Hash([]byte(Unescape(leaf, m.delims)))
		if err != nil {
			return "", newTransformError(ErrHash, "hash", r.path, err)
		}
		return Escape(out, m.delims), nil
	})
	if retErr != nil {
		return nil, retErr
	}
	return m, nil
}

// Load decodes data from storage and decrypts the configured fields.
func (p *Processor) Load(ctx context.Context, data []byte) (*Message, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	emitBoundaryStart(ctx, SignalLoadStart, p.codec.ContentType())

	var (
		m         *Message
		decrypted int
		retErr    error
	)
	defer func() {
		emitLoadComplete(ctx, p.codec.ContentType(), typeOf(m), time.Since(start), decrypted, retErr)
	}()

	m, retErr = p.decode(data)
	if retErr != nil {
		return nil, retErr
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	decrypted, retErr = p.each(m, p.load.decrypt, func(r rule, leaf string) (string, error) {
		ciphertext, err := base64.StdEncoding.DecodeString(Unescape(leaf, m.delims))
		if err != nil {
			return "", newTransformError(ErrDecrypt, "decrypt", r.path, err)
		}
		plaintext, err := p.encryptors[EncryptAlgo(r.capability)].Decrypt(ciphertext)
		if err != nil {
			return "", newTransformError(ErrDecrypt, "decrypt", r.path, err)
		}
		return Escape(string(plaintext), m.delims), nil
	})
	if retErr != nil {
		return nil, retErr
	}
	return m, nil
}

// Store encrypts the configured fields of a copy of m and encodes it for storage.
// m itself is not modified.
func (p *Processor) Store(ctx context.Context, m *Message) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	emitBoundaryStart(ctx, SignalStoreStart, p.codec.ContentType())

	var (
		data      []byte
		encrypted int
		retErr    error
	)
	defer func() {
		emitStoreComplete(ctx, p.codec.ContentType(), typeOf(m), len(data), time.Since(start), encrypted, retErr)
	}()

	if m == nil {
		retErr = newCodecError(ErrMarshal, errNilMessage)
		return nil, retErr
	}
	clone := m.Clone()

	p.mu.RLock()
	defer p.mu.RUnlock()

	encrypted, retErr = p.each(clone, p.store.encrypt, func(r rule, leaf string) (string, error) {
		ciphertext, err := p.encryptors[EncryptAlgo(r.capability)].Encrypt([]byte(Unescape(leaf, clone.delims)))
		if err != nil {
			return "", newTransformError(ErrEncrypt, "encrypt", r.path, err)
		}
		return Escape(base64.StdEncoding.EncodeToString(ciphertext), clone.delims), nil
	})
	if retErr != nil {
		return nil, retErr
	}

	data, retErr = p.encode(clone)
	return data, retErr
}

// Send masks and redacts the configured fields of a copy of m and encodes it
// for an external destination. m itself is not modified.
func (p *Processor) Send(ctx context.Context, m *Message) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	emitBoundaryStart(ctx, SignalSendStart, p.codec.ContentType())

	var (
		data             []byte
		masked, redacted int
		retErr           error
	)
	defer func() {
		emitSendComplete(ctx, p.codec.ContentType(), typeOf(m), len(data), time.Since(start), masked, redacted, retErr)
	}()

	if m == nil {
		retErr = newCodecError(ErrMarshal, errNilMessage)
		return nil, retErr
	}
	clone := m.Clone()

	p.mu.RLock()
	defer p.mu.RUnlock()

	masked, retErr = p.each(clone, p.send.mask, func(r rule, leaf string) (string, error) {
		out := p.maskers[MaskType(r.capability)].Mask(Unescape(leaf, clone.delims))
		return Escape(out, clone.delims), nil
	})
	if retErr != nil {
		return nil, retErr
	}
	redacted, retErr = p.each(clone, p.send.redact, func(r rule, _ string) (string, error) {
		return Escape(r.capability, clone.delims), nil
	})
	if retErr != nil {
		return nil, retErr
	}

	data, retErr = p.encode(clone)
	return data, retErr
}

var errNilMessage = errors.New("nil message")

// each runs fn over every leaf addressed by rules and returns how many leaves
// were rewritten.
func (p *Processor) each(m *Message, rules []rule, fn func(rule, string) (string, error)) (int, error) {
	total := 0
	for _, r := range rules {
		for _, s := range m.segmentsFor(r.coord) {
			n, err := s.rewrite(r.coord, func(leaf string) (string, error) {
				return fn(r, leaf)
			})
			total += n
			if err != nil {
				return total, err
			}
		}
	}
	if total > 0 && m.transformed != nil {
		m.transformed = m.Document()
	}
	return total, nil
}

func (p *Processor) decode(data []byte) (*Message, error) {
	var doc Document
	if err := p.codec.Unmarshal(data, &doc); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	m, err := FromDocument(&doc)
	if err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return m, nil
}

func (p *Processor) encode(m *Message) ([]byte, error) {
	data, err := p.codec.Marshal(m.Document())
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}

// segmentsFor returns the segments a rule coordinate applies to.
func (m *Message) segmentsFor(c Coordinate) []*Segment {
	if c.Occurrence > 0 {
		s, err := m.find(c.Segment, c.Occurrence)
		if err != nil {
			return nil
		}
		return []*Segment{s}
	}
	return m.Segments(c.Segment)
}

func typeOf(m *Message) string {
	if m == nil {
		return ""
	}
	return messageType(m.Type())
}
