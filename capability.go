package hl7

// Policy actions, written as {context}.{action}. Receive and load are ingress
// boundaries; store and send are egress boundaries.
const (
	ActionReceiveHash  = "receive.hash"
	ActionLoadDecrypt  = "load.decrypt"
	ActionStoreEncrypt = "store.encrypt"
	ActionSendMask     = "send.mask"
	ActionSendRedact   = "send.redact"
)

// contextActions lists every action in the order they are scanned.
var contextActions = []string{
	ActionReceiveHash,
	ActionLoadDecrypt,
	ActionStoreEncrypt,
	ActionSendMask,
	ActionSendRedact,
}

// EncryptAlgo represents a supported encryption algorithm.
// Use these constants in policies: {"PID.19": {"store.encrypt": "aes"}}
type EncryptAlgo string

const (
	// EncryptAES uses AES-GCM symmetric encryption.
	EncryptAES EncryptAlgo = "aes"

	// EncryptEnvelope uses envelope encryption with per-value data keys.
	EncryptEnvelope EncryptAlgo = "envelope"
)

// HashAlgo represents a supported hashing algorithm.
type HashAlgo string

const (
	// HashArgon2 uses Argon2id (salted, slow).
	HashArgon2 HashAlgo = "argon2"

	// HashBcrypt uses bcrypt (salted, slow).
	HashBcrypt HashAlgo = "bcrypt"

	// HashSHA256 uses SHA-256 for deterministic hashing (fast, no salt).
	// Suitable for pseudonymous identifiers that must still join across messages.
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 uses SHA-512 for deterministic hashing (fast, no salt).
	HashSHA512 HashAlgo = "sha512"
)

var validEncryptAlgos = map[EncryptAlgo]bool{
	EncryptAES:      true,
	EncryptEnvelope: true,
}

var validHashAlgos = map[HashAlgo]bool{
	HashArgon2: true,
	HashBcrypt: true,
	HashSHA256: true,
	HashSHA512: true,
}

var validMaskTypes = map[MaskType]bool{
	MaskName:       true,
	MaskPhone:      true,
	MaskSSN:        true,
	MaskEmail:      true,
	MaskDate:       true,
	MaskIdentifier: true,
	MaskPostal:     true,
}

// IsValidEncryptAlgo returns true if the algorithm is a known encryption algorithm.
func IsValidEncryptAlgo(algo EncryptAlgo) bool {
	return validEncryptAlgos[algo]
}

// IsValidHashAlgo returns true if the algorithm is a known hash algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	return validHashAlgos[algo]
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	return validMaskTypes[mt]
}

// validCapability checks the capability named for action.
// Redaction values are free text and always valid.
func validCapability(action, capability string) bool {
	switch action {
	case ActionReceiveHash:
		return IsValidHashAlgo(HashAlgo(capability))
	case ActionLoadDecrypt, ActionStoreEncrypt:
		return IsValidEncryptAlgo(EncryptAlgo(capability))
	case ActionSendMask:
		return IsValidMaskType(MaskType(capability))
	case ActionSendRedact:
		return true
	}
	return false
}
