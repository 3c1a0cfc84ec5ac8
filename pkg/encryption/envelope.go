package encryption

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// Prefix opens every envelope.
	Prefix = "ENC[AES256_GCM,"
	// Suffix closes every envelope.
	Suffix = "]"

	SaltSize = 16
	IVSize   = 12
	TagSize  = 16
)

// Envelope is the decoded form of an encrypted value.
type Envelope struct {
	Salt       []byte
	IV         []byte
	Tag        []byte
	Ciphertext []byte
}

// String renders the envelope in its wire format.
func (e Envelope) String() string {
	enc := base64.StdEncoding
	return Prefix + strings.Join([]string{
		enc.EncodeToString(e.Salt),
		enc.EncodeToString(e.IV),
		enc.EncodeToString(e.Tag),
		enc.EncodeToString(e.Ciphertext),
	}, ":") + Suffix
}

// IsEncrypted reports whether s carries the envelope markers. It does not
// check the payload; ParseEnvelope does.
func IsEncrypted(s string) bool {
	return len(s) >= len(Prefix)+len(Suffix) &&
		strings.HasPrefix(s, Prefix) &&
		strings.HasSuffix(s, Suffix)
}

// ParseEnvelope decodes s.
func ParseEnvelope(s string) (Envelope, error) {
	if !IsEncrypted(s) {
		return Envelope{}, &MalformedEnvelopeError{Reason: "missing ENC[AES256_GCM,...] markers"}
	}
	payload := s[len(Prefix) : len(s)-len(Suffix)]

	parts := strings.Split(payload, ":")
	if len(parts) != 4 {
		return Envelope{}, &MalformedEnvelopeError{
			Reason: fmt.Sprintf("expected 4 segments, got %d", len(parts)),
		}
	}

	names := [4]string{"salt", "iv", "tag", "ciphertext"}
	var decoded [4][]byte
	for i, part := range parts {
		b, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return Envelope{}, &MalformedEnvelopeError{
				Reason: fmt.Sprintf("invalid base64 in %s segment: %v", names[i], err),
			}
		}
		decoded[i] = b
	}

	env := Envelope{Salt: decoded[0], IV: decoded[1], Tag: decoded[2], Ciphertext: decoded[3]}
	switch {
	case len(env.Salt) != SaltSize:
		return Envelope{}, &MalformedEnvelopeError{Reason: fmt.Sprintf("salt must be %d bytes, got %d", SaltSize, len(env.Salt))}
	case len(env.IV) != IVSize:
		return Envelope{}, &MalformedEnvelopeError{Reason: fmt.Sprintf("iv must be %d bytes, got %d", IVSize, len(env.IV))}
	case len(env.Tag) != TagSize:
		return Envelope{}, &MalformedEnvelopeError{Reason: fmt.Sprintf("tag must be %d bytes, got %d", TagSize, len(env.Tag))}
	}
	return env, nil
}
