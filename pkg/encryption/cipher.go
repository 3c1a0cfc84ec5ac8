package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// KDFParams are the Argon2id tuning parameters.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultKDFParams returns the parameters every envelope in the wild was
// produced with. Changing them makes existing values undecryptable.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		KeyLen:  32, // 256 bits
	}
}

// Cipher encrypts and decrypts envelopes.
type Cipher struct {
	params KDFParams
	rand   io.Reader
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithKDFParams overrides the key derivation parameters. Intended for tests
// that cannot afford 64 MiB per derivation.
func WithKDFParams(p KDFParams) Option {
	return func(c *Cipher) { c.params = p }
}

// WithRandom replaces the source of salts and IVs.
func WithRandom(r io.Reader) Option {
	return func(c *Cipher) { c.rand = r }
}

// NewCipher creates a Cipher with the default parameters.
func NewCipher(opts ...Option) *Cipher {
	c := &Cipher{params: DefaultKDFParams(), rand: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCipher = NewCipher()

// Encrypt encrypts plaintext with the default cipher.
func Encrypt(plaintext, passphrase string) (string, error) {
	return defaultCipher.Encrypt(plaintext, passphrase)
}

// Decrypt decrypts an envelope with the default cipher.
func Decrypt(envelope, passphrase string) (string, error) {
	return defaultCipher.Decrypt(envelope, passphrase)
}

func (c *Cipher) deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, c.params.Time, c.params.Memory, c.params.Threads, c.params.KeyLen)
}

func (c *Cipher) gcm(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCMWithNonceSize(block, IVSize)
}

// Encrypt returns the envelope for plaintext. A fresh salt and IV are drawn
// for every call, so encrypting the same value twice yields different
// envelopes.
func (c *Cipher) Encrypt(plaintext, passphrase string) (string, error) {
	if passphrase == "" {
		return "", errors.New("encryption key is empty")
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	aead, err := c.gcm(c.deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}

	// Seal appends the tag to the ciphertext; the envelope stores it apart.
	sealed := aead.Seal(nil, iv, []byte(plaintext), nil)
	split := len(sealed) - TagSize

	return Envelope{
		Salt:       salt,
		IV:         iv,
		Tag:        sealed[split:],
		Ciphertext: sealed[:split],
	}.String(), nil
}

// Decrypt opens an envelope. It returns *MalformedEnvelopeError when value is
// not a well-formed envelope and *DecryptionError when authentication fails.
func (c *Cipher) Decrypt(value, passphrase string) (string, error) {
	env, err := ParseEnvelope(value)
	if err != nil {
		return "", err
	}

	aead, err := c.gcm(c.deriveKey(passphrase, env.Salt))
	if err != nil {
		return "", &DecryptionError{Cause: err}
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	plaintext, err := aead.Open(nil, env.IV, sealed, nil)
	if err != nil {
		return "", &DecryptionError{Cause: fmt.Errorf("authentication failed: %w", err)}
	}
	return string(plaintext), nil
}
