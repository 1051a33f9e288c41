// Package vault encrypts session state at rest.
//
// The key is explicit configuration: callers construct a Cipher from key
// material they loaded or derived, there is no process-global key.
package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/harrison/talentmap/internal/filelock"
)

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

var (
	// ErrInvalidKey is returned for key material of the wrong size.
	ErrInvalidKey = errors.New("vault: invalid key")
	// ErrCiphertext is returned when a ciphertext is truncated or fails authentication.
	ErrCiphertext = errors.New("vault: message authentication failed")
)

// Cipher seals and opens opaque byte strings.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// XChaCha is an XChaCha20-Poly1305 Cipher. Ciphertexts are nonce||sealed.
type XChaCha struct {
	aead  cipher.AEAD
	nonce io.Reader
}

// Option configures an XChaCha cipher.
type Option func(*XChaCha)

// WithNonceSource replaces crypto/rand as the nonce source.
func WithNonceSource(r io.Reader) Option {
	return func(x *XChaCha) {
		x.nonce = r
	}
}

// NewXChaCha creates a cipher from a 32-byte key.
func NewXChaCha(key []byte, opts ...Option) (*XChaCha, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	x := &XChaCha{aead: aead, nonce: rand.Reader}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (x *XChaCha) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, x.aead.NonceSize(), x.aead.NonceSize()+len(plaintext)+x.aead.Overhead())
	if _, err := io.ReadFull(x.nonce, nonce); err != nil {
		return nil, fmt.Errorf("vault: read nonce: %w", err)
	}
	return x.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (x *XChaCha) Decrypt(ciphertext []byte) ([]byte, error) {
	ns := x.aead.NonceSize()
	if len(ciphertext) < ns+x.aead.Overhead() {
		return nil, ErrCiphertext
	}
	plaintext, err := x.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, ErrCiphertext
	}
	return plaintext, nil
}

// GenerateKey reads a fresh key from r (crypto/rand when nil).
func GenerateKey(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("vault: generate key: %w", err)
	}
	return key, nil
}

// DeriveKey stretches a passphrase into a key with Argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, KeySize)
}

// LoadOrCreateKeyFile reads a hex-encoded key from path, creating the file
// with a new random key (mode 0600) when it does not exist.
func LoadOrCreateKeyFile(path string) ([]byte, error) {
	data, err := filelock.LockAndRead(path)
	if err == nil {
		key, decodeErr := hex.DecodeString(strings.TrimSpace(string(data)))
		if decodeErr != nil || len(key) != KeySize {
			return nil, fmt.Errorf("%w: key file %s is malformed", ErrInvalidKey, path)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("vault: read key file: %w", err)
	}

	key, err := GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	if err := filelock.LockAndWrite(path, []byte(hex.EncodeToString(key)+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("vault: write key file: %w", err)
	}
	return key, nil
}
