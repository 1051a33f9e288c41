// Package persist stores JSON values encrypted at rest on top of a raw
// key-value store.
//
// Entries are written as "enc:v1:" followed by the base64 ciphertext. An
// entry without that prefix is plain JSON left behind by an older build or by
// the caller's unencrypted fallback; Load still reads it and Migrate upgrades
// it. Entries that fail to decrypt or decode are removed so the caller starts
// fresh instead of failing forever.
package persist

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/harrison/talentmap/internal/logger"
	"github.com/harrison/talentmap/internal/storage"
	"github.com/harrison/talentmap/internal/vault"
)

// Prefix marks an encrypted entry.
const Prefix = "enc:v1:"

// Store is an encrypted JSON store.
type Store struct {
	raw    storage.RawStore
	cipher vault.Cipher
	log    logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report discarded entries.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New creates a Store. The cipher is required.
func New(raw storage.RawStore, cipher vault.Cipher, opts ...Option) *Store {
	s := &Store{raw: raw, cipher: cipher, log: logger.NewNoOpLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save encodes value as JSON, encrypts it and writes it under key.
// An encryption failure is returned as-is; Save never writes plaintext.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	plain, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Op: OpEncode, Key: key, Err: err}
	}
	return s.writeEncrypted(ctx, key, plain)
}

func (s *Store) writeEncrypted(ctx context.Context, key string, plain []byte) error {
	sealed, err := s.cipher.Encrypt(plain)
	if err != nil {
		return &PersistenceError{Op: OpEncrypt, Key: key, Err: err}
	}

	encoded := make([]byte, len(Prefix)+base64.StdEncoding.EncodedLen(len(sealed)))
	copy(encoded, Prefix)
	base64.StdEncoding.Encode(encoded[len(Prefix):], sealed)

	if err := s.raw.Set(ctx, key, encoded); err != nil {
		return &PersistenceError{Op: OpStorage, Key: key, Err: err}
	}
	return nil
}

// SaveUnencrypted writes value as plain JSON. It exists for callers that
// choose to keep data when encryption is unavailable.
func (s *Store) SaveUnencrypted(ctx context.Context, key string, value any) error {
	plain, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Op: OpEncode, Key: key, Err: err}
	}
	if err := s.raw.Set(ctx, key, plain); err != nil {
		return &PersistenceError{Op: OpStorage, Key: key, Err: err}
	}
	return nil
}

// Load decodes the entry under key into dst and reports whether it did.
// A missing key, an unreadable store, or an entry that cannot be decrypted or
// decoded all return false; the last two also remove the entry. dst is left
// in an unspecified state when Load returns false.
func (s *Store) Load(ctx context.Context, key string, dst any) bool {
	data, err := s.raw.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		logger.Warnf(s.log, "persist: read %s: %v", key, err)
		return false
	}

	plain, encrypted, err := s.open(data)
	if err != nil {
		s.discard(ctx, key, &PersistenceError{Op: OpDecrypt, Key: key, Err: err})
		return false
	}
	if err := decodeStrict(plain, dst); err != nil {
		s.discard(ctx, key, &PersistenceError{Op: OpDecode, Key: key, Err: err})
		return false
	}
	if !encrypted {
		logger.Debugf(s.log, "persist: loaded plaintext entry %s", key)
	}
	return true
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.raw.Remove(ctx, key); err != nil {
		return &PersistenceError{Op: OpStorage, Key: key, Err: err}
	}
	return nil
}

// Migrate re-encrypts a plaintext JSON entry under key. It returns true when
// an entry was rewritten. Missing, already encrypted and undecodable entries
// are left untouched, so calling Migrate repeatedly is safe.
func (s *Store) Migrate(ctx context.Context, key string) (bool, error) {
	data, err := s.raw.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: OpStorage, Key: key, Err: err}
	}
	if bytes.HasPrefix(data, []byte(Prefix)) || !json.Valid(data) {
		return false, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return false, nil
	}
	if err := s.writeEncrypted(ctx, key, compact.Bytes()); err != nil {
		return false, err
	}
	logger.Infof(s.log, "persist: migrated plaintext entry %s", key)
	return true, nil
}

// open returns the JSON payload of an entry and whether it was encrypted.
func (s *Store) open(data []byte) ([]byte, bool, error) {
	if !bytes.HasPrefix(data, []byte(Prefix)) {
		return data, false, nil
	}
	sealed, err := base64.StdEncoding.DecodeString(string(data[len(Prefix):]))
	if err != nil {
		return nil, true, fmt.Errorf("decode base64: %w", err)
	}
	plain, err := s.cipher.Decrypt(sealed)
	if err != nil {
		return nil, true, err
	}
	return plain, true, nil
}

func (s *Store) discard(ctx context.Context, key string, cause error) {
	logger.Warnf(s.log, "%v; discarding entry", cause)
	if err := s.raw.Remove(ctx, key); err != nil {
		logger.Warnf(s.log, "persist: remove %s: %v", key, err)
	}
}

// decodeStrict rejects unknown fields and trailing data so schema drift is
// detected instead of silently loading a partial value.
func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}
