package persist

import (
	"errors"
	"fmt"
)

// Op names the persistence step that failed.
type Op string

const (
	OpEncrypt Op = "encrypt"
	OpDecrypt Op = "decrypt"
	OpEncode  Op = "encode"
	OpDecode  Op = "decode"
	OpStorage Op = "storage"
)

// Sentinel errors matched by PersistenceError.Is.
var (
	ErrEncrypt = errors.New("persist: encryption failed")
	ErrDecrypt = errors.New("persist: decryption failed")
	ErrStorage = errors.New("persist: storage failed")
)

// PersistenceError reports a failed persistence step for one key.
type PersistenceError struct {
	Op  Op
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on the failing step.
func (e *PersistenceError) Is(target error) bool {
	switch target {
	case ErrEncrypt:
		return e.Op == OpEncrypt
	case ErrDecrypt:
		return e.Op == OpDecrypt
	case ErrStorage:
		return e.Op == OpStorage
	}
	return false
}

// IsEncryptionFailure reports whether err came from a failed encryption.
func IsEncryptionFailure(err error) bool {
	return errors.Is(err, ErrEncrypt)
}
