package manifest

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// SignatureError reports a checksum listing whose detached signature does
// not verify against the configured keyring.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("checksum signature verification failed: %v", e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// Keyring holds the public keys trusted to sign the checksum listing.
type Keyring struct {
	entities openpgp.EntityList
}

// LoadKeyring reads an armored or binary OpenPGP public keyring file.
func LoadKeyring(path string) (*Keyring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ParseKeyring(data)
}

// ParseKeyring parses an armored or binary OpenPGP public keyring.
func ParseKeyring(data []byte) (*Keyring, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		// Try reading as non-armored keyring
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(entities) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return &Keyring{entities: entities}, nil
}

// Verify checks a detached signature over the checksum listing. Armored
// signatures are tried first, then binary ones.
func (k *Keyring) Verify(checksums, signature []byte) error {
	_, err := openpgp.CheckArmoredDetachedSignature(k.entities, bytes.NewReader(checksums), bytes.NewReader(signature), nil)
	if err != nil {
		_, err = openpgp.CheckDetachedSignature(k.entities, bytes.NewReader(checksums), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return &SignatureError{Err: err}
	}
	return nil
}
