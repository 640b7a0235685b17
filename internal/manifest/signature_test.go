package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSigner(t *testing.T) (*openpgp.Entity, []byte) {
	t.Helper()

	cfg := &packet.Config{Algorithm: packet.PubKeyAlgoEdDSA}
	entity, err := openpgp.NewEntity("tldr test", "", "test@example.com", cfg)
	require.NoError(t, err)

	var pub bytes.Buffer
	require.NoError(t, entity.Serialize(&pub))
	return entity, pub.Bytes()
}

func TestKeyringVerify(t *testing.T) {
	signer, pub := newSigner(t)
	other, _ := newSigner(t)

	checksums := []byte(sumEN + "  tldr-pages.en.zip\n")

	var armored bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&armored, signer, bytes.NewReader(checksums), nil))

	var binarySig bytes.Buffer
	require.NoError(t, openpgp.DetachSign(&binarySig, signer, bytes.NewReader(checksums), nil))

	var foreign bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&foreign, other, bytes.NewReader(checksums), nil))

	path := filepath.Join(t.TempDir(), "keyring.gpg")
	require.NoError(t, os.WriteFile(path, pub, 0o644))

	keyring, err := LoadKeyring(path)
	require.NoError(t, err)

	tests := []struct {
		name      string
		checksums []byte
		signature []byte
		wantErr   bool
	}{
		{name: "armored_signature", checksums: checksums, signature: armored.Bytes()},
		{name: "binary_signature", checksums: checksums, signature: binarySig.Bytes()},
		{name: "tampered_listing", checksums: append([]byte("x"), checksums...), signature: armored.Bytes(), wantErr: true},
		{name: "unknown_signer", checksums: checksums, signature: foreign.Bytes(), wantErr: true},
		{name: "garbage_signature", checksums: checksums, signature: []byte("not a signature"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := keyring.Verify(tt.checksums, tt.signature)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var sigErr *SignatureError
			assert.True(t, errors.As(err, &sigErr), "error = %v, want SignatureError", err)
		})
	}
}

func TestLoadKeyringErrors(t *testing.T) {
	_, err := LoadKeyring(filepath.Join(t.TempDir(), "missing.gpg"))
	assert.Error(t, err)

	_, err = ParseKeyring([]byte("definitely not a key"))
	assert.Error(t, err)
}
