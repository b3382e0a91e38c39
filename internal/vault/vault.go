package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
)

const (
	nonceSize = 12
	tagSize   = 16
)

// Vault performs authenticated encryption of uploaded documents at rest.
// Artifacts are laid out as nonce(12) || tag(16) || ciphertext so a single
// byte sequence round-trips through any blob store.
//
// A Vault built without a key runs in a documented disabled mode: Seal and
// Open pass bytes through unchanged. Callers must consult Enabled before
// assuming confidentiality.
type Vault struct {
	aead cipher.AEAD
}

// New builds a Vault from a 32-byte AES key. A nil key yields a disabled
// passthrough vault rather than an error; config validation decides whether
// that is acceptable for the deployment.
func New(key []byte) (*Vault, error) {
	if key == nil {
		return &Vault{}, nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to init GCM: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Enabled reports whether sealed artifacts are actually encrypted.
func (v *Vault) Enabled() bool {
	return v.aead != nil
}

// Seal encrypts plaintext under a fresh random nonce. In disabled mode the
// input is returned unchanged.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	if !v.Enabled() {
		return plaintext, nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// GCM appends the tag after the ciphertext; the artifact layout wants
	// nonce || tag || ciphertext, so the tag is moved up front.
	sealed := v.aead.Seal(nil, nonce, plaintext, nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	artifact := make([]byte, 0, nonceSize+tagSize+len(ct))
	artifact = append(artifact, nonce...)
	artifact = append(artifact, tag...)
	artifact = append(artifact, ct...)
	return artifact, nil
}

// Open authenticates and decrypts an artifact produced by Seal. Tampering
// with any byte of the nonce, tag, or ciphertext surfaces as
// ErrDecryptionFailed, never as altered plaintext.
func (v *Vault) Open(artifact []byte) ([]byte, error) {
	if !v.Enabled() {
		return artifact, nil
	}

	if len(artifact) < nonceSize+tagSize {
		return nil, autherror.ErrArtifactTooShort
	}

	nonce := artifact[:nonceSize]
	tag := artifact[nonceSize : nonceSize+tagSize]
	ct := artifact[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, autherror.ErrDecryptionFailed
	}
	return plaintext, nil
}

// SealFile encrypts the file at path, writes the artifact next to it with an
// .enc suffix and removes the original only after the artifact is fully
// persisted. It returns the artifact path. In disabled mode the file is left
// untouched and its own path is returned.
func (v *Vault) SealFile(path string) (string, error) {
	if !v.Enabled() {
		return path, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read plaintext file: %w", err)
	}

	artifact, err := v.Seal(data)
	if err != nil {
		return "", err
	}

	encPath := path + ".enc"
	if err := os.WriteFile(encPath, artifact, 0600); err != nil {
		return "", fmt.Errorf("failed to persist encrypted artifact: %w", err)
	}

	// Never delete-then-encrypt: the plaintext goes away only once the
	// artifact is safely on disk.
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove plaintext file: %w", err)
	}

	return encPath, nil
}

// OpenFile reads and decrypts an artifact from disk, returning the plaintext
// only in memory.
func (v *Vault) OpenFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted artifact: %w", err)
	}
	return v.Open(data)
}
