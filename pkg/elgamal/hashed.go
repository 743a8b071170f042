package elgamal

import (
	"errors"
	"fmt"

	"github.com/luxfi/election/pkg/math/curve"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"
)

const hashedKeyContext = "github.com/luxfi/election hashed elgamal 2024 key"

// HashedCiphertext carries arbitrary bytes sealed to a public key: the pad
// r·G and an AEAD ciphertext under a key derived from r·K.
type HashedCiphertext struct {
	Pad  curve.Point
	Data []byte
}

func sealKey(pad, shared curve.Point) []byte {
	material := append(pad.Bytes(), shared.Bytes()...)
	key := make([]byte, chacha20poly1305.KeySize)
	blake3.DeriveKey(hashedKeyContext, material, key)
	return key
}

// Seal encrypts plaintext to key with the given nonce. The associated data
// binds the ciphertext to its context and must be repeated on Open.
func Seal(plaintext []byte, key curve.Point, nonce curve.Scalar, associated []byte) (*HashedCiphertext, error) {
	if key.IsIdentity() {
		return nil, errors.New("elgamal: cannot seal to the identity")
	}
	pad := nonce.ActOnBase()
	aead, err := chacha20poly1305.New(sealKey(pad, nonce.Act(key)))
	if err != nil {
		return nil, err
	}
	// every seal derives a fresh key, so a fixed nonce is safe
	iv := make([]byte, aead.NonceSize())
	return &HashedCiphertext{
		Pad:  pad,
		Data: aead.Seal(nil, iv, plaintext, associated),
	}, nil
}

// Open decrypts c with the secret matching the key it was sealed to.
func (c *HashedCiphertext) Open(secret curve.Scalar, associated []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(sealKey(c.Pad, secret.Act(c.Pad)))
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aead.NonceSize())
	plaintext, err := aead.Open(nil, iv, c.Data, associated)
	if err != nil {
		return nil, fmt.Errorf("elgamal: open: %w", err)
	}
	return plaintext, nil
}
