package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

var errUnseal = errors.New("session token cannot be unsealed")

// sealer encrypts bearer tokens before they are written to Redis.
type sealer struct {
	key [32]byte
}

// newSealer derives the box key from secret. An empty secret gets a random
// key, which means sessions do not survive a restart.
func newSealer(secret string) (*sealer, error) {
	s := &sealer{}
	if secret == "" {
		if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
			return nil, fmt.Errorf("random session key: %w", err)
		}
		return s, nil
	}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("library-console session token"))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return s, nil
}

func (s *sealer) seal(plain string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.RawStdEncoding.EncodeToString(box), nil
}

func (s *sealer) open(sealed string) (string, error) {
	box, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil || len(box) < 24 {
		return "", errUnseal
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, &s.key)
	if !ok {
		return "", errUnseal
	}
	return string(plain), nil
}
