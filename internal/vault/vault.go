// Package vault seals bot credentials before they are written to the archive store.
package vault

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sbx1:"

// Key derivation parameters. The salt is fixed so the same passphrase opens
// rows written by earlier processes.
var kdfSalt = []byte("go-chatarchive/vault/v1")

const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

var ErrOpen = errors.New("vault: cannot open sealed credential")

// Sealer encrypts credentials with NaCl secretbox. A Sealer built from an empty
// passphrase stores values as-is; Open accepts both forms so a key can be
// introduced on an existing database.
type Sealer struct {
	key     *[32]byte
	enabled bool
}

func New(passphrase string) *Sealer {
	if passphrase == "" {
		return &Sealer{}
	}
	return &Sealer{key: deriveKey(passphrase), enabled: true}
}

func deriveKey(passphrase string) *[32]byte {
	var key [32]byte
	copy(key[:], argon2.IDKey([]byte(passphrase), kdfSalt, kdfTime, kdfMemory, kdfThreads, uint32(len(key))))
	return &key
}

func (s *Sealer) Enabled() bool { return s.enabled }

func (s *Sealer) Seal(plain string) (string, error) {
	if !s.enabled || plain == "" {
		return plain, nil
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, s.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *Sealer) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	if !s.enabled {
		return "", ErrOpen
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil || len(raw) < 24 {
		return "", ErrOpen
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}
