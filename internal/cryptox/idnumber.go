package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
)

// IDNumberCipher encrypts ID numbers at rest with a random device-local key.
// The key file stands in for a platform keystore and is created on first use.
//
// Both Encrypt and Decrypt degrade gracefully: on any failure they return the
// input unchanged, so a display layer never crashes on bad ciphertext. Wire
// format, base64 (std) encoded: [4-byte iv length][iv][ciphertext+tag].
type IDNumberCipher struct {
	aead cipher.AEAD
}

// NewIDNumberCipher loads the key from keyPath, generating and persisting a
// fresh 32-byte key when the file does not exist yet.
func NewIDNumberCipher(keyPath string) (*IDNumberCipher, error) {
	key, err := os.ReadFile(keyPath)
	if os.IsNotExist(err) {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate id number key: %w", err)
		}
		if err := os.WriteFile(keyPath, key, 0o600); err != nil {
			return nil, fmt.Errorf("persist id number key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read id number key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init id number cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init id number cipher: %w", err)
	}
	return &IDNumberCipher{aead: aead}, nil
}

func (c *IDNumberCipher) Encrypt(plain string) string {
	if plain == "" {
		return plain
	}
	iv := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return plain
	}
	sealed := c.aead.Seal(nil, iv, []byte(plain), nil)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, int32(len(iv))); err != nil {
		return plain
	}
	buf.Write(iv)
	buf.Write(sealed)
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func (c *IDNumberCipher) Decrypt(payload string) string {
	if payload == "" {
		return payload
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return payload
	}
	buf := bytes.NewReader(raw)
	iv, err := readLengthPrefixed(buf)
	if err != nil || len(iv) != c.aead.NonceSize() {
		return payload
	}
	sealed := make([]byte, buf.Len())
	if _, err := buf.Read(sealed); err != nil {
		return payload
	}
	plain, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return payload
	}
	return string(plain)
}
