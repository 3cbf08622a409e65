// Package cryptox implements the symmetric ciphers used for backup files and
// for the at-rest encryption of ID numbers.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// backupPassphrase is a fixed application constant. The backup cipher is
// obfuscation against casual inspection of exported files, not a user-secret
// backed confidentiality guarantee: anyone who can read this binary can
// decrypt a backup.
const backupPassphrase = "BirthKeeper_Backup_V1_File_Level_Secret"

const (
	backupSaltLen   = 16
	backupIVLen     = 12
	backupKeyLen    = 32 // AES-256
	backupKDFRounds = 120_000
)

// BackupCipher encrypts and decrypts backup payloads. Wire format, base64
// (std) encoded:
//
//	[4-byte salt length][salt][4-byte iv length][iv][ciphertext+tag]
//
// with a fresh random salt and IV per encryption, AES-256-GCM, and the key
// derived via PBKDF2-HMAC-SHA256.
type BackupCipher struct{}

func NewBackupCipher() *BackupCipher { return &BackupCipher{} }

func (BackupCipher) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, backupSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	iv := make([]byte, backupIVLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	aesgcm, err := newBackupGCM(salt)
	if err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nil, iv, []byte(plaintext), nil)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, int32(len(salt))); err != nil {
		return "", err
	}
	buf.Write(salt)
	if err := binary.Write(&buf, binary.BigEndian, int32(len(iv))); err != nil {
		return "", err
	}
	buf.Write(iv)
	buf.Write(sealed)

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (BackupCipher) Decrypt(payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}

	buf := bytes.NewReader(raw)
	salt, err := readLengthPrefixed(buf)
	if err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	iv, err := readLengthPrefixed(buf)
	if err != nil {
		return "", fmt.Errorf("read iv: %w", err)
	}
	sealed := make([]byte, buf.Len())
	if _, err := buf.Read(sealed); err != nil {
		return "", fmt.Errorf("read ciphertext: %w", err)
	}

	aesgcm, err := newBackupGCM(salt)
	if err != nil {
		return "", err
	}

	plain, err := aesgcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt payload: %w", err)
	}
	return string(plain), nil
}

func newBackupGCM(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(backupPassphrase), salt, backupKDFRounds, backupKeyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func readLengthPrefixed(buf *bytes.Reader) ([]byte, error) {
	var n int32
	if err := binary.Read(buf, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n < 0 || int(n) > buf.Len() {
		return nil, fmt.Errorf("invalid length %d", n)
	}
	out := make([]byte, n)
	if _, err := buf.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}
