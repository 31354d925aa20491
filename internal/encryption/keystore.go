package encryption

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/crypto/curve25519"
)

// KeyPair is a user's local key material: an X25519 scalar and its
// public point, hex-encoded. Only the public half ever leaves the disk.
type KeyPair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

func keyFilePath(storePath, userID string) string {
	return filepath.Join(storePath, "keys_"+userID+".json")
}

// loadOrCreateKeyPair restores a user's persisted key material, or
// generates and durably stores a fresh pair on first use.
func loadOrCreateKeyPair(storePath, userID string) (*KeyPair, error) {
	path := keyFilePath(storePath, userID)

	data, err := os.ReadFile(path)
	if err == nil {
		var keys KeyPair
		if err := json.Unmarshal(data, &keys); err != nil {
			return nil, err
		}
		return &keys, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	keys, err := generateKeyPair()
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(keys)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(storePath, 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}
	return keys, nil
}

func generateKeyPair() (*KeyPair, error) {
	priv := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(priv); err != nil {
		return nil, err
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		PrivateKey: hex.EncodeToString(priv),
		PublicKey:  hex.EncodeToString(pub),
	}, nil
}
