// Package encryption is the client-edge confidentiality boundary: it
// wraps message content before submit and unwraps it after fetch, so the
// stored rows hold ciphertext.
//
// This is NOT a secure messaging protocol. Public halves are exchanged
// through an unauthenticated directory, so anyone controlling the
// directory can substitute keys and read everything. The layer resists
// passive inspection of the message store only. Group chats inherit the
// reference behavior of encrypting for a single arbitrarily chosen
// recipient; that functional gap is kept, not fixed.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sync"

	"chatware/backend/internal/apperr"
	"chatware/backend/internal/models"

	"golang.org/x/crypto/curve25519"
)

// Sentinel is returned whenever decryption fails, so rendering never
// blocks on bad key material.
const Sentinel = "[Message unavailable]"

// Envelope is an encrypted payload: a fresh random IV and the
// ciphertext, both encoded for transport and storage.
type Envelope struct {
	IV         string `json:"iv"`         // hex
	Ciphertext string `json:"ciphertext"` // base64
}

// Directory is the key directory the layer publishes to and reads from.
// The storage service satisfies it.
type Directory interface {
	UpsertPublicKey(key *models.PublicKey) error
	GetPublicKeys() ([]models.PublicKey, error)
}

// Service holds one user's local key material and the cached public
// halves of every other user.
type Service struct {
	Directory Directory
	StorePath string

	mu       sync.RWMutex
	userID   string
	keys     *KeyPair
	peerKeys map[string]string // userID -> hex public key
}

// NewService creates an uninitialized confidentiality service. Init must
// run before any encrypt/decrypt call.
func NewService(dir Directory, storePath string) *Service {
	return &Service{
		Directory: dir,
		StorePath: storePath,
		peerKeys:  make(map[string]string),
	}
}

// Init loads this user's key material from disk or generates a fresh
// pair, persists it, publishes the public half to the directory, and
// caches everyone else's public halves.
func (s *Service) Init(userID string) error {
	keys, err := loadOrCreateKeyPair(s.StorePath, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.userID = userID
	s.keys = keys
	s.mu.Unlock()

	if err := s.Directory.UpsertPublicKey(&models.PublicKey{
		UserID: userID,
		Key:    keys.PublicKey,
	}); err != nil {
		return err
	}

	return s.RefreshDirectory()
}

// RefreshDirectory re-reads every published public key into the cache.
func (s *Service) RefreshDirectory() error {
	entries, err := s.Directory.GetPublicKeys()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.UserID == s.userID {
			continue
		}
		s.peerKeys[e.UserID] = e.Key
	}
	return nil
}

// SavePeerKey caches one peer's public half directly.
func (s *Service) SavePeerKey(userID, publicKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peerKeys[userID] = publicKey
}

// PublicKey returns this user's public half for sharing.
func (s *Service) PublicKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keys == nil {
		return ""
	}
	return s.keys.PublicKey
}

// peerKey derives the symmetric key shared with peerID: the X25519
// secret between the local private half and the peer's published public
// half, hashed with SHA-256 into an AES-256 key. Both sides derive the
// same key, whichever of them encrypts.
func (s *Service) peerKey(peerID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.keys == nil {
		return nil, apperr.Validation("encryption service not initialized")
	}
	peerHex, ok := s.peerKeys[peerID]
	if !ok {
		return nil, apperr.KeyNotFound("no public key cached for peer " + peerID)
	}

	priv, err := hex.DecodeString(s.keys.PrivateKey)
	if err != nil {
		return nil, err
	}
	peerPub, err := hex.DecodeString(peerHex)
	if err != nil {
		return nil, err
	}

	secret, err := curve25519.X25519(priv, peerPub)
	if err != nil {
		return nil, err
	}
	key := sha256.Sum256(secret)
	return key[:], nil
}

// EncryptForPeer encrypts plaintext for one peer with a fresh random IV.
// Fails with KeyNotFound when the peer's public half is not cached.
func (s *Service) EncryptForPeer(plaintext, peerID string) (*Envelope, error) {
	key, err := s.peerKey(peerID)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, iv, []byte(plaintext), nil)
	return &Envelope{
		IV:         hex.EncodeToString(iv),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// DecryptFromPeer re-derives the shared key and decrypts. Any failure
// (unknown peer, mismatched peer, corrupt payload) yields the sentinel
// instead of an error, so rendering stays resilient.
func (s *Service) DecryptFromPeer(env Envelope, peerID string) string {
	key, err := s.peerKey(peerID)
	if err != nil {
		return Sentinel
	}

	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return Sentinel
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return Sentinel
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return Sentinel
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return Sentinel
	}
	if len(iv) != gcm.NonceSize() {
		return Sentinel
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return Sentinel
	}
	return string(plaintext)
}

// EncryptForChat encrypts for the first participant that is not the
// local user and returns the chosen recipient. In group chats everyone
// else decrypts against the wrong peer and sees the sentinel; see the
// package doc.
func (s *Service) EncryptForChat(plaintext string, participantIDs []string) (*Envelope, string, error) {
	s.mu.RLock()
	self := s.userID
	s.mu.RUnlock()

	for _, id := range participantIDs {
		if id != self {
			env, err := s.EncryptForPeer(plaintext, id)
			if err != nil {
				return nil, "", err
			}
			return env, id, nil
		}
	}
	return nil, "", apperr.KeyNotFound("no peer to encrypt for")
}
