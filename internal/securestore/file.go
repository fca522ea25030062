package securestore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	configDirName  = "spotify-social"
	secretFileName = "credentials.enc"

	saltSize = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrEmptyPassphrase is returned when a FileStore is created without a passphrase.
var ErrEmptyPassphrase = errors.New("secure store: passphrase must not be empty")

// ErrDecrypt is returned when the secrets file cannot be opened with the
// configured passphrase.
var ErrDecrypt = errors.New("secure store: cannot decrypt secrets file (wrong passphrase or corrupt file)")

// FileStore keeps all items in a single file sealed with XChaCha20-Poly1305.
// The key is derived from a passphrase with Argon2id; the salt is stored at
// the head of the file, followed by the nonce and ciphertext.
type FileStore struct {
	path       string
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  []byte
}

// DefaultFilePath returns ~/.config/spotify-social/credentials.enc.
func DefaultFilePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(configDir, configDirName, secretFileName), nil
}

// NewFileStore creates a FileStore at path using passphrase for encryption.
func NewFileStore(path, passphrase string) (*FileStore, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return &FileStore{path: path, passphrase: []byte(passphrase)}, nil
}

// Path returns the file path where secrets are stored.
func (f *FileStore) Path() string {
	return f.path
}

// SetItem stores value under key and rewrites the file.
func (f *FileStore) SetItem(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	items[key] = value
	return f.save(items)
}

// GetItem returns the value for key or ErrNotFound.
func (f *FileStore) GetItem(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// DeleteItem removes key. The file is removed once the last item is gone.
func (f *FileStore) DeleteItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)

	if len(items) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing secrets file: %w", err)
		}
		return nil
	}
	return f.save(items)
}

// load reads and decrypts the file. A missing file yields an empty map.
func (f *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("reading secrets file: %w", err)
	}

	if len(data) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, ErrDecrypt
	}
	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := data[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := f.aead(salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}

	items := make(map[string]string)
	if err := json.Unmarshal(plaintext, &items); err != nil {
		return nil, fmt.Errorf("parsing secrets file: %w", err)
	}
	return items, nil
}

// save encrypts items and writes them, creating the parent directory if needed.
func (f *FileStore) save(items map[string]string) error {
	if f.salt == nil {
		salt := make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return fmt.Errorf("generating salt: %w", err)
		}
		f.salt = salt
	}

	aead, err := f.aead(f.salt)
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding secrets: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	out := make([]byte, 0, len(f.salt)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, f.salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, nil)

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return writeFileAtomic(f.path, out)
}

// writeFileAtomic writes data to a sibling temp file and renames it over
// path, so readers see either the old or the new contents.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temp secrets file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing secrets file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing secrets file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing secrets file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing secrets file: %w", err)
	}
	return nil
}

// aead returns the cipher for salt, deriving the key only when the salt changes.
func (f *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	if f.key == nil || string(f.salt) != string(salt) {
		f.key = argon2.IDKey(f.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
		f.salt = append([]byte(nil), salt...)
	}
	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return aead, nil
}
