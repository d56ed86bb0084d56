package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Klingon-tech/erdwallet/internal/log"
	"github.com/Klingon-tech/erdwallet/pkg/crypto"
	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

// Key file (version 4) parameters. Files written by other wallets of the
// same network use these values, so they are not configurable.
const (
	keyFileVersion = 4
	keyFileKDF     = "scrypt"
	keyFileCipher  = "aes-128-ctr"
	scryptN        = 4096
	scryptR        = 8
	scryptP        = 1
	scryptDKLen    = 32
	keyFileSaltLen = 32
)

// ErrWrongAccount is returned when a key file decrypts to a key whose
// address differs from the one recorded in the file.
var ErrWrongAccount = errors.New("key file address does not match its key")

// KeyFile is the password-protected JSON key file format.
type KeyFile struct {
	Version int        `json:"version"`
	ID      string     `json:"id"`
	Address string     `json:"address"` // hex public key
	Bech32  string     `json:"bech32"`
	Crypto  CryptoJSON `json:"crypto"`
}

// CryptoJSON is the "crypto" section of a KeyFile.
type CryptoJSON struct {
	Cipher       string `json:"cipher"`
	CipherText   string `json:"ciphertext"`
	CipherParams struct {
		IV string `json:"iv"`
	} `json:"cipherparams"`
	KDF       string `json:"kdf"`
	KDFParams struct {
		DKLen int    `json:"dklen"`
		Salt  string `json:"salt"`
		N     int    `json:"n"`
		R     int    `json:"r"`
		P     int    `json:"p"`
	} `json:"kdfparams"`
	MAC string `json:"mac"`
}

// EncryptKey seals a 32-byte Ed25519 signing seed into a KeyFile:
// scrypt derives 32 bytes, the first half keys AES-128-CTR and the second
// half keys the HMAC-SHA256 over the ciphertext.
func EncryptKey(seed []byte, password string) (*KeyFile, error) {
	addr, err := crypto.AddressFromSeed(seed)
	if err != nil {
		return nil, err
	}

	salt := make([]byte, keyFileSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	derived, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer zero(derived)

	ciphertext, err := aesCTR(derived[:16], iv, seed)
	if err != nil {
		return nil, err
	}

	kf := &KeyFile{
		Version: keyFileVersion,
		ID:      uuid.New().String(),
		Address: addr.Hex(),
		Bech32:  addr.String(),
	}
	kf.Crypto.Cipher = keyFileCipher
	kf.Crypto.CipherText = hex.EncodeToString(ciphertext)
	kf.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	kf.Crypto.KDF = keyFileKDF
	kf.Crypto.KDFParams.DKLen = scryptDKLen
	kf.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	kf.Crypto.KDFParams.N = scryptN
	kf.Crypto.KDFParams.R = scryptR
	kf.Crypto.KDFParams.P = scryptP
	kf.Crypto.MAC = hex.EncodeToString(keyFileMAC(derived[16:32], ciphertext))
	return kf, nil
}

// Decrypt recovers the 32-byte signing seed. A MAC mismatch returns
// ErrWrongPassword; a key that does not match the recorded address returns
// ErrWrongAccount.
func (kf *KeyFile) Decrypt(password string) ([]byte, error) {
	if kf.Version != keyFileVersion {
		return nil, fmt.Errorf("unsupported key file version: %d", kf.Version)
	}
	if kf.Crypto.KDF != keyFileKDF {
		return nil, fmt.Errorf("unsupported kdf %q", kf.Crypto.KDF)
	}
	if kf.Crypto.Cipher != keyFileCipher {
		return nil, fmt.Errorf("unsupported cipher %q", kf.Crypto.Cipher)
	}
	if kf.Crypto.KDFParams.DKLen < 32 {
		return nil, fmt.Errorf("kdf dklen %d too short", kf.Crypto.KDFParams.DKLen)
	}

	mac, err := hex.DecodeString(kf.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("decode mac: %w", err)
	}
	iv, err := hex.DecodeString(kf.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	ciphertext, err := hex.DecodeString(kf.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	salt, err := hex.DecodeString(kf.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}

	p := kf.Crypto.KDFParams
	derived, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer zero(derived)

	if !hmac.Equal(keyFileMAC(derived[16:32], ciphertext), mac) {
		return nil, ErrWrongPassword
	}

	plain, err := aesCTR(derived[:16], iv, ciphertext)
	if err != nil {
		return nil, err
	}
	// Some writers store seed||pubkey.
	if len(plain) == 2*crypto.SeedSize {
		zero(plain[crypto.SeedSize:])
		plain = plain[:crypto.SeedSize]
	}

	addr, err := crypto.AddressFromSeed(plain)
	if err != nil {
		zero(plain)
		return nil, err
	}
	if addr.Hex() != kf.Address || addr.String() != kf.Bech32 {
		zero(plain)
		return nil, ErrWrongAccount
	}
	return plain, nil
}

// SaveKeyFile encrypts seed and writes the key file to path with 0600
// permissions.
func SaveKeyFile(path string, seed []byte, password string) (*KeyFile, error) {
	kf, err := EncryptKey(seed, password)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal key file: %w", err)
	}
	if err := os.WriteFile(path, data, walletPerm); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	log.Wallet.Info().Str("path", path).Str("address", kf.Bech32).Msg("Key file written")
	return kf, nil
}

// ReadKeyFile parses a key file without decrypting it.
func ReadKeyFile(path string) (*KeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var kf KeyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	return &kf, nil
}

// LoadKeyFile reads and decrypts the key file at path.
func LoadKeyFile(path, password string) ([]byte, error) {
	kf, err := ReadKeyFile(path)
	if err != nil {
		return nil, err
	}
	return kf.Decrypt(password)
}

func aesCTR(key, iv, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", block.BlockSize(), len(iv))
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

func keyFileMAC(key, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}
