package secrets

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestNewBox_RejectsBadKeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33} {
		if _, err := NewBox(make([]byte, n)); err == nil {
			t.Errorf("NewBox with %d-byte key: expected error", n)
		}
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	box, err := NewBox(testKey())
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	tests := []string{
		"",
		"ya29.a0AfH6SMB-short-access-token",
		"1//refresh-token-with-slashes//and-more",
		strings.Repeat("long", 500),
		"unicode: 日本語 and émojis",
	}
	for _, plain := range tests {
		sealed, err := box.Encrypt(plain)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plain, err)
		}
		got, err := box.Decrypt(sealed)
		if err != nil {
			t.Fatalf("Decrypt(Encrypt(%q)): %v", plain, err)
		}
		if got != plain {
			t.Errorf("round trip mismatch: got %q want %q", got, plain)
		}
	}
}

func TestEncrypt_UniqueNonces(t *testing.T) {
	box, _ := NewBox(testKey())
	a, _ := box.Encrypt("same plaintext")
	b, _ := box.Encrypt("same plaintext")
	if a == b {
		t.Error("two encryptions of the same plaintext produced identical ciphertext")
	}
}

func TestDecrypt_TamperedCiphertextFailsClosed(t *testing.T) {
	box, _ := NewBox(testKey())
	sealed, err := box.Encrypt("secret-token")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Flip one bit in the trailing auth tag segment.
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	got, err := box.Decrypt(tampered)
	if !errors.Is(err, ErrDecrypt) {
		t.Fatalf("Decrypt(tampered): got (%q, %v), want ErrDecrypt", got, err)
	}
}

func TestDecrypt_MalformedInputFailsClosed(t *testing.T) {
	box, _ := NewBox(testKey())
	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"empty", ""},
		{"too short for nonce", base64.StdEncoding.EncodeToString([]byte("ab"))},
		{"garbage payload", base64.StdEncoding.EncodeToString(make([]byte, 40))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := box.Decrypt(tt.input); !errors.Is(err, ErrDecrypt) {
				t.Fatalf("Decrypt(%q): expected ErrDecrypt, got %v", tt.input, err)
			}
		})
	}
}
