package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correcthorse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correcthorse" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !CheckPassword("correcthorse", hash) {
		t.Error("CheckPassword() should accept the original password")
	}
	if CheckPassword("wrongpassword", hash) {
		t.Error("CheckPassword() should reject a wrong password")
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("CheckPassword() should reject a malformed hash")
	}
}

func TestGenerateSessionID(t *testing.T) {
	a := GenerateSessionID()
	b := GenerateSessionID()
	if a == "" || b == "" {
		t.Fatal("session IDs must not be empty")
	}
	if a == b {
		t.Error("session IDs must be unique")
	}
}
