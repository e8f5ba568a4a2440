package auth

import "testing"

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == "p1" || second == "p1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if first == second {
		t.Fatal("expected distinct hashes for identical input")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !VerifyPassword("correct horse", hash) {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword("wrong horse", hash) {
		t.Fatal("expected mismatched password to fail")
	}
	if VerifyPassword("correct horse", "not-a-bcrypt-hash") {
		t.Fatal("expected garbage hash to fail")
	}
}
