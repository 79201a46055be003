package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(4) // minimum cost keeps the test fast

	hash, err := hasher.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal plaintext")
	}

	if err := hasher.Compare(hash, "s3cret"); err != nil {
		t.Errorf("Compare with correct password: %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); err == nil {
		t.Error("Compare with wrong password must fail")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	hasher := NewBcryptHasher(0)
	if _, err := hasher.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
