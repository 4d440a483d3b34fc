package utils

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "s3cret-password" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "s3cret-password") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		p, err := GenerateTempPassword()
		if err != nil {
			t.Fatal(err)
		}
		if len(p) != 12 {
			t.Fatalf("length = %d", len(p))
		}
		for _, c := range p {
			if !strings.ContainsRune(tempPasswordChars, c) {
				t.Fatalf("unexpected character %q", c)
			}
		}
		seen[p] = true
	}
	if len(seen) < 2 {
		t.Error("temp passwords are not random")
	}
}
