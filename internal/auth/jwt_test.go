package auth

import (
	"sync"
	"testing"
)

func setSecret(t *testing.T, value string) {
	t.Helper()
	t.Setenv("JWT_SECRET", value)
	jwtSecret = nil
	jwtSecretOnce = sync.Once{}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	setSecret(t, "test-secret")

	token, err := GenerateAccessToken(7, "salesperson")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 7 {
		t.Errorf("userID = %d", claims.UserID)
	}
	if claims.Role != "salesperson" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	setSecret(t, "test-secret")

	if _, err := ParseAndValidate("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	setSecret(t, "secret-a")
	token, err := GenerateAccessToken(7, "manager")
	if err != nil {
		t.Fatal(err)
	}

	setSecret(t, "secret-b")
	if _, err := ParseAndValidate(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestSecretConcurrentFirstUse(t *testing.T) {
	setSecret(t, "test-secret")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := GenerateAccessToken(7, "salesperson"); err != nil {
				t.Errorf("GenerateAccessToken: %v", err)
			}
		}()
	}
	wg.Wait()
}
