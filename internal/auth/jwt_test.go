package auth

import (
	"testing"

	"github.com/libreshelf/libreshelf/internal/model"
)

func TestLibrarianTokenRoundTrip(t *testing.T) {
	token, err := GenerateLibrarianToken("test-secret", 42, "desk")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	claims, err := ValidateToken("test-secret", token)
	if err != nil {
		t.Fatalf("validating token: %v", err)
	}
	if claims.Role != model.RoleLibrarian {
		t.Errorf("role = %q, want %q", claims.Role, model.RoleLibrarian)
	}
	if claims.LibrarianID != 42 || claims.Username != "desk" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token has no JTI")
	}
}

func TestStudentTokenRoundTrip(t *testing.T) {
	token, err := GenerateStudentToken("test-secret", "ADM-1")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	claims, err := ValidateToken("test-secret", token)
	if err != nil {
		t.Fatalf("validating token: %v", err)
	}
	if claims.Role != model.RoleStudent {
		t.Errorf("role = %q, want %q", claims.Role, model.RoleStudent)
	}
	if claims.AdmissionNo != "ADM-1" {
		t.Errorf("admission number = %q", claims.AdmissionNo)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateLibrarianToken("secret-a", 1, "desk")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, err := ValidateToken("secret-b", token); err == nil {
		t.Error("token accepted with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("secret", "not.a.token"); err == nil {
		t.Error("garbage accepted as token")
	}
}

func TestUniqueJTI(t *testing.T) {
	a, err := GenerateLibrarianToken("secret", 1, "desk")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	b, err := GenerateLibrarianToken("secret", 1, "desk")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	ca, _ := ValidateToken("secret", a)
	cb, _ := ValidateToken("secret", b)
	if ca.ID == cb.ID {
		t.Error("two tokens share a JTI")
	}
}
