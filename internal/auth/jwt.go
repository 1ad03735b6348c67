package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/libreshelf/libreshelf/internal/model"
)

// Claims are the session token claims. A librarian token carries
// LibrarianID and Username; a student token carries AdmissionNo.
type Claims struct {
	Role        string `json:"role"`
	LibrarianID int64  `json:"librarian_id,omitempty"`
	Username    string `json:"username,omitempty"`
	AdmissionNo string `json:"admission_no,omitempty"`
	jwt.RegisteredClaims
}

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// GenerateLibrarianToken creates a session token for a staff account.
func GenerateLibrarianToken(secret string, librarianID int64, username string) (string, error) {
	return generate(secret, Claims{
		Role:        model.RoleLibrarian,
		LibrarianID: librarianID,
		Username:    username,
	})
}

// GenerateStudentToken creates a session token for an approved portal
// account.
func GenerateStudentToken(secret, admissionNo string) (string, error) {
	return generate(secret, Claims{
		Role:        model.RoleStudent,
		AdmissionNo: admissionNo,
	})
}

func generate(secret string, claims Claims) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        jti,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a session token, returning the claims.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
