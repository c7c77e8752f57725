package tokens

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/essaypilot/essaypilot/internal/config"
	"github.com/essaypilot/essaypilot/internal/models"
)

func TestGenerateAccessToken_ValidAndClaims(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-32-bytes-should-be-long-enough"

	u := &models.User{Sub: "user-123", Name: "Test User", Email: "test@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := ParseAccessToken(cfg.JWT.Secret, tokenStr)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims["sub"] != u.Sub {
		t.Fatalf("unexpected sub claim: got=%v want=%v", claims["sub"], u.Sub)
	}
}

func TestParseAccessToken_Expiry(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "another-secret-32-bytes-longgggg"
	u := &models.User{Sub: "u2", Name: "X", Email: "x@x"}
	tokenStr, err := GenerateAccessToken(cfg, u, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if _, err := ParseAccessToken(cfg.JWT.Secret, tokenStr); err == nil {
		t.Fatalf("expected parse to fail for expired token")
	}
}

func TestParseAccessToken_WrongSecretFails(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "secret-one-32-bytes-xxxxxxxxxxxxxxxx"
	u := &models.User{Sub: "u3", Name: "Bob", Email: "bob@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if _, err := ParseAccessToken("different-secret-xxxxxxxxxxxxxxxx", tokenStr); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestParseAccessToken_Malformed(t *testing.T) {
	if _, err := ParseAccessToken("x", "not.a.jwt"); err == nil {
		t.Fatalf("expected parse to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestParseAccessToken_AlgNoneRejected(t *testing.T) {
	headerEnc := (&jwt.Token{}).EncodeSegment([]byte(`{"alg":"none"}`))
	payloadEnc := (&jwt.Token{}).EncodeSegment([]byte(`{"sub":"u-none","exp":9999999999}`))
	tok := headerEnc + "." + payloadEnc + "."
	if _, err := ParseAccessToken("x", tok); err == nil {
		t.Fatalf("expected alg=none token to be rejected")
	}
}

// Tampering with payload must fail signature verification
func TestParseAccessToken_TamperedPayload(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "tamper-test-secret-32-bytes-xxxxxxx"
	u := &models.User{Sub: "user-t", Name: "Tamper", Email: "t@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, u, 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, _ := jwt.NewParser().DecodeSegment(parts[1])
	parts[1] = (&jwt.Token{}).EncodeSegment([]byte(strings.Replace(string(payloadBytes), "user-t", "attacker", 1)))
	if _, err := ParseAccessToken(cfg.JWT.Secret, strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "verifier-secret-32-bytes-xxxxxxxxxx"
	u := &models.User{Sub: "user-v", Name: "V", Email: "v@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	ver := NewJWTVerifier(cfg.JWT.Secret)
	tok, err := ver.Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if claims["sub"] != "user-v" {
		t.Fatalf("unexpected sub: %v", claims["sub"])
	}
}
