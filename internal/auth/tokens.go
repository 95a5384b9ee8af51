package auth

import (
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/id"
)

const tokenIssuer = "driftpix-server"

// Claims are the custom claims carried in a bearer token: the credential
// pair checked against the user store on every authenticated request.
type Claims struct {
	UserID int64  `json:"user_id"`
	Secret string `json:"secret"`
}

// TokenService issues and verifies PASETO v4.local bearer tokens.
//
// Tokens carry no expiration claim. They stay valid until the user's
// secret rotates, which kills every outstanding token at the credential
// check.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
}

// NewTokenService creates a token service from a 32-byte symmetric key.
func NewTokenService(key []byte) (*TokenService, error) {
	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}
	return &TokenService{symmetricKey: symmetricKey}, nil
}

// Generate creates an encrypted bearer token for the credential pair.
func (s *TokenService) Generate(userID int64, secret string) (string, error) {
	token := paseto.NewToken()

	token.SetIssuer(tokenIssuer)
	token.SetIssuedAt(time.Now())

	tokenID, err := id.Generate("tok")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", userID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("secret", secret)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts a bearer token and extracts its claims. The credential
// pair still has to be validated against the user store; a decryptable
// token only proves it was issued by us at some point.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token").WithCause(err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, apperrors.Unauthorized("malformed token claims").WithCause(err)
	}
	if claims.UserID == 0 || claims.Secret == "" {
		return nil, apperrors.Unauthorized("incomplete token claims")
	}

	return &claims, nil
}
