package token

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/westmarch-io/westmarch/internal/models"
)

// DefaultLeeway tolerates small clock drift between client and API.
const DefaultLeeway = 30 * time.Second

const accessTokenType = "access"

// accessClaims are the claims simplejwt puts into an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID   json.RawMessage `json:"user_id"`
	Username string          `json:"username"`
	IsStaff  bool            `json:"is_staff"`
	// TokenType is "access" or "refresh" in simplejwt tokens.
	TokenType string `json:"token_type"`
}

// JWTDecoder reads the claims of a JWT access credential.
//
// Signatures are not verified: the client never holds the signing key
// and the API rejects forged credentials on the first protected call.
// Expired credentials are reported as undecodable.
type JWTDecoder struct {
	parser *jwt.Parser
	now    func() time.Time
	leeway time.Duration
}

type JWTOption func(*JWTDecoder)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) JWTOption {
	return func(d *JWTDecoder) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLeeway sets the tolerated clock drift for expiry checks.
func WithLeeway(leeway time.Duration) JWTOption {
	return func(d *JWTDecoder) {
		if leeway >= 0 {
			d.leeway = leeway
		}
	}
}

func NewJWTDecoder(opts ...JWTOption) *JWTDecoder {
	d := &JWTDecoder{
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
		now:    time.Now,
		leeway: DefaultLeeway,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *JWTDecoder) Decode(credential string) (*models.Identity, error) {
	credential = strings.TrimSpace(credential)
	if len(credential) == 0 {
		return nil, newDecodeError("empty credential", nil)
	}

	var claims accessClaims
	if _, _, err := d.parser.ParseUnverified(credential, &claims); err != nil {
		return nil, newDecodeError("malformed token", err)
	}

	if len(claims.TokenType) > 0 && claims.TokenType != accessTokenType {
		return nil, newDecodeError("not an access token", nil)
	}

	userID, err := parseUserID(claims.UserID)
	if err != nil {
		return nil, err
	}

	identity := &models.Identity{
		UserID:   userID,
		Username: claims.Username,
		IsStaff:  claims.IsStaff,
	}

	if claims.ExpiresAt != nil {
		identity.Expiry = claims.ExpiresAt.Time.UTC()
		if d.now().After(identity.Expiry.Add(d.leeway)) {
			return nil, newDecodeError("token expired", jwt.ErrTokenExpired)
		}
	}

	return identity, nil
}

// parseUserID accepts both numeric and string encodings of user_id.
func parseUserID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, newDecodeError("missing user_id claim", nil)
	}

	value := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &value); err != nil {
			return 0, newDecodeError("invalid user_id claim", err)
		}
	}

	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, newDecodeError("invalid user_id claim", err)
	}
	return id, nil
}
