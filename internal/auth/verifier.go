package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	jwt "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier turns a bearer token into a Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// Claims is the payload of tokens signed by this service.
type Claims struct {
	UID           string `json:"uid"`
	CID           string `json:"cid"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	PlatformAdmin bool   `json:"pa,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Sign issues a token for p valid for ttl.
func (v *JWTVerifier) Sign(p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:           p.UserID,
		CID:           p.CompanyID,
		Email:         p.Email,
		Role:          string(p.Role),
		PlatformAdmin: p.PlatformAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return principalFromClaims(claims.UID, claims.CID, claims.Email, models.UserRole(claims.Role), claims.PlatformAdmin)
}

// CasdoorVerifier checks tokens issued by a Casdoor application. The user's
// "company_id" property, or else its organisation, names the company and
// the user tag carries the role.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

func NewCasdoorVerifier(cfg CasdoorConfig) *CasdoorVerifier {
	return &CasdoorVerifier{
		client: casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret,
			cfg.Certificate, cfg.Organization, cfg.Application),
	}
}

const casdoorAdminOrganization = "built-in"

func (v *CasdoorVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	companyID := claims.User.Owner
	if id := claims.User.Properties["company_id"]; id != "" {
		companyID = id
	}
	platformAdmin := claims.User.Owner == casdoorAdminOrganization && claims.User.IsAdmin

	role := models.UserRole(claims.User.Tag)
	if !IsValidRole(role) && claims.User.IsAdmin {
		role = models.RoleAdmin
	}
	return principalFromClaims(claims.User.Id, companyID, claims.User.Email, role, platformAdmin)
}

func principalFromClaims(userID, companyID, email string, role models.UserRole, platformAdmin bool) (*Principal, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if !IsValidRole(role) {
		if !platformAdmin {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
		}
		role = models.RoleOwner
	}
	if companyID == "" && !platformAdmin {
		return nil, ErrNoCompany
	}
	return &Principal{
		UserID:        userID,
		CompanyID:     companyID,
		Email:         email,
		Role:          role,
		PlatformAdmin: platformAdmin,
	}, nil
}
