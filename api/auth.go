package api

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"trustbyte/domain"
)

const (
	defaultJWKSCacheTTL = 15 * time.Minute
	envJWKSCacheTTL     = "JWKS_CACHE_TTL"

	// tokenLifetime matches the 28-day sessions issued to the web client.
	tokenLifetime = 28 * 24 * time.Hour
)

var errExternalIssuerMode = errors.New("auth: cannot issue tokens in external issuer mode")

// Identity is the authenticated caller extracted from a token.
type Identity struct {
	Sub   string
	Email string
	Name  string
}

// Auth issues and validates JWT tokens. The default mode signs and verifies
// HS256 tokens with a shared secret; an alternative mode verifies RS256
// tokens minted by an external identity provider via its JWKS endpoint.
type Auth struct {
	secret   []byte
	jwks     *keyfunc.JWKS
	audience string
	issuer   string

	parser      *jwt.Parser
	keyCache    sync.Map
	keyCacheTTL time.Duration
}

type cachedKey struct {
	key       any
	expiresAt time.Time
}

// NewAuth creates an Auth that self-issues HS256 tokens with the given secret.
func NewAuth(secret []byte) *Auth {
	if len(secret) == 0 {
		panic("api.NewAuth: empty signing secret")
	}
	return &Auth{
		secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// NewJWKSAuth creates an Auth that verifies RS256 tokens against the given
// JWKS. Token issuance is disabled in this mode.
func NewJWKSAuth(jwks *keyfunc.JWKS, audience, issuer string) *Auth {
	return &Auth{
		jwks:        jwks,
		audience:    audience,
		issuer:      issuer,
		parser:      jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
		keyCacheTTL: parseJWKSCacheTTL(),
	}
}

func parseJWKSCacheTTL() time.Duration {
	ttl := defaultJWKSCacheTTL
	if raw := os.Getenv(envJWKSCacheTTL); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			panic("invalid JWKS_CACHE_TTL")
		}
		ttl = parsed
	}
	return ttl
}

// IssueToken signs a session token for the given account.
func (a *Auth) IssueToken(u domain.User, now time.Time) (string, error) {
	if a.secret == nil {
		return "", errExternalIssuerMode
	}
	claims := jwt.MapClaims{
		"sub":   u.ID.Hex(),
		"email": u.Email,
		"name":  u.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// IdentityFromAuthHeader extracts the caller identity from an Authorization
// header. Both "Bearer <token>" and a bare token are accepted; the web client
// sends either depending on the route.
func (a *Auth) IdentityFromAuthHeader(h string) (Identity, error) {
	token, err := tokenFromAuthHeader(h)
	if err != nil {
		return Identity{}, err
	}
	return a.identityFromToken(token)
}

func (a *Auth) identityFromToken(token []byte) (Identity, error) {
	if len(token) == 0 {
		return Identity{}, errBadAuthorization
	}

	tokenStr := readOnlyString(token)
	var parsedToken *jwt.Token
	var err error
	if a.secret != nil {
		parsedToken, err = a.parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return a.secret, nil
		})
	} else {
		parsedToken, err = a.parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			return a.keyForToken(t)
		})
	}
	if err != nil {
		return Identity{}, err
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}

	now := time.Now().Add(time.Minute).Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return Identity{}, errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return Identity{}, errors.New("token not valid yet")
	}
	if !claims.VerifyIssuedAt(now, false) {
		return Identity{}, errors.New("token used before issued")
	}
	if a.audience != "" && !claims.VerifyAudience(a.audience, false) {
		return Identity{}, errors.New("invalid audience")
	}
	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, false) {
		return Identity{}, errors.New("invalid issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, errors.New("missing sub")
	}

	id := Identity{Sub: sub}
	if email, ok := claims["email"].(string); ok && email != "" {
		id.Email = email
	} else {
		// External issuers may not embed an email claim; ownership then keys
		// off the subject.
		id.Email = sub
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}

func (a *Auth) keyForToken(token *jwt.Token) (any, error) {
	if a.jwks == nil {
		return nil, errors.New("jwks not configured")
	}

	kid, _ := token.Header["kid"].(string)
	if kid != "" && a.keyCacheTTL > 0 {
		if cached, ok := a.keyCache.Load(kid); ok {
			entry := cached.(cachedKey)
			if time.Now().Before(entry.expiresAt) {
				return entry.key, nil
			}
			a.keyCache.Delete(kid)
		}
	}

	key, err := a.jwks.Keyfunc(token)
	if err != nil {
		return nil, err
	}

	if kid != "" && a.keyCacheTTL > 0 {
		a.keyCache.Store(kid, cachedKey{key: key, expiresAt: time.Now().Add(a.keyCacheTTL)})
	}
	return key, nil
}
