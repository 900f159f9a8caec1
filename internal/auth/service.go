package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-presupuesto/internal/common"
	db "github.com/noah-isme/backend-presupuesto/internal/db/gen"
)

const (
	defaultAccessTTL  = 12 * time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour

	roleClaim = "role"
)

// Roles recognised by the API.
const (
	RoleAdmin    = "admin"
	RoleGerente  = "gerente"
	RoleVendedor = "vendedor"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleGerente, RoleVendedor:
		return true
	default:
		return false
	}
}

// Queries is the persistence surface the auth service depends on.
type Queries interface {
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
	GetUserByUsername(ctx context.Context, username string) (db.User, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (db.User, error)
	CreateSession(ctx context.Context, arg db.CreateSessionParams) (db.Session, error)
	GetSessionByToken(ctx context.Context, refreshToken string) (db.Session, error)
	RotateSessionToken(ctx context.Context, arg db.RotateSessionTokenParams) (db.Session, error)
	DeleteSessionByToken(ctx context.Context, refreshToken string) error
}

// Service coordinates authentication, token issuance, and session persistence.
type Service struct {
	queries    Queries
	denylist   Denylist
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	signer     jwa.SignatureAlgorithm
	validator  TokenValidator
	issuer     string
	audience   string
	clockSkew  time.Duration
}

// Config configures the auth service.
type Config struct {
	Queries         Queries
	Denylist        Denylist
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        string
	ClockSkew       time.Duration
}

// User represents a safe subset of the user model returned to clients.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Principal is the identity carried by a validated access token.
type Principal struct {
	UserID    string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// LoginResult bundles token material returned after a successful login or refresh.
type LoginResult struct {
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	User             User      `json:"user"`
}

// RegisterInput carries the fields required to create a user.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("auth: queries is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-presupuesto"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "presupuesto-frontend"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	denylist := cfg.Denylist
	if denylist == nil {
		denylist = noopDenylist{}
	}

	return &Service{
		queries:    cfg.Queries,
		denylist:   denylist,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		signer:     jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Register creates a new user. Only administrators reach this through the API.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return User{}, common.ValidationError("username is required")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return User{}, common.ValidationError("email is required")
	}
	if len(in.Password) < 8 {
		return User{}, common.ValidationError("password must be at least 8 characters")
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !ValidRole(role) {
		return User{}, common.ValidationError("role must be one of admin, gerente, vendedor")
	}

	hash, err := argon2id.CreateHash(in.Password, argon2id.DefaultParams)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.queries.CreateUser(ctx, db.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
	})
	if err != nil {
		if common.IsUniqueViolation(err) {
			return User{}, common.NewAppError("USERNAME_TAKEN", "username is already registered", http.StatusConflict, err)
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return convertUser(created), nil
}

// Login verifies credentials and issues a new access/refresh token pair.
func (s *Service) Login(ctx context.Context, username, password, userAgent, ip string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, invalidCredentials()
	}

	dbUser, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if common.IsNoRows(err) {
			return LoginResult{}, invalidCredentials()
		}
		return LoginResult{}, fmt.Errorf("get user: %w", err)
	}

	ok, err := argon2id.ComparePasswordAndHash(password, dbUser.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, invalidCredentials()
	}

	return s.issue(ctx, dbUser, userAgent, ip)
}

// Logout revokes the refresh session and denylists the access token until it expires.
func (s *Service) Logout(ctx context.Context, refreshToken string, principal Principal) error {
	if token := strings.TrimSpace(refreshToken); token != "" {
		if err := s.queries.DeleteSessionByToken(ctx, hashRefreshToken(token)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	if principal.TokenID != "" {
		if err := s.denylist.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}
	return nil
}

// Refresh validates and rotates a refresh token, issuing a fresh access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (LoginResult, error) {
	token := strings.TrimSpace(refreshToken)
	if token == "" {
		return LoginResult{}, unauthorized("invalid refresh token")
	}

	hashed := hashRefreshToken(token)
	session, err := s.queries.GetSessionByToken(ctx, hashed)
	if err != nil {
		if common.IsNoRows(err) {
			return LoginResult{}, unauthorized("invalid refresh token")
		}
		return LoginResult{}, fmt.Errorf("get session: %w", err)
	}
	if !session.ExpiresAt.Valid || s.now().After(session.ExpiresAt.Time) {
		_ = s.queries.DeleteSessionByToken(ctx, hashed)
		return LoginResult{}, unauthorized("invalid refresh token")
	}

	dbUser, err := s.queries.GetUserByID(ctx, session.UserID)
	if err != nil {
		_ = s.queries.DeleteSessionByToken(ctx, hashed)
		return LoginResult{}, unauthorized("invalid refresh token")
	}

	accessToken, accessExpiry, err := s.signAccessToken(uuidString(dbUser.ID), dbUser.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}

	newRefresh, refreshExpiry, err := s.rotateSessionToken(ctx, session.ID)
	if err != nil {
		_ = s.queries.DeleteSessionByToken(ctx, hashed)
		return LoginResult{}, fmt.Errorf("rotate session token: %w", err)
	}

	return LoginResult{
		Token:            accessToken,
		ExpiresAt:        accessExpiry,
		RefreshToken:     newRefresh,
		RefreshExpiresAt: refreshExpiry,
		User:             convertUser(dbUser),
	}, nil
}

// Profile fetches the authenticated user.
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	id, err := pgUUIDFromString(userID)
	if err != nil {
		return User{}, unauthorized("unauthorized")
	}
	dbUser, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if common.IsNoRows(err) {
			return User{}, unauthorized("unauthorized")
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return convertUser(dbUser), nil
}

// ParseAccessToken validates an access token and returns the principal it carries.
func (s *Service) ParseAccessToken(ctx context.Context, token string) (Principal, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Principal{}, unauthorized("missing token")
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return Principal{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if s.validator.Algorithm != "" && algorithm != s.validator.Algorithm {
		return Principal{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret), jwt.WithValidate(false))
	if err != nil {
		return Principal{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	principal, err := s.validator.Principal(parsed, algorithm, s.now())
	if err != nil {
		return Principal{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	revoked, err := s.denylist.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		return Principal{}, fmt.Errorf("check token denylist: %w", err)
	}
	if revoked {
		return Principal{}, unauthorized("token revoked")
	}
	return principal, nil
}

func (s *Service) issue(ctx context.Context, dbUser db.User, userAgent, ip string) (LoginResult, error) {
	userID := uuidString(dbUser.ID)
	if userID == "" {
		return LoginResult{}, errors.New("auth: invalid user identifier")
	}
	accessToken, accessExpiry, err := s.signAccessToken(userID, dbUser.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.generateRefreshToken(ctx, dbUser.ID, userAgent, ip)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate refresh token: %w", err)
	}
	return LoginResult{
		Token:            accessToken,
		ExpiresAt:        accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
		User:             convertUser(dbUser),
	}, nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", fmt.Errorf("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}

func (s *Service) signAccessToken(userID, role string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	token, err := jwt.NewBuilder().
		Subject(userID).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(roleClaim, role).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func (s *Service) generateRefreshToken(ctx context.Context, userID pgtype.UUID, userAgent, ip string) (string, time.Time, error) {
	token, hashed, expiresAt, err := s.newRefreshToken()
	if err != nil {
		return "", time.Time{}, err
	}
	if _, err := s.queries.CreateSession(ctx, db.CreateSessionParams{
		UserID:       userID,
		RefreshToken: hashed,
		UserAgent:    pgText(userAgent),
		Ip:           pgText(ip),
		ExpiresAt:    pgTimestamp(expiresAt),
	}); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *Service) newRefreshToken() (string, string, time.Time, error) {
	token, err := generateToken(48)
	if err != nil {
		return "", "", time.Time{}, err
	}
	expiresAt := s.now().Add(s.refreshTTL)
	return token, hashRefreshToken(token), expiresAt, nil
}

func (s *Service) rotateSessionToken(ctx context.Context, sessionID pgtype.UUID) (string, time.Time, error) {
	token, hashed, expiresAt, err := s.newRefreshToken()
	if err != nil {
		return "", time.Time{}, err
	}
	_, err = s.queries.RotateSessionToken(ctx, db.RotateSessionTokenParams{
		ID:           sessionID,
		RefreshToken: hashed,
		ExpiresAt:    pgTimestamp(expiresAt),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func invalidCredentials() *common.AppError {
	return common.NewAppError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
}

func unauthorized(message string) *common.AppError {
	return common.NewAppError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func generateToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashRefreshToken(token string) string {
	return common.Sha256Hex(token)
}

func convertUser(u db.User) User {
	return User{
		ID:        uuidString(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: toTime(u.CreatedAt),
	}
}

func pgUUIDFromString(value string) (pgtype.UUID, error) {
	var id pgtype.UUID
	if err := id.Scan(strings.TrimSpace(value)); err != nil {
		return pgtype.UUID{}, err
	}
	return id, nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	u, err := uuid.FromBytes(id.Bytes[:])
	if err != nil {
		return ""
	}
	return u.String()
}

func pgText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}

func pgTimestamp(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func toTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}
