package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
	"approvalflow/pkg/util"
)

// TokenRevoker tracks signed-out tokens until they expire. The Redis
// implementation lives in internal/cache.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService is the identity provider: sign-up, sign-in and sign-out.
type AuthService struct {
	store     store.Store
	revoker   TokenRevoker
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(st store.Store, revoker TokenRevoker, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{store: st, revoker: revoker, jwtSecret: jwtSecret, logger: logger}
}

type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// Register creates the identity and its profile. Role defaults to Project
// Proposer, department to the default department.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	const op = "auth.register"

	if in.Email == "" || in.Password == "" {
		return nil, apperr.New(apperr.CodeValidation, op, 0, "email and password are required")
	}

	role := model.Role(in.Role)
	if in.Role == "" {
		role = model.RoleProposer
	}
	if !role.Valid() {
		return nil, apperr.New(apperr.CodeValidation, op, 0, "unknown role %q", in.Role)
	}
	department := in.Department
	if department == "" {
		department = defaultDepartment
	}
	name := in.Name
	if name == "" {
		name = in.Email
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUserWithProfile(ctx, u, model.UserProfile{
		Name:       name,
		Email:      in.Email,
		Role:       role,
		Department: department,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", u.ID),
		zap.String("role", string(role)),
	)
	return u, nil
}

// Login checks credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.login"

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apperr.New(apperr.CodeUnauthorized, op, 0, "invalid email or password")
	}
	if !util.CheckPassword(password, u.PasswordHash) {
		return "", apperr.New(apperr.CodeUnauthorized, op, 0, "invalid email or password")
	}

	token, _, err := util.GenerateJWT(u.ID, u.Email, s.jwtSecret)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *util.TokenClaims) error {
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.JTI, ttl)
}
