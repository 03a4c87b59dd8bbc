package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	userDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository returns (nil, nil) for unknown users.
type UserRepository interface {
	GetCredentials(ctx context.Context, username string) (*Credentials, error)
	GetProfile(ctx context.Context, userID int64) (*userDatamodel.Profile, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	SessionForClaims(ctx context.Context, claims *Claims) (*identity.Session, error)
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

// used to keep the timing of unknown-user logins close to real ones
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("plant-dashboard"), bcrypt.MinCost)

func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, lg *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         lg,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.userRepo.GetCredentials(ctx, dto.Username)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to load credentials", err)
	}
	if creds == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(dto.Password))
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	s.logger.InfoContext(ctx, "user authenticated", "user_id", creds.UserID)
	return s.issue(Subject{UserID: creds.UserID, Username: dto.Username})
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	profile, err := s.userRepo.GetProfile(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to load user", err)
	}
	if profile == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !profile.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issue(Subject{UserID: profile.ID, Username: profile.Username})
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// SessionForClaims loads the current profile behind a validated token.
// Unknown or inactive users yield (nil, nil).
func (s *Service) SessionForClaims(ctx context.Context, claims *Claims) (*identity.Session, error) {
	profile, err := s.userRepo.GetProfile(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.IsActive {
		return nil, nil
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &identity.Session{
		Identity:       identity.Identity{ID: profile.ID, Username: profile.Username},
		Name:           profile.Name,
		Role:           identity.ParseRole(profile.Role),
		DepartmentID:   profile.DepartmentID,
		DepartmentName: profile.DepartmentName,
		ExpiresAt:      expiresAt,
	}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) issue(sub Subject) (AuthTokens, error) {
	accessToken, expiresAt, err := s.tokenGenerator.GenerateAccessToken(sub)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(sub)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}
	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
