package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	userDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	credentials   map[string]*Credentials
	profiles      map[int64]*userDatamodel.Profile
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
	deptID := int64(3)
	deptName := "MTC ENG BURAU"

	return &mockUserRepository{
		credentials: map[string]*Credentials{
			"admin":   {UserID: 1, PasswordHash: string(hashedPassword), IsActive: true},
			"worker":  {UserID: 2, PasswordHash: string(hashedPassword), IsActive: true},
			"retired": {UserID: 3, PasswordHash: string(hashedPassword), IsActive: false},
		},
		profiles: map[int64]*userDatamodel.Profile{
			1: {ID: 1, Username: "admin", Name: "Admin", Role: "ADMIN", IsActive: true},
			2: {ID: 2, Username: "worker", Name: "Budi", Role: "WORKER", DepartmentID: &deptID, DepartmentName: &deptName, IsActive: true},
			3: {ID: 3, Username: "retired", Name: "Old", Role: "PLANNER", IsActive: false},
		},
	}
}

func (m *mockUserRepository) GetCredentials(ctx context.Context, username string) (*Credentials, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.credentials[username], nil
}

func (m *mockUserRepository) GetProfile(ctx context.Context, userID int64) (*userDatamodel.Profile, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.profiles[userID], nil
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx           context.Context
		service       *Service
		mockRepo      *mockUserRepository
		tokenGen      *JWTTokenGenerator
		accessSecret  = "test-access-secret-0123456789abcdef"
		refreshSecret = "test-refresh-secret-0123456789abcdef"
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("should return access and refresh tokens for valid credentials", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
			gomega.Expect(tokens.TokenType).To(gomega.Equal("Bearer"))
			gomega.Expect(tokens.ExpiresAt).To(gomega.BeTemporally("~", time.Now().Add(15*time.Minute), time.Minute))
		})

		ginkgo.It("should reject a wrong password", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "nope"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should reject unknown users the same way", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "ghost", Password: "correct_password"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should reject inactive users", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "retired", Password: "correct_password"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserInactive))
		})

		ginkgo.It("should validate required fields", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "admin"})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
		})

		ginkgo.It("should wrap repository failures as internal errors", func() {
			mockRepo.setError(errors.New("connection refused"))
			_, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeInternal))
		})
	})

	ginkgo.Describe("Tokens", func() {
		ginkgo.It("should not accept a refresh token as an access token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(tokens.RefreshToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
			gomega.Expect(claims.Username).To(gomega.Equal("admin"))
		})

		ginkgo.It("should report expired tokens", func() {
			tokenGen.now = func() time.Time { return time.Now().Add(-time.Hour) }
			token, _, err := tokenGen.GenerateAccessToken(Subject{UserID: 1, Username: "admin"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			tokenGen.now = time.Now

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrTokenExpired))
		})

		ginkgo.It("should reject tokens signed with another secret", func() {
			other := NewJWTTokenGenerator("another-access-secret-0123456789abcd", refreshSecret, time.Minute, time.Hour)
			token, _, err := other.GenerateAccessToken(Subject{UserID: 1, Username: "admin"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should issue new tokens for an active user", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "worker", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			refreshed, err := service.RefreshTokens(ctx, tokens.RefreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(refreshed.AccessToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should refuse an access token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "worker", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, tokens.AccessToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should refuse users deactivated since sign in", func() {
			token, err := tokenGen.GenerateRefreshToken(Subject{UserID: 3, Username: "retired"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserInactive))
		})
	})

	ginkgo.Describe("SessionForClaims", func() {
		ginkgo.It("should build the session with role and department", func() {
			session, err := service.SessionForClaims(ctx, &Claims{UserID: 2})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(session.Role).To(gomega.Equal(identity.RoleWorker))
			gomega.Expect(*session.DepartmentID).To(gomega.Equal(int64(3)))
			gomega.Expect(*session.DepartmentName).To(gomega.Equal("MTC ENG BURAU"))
		})

		ginkgo.It("should return no session for inactive or missing users", func() {
			session, err := service.SessionForClaims(ctx, &Claims{UserID: 3})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(session).To(gomega.BeNil())

			session, err = service.SessionForClaims(ctx, &Claims{UserID: 99})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(session).To(gomega.BeNil())
		})
	})
})
