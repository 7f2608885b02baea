package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/contactbook/contactbook-api/internal/middleware"
	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/validation"
	"github.com/contactbook/contactbook-api/pkg/jwt"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := logger.Initialize(logger.Config{Level: "error", Environment: "development"}); err != nil {
		panic(err)
	}
}

type mockContactService struct {
	mock.Mock
}

func (m *mockContactService) List(ctx context.Context, params models.ContactListParams) (*models.ContactPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactPage), args.Error(1)
}

func (m *mockContactService) Get(ctx context.Context, id, ownerID int64) (*models.Contact, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *mockContactService) Create(ctx context.Context, ownerID int64, sub validation.ContactSubmission) (*models.Contact, error) {
	args := m.Called(ctx, ownerID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *mockContactService) Update(ctx context.Context, id, ownerID int64, sub validation.ContactSubmission) (*models.Contact, error) {
	args := m.Called(ctx, id, ownerID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *mockContactService) Delete(ctx context.Context, id, ownerID int64, confirmation string) (*models.Contact, bool, error) {
	args := m.Called(ctx, id, ownerID, confirmation)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Contact), args.Bool(1), args.Error(2)
}

type mockUserService struct {
	mock.Mock
	tokenManager *jwt.TokenManager
}

func (m *mockUserService) Register(ctx context.Context, sub validation.RegistrationSubmission) (*models.User, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) Login(ctx context.Context, username, password string) (*models.UserSession, string, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.UserSession), args.String(1), args.Error(2)
}

func (m *mockUserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID int64, sub validation.RegistrationUpdateSubmission) (*models.User, error) {
	args := m.Called(ctx, userID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetSessionTTL() int                 { return 3600 }
func (m *mockUserService) GetCookieDomain() string            { return "" }
func (m *mockUserService) GetCookieSecure() bool              { return false }
func (m *mockUserService) GetTokenManager() *jwt.TokenManager { return m.tokenManager }

// withSession stands in for LoginRequiredMiddleware
func withSession(session *models.UserSession) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserSessionContextKey, session)
		c.Next()
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
