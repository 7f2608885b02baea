package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/contactbook/contactbook-api/internal/middleware"
	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/services"
	"github.com/contactbook/contactbook-api/internal/validation"
	"github.com/contactbook/contactbook-api/pkg/jwt"
	apperrors "github.com/contactbook/contactbook-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authRouter(svc *mockUserService) *gin.Engine {
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	return r
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.UserSessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(mockUserService)
	r := authRouter(svc)

	session := &models.UserSession{UserID: 7, Username: "anasilva"}
	svc.On("Login", mock.Anything, "anasilva", "secret-pass").Return(session, "signed-token", nil).Once()

	w := serve(r, jsonRequest(http.MethodPost, "/login", `{"username":"anasilva","password":"secret-pass"}`))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, services.InvalidCredentialsMessage},
		{"sessions not configured", services.ErrJWTSecretNotSet, http.StatusServiceUnavailable, "Service temporarily unavailable"},
		{"lookup failed", apperrors.InternalError("failed to query user", nil), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockUserService)
			r := authRouter(svc)
			svc.On("Login", mock.Anything, "anasilva", "secret-pass").Return(nil, "", tt.err).Once()

			w := serve(r, jsonRequest(http.MethodPost, "/login", `{"username":"anasilva","password":"secret-pass"}`))

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp models.LoginResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Nil(t, sessionCookie(w))
		})
	}
}

func TestAuthHandler_LoginMissingFields(t *testing.T) {
	svc := new(mockUserService)
	r := authRouter(svc)

	w := serve(r, jsonRequest(http.MethodPost, "/login", `{"username":"anasilva"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Validation failed","details":[{"field":"password","message":"This field is required."}]}`, w.Body.String())
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(mockUserService)
	r := authRouter(svc)

	svc.On("Register", mock.Anything, mock.MatchedBy(func(sub validation.RegistrationSubmission) bool {
		return sub.Username == "anasilva" && sub.Password1 == "pw" && sub.Password2 == "pw"
	})).Return(&models.User{ID: 7, Username: "anasilva", Email: "ana@example.com"}, nil).Once()

	w := serve(r, jsonRequest(http.MethodPost, "/register",
		`{"first_name":"Ana","last_name":"Silva","email":"ana@example.com","username":"anasilva","password1":"pw","password2":"pw"}`))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.RegisterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "anasilva", resp.User.Username)
	assert.Nil(t, sessionCookie(w))
}

func TestAuthHandler_RegisterValidationFailure(t *testing.T) {
	svc := new(mockUserService)
	r := authRouter(svc)

	errs := validation.FieldErrors{}
	errs.Add("email", validation.KindUniqueness, validation.MsgEmailExists)
	errs.Add("password2", validation.KindEquality, validation.MsgPasswordMismatch)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, errs).Once()

	w := serve(r, jsonRequest(http.MethodPost, "/register", `{"username":"anasilva"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Validation failed","fields":{"email":["This email already exists."],"password2":["Passwords do not match"]}}`, w.Body.String())
}

func TestAuthHandler_Logout(t *testing.T) {
	r := authRouter(new(mockUserService))

	w := serve(r, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestProfileHandler_UpdateRefreshesCookie(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "contactbook-api", 1)
	svc := &mockUserService{tokenManager: tm}

	h := NewProfileHandler(svc)
	r := gin.New()
	r.Use(withSession(&models.UserSession{UserID: 7, Username: "anasilva", Email: "ana@example.com"}))
	r.POST("/profile", h.UpdateProfile)

	svc.On("UpdateProfile", mock.Anything, int64(7), mock.Anything).
		Return(&models.User{ID: 7, Username: "ana", Email: "ana@example.com"}, nil).Once()

	w := serve(r, jsonRequest(http.MethodPost, "/profile", `{"first_name":"Ana","last_name":"Silva","username":"ana","email":"ana@example.com"}`))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)

	claims, err := tm.ValidateToken(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
}

func TestProfileHandler_UnchangedIdentityKeepsCookie(t *testing.T) {
	svc := &mockUserService{tokenManager: jwt.NewTokenManager("test-secret", "contactbook-api", 1)}

	h := NewProfileHandler(svc)
	r := gin.New()
	r.Use(withSession(&models.UserSession{UserID: 7, Username: "anasilva", Email: "ana@example.com"}))
	r.POST("/profile", h.UpdateProfile)

	svc.On("UpdateProfile", mock.Anything, int64(7), mock.Anything).
		Return(&models.User{ID: 7, Username: "anasilva", Email: "ana@example.com", LastName: "Souza"}, nil).Once()

	w := serve(r, jsonRequest(http.MethodPost, "/profile", `{"first_name":"Ana","last_name":"Souza","username":"anasilva","email":"ana@example.com"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, sessionCookie(w))
}
