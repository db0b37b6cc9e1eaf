package acceptance

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/teamflow/auth-service/internal/dto"
)

func (s *Suite) postJSON(path string, payload any) *http.Response {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	resp, err := http.Post(s.BaseURL+path, "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	return resp
}

func (s *Suite) signup(email, username, password string) dto.AuthResponse {
	resp := s.postJSON("/api/v1/auth/signup", dto.SignupRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	defer resp.Body.Close()

	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Signup should succeed")

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	return authResp
}

func (s *Suite) TestSignup_Success() {
	resp := s.postJSON("/api/v1/auth/signup", dto.SignupRequest{
		Email:    "test@example.com",
		Username: "testuser",
		Password: "Passw0rd!23",
		Name:     "Test User",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	s.NotEmpty(authResp.Token)
	s.Equal("Bearer", authResp.TokenType)
	s.NotZero(authResp.ExpiresIn)
	s.Equal("test@example.com", authResp.User.Email)
	s.Equal("testuser", authResp.User.Username)
	s.False(authResp.User.EmailVerified)
	s.NotZero(authResp.User.ID)
}

func (s *Suite) TestSignup_DuplicateEmail() {
	s.signup("duplicate@example.com", "original", "Passw0rd!23")

	resp := s.postJSON("/api/v1/auth/signup", dto.SignupRequest{
		Email:    "duplicate@example.com",
		Username: "someoneelse",
		Password: "Passw0rd!23",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&errResp))
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestSignup_WeakPassword() {
	resp := s.postJSON("/api/v1/auth/signup", dto.SignupRequest{
		Email:    "weak@example.com",
		Username: "weakuser",
		Password: "password",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.signup("login@example.com", "loginuser", "Passw0rd!23")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		EmailOrUsername: "login@example.com",
		Password:        "Passw0rd!23",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	s.NotEmpty(authResp.Token)
	s.Equal("login@example.com", authResp.User.Email)
}

func (s *Suite) TestLogin_ByUsername() {
	s.signup("byname@example.com", "bynameuser", "Passw0rd!23")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		EmailOrUsername: "bynameuser",
		Password:        "Passw0rd!23",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestLogin_InvalidCredentials() {
	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		EmailOrUsername: "nonexistent@example.com",
		Password:        "Wrong!Pass1",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogin_LockoutAfterRepeatedFailures() {
	s.signup("locked@example.com", "lockeduser", "Passw0rd!23")

	for i := 0; i < 3; i++ {
		resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
			EmailOrUsername: "locked@example.com",
			Password:        "Wrong!Pass1",
		})
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	}

	// Even the correct password is rejected once locked.
	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		EmailOrUsername: "locked@example.com",
		Password:        "Passw0rd!23",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.NotEmpty(resp.Header.Get("Retry-After"))

	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&errResp))
	s.NotZero(errResp.RetryAfterMinutes)
}

func (s *Suite) TestLogout_RevokesToken() {
	authResp := s.signup("logout@example.com", "logoutuser", "Passw0rd!23")

	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/api/v1/auth/logout", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+authResp.Token)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// The revoked token no longer authenticates.
	meReq, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/auth/me", nil)
	s.Require().NoError(err)
	meReq.Header.Set("Authorization", "Bearer "+authResp.Token)

	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusUnauthorized, meResp.StatusCode)
}

func (s *Suite) TestLogout_WithoutToken() {
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/logout", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	// Logout succeeds even with nothing to revoke.
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestGetMe() {
	authResp := s.signup("me@example.com", "meuser", "Passw0rd!23")

	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/auth/me", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+authResp.Token)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&user))
	s.Equal("me@example.com", user.Email)
	s.Equal("en", user.PreferredLocale)
}

func (s *Suite) TestGetMe_Unauthorized() {
	resp, err := http.Get(s.BaseURL + "/api/v1/auth/me")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestUpdateLocale() {
	authResp := s.signup("locale@example.com", "localeuser", "Passw0rd!23")

	body, _ := json.Marshal(dto.UpdateLocaleRequest{Locale: "uk"})
	req, err := http.NewRequest(http.MethodPut, s.BaseURL+"/api/v1/auth/me/locale", bytes.NewBuffer(body))
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+authResp.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&user))
	s.Equal("uk", user.PreferredLocale)
}

func (s *Suite) TestVerifyEmail() {
	authResp := s.signup("verify@example.com", "verifyuser", "Passw0rd!23")

	// The verification token goes out via email in production; the test
	// reads it straight from the database.
	var token string
	err := s.Postgres.DB.QueryRow(
		"SELECT token FROM email_verifications WHERE user_id = $1", authResp.User.ID,
	).Scan(&token)
	s.Require().NoError(err)

	resp := s.postJSON("/api/v1/auth/verify-email", dto.VerifyEmailRequest{Token: token})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&user))
	s.True(user.EmailVerified)

	// Second use of the same token is rejected.
	resp2 := s.postJSON("/api/v1/auth/verify-email", dto.VerifyEmailRequest{Token: token})
	defer resp2.Body.Close()
	s.Equal(http.StatusBadRequest, resp2.StatusCode)
}

func (s *Suite) TestForgotPassword_AlwaysOK() {
	s.signup("forgot@example.com", "forgotuser", "Passw0rd!23")

	known := s.postJSON("/api/v1/auth/forgot-password", dto.ForgotPasswordRequest{
		Email: "forgot@example.com",
	})
	defer known.Body.Close()

	unknown := s.postJSON("/api/v1/auth/forgot-password", dto.ForgotPasswordRequest{
		Email: "stranger@example.com",
	})
	defer unknown.Body.Close()

	// Known and unknown emails are indistinguishable to the caller.
	s.Equal(http.StatusOK, known.StatusCode)
	s.Equal(http.StatusOK, unknown.StatusCode)
}

func (s *Suite) TestResetPassword_InvalidToken() {
	resp := s.postJSON("/api/v1/auth/reset-password", dto.ResetPasswordRequest{
		Token:    "not-a-real-token",
		Password: "Fresh!Pass1",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
