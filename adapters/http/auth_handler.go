package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/khoahotran/devfolio/internal/application/usecase/auth"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

const (
	sessionKeyState    = "oauth_state"
	sessionKeyVerifier = "oauth_verifier"
	sessionKeyProvider = "oauth_provider"
)

type AuthHandler struct {
	loginUseCase  *auth.LoginUseCase
	logoutUseCase *auth.LogoutUseCase
	oauthUseCase  *auth.OAuthUseCase
	logger        logger.Logger
}

func NewAuthHandler(loginUC *auth.LoginUseCase, logoutUC *auth.LogoutUseCase, oauthUC *auth.OAuthUseCase, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		loginUseCase:  loginUC,
		logoutUseCase: logoutUC,
		oauthUseCase:  oauthUC,
		logger:        log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("email and password are required", err))
		return
	}

	s, err := h.loginUseCase.Execute(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSessionDTO(s, true))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	s, _ := GetSessionFromGinContext(c)
	if err := h.logoutUseCase.Execute(c.Request.Context(), s); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Session(c *gin.Context) {
	s, ok := GetSessionFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no active session", nil))
		return
	}
	c.JSON(http.StatusOK, ToSessionDTO(s, false))
}

// OAuthBegin redirects the popup to the provider. State and PKCE verifier ride in the cookie session.
func (h *AuthHandler) OAuthBegin(c *gin.Context) {
	provider := c.Param("provider")
	start, err := h.oauthUseCase.ExecuteBegin(c.Request.Context(), provider)
	if err != nil {
		c.Error(err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyState, start.State)
	session.Set(sessionKeyVerifier, start.Verifier)
	session.Set(sessionKeyProvider, provider)
	if err := session.Save(); err != nil {
		c.Error(apperror.NewInternal("failed to save sign-in state", err))
		return
	}
	c.Redirect(http.StatusFound, start.AuthURL)
}

func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")

	session := sessions.Default(c)
	expectedState, _ := session.Get(sessionKeyState).(string)
	verifier, _ := session.Get(sessionKeyVerifier).(string)
	startedWith, _ := session.Get(sessionKeyProvider).(string)
	session.Clear()
	_ = session.Save()

	if startedWith != provider {
		expectedState = ""
	}

	s, err := h.oauthUseCase.ExecuteCallback(c.Request.Context(), auth.CallbackInput{
		Provider:      provider,
		Code:          c.Query("code"),
		State:         c.Query("state"),
		Error:         c.Query("error"),
		ExpectedState: expectedState,
		Verifier:      verifier,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSessionDTO(s, true))
}
