package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	clientURL   string
}

func NewAuthHandler(authService services.AuthService, clientURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		clientURL:   strings.TrimRight(clientURL, "/"),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req validators.UserRegistrationRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateUserRegistration(&req) }) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &services.RegisterRequest{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "User registered successfully", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req validators.UserLoginRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateUserLogin(&req) }) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &services.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

// GoogleLogin redirects the browser to the consent screen.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	authURL, err := h.authService.GoogleAuthURL(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback finishes the code exchange and hands the token to the client app.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		utils.BadRequestResponse(c, "Google sign-in was cancelled: "+reason)
		return
	}

	response, err := h.authService.GoogleCallback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if h.clientURL == "" {
		utils.SuccessResponse(c, "Login successful", response)
		return
	}

	query := url.Values{}
	query.Set("token", response.Token.AccessToken)
	c.Redirect(http.StatusTemporaryRedirect, h.clientURL+"/auth-success?"+query.Encode())
}
