package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/middleware"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/service"
)

type userResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	IsSuspended     bool     `json:"isSuspended"`
	IsEmailVerified bool     `json:"isEmailVerified"`
	CreatedAt       string   `json:"createdAt"`
	Phone           string   `json:"phone,omitempty"`
	Designation     string   `json:"designation,omitempty"`
	Agency          string   `json:"agency,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ResumeKey       string   `json:"resumeKey,omitempty"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            string(user.Role),
		IsSuspended:     user.IsSuspended,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toUserProfileResponse(user models.User, profile models.Profile) userResponse {
	resp := toUserResponse(user)
	resp.Phone = profile.Phone
	resp.Designation = profile.Designation
	resp.Agency = profile.Agency
	resp.Skills = profile.Skills
	resp.ResumeKey = profile.ResumeKey
	return resp
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type registerRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Phone       string   `json:"phone"`
	Designation string   `json:"designation"`
	Agency      string   `json:"agency"`
	Skills      []string `json:"skills"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Phone:       req.Phone,
		Designation: req.Designation,
		Agency:      req.Agency,
		Skills:      req.Skills,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	h.created(c, authResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "registered successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	h.ok(c, authResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "logged in successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh accepts the refresh token from the cookie or, for non-browser
// clients, the request body. The cookie wins when both are present.
func (h HandlerSet) Refresh(c *gin.Context) {
	token, _ := c.Cookie(h.cfg.Security.RefreshCookieName)
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		h.fail(c, apperrors.Unauthorized("refresh token is required"))
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		h.fail(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	h.ok(c, authResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "token refreshed")
}

// Logout clears the refresh cookie. With stateless refresh tokens there
// is nothing server-side to revoke.
func (h HandlerSet) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	h.ok(c, nil, "logged out successfully")
}

func (h HandlerSet) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	user, profile, err := h.authService.Me(c.Request.Context(), identity.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toUserProfileResponse(user, profile), "")
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

func (h HandlerSet) VerifyEmail(c *gin.Context) {
	// Token arrives in the body from the API client or as a query param
	// from the email link.
	var req verifyEmailRequest
	_ = c.ShouldBindJSON(&req)
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, nil, "email verified successfully")
}

func (h HandlerSet) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.cfg.Security.RefreshCookieName,
		token,
		int(h.cfg.Security.RefreshTokenTTL/time.Second),
		"/",
		"",
		h.cfg.IsProduction(),
		true,
	)
}

func (h HandlerSet) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.RefreshCookieName, "", -1, "/", "", h.cfg.IsProduction(), true)
}
