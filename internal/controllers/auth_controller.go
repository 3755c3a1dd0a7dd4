package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tour_ops/internal/middleware"
	"tour_ops/internal/models"
	"tour_ops/internal/services"
)

type AuthController struct {
	auth   *services.AuthService
	tokens *middleware.TokenIssuer
}

func NewAuthController(auth *services.AuthService, tokens *middleware.TokenIssuer) *AuthController {
	return &AuthController{auth: auth, tokens: tokens}
}

type signupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

func (ac *AuthController) Signup(c *gin.Context) {
	var input signupInput
	if !bind(c, "Signup", &input) {
		return
	}
	user, err := ac.auth.Signup(c.Request.Context(), input.Name, input.Email, input.Password, input.Phone)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		respondError(c, "Signup", err)
		return
	}
	ac.issue(c, http.StatusCreated, user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, "Login", &body) {
		return
	}
	user, err := ac.auth.Login(c.Request.Context(), body.Email, body.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, "Login", err)
		return
	}
	ac.issue(c, http.StatusOK, user)
}

func (ac *AuthController) issue(c *gin.Context, status int, user *models.User) {
	token, err := ac.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(status, gin.H{"token": token, "user": user})
}
