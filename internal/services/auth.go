package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tour_ops/internal/models"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a
// wrong password; the two are not distinguished.
var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLength = 8

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

func (s *AuthService) Signup(ctx context.Context, name, email, password, phone string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, invalid("email", "is not a valid address")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", "must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{Name: strings.TrimSpace(name), Email: email, Password: string(hash), Phone: phone}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storageErr("signup", "email", email, err)
	}
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageErr("login", "user", "", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
