package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront/errs"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/otp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenTTL is the lifetime of an issued session token.
const TokenTTL = 7 * 24 * time.Hour

type otpRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code"`
}

// POST /api/auth/otp
func SendOTP(svc *otp.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		if err := svc.Send(c.Request.Context(), req.Phone); err != nil {
			if errs.IsValidation(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			zap.L().Error("failed to send otp", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send OTP"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
	}
}

// POST /api/auth/verify
//
// Signs the phone in, registering it on first use.
func VerifyOTP(db *gorm.DB, svc *otp.Service, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		if err := svc.Verify(c.Request.Context(), req.Phone, req.Code); err != nil {
			if errs.IsValidation(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			zap.L().Error("otp verification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify OTP"})
			return
		}

		user, created, err := findOrCreateUser(db, req.Phone)
		if err != nil {
			zap.L().Error("failed to load user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		token, err := IssueJWT(secret, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		zap.L().Info("user signed in", zap.String("user_id", user.ID), zap.Bool("created", created))
		c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: *user, Created: created})
	}
}

// findOrCreateUser returns the account for phone, creating it together with
// its empty cart when it does not exist.
func findOrCreateUser(db *gorm.DB, phone string) (*models.User, bool, error) {
	var user models.User
	err := db.Where("phone = ?", phone).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	id := uuid.NewString()
	user = models.User{
		ID:    id,
		Phone: phone,
		Name:  "User " + phone[len(phone)-4:],
		Cart:  models.Cart{UserID: id},
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// IssueJWT signs an HS256 session token carrying user_id.
func IssueJWT(secret, userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    "user",
		"exp":     time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
