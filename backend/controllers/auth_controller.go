package controllers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"
)

type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer services.Mailer
	Logger *log.Logger
}

func NewAuthController(db *gorm.DB, cfg *config.Config, mailer services.Mailer, logger *log.Logger) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Mailer: mailer, Logger: logger}
}

type RegisterInput struct {
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=8"`
	PasswordConfirm    string `json:"password_confirm" validate:"required,eqfield=Password"`
	RoleName           string `json:"role_name" validate:"omitempty,oneof=Admin Teacher Student"`
	FirstName          string `json:"first_name" validate:"max=50"`
	LastName           string `json:"last_name" validate:"max=50"`
	Avatar             string `json:"avatar" validate:"omitempty,url"`
	PhoneNumber        string `json:"phone_number" validate:"max=20"`
	Country            string `json:"country" validate:"max=100"`
	LanguagePreference string `json:"language_preference"`
	Timezone           string `json:"timezone"`
}

// Register creates the user, its profile and an email verification token in
// one transaction, then sends the verification mail outside of it.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	if input.RoleName == "" {
		input.RoleName = models.RoleStudent
	}
	if input.LanguagePreference == "" {
		input.LanguagePreference = "en"
	}
	if input.Timezone == "" {
		input.Timezone = "UTC"
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.Conflict(c, "Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	var verification models.EmailVerificationToken

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile := models.UserProfile{
			UserID:             user.ID,
			FirstName:          input.FirstName,
			LastName:           input.LastName,
			Avatar:             input.Avatar,
			PhoneNumber:        input.PhoneNumber,
			Country:            input.Country,
			LanguagePreference: input.LanguagePreference,
			Timezone:           input.Timezone,
		}

		var role models.Role
		if err := tx.Where("name = ? AND active = ?", input.RoleName, true).First(&role).Error; err == nil {
			profile.RoleID = &role.ID
		}

		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		verification = models.EmailVerificationToken{
			UserID: user.ID,
			Token:  uuid.NewString(),
		}
		return tx.Create(&verification).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	ac.sendVerificationMail(user.Email, verification.Token)

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return utils.Created(c, fiber.Map{
		"user_id": user.ID,
		"email":   user.Email,
		"token":   token,
	})
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var user models.User
	if err := ac.DB.Preload("Profile.Role").Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}
	if !user.IsActive {
		return utils.Unauthorized(c, "User account is disabled")
	}

	now := time.Now()
	ac.DB.Model(&user).Update("last_login", now)

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"profile": fiber.Map{
				"first_name": user.Profile.FirstName,
				"last_name":  user.Profile.LastName,
				"role_name":  user.Profile.RoleName(),
			},
		},
	})
}

// Logout is a client-side token discard; tokens are stateless.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

// Refresh re-mints an access token from a still-valid one.
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.BadRequest(c, "Invalid token")
	}

	token, err := utils.GenerateJWTToken(userID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	return c.JSON(fiber.Map{"token": token})
}

type ChangePasswordInput struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return utils.BadRequest(c, "Old password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}
	if err := ac.DB.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		return utils.InternalServerError(c, "Could not update password")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
		"token":   token,
	})
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a fresh reset token. Old tokens stay in place; each
// carries its own used flag, so several unexpired tokens may coexist.
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var input ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return utils.ValidationError(c, map[string]string{"email": "User with this email does not exist"})
	}

	reset := models.PasswordResetToken{
		UserID: user.ID,
		Token:  uuid.NewString(),
	}
	if err := ac.DB.Create(&reset).Error; err != nil {
		return utils.InternalServerError(c, "Could not create reset token")
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", ac.Cfg.FrontendURL, reset.Token)
	if err := ac.Mailer.Send(user.Email, "Password Reset Request",
		"Click here to reset your password: "+resetURL); err != nil {
		ac.Logger.Printf("password reset mail to %s failed: %v", user.Email, err)
	}

	return c.JSON(fiber.Map{"message": "Password reset email sent"})
}

type ResetPasswordInput struct {
	Token              string `json:"token" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// ResetPassword consumes a reset token. Used tokens are flagged, never
// deleted, so the table doubles as an audit trail.
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var input ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var reset models.PasswordResetToken
	if err := ac.DB.Where("token = ?", input.Token).First(&reset).Error; err != nil {
		return utils.BadRequest(c, "Invalid token")
	}
	if reset.Used {
		return utils.BadRequest(c, "Token has already been used")
	}
	if reset.IsExpired(time.Now()) {
		return utils.BadRequest(c, "Token has expired")
	}

	var user models.User
	if err := ac.DB.First(&user, reset.UserID).Error; err != nil {
		return utils.BadRequest(c, "Invalid token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used", true).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not reset password")
	}

	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

type VerifyEmailInput struct {
	Token string `json:"token" validate:"required"`
}

// VerifyEmail consumes a verification token; success deletes the row.
func (ac *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var input VerifyEmailInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var verification models.EmailVerificationToken
	if err := ac.DB.Where("token = ?", input.Token).First(&verification).Error; err != nil {
		return utils.BadRequest(c, "Invalid token")
	}
	if verification.IsExpired(time.Now()) {
		return utils.BadRequest(c, "Token has expired")
	}

	if err := ac.DB.Unscoped().Delete(&verification).Error; err != nil {
		return utils.InternalServerError(c, "Could not verify email")
	}

	return c.JSON(fiber.Map{"message": "Email verified successfully"})
}

// ResendVerification replaces any previous verification token with a fresh one.
func (ac *AuthController) ResendVerification(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	verification := models.EmailVerificationToken{
		UserID: user.ID,
		Token:  uuid.NewString(),
	}
	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.EmailVerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&verification).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create verification token")
	}

	ac.sendVerificationMail(user.Email, verification.Token)

	return c.JSON(fiber.Map{"message": "Verification email sent"})
}

func (ac *AuthController) sendVerificationMail(email, token string) {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", ac.Cfg.FrontendURL, token)
	if err := ac.Mailer.Send(email, "Email Verification",
		"Click here to verify your email: "+verifyURL); err != nil {
		ac.Logger.Printf("verification mail to %s failed: %v", email, err)
	}
}
