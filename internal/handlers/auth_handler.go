package handlers

import (
	"log"

	"pasar/internal/middleware"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication and profiles.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", guard.Any(h.HandleLogout)...)

	router.Get("/me", guard.Any(h.HandleProfile)...)
	router.Put("/me", guard.Any(h.HandleUpdateProfile)...)
}

// RegisterRequest represents the request body for signup.
type RegisterRequest struct {
	Role      string `json:"role" validate:"required,oneof=USER VENDOR user vendor"`
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	StoreName string `json:"storeName" validate:"omitempty,max=150"`
}

// HandleRegister handles new user and vendor registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	role, _ := models.ParseRole(req.Role)

	account, err := h.authService.Register(c.UserContext(), services.Registration{
		Role:      role,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		StoreName: req.StoreName,
	})
	if err != nil {
		return fail(c, err, "Registration failed")
	}

	log.Printf("Registered %s account %s", account.Role, account.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account registered successfully",
		"account": account,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Role     string `json:"role" validate:"required,oneof=USER VENDOR user vendor"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	role, _ := models.ParseRole(req.Role)

	result, err := h.authService.Login(c.UserContext(), role, req.Email, req.Password)
	if err != nil {
		return fail(c, err, "Login failed")
	}

	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"role":      result.Account.Role,
		"accountId": result.Account.ID,
	})
}

// HandleLogout revokes the presented token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.CurrentSession(c)); err != nil {
		return fail(c, err, "Logout failed")
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleProfile returns the profile of the authenticated account.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	account, err := h.authService.Profile(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return fail(c, err, "Could not retrieve profile")
	}
	return c.JSON(account)
}

// ProfileRequest represents the editable profile fields; omitted fields are unchanged.
type ProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	StoreName *string `json:"storeName" validate:"omitempty,min=1,max=150"`
}

// HandleUpdateProfile updates the profile of the authenticated account.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	account, err := h.authService.UpdateProfile(c.UserContext(), middleware.CurrentSession(c), repositories.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		StoreName: req.StoreName,
	})
	if err != nil {
		return fail(c, err, "Could not update profile")
	}
	return c.JSON(account)
}
