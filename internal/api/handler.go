package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"todo-service/internal/model"
	"todo-service/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest

	if err := c.BodyParser(&request); err != nil {
		return respond(c, fiber.StatusBadRequest, msgCannotParse, nil)
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondInvalid(c, err)
	}

	user, err := h.authService.RegisterUser(c.UserContext(), request.Email, request.Password, request.Name)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest

	if err := c.BodyParser(&request); err != nil {
		return respond(c, fiber.StatusBadRequest, msgCannotParse, nil)
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondInvalid(c, err)
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), request.Email, request.Password)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Login successful", LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.authService.LogoutUser(c.UserContext(), caller.ID); err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Successfully logged out", nil)
}
