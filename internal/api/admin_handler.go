package api

import (
	"github.com/gofiber/fiber/v2"

	"todo-service/internal/service"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) UserTodos(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	userID, err := parseID(c, "userId", "Invalid user ID")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.adminService.ListForUser(c.UserContext(), caller, userID)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "User todos retrieved successfully", result)
}

func (h *AdminHandler) UserTodosByStatus(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	userID, err := parseID(c, "userId", "Invalid user ID")
	if err != nil {
		return respondError(c, err)
	}

	status := c.Params("status")
	result, err := h.adminService.ListForUserByStatus(c.UserContext(), caller, userID, status)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "User's "+status+" todos retrieved successfully", result)
}

func (h *AdminHandler) UserTodosByPriority(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	userID, err := parseID(c, "userId", "Invalid user ID")
	if err != nil {
		return respondError(c, err)
	}

	priority := c.Params("priority")
	result, err := h.adminService.ListForUserByPriority(c.UserContext(), caller, userID, priority)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "User's "+priority+" priority todos retrieved successfully", result)
}

func (h *AdminHandler) UserTodosByCategory(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	userID, err := parseID(c, "userId", "Invalid user ID")
	if err != nil {
		return respondError(c, err)
	}

	categoryID, err := parseID(c, "categoryId", "Invalid category ID")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.adminService.ListForUserByCategory(c.UserContext(), caller, userID, categoryID)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "User's todos by category retrieved successfully", result)
}

func (h *AdminHandler) SearchUserTodos(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	userID, err := parseID(c, "userId", "Invalid user ID")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.adminService.SearchForUser(c.UserContext(), caller, userID, c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "User's todos search results", result)
}
