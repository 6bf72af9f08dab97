package api

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"todo-service/internal/apperr"
	"todo-service/internal/model"
	"todo-service/internal/service"
)

type TodoHandler struct {
	todoService service.TodoService
	validate    *validator.Validate
}

func NewTodoHandler(todoService service.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		validate:    validator.New(),
	}
}

type CreateTodoRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in_progress done"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
}

// UpdateTodoRequest has no owner field; ownership never changes.
type UpdateTodoRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in_progress done"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
}

type AttachmentURLRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx, name, message string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidArgument(message)
	}
	return id, nil
}

func (h *TodoHandler) List(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	todos, err := h.todoService.ListMine(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Todos retrieved successfully", todos)
}

func (h *TodoHandler) Get(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := parseID(c, "id", "Invalid todo ID")
	if err != nil {
		return respondError(c, err)
	}

	todo, err := h.todoService.GetMine(c.UserContext(), caller, id)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Todo retrieved successfully", todo)
}

func (h *TodoHandler) Create(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	var request CreateTodoRequest
	if err := c.BodyParser(&request); err != nil {
		return respond(c, fiber.StatusBadRequest, msgCannotParse, nil)
	}
	request.Title = strings.TrimSpace(request.Title)

	if err := h.validate.Struct(&request); err != nil {
		return respondInvalid(c, err)
	}

	todo, err := h.todoService.Create(c.UserContext(), caller, service.CreateTodoInput{
		Title:       request.Title,
		Description: request.Description,
		Status:      model.Status(request.Status),
		Priority:    model.Priority(request.Priority),
		CategoryID:  request.CategoryID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusCreated, "Todo created successfully", todo)
}

func (h *TodoHandler) Update(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := parseID(c, "id", "Invalid todo ID")
	if err != nil {
		return respondError(c, err)
	}

	var request UpdateTodoRequest
	if err := c.BodyParser(&request); err != nil {
		return respond(c, fiber.StatusBadRequest, msgCannotParse, nil)
	}
	if request.Title != nil {
		trimmed := strings.TrimSpace(*request.Title)
		request.Title = &trimmed
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondInvalid(c, err)
	}

	update, err := request.toUpdate()
	if err != nil {
		return respondError(c, err)
	}

	todo, err := h.todoService.Update(c.UserContext(), caller, id, update)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Todo updated successfully", todo)
}

func (r UpdateTodoRequest) toUpdate() (model.TodoUpdate, error) {
	update := model.TodoUpdate{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
	}
	if r.Status != nil {
		st, ok := model.ParseStatus(*r.Status)
		if !ok {
			return update, apperr.InvalidArgument(service.MsgInvalidStatus)
		}
		update.Status = &st
	}
	if r.Priority != nil {
		p, ok := model.ParsePriority(*r.Priority)
		if !ok {
			return update, apperr.InvalidArgument(service.MsgInvalidPriority)
		}
		update.Priority = &p
	}
	return update, nil
}

func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := parseID(c, "id", "Invalid todo ID")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.todoService.Delete(c.UserContext(), caller, id); err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Todo deleted successfully", fiber.Map{"id": id})
}

func (h *TodoHandler) ByStatus(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	todos, err := h.todoService.ListByStatus(c.UserContext(), caller, c.Params("status"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Todos by status retrieved successfully", todos)
}

func (h *TodoHandler) ByPriority(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	todos, err := h.todoService.ListByPriority(c.UserContext(), caller, c.Params("priority"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Todos by priority retrieved successfully", todos)
}

func (h *TodoHandler) ByCategory(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	categoryID, err := parseID(c, "categoryId", "Invalid category ID")
	if err != nil {
		return respondError(c, err)
	}

	todos, err := h.todoService.ListByCategory(c.UserContext(), caller, categoryID)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Todos by category retrieved successfully", todos)
}

func (h *TodoHandler) Search(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	todos, err := h.todoService.Search(c.UserContext(), caller, c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Todos search results", todos)
}

func (h *TodoHandler) AttachmentURL(c *fiber.Ctx) error {
	caller, err := mustCaller(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := parseID(c, "id", "Invalid todo ID")
	if err != nil {
		return respondError(c, err)
	}

	var request AttachmentURLRequest
	if err := c.BodyParser(&request); err != nil {
		return respond(c, fiber.StatusBadRequest, msgCannotParse, nil)
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondInvalid(c, err)
	}

	upload, err := h.todoService.AttachmentUploadURL(c.UserContext(), caller, id, request.FileName)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Upload URL generated successfully", upload)
}

func (h *TodoHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.todoService.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Categories retrieved successfully", categories)
}
