package service

import (
	"context"
	"log/slog"
	"strings"

	"todo-service/internal/access"
	"todo-service/internal/apperr"
	"todo-service/internal/events"
	"todo-service/internal/model"
	"todo-service/internal/repository"
	"todo-service/internal/s3"
)

const (
	MsgKeywordRequired    = "Search keyword is required"
	MsgInvalidStatus      = "Invalid status."
	MsgInvalidPriority    = "Invalid priority."
	MsgCallerMissing      = "User ID not found. Authentication may not be working correctly."
	MsgUploadsUnavailable = "Attachment uploads are not configured."
)

type CreateTodoInput struct {
	Title       string
	Description *string
	Status      model.Status
	Priority    model.Priority
	CategoryID  *int64
}

type AttachmentUpload struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}

// UploadURLSigner presigns object uploads. *s3.FilePresigner implements it.
type UploadURLSigner interface {
	GeneratePresignedUploadURL(ctx context.Context, objectKey string) (string, error)
}

type TodoService interface {
	ListMine(ctx context.Context, caller access.Caller) ([]model.Todo, error)
	GetMine(ctx context.Context, caller access.Caller, id int64) (*model.Todo, error)
	Create(ctx context.Context, caller access.Caller, input CreateTodoInput) (*model.Todo, error)
	Update(ctx context.Context, caller access.Caller, id int64, update model.TodoUpdate) (*model.Todo, error)
	Delete(ctx context.Context, caller access.Caller, id int64) error
	ListByStatus(ctx context.Context, caller access.Caller, status string) ([]model.Todo, error)
	ListByPriority(ctx context.Context, caller access.Caller, priority string) ([]model.Todo, error)
	ListByCategory(ctx context.Context, caller access.Caller, categoryID int64) ([]model.Todo, error)
	Search(ctx context.Context, caller access.Caller, keyword string) ([]model.Todo, error)
	AttachmentUploadURL(ctx context.Context, caller access.Caller, id int64, fileName string) (*AttachmentUpload, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type todoService struct {
	todoRepo     repository.TodoRepository
	categoryRepo repository.CategoryRepository
	publisher    events.EventPublisher
	signer       UploadURLSigner
}

// NewTodoService wires the todo use cases. signer may be nil, in which case
// attachment uploads report KindUnavailable.
func NewTodoService(todoRepo repository.TodoRepository, categoryRepo repository.CategoryRepository, pub events.EventPublisher, signer UploadURLSigner) TodoService {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &todoService{
		todoRepo:     todoRepo,
		categoryRepo: categoryRepo,
		publisher:    pub,
		signer:       signer,
	}
}

func (s *todoService) ListMine(ctx context.Context, caller access.Caller) ([]model.Todo, error) {
	todos, err := s.todoRepo.ListByOwner(ctx, caller.ID)
	if err != nil {
		logFailure(ctx, "ListMine", err, slog.Int64("user_id", caller.ID))
		return nil, err
	}
	return todos, nil
}

func (s *todoService) GetMine(ctx context.Context, caller access.Caller, id int64) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err == nil {
		err = access.Authorize(todo, caller, access.CapOwnerRead)
	}
	if err != nil {
		logFailure(ctx, "GetMine", err, slog.Int64("todo_id", id), slog.Int64("user_id", caller.ID))
		return nil, err
	}
	return todo, nil
}

func (s *todoService) Create(ctx context.Context, caller access.Caller, input CreateTodoInput) (*model.Todo, error) {
	if caller.ID == 0 {
		err := apperr.Unauthenticated(MsgCallerMissing)
		logFailure(ctx, "Create", err)
		return nil, err
	}

	slog.InfoContext(ctx, "Creating todo", slog.Int64("user_id", caller.ID))

	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		logFailure(ctx, "Create", err, slog.Int64("user_id", caller.ID))
		return nil, err
	}

	todo := &model.Todo{
		UserID:      caller.ID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		CategoryID:  input.CategoryID,
	}
	if todo.Status == "" {
		todo.Status = model.StatusPending
	}
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}

	var created *model.Todo
	err := s.todoRepo.WithTx(ctx, func(tx repository.TodoRepository) error {
		var err error
		created, err = tx.Create(ctx, todo)
		return err
	})
	if err != nil {
		logFailure(ctx, "Create", err, slog.Int64("user_id", caller.ID))
		return nil, err
	}

	s.publish(ctx, events.TodoCreated, created)

	return created, nil
}

func (s *todoService) Update(ctx context.Context, caller access.Caller, id int64, update model.TodoUpdate) (*model.Todo, error) {
	if err := s.ensureCategory(ctx, update.CategoryID); err != nil {
		logFailure(ctx, "Update", err, slog.Int64("todo_id", id), slog.Int64("user_id", caller.ID))
		return nil, err
	}

	var updated *model.Todo
	err := s.todoRepo.WithTx(ctx, func(tx repository.TodoRepository) error {
		todo, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(todo, caller, access.CapOwnerWrite); err != nil {
			return err
		}
		updated, err = tx.Update(ctx, id, update)
		return err
	})
	if err != nil {
		logFailure(ctx, "Update", err, slog.Int64("todo_id", id), slog.Int64("user_id", caller.ID))
		return nil, err
	}

	s.publish(ctx, events.TodoUpdated, updated)

	return updated, nil
}

func (s *todoService) Delete(ctx context.Context, caller access.Caller, id int64) error {
	var deleted *model.Todo
	err := s.todoRepo.WithTx(ctx, func(tx repository.TodoRepository) error {
		todo, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		slog.InfoContext(ctx, "Attempt to delete todo",
			slog.Int64("todo_id", id), slog.Int64("owner_id", todo.UserID), slog.Int64("user_id", caller.ID))

		if err := access.Authorize(todo, caller, access.CapOwnerWrite); err != nil {
			return err
		}
		if err := tx.Delete(ctx, id); err != nil {
			return err
		}
		deleted = todo
		return nil
	})
	if err != nil {
		logFailure(ctx, "Delete", err, slog.Int64("todo_id", id), slog.Int64("user_id", caller.ID))
		return err
	}

	s.publish(ctx, events.TodoDeleted, deleted)

	return nil
}

func (s *todoService) ListByStatus(ctx context.Context, caller access.Caller, status string) ([]model.Todo, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return nil, apperr.InvalidArgument(MsgInvalidStatus)
	}

	todos, err := s.todoRepo.ListByOwnerAndStatus(ctx, caller.ID, st)
	if err != nil {
		logFailure(ctx, "ListByStatus", err, slog.Int64("user_id", caller.ID), slog.String("status", status))
		return nil, err
	}
	return todos, nil
}

func (s *todoService) ListByPriority(ctx context.Context, caller access.Caller, priority string) ([]model.Todo, error) {
	p, ok := model.ParsePriority(priority)
	if !ok {
		return nil, apperr.InvalidArgument(MsgInvalidPriority)
	}

	todos, err := s.todoRepo.ListByOwnerAndPriority(ctx, caller.ID, p)
	if err != nil {
		logFailure(ctx, "ListByPriority", err, slog.Int64("user_id", caller.ID), slog.String("priority", priority))
		return nil, err
	}
	return todos, nil
}

func (s *todoService) ListByCategory(ctx context.Context, caller access.Caller, categoryID int64) ([]model.Todo, error) {
	todos, err := s.todoRepo.ListByOwnerAndCategory(ctx, caller.ID, categoryID)
	if err != nil {
		logFailure(ctx, "ListByCategory", err, slog.Int64("user_id", caller.ID), slog.Int64("category_id", categoryID))
		return nil, err
	}
	return todos, nil
}

func (s *todoService) Search(ctx context.Context, caller access.Caller, keyword string) ([]model.Todo, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperr.InvalidArgument(MsgKeywordRequired)
	}

	todos, err := s.todoRepo.SearchByOwnerAndKeyword(ctx, caller.ID, keyword)
	if err != nil {
		logFailure(ctx, "Search", err, slog.Int64("user_id", caller.ID))
		return nil, err
	}
	return todos, nil
}

func (s *todoService) AttachmentUploadURL(ctx context.Context, caller access.Caller, id int64, fileName string) (*AttachmentUpload, error) {
	if s.signer == nil {
		return nil, apperr.Unavailable(MsgUploadsUnavailable)
	}

	todo, err := s.todoRepo.FindByID(ctx, id)
	if err == nil {
		err = access.Authorize(todo, caller, access.CapOwnerWrite)
	}
	if err != nil {
		logFailure(ctx, "AttachmentUploadURL", err, slog.Int64("todo_id", id), slog.Int64("user_id", caller.ID))
		return nil, err
	}

	key := s3.AttachmentKey(todo.UserID, todo.ID, fileName)
	url, err := s.signer.GeneratePresignedUploadURL(ctx, key)
	if err != nil {
		err = apperr.Wrap(apperr.KindInternal, "Could not generate upload URL", err)
		logFailure(ctx, "AttachmentUploadURL", err, slog.Int64("todo_id", id))
		return nil, err
	}

	return &AttachmentUpload{UploadURL: url, ObjectKey: key}, nil
}

func (s *todoService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		logFailure(ctx, "ListCategories", err)
		return nil, err
	}
	return categories, nil
}

func (s *todoService) ensureCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	exists, err := s.categoryRepo.Exists(ctx, *categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.InvalidArgument(repository.MsgCategoryNotFound)
	}
	return nil
}

// publish runs after the transaction committed; a failure here is logged and
// does not undo the write.
func (s *todoService) publish(ctx context.Context, eventType string, todo *model.Todo) {
	if err := s.publisher.PublishTodoEvent(ctx, eventType, todo); err != nil {
		slog.WarnContext(ctx, "Failed to publish todo event",
			slog.String("event_type", eventType), slog.Int64("todo_id", todo.ID), slog.String("error", err.Error()))
	}
}
