package service

import (
	"context"
	"log/slog"
	"strings"

	"todo-service/internal/access"
	"todo-service/internal/apperr"
	"todo-service/internal/model"
	"todo-service/internal/repository"
)

type UserTodos struct {
	User  *model.User  `json:"user"`
	Todos []model.Todo `json:"todos"`
}

// AdminService reads any user's todos. Every method re-checks the role gate
// on the caller it is given and never applies owner checks.
type AdminService interface {
	ListForUser(ctx context.Context, caller access.Caller, userID int64) (*UserTodos, error)
	ListForUserByStatus(ctx context.Context, caller access.Caller, userID int64, status string) (*UserTodos, error)
	ListForUserByPriority(ctx context.Context, caller access.Caller, userID int64, priority string) (*UserTodos, error)
	ListForUserByCategory(ctx context.Context, caller access.Caller, userID int64, categoryID int64) (*UserTodos, error)
	SearchForUser(ctx context.Context, caller access.Caller, userID int64, keyword string) (*UserTodos, error)
}

type adminService struct {
	userRepo repository.UserRepository
	todoRepo repository.TodoRepository
}

func NewAdminService(userRepo repository.UserRepository, todoRepo repository.TodoRepository) AdminService {
	return &adminService{userRepo: userRepo, todoRepo: todoRepo}
}

func (s *adminService) ListForUser(ctx context.Context, caller access.Caller, userID int64) (*UserTodos, error) {
	return s.forUser(ctx, "ListForUser", caller, userID, func(target *model.User) ([]model.Todo, error) {
		return s.todoRepo.ListByOwner(ctx, target.ID)
	})
}

func (s *adminService) ListForUserByStatus(ctx context.Context, caller access.Caller, userID int64, status string) (*UserTodos, error) {
	return s.forUser(ctx, "ListForUserByStatus", caller, userID, func(target *model.User) ([]model.Todo, error) {
		st, ok := model.ParseStatus(status)
		if !ok {
			return nil, apperr.InvalidArgument(MsgInvalidStatus)
		}
		return s.todoRepo.ListByOwnerAndStatus(ctx, target.ID, st)
	})
}

func (s *adminService) ListForUserByPriority(ctx context.Context, caller access.Caller, userID int64, priority string) (*UserTodos, error) {
	return s.forUser(ctx, "ListForUserByPriority", caller, userID, func(target *model.User) ([]model.Todo, error) {
		p, ok := model.ParsePriority(priority)
		if !ok {
			return nil, apperr.InvalidArgument(MsgInvalidPriority)
		}
		return s.todoRepo.ListByOwnerAndPriority(ctx, target.ID, p)
	})
}

func (s *adminService) ListForUserByCategory(ctx context.Context, caller access.Caller, userID int64, categoryID int64) (*UserTodos, error) {
	return s.forUser(ctx, "ListForUserByCategory", caller, userID, func(target *model.User) ([]model.Todo, error) {
		return s.todoRepo.ListByOwnerAndCategory(ctx, target.ID, categoryID)
	})
}

func (s *adminService) SearchForUser(ctx context.Context, caller access.Caller, userID int64, keyword string) (*UserTodos, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperr.InvalidArgument(MsgKeywordRequired)
	}

	return s.forUser(ctx, "SearchForUser", caller, userID, func(target *model.User) ([]model.Todo, error) {
		return s.todoRepo.SearchByOwnerAndKeyword(ctx, target.ID, keyword)
	})
}

// forUser checks the role gate, resolves the target user and runs query
// scoped to that user.
func (s *adminService) forUser(ctx context.Context, op string, caller access.Caller, userID int64, query func(target *model.User) ([]model.Todo, error)) (*UserTodos, error) {
	attrs := []any{slog.Int64("admin_id", caller.ID), slog.Int64("target_user_id", userID)}

	if err := access.RequireAdmin(&caller); err != nil {
		logFailure(ctx, op, err, attrs...)
		return nil, err
	}

	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logFailure(ctx, op, err, attrs...)
		return nil, err
	}

	todos, err := query(target)
	if err != nil {
		logFailure(ctx, op, err, attrs...)
		return nil, err
	}

	return &UserTodos{User: target, Todos: todos}, nil
}
