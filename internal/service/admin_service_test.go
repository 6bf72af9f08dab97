package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-service/internal/access"
	"todo-service/internal/apperr"
	"todo-service/internal/model"
	"todo-service/internal/repository"
	"todo-service/internal/repository/memory"
	"todo-service/internal/service"
)

func newAdminFixture(t *testing.T) (service.AdminService, *memory.TodoRepository, model.User, model.User) {
	t.Helper()

	users := memory.NewUserRepository()
	todos := memory.NewTodoRepository()

	admin := users.SeedUser("admin@example.com", model.RoleAdmin, "")
	member := users.SeedUser("member@example.com", model.RoleMember, "")

	return service.NewAdminService(users, todos), todos, admin, member
}

func TestAdminListForUser(t *testing.T) {
	ctx := context.Background()
	svc, todos, admin, member := newAdminFixture(t)

	todos.Seed(model.Todo{UserID: member.ID, Title: "m1"})
	todos.Seed(model.Todo{UserID: admin.ID, Title: "a1"})
	todos.Seed(model.Todo{UserID: member.ID, Title: "m2"})

	result, err := svc.ListForUser(ctx, access.Caller{ID: admin.ID, Role: model.RoleAdmin}, member.ID)
	require.NoError(t, err)

	assert.Equal(t, member.ID, result.User.ID)
	require.Len(t, result.Todos, 2)
	for _, todo := range result.Todos {
		assert.Equal(t, member.ID, todo.UserID)
	}
}

func TestAdminRoleGate(t *testing.T) {
	ctx := context.Background()
	svc, todos, _, member := newAdminFixture(t)
	todos.Seed(model.Todo{UserID: member.ID, Title: "m1"})

	tests := []struct {
		name   string
		caller access.Caller
		kind   apperr.Kind
	}{
		{"member", access.Caller{ID: member.ID, Role: model.RoleMember}, apperr.KindForbidden},
		{"unknown role treated as member", access.Caller{ID: member.ID, Role: model.ParseRole("superuser")}, apperr.KindForbidden},
		{"anonymous", access.Caller{}, apperr.KindUnauthenticated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := []func() (*service.UserTodos, error){
				func() (*service.UserTodos, error) { return svc.ListForUser(ctx, tc.caller, member.ID) },
				func() (*service.UserTodos, error) { return svc.ListForUserByStatus(ctx, tc.caller, member.ID, "pending") },
				func() (*service.UserTodos, error) { return svc.ListForUserByPriority(ctx, tc.caller, member.ID, "medium") },
				func() (*service.UserTodos, error) { return svc.ListForUserByCategory(ctx, tc.caller, member.ID, 1) },
				func() (*service.UserTodos, error) { return svc.SearchForUser(ctx, tc.caller, member.ID, "m") },
			}
			for _, call := range calls {
				result, err := call()
				assert.Nil(t, result)
				assert.True(t, apperr.IsKind(err, tc.kind), "got %v", err)
			}
		})
	}
}

func TestAdminForbiddenMessage(t *testing.T) {
	svc, _, _, member := newAdminFixture(t)

	_, err := svc.ListForUser(context.Background(), access.Caller{ID: member.ID, Role: model.RoleMember}, member.ID)
	assert.Equal(t, access.MsgAdminRequired, apperr.MessageOf(err, ""))
}

func TestAdminUnknownUser(t *testing.T) {
	svc, _, admin, _ := newAdminFixture(t)
	caller := access.Caller{ID: admin.ID, Role: model.RoleAdmin}

	_, err := svc.ListForUser(context.Background(), caller, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, repository.MsgUserNotFound, apperr.MessageOf(err, ""))
}

func TestAdminFilters(t *testing.T) {
	ctx := context.Background()
	svc, todos, admin, member := newAdminFixture(t)
	caller := access.Caller{ID: admin.ID, Role: model.RoleAdmin}
	cat := int64(2)

	todos.Seed(model.Todo{UserID: member.ID, Title: "Tax return", Status: model.StatusInProgress, Priority: model.PriorityHigh, CategoryID: &cat})
	todos.Seed(model.Todo{UserID: member.ID, Title: "groceries", Status: model.StatusPending, Priority: model.PriorityLow})
	todos.Seed(model.Todo{UserID: admin.ID, Title: "tax audit", Status: model.StatusInProgress, Priority: model.PriorityHigh, CategoryID: &cat})

	byStatus, err := svc.ListForUserByStatus(ctx, caller, member.ID, "in_progress")
	require.NoError(t, err)
	require.Len(t, byStatus.Todos, 1)
	assert.Equal(t, "Tax return", byStatus.Todos[0].Title)

	byPriority, err := svc.ListForUserByPriority(ctx, caller, member.ID, "low")
	require.NoError(t, err)
	require.Len(t, byPriority.Todos, 1)
	assert.Equal(t, "groceries", byPriority.Todos[0].Title)

	byCategory, err := svc.ListForUserByCategory(ctx, caller, member.ID, cat)
	require.NoError(t, err)
	require.Len(t, byCategory.Todos, 1)

	found, err := svc.SearchForUser(ctx, caller, member.ID, "TAX")
	require.NoError(t, err)
	require.Len(t, found.Todos, 1)
	assert.Equal(t, member.ID, found.User.ID)

	_, err = svc.ListForUserByStatus(ctx, caller, member.ID, "bogus")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = svc.ListForUserByPriority(ctx, caller, member.ID, "bogus")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestAdminSearchChecksKeywordFirst(t *testing.T) {
	svc, _, admin, _ := newAdminFixture(t)
	caller := access.Caller{ID: admin.ID, Role: model.RoleAdmin}

	_, err := svc.SearchForUser(context.Background(), caller, 999, " ")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
	assert.Equal(t, service.MsgKeywordRequired, apperr.MessageOf(err, ""))
}
