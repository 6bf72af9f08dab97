// Package memory holds in-process repositories with the same semantics as
// the Postgres ones. Used by service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"todo-service/internal/apperr"
	"todo-service/internal/model"
	"todo-service/internal/repository"
)

type TodoRepository struct {
	mu     sync.Mutex
	todos  map[int64]model.Todo
	nextID int64
	err    error
}

var _ repository.TodoRepository = (*TodoRepository)(nil)

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{todos: map[int64]model.Todo{}, nextID: 1}
}

// FailWith makes every subsequent call return err. nil restores normal
// behaviour.
func (r *TodoRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Seed stores t with a fresh id and the usual defaults.
func (r *TodoRepository) Seed(t model.Todo) model.Todo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(t)
}

// Get reads a stored todo without going through the error injection.
func (r *TodoRepository) Get(id int64) (model.Todo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	return t, ok
}

func (r *TodoRepository) insert(t model.Todo) model.Todo {
	t.ID = r.nextID
	r.nextID++
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	r.todos[t.ID] = t
	return t
}

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	created := r.insert(*todo)
	return &created, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id int64) (*model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.todos[id]
	if !ok {
		return nil, apperr.NotFound(repository.MsgTodoNotFound)
	}
	return &t, nil
}

func (r *TodoRepository) filter(match func(model.Todo) bool) ([]model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	todos := []model.Todo{}
	for _, t := range r.todos {
		if match(t) {
			todos = append(todos, t)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })
	return todos, nil
}

func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Todo, error) {
	return r.filter(func(t model.Todo) bool { return t.UserID == ownerID })
}

func (r *TodoRepository) ListByOwnerAndStatus(ctx context.Context, ownerID int64, status model.Status) ([]model.Todo, error) {
	return r.filter(func(t model.Todo) bool { return t.UserID == ownerID && t.Status == status })
}

func (r *TodoRepository) ListByOwnerAndPriority(ctx context.Context, ownerID int64, priority model.Priority) ([]model.Todo, error) {
	return r.filter(func(t model.Todo) bool { return t.UserID == ownerID && t.Priority == priority })
}

func (r *TodoRepository) ListByOwnerAndCategory(ctx context.Context, ownerID int64, categoryID int64) ([]model.Todo, error) {
	return r.filter(func(t model.Todo) bool {
		return t.UserID == ownerID && t.CategoryID != nil && *t.CategoryID == categoryID
	})
}

func (r *TodoRepository) SearchByOwnerAndKeyword(ctx context.Context, ownerID int64, keyword string) ([]model.Todo, error) {
	kw := strings.ToLower(keyword)
	return r.filter(func(t model.Todo) bool {
		if t.UserID != ownerID {
			return false
		}
		if strings.Contains(strings.ToLower(t.Title), kw) {
			return true
		}
		return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), kw)
	})
}

func (r *TodoRepository) Update(ctx context.Context, id int64, update model.TodoUpdate) (*model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.todos[id]
	if !ok {
		return nil, apperr.NotFound(repository.MsgTodoNotFound)
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = update.Description
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	if update.CategoryID != nil {
		t.CategoryID = update.CategoryID
	}
	t.UpdatedAt = time.Now().UTC()
	r.todos[id] = t
	return &t, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.todos[id]; !ok {
		return apperr.NotFound(repository.MsgTodoNotFound)
	}
	delete(r.todos, id)
	return nil
}

// WithTx restores the previous contents when fn fails. Calls are not
// isolated from each other.
func (r *TodoRepository) WithTx(ctx context.Context, fn func(repo repository.TodoRepository) error) error {
	r.mu.Lock()
	snapshot := make(map[int64]model.Todo, len(r.todos))
	for id, t := range r.todos {
		snapshot[id] = t
	}
	next := r.nextID
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.todos = snapshot
		r.nextID = next
		r.mu.Unlock()
		return err
	}
	return nil
}

type UserRepository struct {
	mu     sync.Mutex
	users  map[int64]model.User
	nextID int64
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[int64]model.User{}, nextID: 1}
}

// SeedUser stores a user without a password. tokenHash may be empty.
func (r *UserRepository) SeedUser(email string, role model.Role, tokenHash string) model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := model.User{ID: r.nextID, Email: email, Name: email, Role: role}
	if tokenHash != "" {
		u.AuthTokenHash = &tokenHash
	}
	r.nextID++
	r.users[u.ID] = u
	return u
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return 0, apperr.Conflict(repository.MsgEmailTaken)
		}
	}
	u := *user
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.nextID++
	r.users[u.ID] = u
	return u.ID, nil
}

func (r *UserRepository) find(match func(model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			u.Role = model.ParseRole(string(u.Role))
			return &u, nil
		}
	}
	return nil, apperr.NotFound(repository.MsgUserNotFound)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.AuthTokenHash != nil && *u.AuthTokenHash == tokenHash })
}

func (r *UserRepository) SetTokenHash(ctx context.Context, id int64, tokenHash *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.NotFound(repository.MsgUserNotFound)
	}
	u.AuthTokenHash = tokenHash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

type CategoryRepository struct {
	categories []model.Category
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(categories ...model.Category) *CategoryRepository {
	return &CategoryRepository{categories: categories}
}

func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	for _, c := range r.categories {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	categories := make([]model.Category, len(r.categories))
	copy(categories, r.categories)
	return categories, nil
}
