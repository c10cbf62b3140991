package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/promptmaster/internal/apperror"
	"github.com/sakif/promptmaster/internal/auth"
	"github.com/sakif/promptmaster/internal/model"
)

// Hand-written in-memory mocks for the repository interfaces. They mirror
// the sqlite semantics the services rely on: case-insensitive name lookups,
// favorite annotation, reassign-then-delete.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testPasswords uses bcrypt.MinCost so hashing doesn't dominate test time.
func testPasswords() *auth.PasswordService {
	return auth.NewPasswordServiceForTest(bcrypt.MinCost)
}

// ---------------------------------------------------------------- users --

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Name, user.Name) {
			return apperror.Conflict("user", user.Name)
		}
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetUserByName(_ context.Context, name string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Name, name) {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", name)
}

func (m *mockUserRepo) ListUsers(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = passwordHash
	u.IsFirstLogin = false
	return nil
}

func (m *mockUserRepo) TouchLastLogin(_ context.Context, id string, when int64) error {
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.LastLoginAt = when
	return nil
}

func (m *mockUserRepo) DeleteUser(_ context.Context, id, heirID, heirName string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

// ----------------------------------------------------------- categories --

type mockCategoryRepo struct {
	categories map[string]*model.Category
	// deletions records (id, fallbackID) pairs so tests can assert the
	// reassignment target.
	deletions [][2]string
	// getByNameErr, when set, is returned from GetCategoryByName to
	// simulate a store failure.
	getByNameErr error
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[string]*model.Category)}
}

func (m *mockCategoryRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	result := make([]model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type == model.CategorySystem
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockCategoryRepo) GetCategoryByID(_ context.Context, id string) (*model.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, apperror.NotFound("category", id)
	}
	result := *c
	return &result, nil
}

func (m *mockCategoryRepo) GetCategoryByName(_ context.Context, name string) (*model.Category, error) {
	if m.getByNameErr != nil {
		return nil, m.getByNameErr
	}
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			result := *c
			return &result, nil
		}
	}
	return nil, apperror.NotFound("category", name)
}

func (m *mockCategoryRepo) CreateCategory(_ context.Context, category *model.Category) error {
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockCategoryRepo) DeleteCategory(_ context.Context, id, fallbackID string) error {
	if _, ok := m.categories[id]; !ok {
		return apperror.NotFound("category", id)
	}
	delete(m.categories, id)
	m.deletions = append(m.deletions, [2]string{id, fallbackID})
	return nil
}

// -------------------------------------------------------------- prompts --

type mockPromptRepo struct {
	prompts   map[string]*model.Prompt
	favorites map[string]map[string]bool // userID → promptID → true
}

func newMockPromptRepo() *mockPromptRepo {
	return &mockPromptRepo{
		prompts:   make(map[string]*model.Prompt),
		favorites: make(map[string]map[string]bool),
	}
}

func (m *mockPromptRepo) annotate(p model.Prompt, requesterID string) model.Prompt {
	p.IsFavorite = m.favorites[requesterID][p.ID]
	return p
}

func (m *mockPromptRepo) ListPromptsForUser(_ context.Context, userID string) ([]model.Prompt, error) {
	var result []model.Prompt
	for _, p := range m.prompts {
		if p.UserID == userID || p.Visibility == model.VisibilityPublic {
			result = append(result, m.annotate(*p, userID))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt > result[j].UpdatedAt })
	return result, nil
}

func (m *mockPromptRepo) ListPublicPrompts(_ context.Context) ([]model.Prompt, error) {
	var result []model.Prompt
	for _, p := range m.prompts {
		if p.Visibility == model.VisibilityPublic {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt > result[j].UpdatedAt })
	return result, nil
}

func (m *mockPromptRepo) GetPromptByID(_ context.Context, id, requesterID string) (*model.Prompt, error) {
	p, ok := m.prompts[id]
	if !ok {
		return nil, apperror.NotFound("prompt", id)
	}
	result := m.annotate(*p, requesterID)
	return &result, nil
}

func (m *mockPromptRepo) CreatePrompt(_ context.Context, prompt *model.Prompt) error {
	stored := *prompt
	m.prompts[prompt.ID] = &stored
	return nil
}

func (m *mockPromptRepo) UpdatePrompt(_ context.Context, prompt *model.Prompt) error {
	existing, ok := m.prompts[prompt.ID]
	if !ok {
		return apperror.NotFound("prompt", prompt.ID)
	}
	stored := *prompt
	// Ownership columns never move on update.
	stored.UserID = existing.UserID
	stored.AuthorName = existing.AuthorName
	stored.CreatedAt = existing.CreatedAt
	m.prompts[prompt.ID] = &stored
	return nil
}

func (m *mockPromptRepo) DeletePrompt(_ context.Context, id string) error {
	if _, ok := m.prompts[id]; !ok {
		return apperror.NotFound("prompt", id)
	}
	delete(m.prompts, id)
	return nil
}

func (m *mockPromptRepo) ToggleFavorite(_ context.Context, userID, promptID string) (bool, error) {
	if m.favorites[userID] == nil {
		m.favorites[userID] = make(map[string]bool)
	}
	if m.favorites[userID][promptID] {
		delete(m.favorites[userID], promptID)
		return false, nil
	}
	m.favorites[userID][promptID] = true
	return true, nil
}

// ------------------------------------------------------------- settings --

type mockSettingsRepo struct {
	allowRegistration bool
}

func (m *mockSettingsRepo) AllowRegistration(_ context.Context) (bool, error) {
	return m.allowRegistration, nil
}

func (m *mockSettingsRepo) SetAllowRegistration(_ context.Context, allowed bool) error {
	m.allowRegistration = allowed
	return nil
}
