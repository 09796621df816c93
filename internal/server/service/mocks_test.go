package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockIdentity is an in-memory IdentityGateway
type mockIdentity struct {
	users          map[uuid.UUID]*models.User
	claims         map[uuid.UUID][]models.Claim
	findError      error
	addClaimsError error
	deleteError    error
	deleted        []uuid.UUID
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{
		users:  make(map[uuid.UUID]*models.User),
		claims: make(map[uuid.UUID][]models.Claim),
	}
}

func (m *mockIdentity) addUser(email, password string, userClaims ...models.Claim) *models.User {
	user := &models.User{ID: uuid.New(), Username: strings.Split(email, "@")[0], Email: email}
	if password != "" {
		user.PasswordHash = "plain:" + password
	}
	m.users[user.ID] = user
	m.claims[user.ID] = append([]models.Claim(nil), userClaims...)
	return user
}

func (m *mockIdentity) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockIdentity) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func (m *mockIdentity) VerifyPassword(_ context.Context, user *models.User, password string) (bool, error) {
	if !user.HasPassword() || password == "" {
		return false, nil
	}
	return user.PasswordHash == "plain:"+password, nil
}

func (m *mockIdentity) GetClaims(_ context.Context, user *models.User) ([]models.Claim, error) {
	return append([]models.Claim{}, m.claims[user.ID]...), nil
}

func (m *mockIdentity) AddClaims(_ context.Context, user *models.User, claims ...models.Claim) error {
	if m.addClaimsError != nil {
		return m.addClaimsError
	}
	for _, c := range claims {
		if c.Type == "" {
			return storage.ErrInvalidClaim
		}
	}
	m.claims[user.ID] = append(m.claims[user.ID], claims...)
	return nil
}

func (m *mockIdentity) RemoveClaim(_ context.Context, user *models.User, claim models.Claim) error {
	kept := m.claims[user.ID][:0]
	for _, c := range m.claims[user.ID] {
		if c != claim {
			kept = append(kept, c)
		}
	}
	m.claims[user.ID] = kept
	return nil
}

func (m *mockIdentity) CreateUser(_ context.Context, user *models.User, password string) error {
	if password != "" && len(password) < 9 {
		return storage.ErrInvalidPassword
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return storage.ErrUserAlreadyExists
		}
	}
	if password != "" {
		user.PasswordHash = "plain:" + password
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockIdentity) DeleteUser(_ context.Context, user *models.User) error {
	m.deleted = append(m.deleted, user.ID)
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.users, user.ID)
	delete(m.claims, user.ID)
	return nil
}

// mockTokens is an in-memory RefreshTokenStorage
type mockTokens struct {
	mu           sync.Mutex
	tokens       map[string]*models.RefreshToken
	createError  error
	consumeError error
}

func newMockTokens() *mockTokens {
	return &mockTokens{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokens) put(token *models.RefreshToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Token] = token
}

func (m *mockTokens) has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[token]
	return ok
}

func (m *mockTokens) CreateRefreshToken(_ context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	if m.createError != nil {
		return nil, m.createError
	}
	token := &models.RefreshToken{
		ID:             uuid.New(),
		UserID:         userID,
		Token:          uuid.NewString(),
		ExpirationDate: fixedNow.Add(storage.DefaultRefreshTokenTTL),
	}
	m.put(token)
	return token, nil
}

func (m *mockTokens) ConsumeRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if m.consumeError != nil {
		return nil, m.consumeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	return rt, nil
}

func (m *mockTokens) GetUserTokens(_ context.Context, userID uuid.UUID) ([]*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.RefreshToken, 0)
	for _, t := range m.tokens {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTokens) DeleteUserTokens(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

func (m *mockTokens) DeleteExpiredTokens(context.Context) (int, error) {
	return 0, nil
}

// mockIssuer records the claims of every issued token
type mockIssuer struct {
	issued [][]models.Claim
	err    error
}

func (m *mockIssuer) Issue(userClaims []models.Claim) (string, int, error) {
	if m.err != nil {
		return "", 0, m.err
	}
	m.issued = append(m.issued, userClaims)
	return "access-token", 7200, nil
}

// mockRecorder counts lifecycle events
type mockRecorder struct {
	issued   map[string]int
	failures map[string]int
	logouts  int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{issued: map[string]int{}, failures: map[string]int{}}
}

func (m *mockRecorder) TokenIssued(reason string)   { m.issued[reason]++ }
func (m *mockRecorder) RefreshFailed(reason string) { m.failures[reason]++ }
func (m *mockRecorder) LoggedOut()                  { m.logouts++ }
