package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/auth"
	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-test-secret-test-secret!", "landing-auth-test", time.Hour)
}

// mockAccountRepo is a map-backed AccountRepository for tests.
type mockAccountRepo struct {
	accounts map[string]*domain.Account

	createErr error
	updateErr error
	getErr    error

	updateCalls int
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (m *mockAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return domain.ErrEmailAlreadyRegistered
		}
		if existing.Phone == account.Phone {
			return domain.ErrPhoneAlreadyRegistered
		}
	}
	copy := *account
	m.accounts[account.ID] = &copy
	return nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	account, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copy := *account
	return &copy, nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, account := range m.accounts {
		if account.Email == email {
			copy := *account
			return &copy, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *mockAccountRepo) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, account := range m.accounts {
		if account.Phone == phone {
			copy := *account
			return &copy, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *mockAccountRepo) GetByContact(ctx context.Context, contact string) (*domain.Account, error) {
	if repository.IsEmailContact(contact) {
		return m.GetByEmail(ctx, contact)
	}
	return m.GetByPhone(ctx, contact)
}

func (m *mockAccountRepo) Update(ctx context.Context, account *domain.Account) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	copy := *account
	m.accounts[account.ID] = &copy
	return nil
}

func (m *mockAccountRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *mockAccountRepo) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Account], error) {
	var items []*domain.Account
	for _, account := range m.accounts {
		copy := *account
		items = append(items, &copy)
	}
	return &repository.ListResult[domain.Account]{
		Items:  items,
		Total:  int64(len(items)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// mockNotifier captures sent codes.
type mockNotifier struct {
	activationCodes map[string]string // account ID -> code
	loginCodes      map[string]string
	loginContacts   map[string]string

	activationErr error
	loginErr      error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{
		activationCodes: make(map[string]string),
		loginCodes:      make(map[string]string),
		loginContacts:   make(map[string]string),
	}
}

func (m *mockNotifier) SendActivationCode(ctx context.Context, account *domain.Account, code string) error {
	if m.activationErr != nil {
		return m.activationErr
	}
	m.activationCodes[account.ID] = code
	return nil
}

func (m *mockNotifier) SendLoginCode(ctx context.Context, account *domain.Account, contact, code string) error {
	if m.loginErr != nil {
		return m.loginErr
	}
	m.loginCodes[account.ID] = code
	m.loginContacts[account.ID] = contact
	return nil
}

// mockCharacterRepo is a map-backed CharacterRepository for tests.
type mockCharacterRepo struct {
	characters map[string]*domain.Character // keyed by user ID

	createErr error
	updateErr error
}

func newMockCharacterRepo() *mockCharacterRepo {
	return &mockCharacterRepo{characters: make(map[string]*domain.Character)}
}

func (m *mockCharacterRepo) Create(ctx context.Context, character *domain.Character) error {
	if m.createErr != nil {
		return m.createErr
	}
	copy := *character
	m.characters[character.UserID] = &copy
	return nil
}

func (m *mockCharacterRepo) GetByUserID(ctx context.Context, userID string) (*domain.Character, error) {
	character, ok := m.characters[userID]
	if !ok {
		return nil, domain.ErrCharacterNotFound
	}
	copy := *character
	return &copy, nil
}

func (m *mockCharacterRepo) Update(ctx context.Context, character *domain.Character) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.characters[character.UserID]; !ok {
		return domain.ErrCharacterNotFound
	}
	copy := *character
	m.characters[character.UserID] = &copy
	return nil
}

func (m *mockCharacterRepo) Delete(ctx context.Context, id string) error {
	for userID, character := range m.characters {
		if character.ID == id {
			delete(m.characters, userID)
			return nil
		}
	}
	return domain.ErrCharacterNotFound
}

// mockAnalysisRepo records created analysis history rows.
type mockAnalysisRepo struct {
	records   []*domain.AnalysisRecord
	createErr error
}

func (m *mockAnalysisRepo) Create(ctx context.Context, record *domain.AnalysisRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	copy := *record
	m.records = append(m.records, &copy)
	return nil
}

func (m *mockAnalysisRepo) ListByUserID(ctx context.Context, userID string, opts repository.ListOptions) (*repository.ListResult[domain.AnalysisRecord], error) {
	var items []*domain.AnalysisRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID == userID {
			copy := *m.records[i]
			items = append(items, &copy)
		}
	}
	return &repository.ListResult[domain.AnalysisRecord]{
		Items:  items,
		Total:  int64(len(items)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// mockImageStore records stored keys in memory.
type mockImageStore struct {
	objects map[string][]byte
	putErr  error
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{objects: make(map[string][]byte)}
}

func (m *mockImageStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return m.URL(key), nil
}

func (m *mockImageStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (m *mockImageStore) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *mockImageStore) URL(key string) string {
	return "https://cdn.test/" + key
}

// mockAnalyzer returns a canned analysis result.
type mockAnalyzer struct {
	result *domain.CharacterAnalysis
	raw    string
	err    error
	calls  int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, imageURL string) (*domain.CharacterAnalysis, string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.raw, m.err
	}
	return m.result, m.raw, nil
}
