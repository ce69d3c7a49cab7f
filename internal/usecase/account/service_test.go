package account_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	"blog-platform/internal/repository"
	"blog-platform/internal/service/auth"
	accountUC "blog-platform/internal/usecase/account"
	"blog-platform/internal/usecase/crud"
	"blog-platform/internal/usecase/mail"
)

/* ───────── スタブ実装 ───────── */

type memUsers struct {
	mu     sync.Mutex
	rows   map[int64]*entity.User
	nextID int64
}

func (m *memUsers) Get(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) SetPassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].PasswordHash = hash
	return nil
}

func (m *memUsers) Activate(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].IsActive = true
	return nil
}

func (m *memUsers) DeleteInactiveBefore(context.Context, time.Time) (int64, error) { return 0, nil }

type memTokens struct {
	mu     sync.Mutex
	rows   map[int64]*entity.ActivationToken
	nextID int64
}

func (m *memTokens) Create(_ context.Context, t *entity.ActivationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *memTokens) GetByToken(_ context.Context, token string) (*entity.ActivationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memTokens) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memTokens) DeleteCreatedBefore(context.Context, time.Time) (int64, error) { return 0, nil }

// stubArticles は CountByAuthor だけ実装する
type stubArticles struct {
	repository.ArticleRepository
	counts map[int64]int64
}

func (s stubArticles) CountByAuthor(_ context.Context, authorID int64) (int64, error) {
	return s.counts[authorID], nil
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }
func (plainHasher) Compare(hash, p string) error {
	if hash != "plain:"+p {
		return errors.New("mismatch")
	}
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (r *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

type countingTx struct{ calls int }

func (c *countingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls++
	return fn(ctx)
}

type fixture struct {
	svc    *accountUC.Service
	users  *memUsers
	tokens *memTokens
	mailer *recordingMailer
	tx     *countingTx
}

var now = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		users:  &memUsers{rows: map[int64]*entity.User{}},
		tokens: &memTokens{rows: map[int64]*entity.ActivationToken{}},
		mailer: &recordingMailer{},
		tx:     &countingTx{},
	}
	f.svc = &accountUC.Service{
		Users:    f.users,
		Tokens:   f.tokens,
		Articles: stubArticles{counts: map[int64]int64{1: 3}},
		Tx:       f.tx,
		Hasher:   plainHasher{},
		Auth:     auth.NewAuthService(auth.NewDatabaseProvider(f.users, plainHasher{})),
		Mailer:   f.mailer,
		HostName: "https://blog.example.com/",
		Now:      func() time.Time { return now },
	}
	return f
}

func registration(username string) url.Values {
	return url.Values{
		"username":         {username},
		"email":            {username + "@example.com"},
		"first_name":       {"Ada"},
		"password":         {"s3cret-pass"},
		"password_confirm": {"s3cret-pass"},
	}
}

func (f *fixture) register(t *testing.T, username string) (*entity.User, string) {
	t.Helper()
	u, err := f.svc.Register(context.Background(), registration(username))
	require.NoError(t, err)
	for _, tok := range f.tokens.rows {
		if tok.UserID == u.ID {
			return u, tok.Token
		}
	}
	t.Fatalf("no token issued for user %d", u.ID)
	return nil, ""
}

func as(id int64) context.Context {
	return auth.WithUser(context.Background(), &entity.User{ID: id, IsActive: true})
}

/* ───────── テスト ───────── */

func TestRegister_CreatesInactiveUserAndMailsLink(t *testing.T) {
	f := newFixture()
	u, token := f.register(t, "ada")

	stored := f.users.rows[u.ID]
	assert.False(t, stored.IsActive)
	assert.Equal(t, "plain:s3cret-pass", stored.PasswordHash)
	assert.Equal(t, now, stored.DateJoined)
	assert.Equal(t, 1, f.tx.calls)

	require.Len(t, f.mailer.sent, 1)
	msg := f.mailer.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Contains(t, msg.Body, "https://blog.example.com/accounts/register/activate?token="+token)
	assert.Contains(t, msg.Body, "Hi Ada,")
}

func TestRegister_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(url.Values)
		wantField string
		wantCode  string
	}{
		{name: "taken username", mutate: func(v url.Values) { v.Set("username", "taken") }, wantField: "username", wantCode: "unique"},
		{name: "mismatched confirmation", mutate: func(v url.Values) { v.Set("password_confirm", "other-pass") }, wantField: "password_confirm", wantCode: "password_mismatch"},
		{name: "numeric password", mutate: func(v url.Values) {
			v.Set("password", "12345678")
			v.Set("password_confirm", "12345678")
		}, wantField: "password", wantCode: "password_entirely_numeric"},
		{name: "bad email", mutate: func(v url.Values) { v.Set("email", "nope") }, wantField: "email", wantCode: "is_email"},
		{name: "username with space", mutate: func(v url.Values) { v.Set("username", "a b") }, wantField: "username", wantCode: "invalid_username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			f.register(t, "taken")
			f.mailer.sent = nil

			values := registration("newcomer")
			tt.mutate(values)
			_, err := f.svc.Register(context.Background(), values)

			inv, ok := form.AsInvalid(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, []string{tt.wantCode}, inv.Errors.Codes(tt.wantField))
			assert.Empty(t, inv.Values.Get("password"), "passwords are never echoed")
			assert.Len(t, f.users.rows, 1)
			assert.Empty(t, f.mailer.sent)
		})
	}
}

func TestActivate_SingleUse(t *testing.T) {
	f := newFixture()
	u, token := f.register(t, "ada")

	activated, err := f.svc.Activate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, activated.ID)
	assert.True(t, activated.IsActive)
	assert.Empty(t, f.tokens.rows)

	_, err = f.svc.Activate(context.Background(), token)
	assert.ErrorIs(t, err, accountUC.ErrTokenNotFound)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

// consumedTokens は読み取り後に別リクエストがトークンを消費した状態を再現する
type consumedTokens struct {
	*memTokens
}

func (c consumedTokens) Delete(context.Context, int64) error {
	return fmt.Errorf("delete activation token: %w", entity.ErrNotFound)
}

func TestActivate_TokenConsumedConcurrently(t *testing.T) {
	f := newFixture()
	_, token := f.register(t, "ada")
	f.svc.Tokens = consumedTokens{f.tokens}

	_, err := f.svc.Activate(context.Background(), token)

	require.Error(t, err)
	assert.True(t, errors.Is(err, accountUC.ErrTokenNotFound), "got %v", err)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	_, token := f.register(t, "ada")

	creds := url.Values{"username": {"ada"}, "password": {"s3cret-pass"}}
	_, err := f.svc.Login(context.Background(), creds)
	assert.ErrorIs(t, err, auth.ErrInactiveUser)

	_, err = f.svc.Activate(context.Background(), token)
	require.NoError(t, err)

	u, err := f.svc.Login(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)

	_, err = f.svc.Login(context.Background(), url.Values{"username": {"ada"}, "password": {"wrong-pass"}})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), url.Values{"username": {"ada"}})
	_, ok := form.AsInvalid(err)
	assert.True(t, ok)
}

func TestProfile(t *testing.T) {
	f := newFixture()
	u, _ := f.register(t, "ada")

	p, err := f.svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", p.User.Username)
	assert.Equal(t, int64(3), p.ArticleCount)

	_, err = f.svc.Profile(context.Background(), 404)
	assert.ErrorIs(t, err, accountUC.ErrUserNotFound)
}

func TestUpdateProfile_OwnerOnly(t *testing.T) {
	f := newFixture()
	u, _ := f.register(t, "ada")
	values := url.Values{"first_name": {"Augusta"}, "last_name": {"King"}, "email": {"augusta@example.com"}}

	_, err := f.svc.UpdateProfile(context.Background(), u.ID, values)
	assert.ErrorIs(t, err, crud.ErrUnauthenticated)

	_, err = f.svc.UpdateProfile(as(u.ID+1), u.ID, values)
	assert.ErrorIs(t, err, crud.ErrForbidden)

	updated, err := f.svc.UpdateProfile(as(u.ID), u.ID, values)
	require.NoError(t, err)
	assert.Equal(t, "Augusta King", updated.FullName())
	assert.Equal(t, "augusta@example.com", f.users.rows[u.ID].Email)
	assert.Equal(t, "ada", f.users.rows[u.ID].Username)
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	u, _ := f.register(t, "ada")

	wrong := url.Values{"old_password": {"not-it"}, "password": {"brand-new-pass"}, "password_confirm": {"brand-new-pass"}}
	err := f.svc.ChangePassword(as(u.ID), u.ID, wrong)
	inv, ok := form.AsInvalid(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, []string{"password_incorrect"}, inv.Errors.Codes("old_password"))

	right := url.Values{"old_password": {"s3cret-pass"}, "password": {"brand-new-pass"}, "password_confirm": {"brand-new-pass"}}
	assert.ErrorIs(t, f.svc.ChangePassword(as(u.ID+1), u.ID, right), crud.ErrForbidden)

	require.NoError(t, f.svc.ChangePassword(as(u.ID), u.ID, right))
	assert.Equal(t, "plain:brand-new-pass", f.users.rows[u.ID].PasswordHash)
}

func TestActivationLink_EscapesToken(t *testing.T) {
	f := newFixture()
	f.svc.HostName = "http://localhost:8080"
	_, token := f.register(t, "grace")

	body := f.mailer.sent[0].Body
	assert.True(t, strings.Contains(body, fmt.Sprintf("http://localhost:8080%s?token=%s", accountUC.ActivationPath, token)))
}
