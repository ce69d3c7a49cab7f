package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	authservice "blog-platform/internal/service/auth"
	accountUC "blog-platform/internal/usecase/account"
	crudUC "blog-platform/internal/usecase/crud"
)

/* ───────── スタブ実装 ───────── */

var alice = &entity.User{ID: 7, Username: "alice", Email: "alice@example.com", IsActive: true, PasswordHash: "secret-hash"}

type stubService struct {
	passwordChanged bool
}

func (s *stubService) Register(_ context.Context, values url.Values) (*entity.User, error) {
	if values.Get("username") == "alice" {
		return nil, form.Single(values, "username", "unique", "A user with that username already exists.", "password", "password_confirm")
	}
	return &entity.User{ID: 8, Username: values.Get("username"), Email: values.Get("email")}, nil
}

func (s *stubService) Activate(_ context.Context, token string) (*entity.User, error) {
	if token != "good" {
		return nil, accountUC.ErrTokenNotFound
	}
	return alice, nil
}

func (s *stubService) Login(_ context.Context, values url.Values) (*entity.User, error) {
	switch {
	case values.Get("username") == "":
		return nil, form.Single(values, "username", "required", "This field is required.", "password")
	case values.Get("username") == "inactive":
		return nil, authservice.ErrInactiveUser
	case values.Get("username") == "broken":
		return nil, fmt.Errorf("get user: connection refused")
	case values.Get("password") != "pw":
		return nil, authservice.ErrInvalidCredentials
	}
	return alice, nil
}

func (s *stubService) Profile(_ context.Context, id int64) (*accountUC.Profile, error) {
	if id != alice.ID {
		return nil, accountUC.ErrUserNotFound
	}
	return &accountUC.Profile{User: alice, ArticleCount: 3}, nil
}

func (s *stubService) UpdateProfile(ctx context.Context, id int64, values url.Values) (*entity.User, error) {
	if err := ownerOf(ctx, id); err != nil {
		return nil, err
	}
	u := *alice
	u.FirstName = values.Get("first_name")
	return &u, nil
}

func (s *stubService) ChangePassword(ctx context.Context, id int64, values url.Values) error {
	if err := ownerOf(ctx, id); err != nil {
		return err
	}
	if values.Get("old_password") != "pw" {
		return form.Single(values, "old_password", "password_incorrect", "wrong", "old_password", "password", "password_confirm")
	}
	s.passwordChanged = true
	return nil
}

func ownerOf(ctx context.Context, id int64) error {
	switch authservice.UserID(ctx) {
	case 0:
		return crudUC.ErrUnauthenticated
	case id:
		return nil
	default:
		return crudUC.ErrForbidden
	}
}

type stubSessions struct {
	established []int64
	destroyed   int
}

func (s *stubSessions) Establish(_ context.Context, w http.ResponseWriter, user *entity.User) (string, error) {
	s.established = append(s.established, user.ID)
	http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "tok", Path: "/"})
	return "tok", nil
}

func (s *stubSessions) Destroy(_ context.Context, w http.ResponseWriter) error {
	s.destroyed++
	http.SetCookie(w, &http.Cookie{Name: "sessionid", Path: "/", MaxAge: -1})
	return nil
}

type fixture struct {
	svc      *stubService
	sessions *stubSessions
	mux      *http.ServeMux
}

func newFixture() *fixture {
	f := &fixture{svc: &stubService{}, sessions: &stubSessions{}, mux: http.NewServeMux()}
	Register(f.mux, f.svc, f.sessions, nil)
	return f
}

func (f *fixture) do(method, target, body string, user *entity.User) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if user != nil {
		req = req.WithContext(authservice.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

/* ───────── テスト ───────── */

func TestRegisterHandler(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/accounts/register", "username=bob&email=bob%40example.com&password=pw&password_confirm=pw", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var u UserDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&u))
	assert.Equal(t, "bob", u.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.do(http.MethodPost, "/accounts/register", "username=alice&password=pw&password_confirm=pw", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"unique"`)
	assert.NotContains(t, rec.Body.String(), `"password"`)
}

func TestActivateHandler(t *testing.T) {
	t.Run("valid token logs in", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodGet, "/accounts/register/activate?token=good", "", nil)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Equal(t, []int64{alice.ID}, f.sessions.established)
	})

	t.Run("unknown token redirects silently", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodGet, "/accounts/register/activate?token=nope", "", nil)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Empty(t, f.sessions.established)
	})
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantCode     int
		wantLocation string
	}{
		{name: "success", body: "username=alice&password=pw", wantCode: http.StatusSeeOther, wantLocation: "/"},
		{name: "local next", body: "username=alice&password=pw&next=%2Farticles%2F3%3Fpage%3D2", wantCode: http.StatusSeeOther, wantLocation: "/articles/3?page=2"},
		{name: "foreign next ignored", body: "username=alice&password=pw&next=https%3A%2F%2Fevil.example", wantCode: http.StatusSeeOther, wantLocation: "/"},
		{name: "wrong password", body: "username=alice&password=nope", wantCode: http.StatusUnauthorized},
		{name: "inactive", body: "username=inactive&password=pw", wantCode: http.StatusUnauthorized},
		{name: "missing username", body: "password=pw", wantCode: http.StatusUnauthorized},
		{name: "store failure", body: "username=broken&password=pw", wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rec := f.do(http.MethodPost, "/accounts/login", tt.body, nil)

			require.Equal(t, tt.wantCode, rec.Code)
			switch tt.wantCode {
			case http.StatusSeeOther:
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
				var body LoginResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "tok", body.Token)
				assert.Len(t, f.sessions.established, 1)
			case http.StatusUnauthorized:
				assert.JSONEq(t, `{"has_error":true}`, rec.Body.String())
				assert.Empty(t, f.sessions.established)
			}
		})
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{next: "", want: "/"},
		{next: "/articles", want: "/articles"},
		{next: "/articles?search=go", want: "/articles?search=go"},
		{next: "//evil.example/x", want: "/"},
		{next: "/\\evil.example", want: "/"},
		{next: "https://evil.example/", want: "/"},
		{next: "articles", want: "/"},
		{next: "javascript:alert(1)", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SafeNext(tt.next))
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/accounts/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.sessions.destroyed)

	rec = f.do(http.MethodPost, "/accounts/logout", "", alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 1, f.sessions.destroyed)
}

func TestProfileHandlers(t *testing.T) {
	f := newFixture()
	bob := &entity.User{ID: 8, Username: "bob", IsActive: true}

	rec := f.do(http.MethodGet, "/accounts/users/7", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p ProfileDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, int64(3), p.ArticleCount)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/accounts/users/99", "", nil).Code)

	tests := []struct {
		name     string
		user     *entity.User
		wantCode int
	}{
		{name: "self", user: alice, wantCode: http.StatusOK},
		{name: "other user", user: bob, wantCode: http.StatusForbidden},
		{name: "anonymous", user: nil, wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPut, "/accounts/users/7", "first_name=Alice&email=alice%40example.com", tt.user)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestPasswordChangeHandler(t *testing.T) {
	t.Run("rotates session", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/accounts/users/7/password", "old_password=pw&password=n3w-Secret&password_confirm=n3w-Secret", alice)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))
		assert.True(t, f.svc.passwordChanged)
		assert.Equal(t, 1, f.sessions.destroyed)
		assert.Equal(t, []int64{alice.ID}, f.sessions.established)
	})

	t.Run("wrong old password", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/accounts/users/7/password", "old_password=bad&password=x&password_confirm=x", alice)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "password_incorrect")
		assert.Zero(t, f.sessions.destroyed)
	})

	t.Run("someone else's account", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/accounts/users/8/password", "old_password=pw&password=x&password_confirm=x", alice)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
