package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_userApi_login(t *testing.T) {
	usr := testutil.CreateUser(
		t, usrRepo, "sch-login", "Asha Juma", "ashajuma", "asha@darasa.test",
		"LePassword", []string{user.RoleTeacher}, true,
	)
	testutil.CreateUser(
		t, usrRepo, "sch-login", "Gone Guy", "goneguy1", "gone@darasa.test",
		"LePassword", []string{user.RoleTeacher}, false,
	)

	t.Run("active user logs in", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Username: usr.Username, Password: "LePassword"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp LoginResponse
		decodeBody(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("case-insensitive username", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Username: "AshaJuma", Password: "LePassword"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	tests := []httpTest{
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Username: usr.Username, Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, LoginRequest{Username: "who", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     marchallObj(t, LoginRequest{Username: "goneguy1", Password: "LePassword"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieveSelf(t *testing.T) {
	usr := testutil.CreateUser(
		t, usrRepo, "sch-me", "Neema Joseph", "neemajoseph", "neema@darasa.test",
		"LePassword", []string{user.RoleTeacher}, true,
	)

	t.Run("requires token", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, usr))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp user.User
		decodeBody(t, rec, &resp)
		assert.Equal(t, usr.ID, resp.ID)
		assert.Equal(t, usr.SchoolID, resp.SchoolID)
		assert.Equal(t, usr.Username, resp.Username)
	})
}

func Test_userApi_create(t *testing.T) {
	admin := testutil.CreateUser(
		t, usrRepo, "sch-reg", "Head Master", "headmaster", "head@darasa.test",
		"LePassword", user.AllRoles, true,
	)
	teacher := testutil.CreateUser(
		t, usrRepo, "sch-reg", "Mere Mortal", "meremortal", "mere@darasa.test",
		"LePassword", []string{user.RoleTeacher}, true,
	)

	newUsr := user.NewUser{
		SchoolID:        "sch-reg",
		Name:            "Upendo Zuberi",
		Username:        "upendozuberi",
		Email:           "upendo@darasa.test",
		Password:        "LePassword",
		PasswordConfirm: "LePassword",
		Roles:           []string{user.RoleTeacher},
	}

	t.Run("admin only", func(t *testing.T) {
		tt := httpTest{
			body:     marchallObj(t, newUsr),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, teacher), tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), marchallObj(t, newUsr))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp user.User
		decodeBody(t, rec, &resp)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "upendozuberi", resp.Username)
		assert.True(t, resp.IsActive)
	})

	t.Run("duplicate username", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), marchallObj(t, newUsr))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		var resp map[string]string
		decodeBody(t, rec, &resp)
		assert.Contains(t, resp, "username")
	})
}
