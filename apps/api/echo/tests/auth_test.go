package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/pownas/dancecourse/apps/api/echo"
	"github.com/pownas/dancecourse/core/user"
)

func Test_authApi_registerLoginProfile(t *testing.T) {
	app := setup(t)

	// register
	rec := app.do(http.MethodPost, "/api/auth/register", "",
		[]byte(`{"name":"Demo","email":"demo@example.com","password":"password123"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var registered AuthResponse
	decode(t, rec, &registered)
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.User.ID)
	assert.Equal(t, "Demo", registered.User.Name)
	assert.Equal(t, "demo@example.com", registered.User.Email)
	assert.Equal(t, user.RoleInstructor, registered.User.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	// login
	rec = app.do(http.MethodPost, "/api/auth/login", "",
		[]byte(`{"email":"demo@example.com","password":"password123"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loggedIn AuthResponse
	decode(t, rec, &loggedIn)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	// profile
	rec = app.do(http.MethodGet, "/api/auth/profile", loggedIn.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var profile ProfileResponse
	decode(t, rec, &profile)
	assert.Equal(t, registered.User.ID, profile.User.ID)
	assert.Equal(t, user.RoleInstructor, profile.User.Role)
}

func Test_authApi_register(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Taken", "taken@example.com", user.RoleInstructor)

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/api/auth/register", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":     "this field is required",
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/api/auth/register",
			body:     []byte(`{"name":"Other","email":"taken@example.com","password":"password123"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "password too short", method: http.MethodPost, path: "/api/auth/register",
			body:     []byte(`{"name":"Shorty","email":"short@example.com","password":"abc"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
		{
			name: "unknown role", method: http.MethodPost, path: "/api/auth/register",
			body:     []byte(`{"name":"Role","email":"role@example.com","password":"password123","role":"superstar"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "admin cannot self-register", method: http.MethodPost, path: "/api/auth/register",
			body:     []byte(`{"name":"Boss","email":"boss@example.com","password":"password123","role":"admin"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "admin accounts cannot be self-registered"}),
		},
		{
			name: "reader", method: http.MethodPost, path: "/api/auth/register",
			body:     []byte(`{"name":"Reader","email":"reader@example.com","password":"password123","role":"reader"}`),
			wantCode: http.StatusCreated,
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_authApi_login(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)

	invalid := marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()})
	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/api/auth/login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/api/auth/login",
			body: []byte(`{"email":"nobody@example.com","password":"password123"}`), wantCode: http.StatusUnauthorized,
			wantData: invalid,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/auth/login",
			body: []byte(`{"email":"demo@example.com","password":"password124"}`), wantCode: http.StatusUnauthorized,
			wantData: invalid,
		},
		{
			name: "success", method: http.MethodPost, path: "/api/auth/login",
			body: []byte(`{"email":"demo@example.com","password":"password123"}`), wantCode: http.StatusOK,
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_authApi_profileTokens(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}
	expired := GetUserClaims(usr, app.conf)
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()

	ghost := GetUserClaims(usr, app.conf)
	ghost.Subject = "00000000-0000-0000-0000-000000000000"

	tests := []httpTest{
		{name: "no token", path: "/api/auth/profile", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "malformed token", path: "/api/auth/profile", token: "lol", wantCode: http.StatusUnauthorized},
		{
			name: "expired token", path: "/api/auth/profile", wantCode: http.StatusUnauthorized,
			token: sign(expired, jwt.SigningMethodHS256, []byte(app.conf.SecretKey)),
		},
		{
			name: "bad signature", path: "/api/auth/profile", wantCode: http.StatusUnauthorized,
			token: sign(GetUserClaims(usr, app.conf), jwt.SigningMethodHS256, []byte("not-the-secret")),
		},
		{
			name: "wrong algorithm", path: "/api/auth/profile", wantCode: http.StatusUnauthorized,
			token: sign(GetUserClaims(usr, app.conf), jwt.SigningMethodHS512, []byte(app.conf.SecretKey)),
		},
		{
			name: "unknown subject", path: "/api/auth/profile", wantCode: http.StatusUnauthorized,
			token: sign(ghost, jwt.SigningMethodHS256, []byte(app.conf.SecretKey)),
		},
		{
			name: "valid token", path: "/api/auth/profile", token: app.token(t, usr), wantCode: http.StatusOK,
			wantData: marchallObj(t, ProfileResponse{User: usr}),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_health(t *testing.T) {
	app := setup(t)

	rec := app.do(http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res HealthResponse
	decode(t, rec, &res)
	assert.Equal(t, "ok", res.Status)
	assert.WithinDuration(t, time.Now(), res.Timestamp, time.Minute)
}
