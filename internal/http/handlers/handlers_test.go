package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/medtour-be/internal/access"
	"github.com/hongminglow/medtour-be/internal/auth"
	"github.com/hongminglow/medtour-be/internal/http/respond"
	"github.com/hongminglow/medtour-be/internal/middleware"
	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/models/dto"
	"github.com/hongminglow/medtour-be/internal/storage/memory"
)

type testAPI struct {
	t      *testing.T
	store  *memory.Store
	tokens *auth.TokenManager
	srv    *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	tokens := auth.NewTokenManager("test-secret", "medtour-test", time.Hour)

	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), store).Register(mux)
	NewAuthHandler(store, tokens).Register(mux)
	NewAccessHandler(access.NewGate("", ""), store, store).Register(mux)
	NewStateHandler(store).Register(mux)

	srv := httptest.NewServer(middleware.Session(tokens, access.NewResolver(store, store), mux))
	t.Cleanup(srv.Close)
	return &testAPI{t: t, store: store, tokens: tokens, srv: srv}
}

func (a *testAPI) call(method, path, token string, body any, headers map[string]string) (*http.Response, []byte) {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(a.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(a.t, err)
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	env, err := respond.Decode[T](bytes.NewReader(body))
	require.NoError(t, err)
	return env.Data
}

// signUp registers and logs in, returning the user and token.
func (a *testAPI) signUp(username, accountType string) (models.User, string) {
	a.t.Helper()
	resp, body := a.call(http.MethodPost, "/register", "", dto.RegisterRequest{
		Username:    username,
		Email:       username + "@example.com",
		Phone:       "+15550000000",
		Password:    "correct horse",
		AccountType: accountType,
	}, nil)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, string(body))
	user := decode[models.User](a.t, body)

	resp, body = a.call(http.MethodPost, "/login", "", dto.LoginRequest{Identifier: username, Password: "correct horse"}, nil)
	require.Equal(a.t, http.StatusOK, resp.StatusCode, string(body))
	login := decode[dto.LoginResponse](a.t, body)
	require.NotEmpty(a.t, login.Token)
	return user, login.Token
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	resp, body := api.call(http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, body)["status"])

	resp, _ = api.call(http.MethodPost, "/health", "", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	user, _ := api.signUp("ana", "")
	assert.Equal(t, []string{models.RoleTraveler}, user.Roles)
	assert.NotEmpty(t, user.ID)

	resp, _ := api.call(http.MethodPost, "/register", "", dto.RegisterRequest{
		Username: "ana", Email: "ana@example.com", Phone: "1", Password: "correct horse",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = api.call(http.MethodPost, "/register", "", dto.RegisterRequest{
		Username: "bo", Email: "bo@example.com", Phone: "1", Password: "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.call(http.MethodPost, "/register", "", dto.RegisterRequest{
		Username: "cy", Email: "cy@example.com", Phone: "1", Password: "correct horse", AccountType: "surgeon",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.call(http.MethodPost, "/login", "", dto.LoginRequest{Identifier: "ana", Password: "wrong password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = api.call(http.MethodPost, "/login", "", []byte("{"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAccessDecisions(t *testing.T) {
	api := newTestAPI(t)
	_, providerToken := api.signUp("clinic", dto.AccountProvider)
	admin, adminToken := api.signUp("boss", dto.AccountProvider)
	require.NoError(t, api.store.GrantRole(context.Background(), admin.ID, models.RoleAdmin))

	check := func(token, path string, headers map[string]string) dto.AccessResponse {
		t.Helper()
		resp, body := api.call(http.MethodGet, "/api/access?path="+path, token, nil, headers)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		return decode[dto.AccessResponse](t, body)
	}

	got := check("", "/dashboard", nil)
	assert.Equal(t, dto.AccessResponse{Path: "/dashboard", Outcome: "redirect", Target: "/auth"}, got)

	got = check(providerToken, "/dashboard", nil)
	assert.Equal(t, "/provider/onboarding", got.Target)
	assert.Equal(t, "proceed", check(providerToken, "/provider/onboarding", nil).Outcome)
	assert.Equal(t, "redirect", check(providerToken, "/dashboard", map[string]string{access.HeaderViewAs: "traveler"}).Outcome)

	assert.Equal(t, "proceed", check(adminToken, "/dashboard", nil).Outcome)
	assert.Equal(t, "proceed", check(adminToken, "/dashboard", map[string]string{access.HeaderViewAs: "provider"}).Outcome)

	resp, _ := api.call(http.MethodPost, "/api/provider/onboarding", providerToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "proceed", check(providerToken, "/dashboard", nil).Outcome)

	resp, _ = api.call(http.MethodGet, "/api/access", providerToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)
	admin, adminToken := api.signUp("boss", "")
	require.NoError(t, api.store.GrantRole(context.Background(), admin.ID, models.RoleAdmin))

	resp, _ := api.call(http.MethodGet, "/api/me", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := api.call(http.MethodGet, "/api/me", adminToken, nil, map[string]string{access.HeaderViewAs: "traveler"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[dto.SessionResponse](t, body)
	assert.Equal(t, admin.ID, me.SubjectID)
	assert.True(t, me.IsAdmin)
	assert.Equal(t, "traveler", me.ViewAs)
	assert.Equal(t, "traveler", me.EffectiveRole)

	resp, _ = api.call(http.MethodGet, "/api/me", "not-a-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOnboardingRequiresProvider(t *testing.T) {
	api := newTestAPI(t)
	_, travelerToken := api.signUp("ana", "")
	resp, _ := api.call(http.MethodPost, "/api/provider/onboarding", travelerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.call(http.MethodPost, "/api/provider/onboarding", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGrantRoleRequiresRealAdmin(t *testing.T) {
	api := newTestAPI(t)
	traveler, travelerToken := api.signUp("ana", "")
	admin, adminToken := api.signUp("boss", "")
	require.NoError(t, api.store.GrantRole(context.Background(), admin.ID, models.RoleAdmin))

	grant := dto.GrantRoleRequest{UserID: traveler.ID, Role: "provider"}
	resp, _ := api.call(http.MethodPut, "/api/admin/roles", travelerToken, grant, map[string]string{access.HeaderViewAs: "admin"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.call(http.MethodPut, "/api/admin/roles", adminToken, grant, map[string]string{access.HeaderViewAs: "traveler"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "previewing as traveler keeps admin privilege")
	ok, err := api.store.HasRole(context.Background(), traveler.ID, models.RoleProvider)
	require.NoError(t, err)
	assert.True(t, ok)

	resp, _ = api.call(http.MethodPut, "/api/admin/roles", adminToken, dto.GrantRoleRequest{UserID: "nobody", Role: "admin"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = api.call(http.MethodPut, "/api/admin/roles", adminToken, dto.GrantRoleRequest{UserID: traveler.ID, Role: "root"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStateReadWrite(t *testing.T) {
	api := newTestAPI(t)
	_, anaToken := api.signUp("ana", "")
	_, boToken := api.signUp("bo", "")

	resp, _ := api.call(http.MethodGet, "/api/state/trip-1/itinerary", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = api.call(http.MethodGet, "/api/state/trip-1/itinerary", anaToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = api.call(http.MethodPut, "/api/state/trip-1/itinerary", anaToken, []byte(`{"days":3}`), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = api.call(http.MethodPut, "/api/state/trip-1/itinerary", anaToken, []byte(`{"days":4}`), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := api.call(http.MethodGet, "/api/state/trip-1/itinerary", anaToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"days":4}`, string(decode[models.StateRecord](t, body).Payload))

	resp, _ = api.call(http.MethodGet, "/api/state/trip-1/itinerary", boToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "state is scoped to the caller")

	resp, _ = api.call(http.MethodPut, "/api/state/trip-1/itinerary", anaToken, []byte(`{"days":`), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.call(http.MethodDelete, "/api/state/trip-1/itinerary", anaToken, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStateUpsertForDeletedAccount(t *testing.T) {
	api := newTestAPI(t)
	// A validly signed token whose subject has no account row.
	token, err := api.tokens.Generate(models.User{ID: "gone", Username: "gone", Email: "gone@example.com"})
	require.NoError(t, err)

	resp, body := api.call(http.MethodPut, "/api/state/trip-1/itinerary", token, []byte(`{"days":3}`), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(body))
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthDegraded(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), downDB{}).Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[map[string]string](t, rec.Body.Bytes())["status"])
}
