package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/flowbench/internal/bench/config"
)

// fakeAPI serves the user, auth and profile routes of a small API.
type fakeAPI struct {
	mu     sync.Mutex
	users  map[string]string
	noAuth bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{users: map[string]string{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/users":
		var body struct{ Email, Password string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		if _, exists := a.users[body.Email]; exists {
			w.WriteHeader(http.StatusConflict)
			return
		}
		a.users[body.Email] = body.Password
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"email":"` + body.Email + `"}`))

	case r.Method == http.MethodPost && r.URL.Path == "/auth":
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		a.mu.Lock()
		pw, ok := a.users[body.Email]
		noAuth := a.noAuth
		a.mu.Unlock()
		if !ok || pw != body.Password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if noAuth {
			w.Write([]byte(`{"detail":"ok"}`))
			return
		}
		w.Write([]byte(`{"token":"tok-` + body.Email + `"}`))

	case r.Method == http.MethodGet && r.URL.Path == "/me":
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer tok-") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"email":"` + strings.TrimPrefix(auth, "Bearer tok-") + `","id":7}`))

	case r.URL.Path == "/health":
		w.Write([]byte(`{"status":"ok"}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func fullFlowScenario() *config.Scenario {
	return &config.Scenario{
		Name: "Full flow",
		Requests: []config.RequestConfig{
			{
				Name:   "create",
				Method: "POST",
				URL:    "{{baseUrl}}/users",
				JSON:   map[string]interface{}{"email": "user_flow_{{id}}@test.com", "password": "{{password}}"},
			},
			{
				Name:    "login",
				Method:  "POST",
				URL:     "/auth",
				JSON:    map[string]interface{}{"email": "user_flow_{{id}}@test.com", "password": "{{password}}"},
				Extract: []config.ExtractConfig{{Name: "token", Path: "$.token"}},
			},
			{
				Name:        "me",
				Method:      "GET",
				URL:         "/me",
				Headers:     map[string]string{"Authorization": "Bearer {{token}}"},
				ExpectField: "email",
			},
		},
	}
}

func build(t *testing.T, sc *config.Scenario, baseURL string) Flow {
	t.Helper()
	settings := config.Settings{BaseURL: baseURL}
	f, err := Build(sc, settings, map[string]string{"password": "pw"}, NewClient(settings, 4))
	require.NoError(t, err)
	return f
}

func TestChain_FullFlowSucceeds(t *testing.T) {
	api, srv := newFakeAPI(t)
	f := build(t, fullFlowScenario(), srv.URL)
	assert.Equal(t, KindChain, f.Kind())

	ctx, trace := WithTrace(context.Background())
	ok := f.Execute(ctx, NewIdentity("1700000000", 3))

	require.True(t, ok, "trace error: %v", trace.Err())
	assert.NoError(t, trace.Err())
	assert.Contains(t, api.users, "user_flow_1700000000_3@test.com")

	steps := trace.Steps()
	require.Len(t, steps, 3)
	for i, name := range []string{"create", "login", "me"} {
		assert.Equal(t, name, steps[i].Name)
		assert.True(t, steps[i].Succeeded)
	}
}

func TestChain_DistinctIdentitiesDoNotCollide(t *testing.T) {
	_, srv := newFakeAPI(t)
	f := build(t, fullFlowScenario(), srv.URL)

	for i := 0; i < 5; i++ {
		assert.True(t, f.Execute(context.Background(), NewIdentity("run", i)))
	}

	// Reusing an identity hits the conflict on user creation.
	assert.False(t, f.Execute(context.Background(), NewIdentity("run", 0)))
}

func TestChain_AbortsOnMissingExtractedValue(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.noAuth = true
	f := build(t, fullFlowScenario(), srv.URL)

	ctx, trace := WithTrace(context.Background())
	assert.False(t, f.Execute(ctx, NewIdentity("r", 1)))

	assert.ErrorIs(t, trace.Err(), ErrMissingValue)
	steps := trace.Steps()
	require.Len(t, steps, 2, "chain must stop at the step lacking its value")
	assert.True(t, steps[0].Succeeded)
	assert.False(t, steps[1].Succeeded)
}

func TestChain_AbortsOnErrorStatus(t *testing.T) {
	_, srv := newFakeAPI(t)
	sc := fullFlowScenario()
	sc.Requests[0].URL = "/missing"
	f := build(t, sc, srv.URL)

	ctx, trace := WithTrace(context.Background())
	assert.False(t, f.Execute(ctx, NewIdentity("r", 1)))
	assert.Len(t, trace.Steps(), 1)
	assert.ErrorContains(t, trace.Err(), "status 404")
}

func TestChain_TransportFailureIsAFailedFlow(t *testing.T) {
	_, srv := newFakeAPI(t)
	url := srv.URL
	srv.Close()

	f := build(t, fullFlowScenario(), url)
	ctx, trace := WithTrace(context.Background())

	assert.False(t, f.Execute(ctx, NewIdentity("r", 1)))
	assert.Error(t, trace.Err())
}

func TestSingleCall(t *testing.T) {
	_, srv := newFakeAPI(t)

	ok := build(t, &config.Scenario{Name: "health", Requests: []config.RequestConfig{{Method: "GET", URL: "/health"}}}, srv.URL)
	assert.Equal(t, KindSingle, ok.Kind())
	assert.True(t, ok.Execute(context.Background(), NewIdentity("r", 0)))

	notFound := build(t, &config.Scenario{Name: "nf", Requests: []config.RequestConfig{{Method: "GET", URL: "/nope"}}}, srv.URL)
	assert.False(t, notFound.Execute(context.Background(), NewIdentity("r", 0)))

	unauthorized := build(t, &config.Scenario{Name: "me", Requests: []config.RequestConfig{{Method: "GET", URL: "/me"}}}, srv.URL)
	assert.False(t, unauthorized.Execute(context.Background(), NewIdentity("r", 0)))
}

func TestSingleCall_Schema(t *testing.T) {
	_, srv := newFakeAPI(t)
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"status"},
		"properties": map[string]interface{}{
			"status": map[string]interface{}{"type": "string", "enum": []interface{}{"ok"}},
		},
	}
	f := build(t, &config.Scenario{Name: "h", Requests: []config.RequestConfig{{Method: "GET", URL: "/health", Schema: schema}}}, srv.URL)
	assert.True(t, f.Execute(context.Background(), NewIdentity("r", 0)))

	schema["required"] = []interface{}{"version"}
	f = build(t, &config.Scenario{Name: "h", Requests: []config.RequestConfig{{Method: "GET", URL: "/health", Schema: schema}}}, srv.URL)
	ctx, trace := WithTrace(context.Background())
	assert.False(t, f.Execute(ctx, NewIdentity("r", 0)))
	assert.ErrorContains(t, trace.Err(), "schema validation failed")
}

func TestBuild_Errors(t *testing.T) {
	settings := config.Settings{}
	_, err := Build(&config.Scenario{Name: "empty"}, settings, nil, NewClient(settings, 1))
	assert.Error(t, err)

	bad := &config.Scenario{Name: "bad", Requests: []config.RequestConfig{{Method: "GET", URL: "/", Schema: map[string]interface{}{"type": "invalid-type"}}}}
	_, err = Build(bad, settings, nil, NewClient(settings, 1))
	assert.Error(t, err)
}

func TestTrace_NilSafe(t *testing.T) {
	var trace *Trace
	trace.record("x", 0, true)
	trace.fail(assert.AnError)
	assert.Nil(t, trace.Steps())
	assert.NoError(t, trace.Err())
	assert.Nil(t, TraceFrom(context.Background()))
}

func TestChain_ExtractedValueIsEscapedInJSONBody(t *testing.T) {
	const token = `ab"c\d`

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := json.Marshal(map[string]string{"token": token})
		w.Write(raw)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ T string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.T != token {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sc := &config.Scenario{
		Name: "escape",
		Requests: []config.RequestConfig{
			{Name: "login", Method: "POST", URL: "/login", Extract: []config.ExtractConfig{{Name: "token", Path: "token"}}},
			{Name: "echo", Method: "POST", URL: "/echo", JSON: map[string]interface{}{"t": "{{token}}"}},
		},
	}
	f := build(t, sc, srv.URL)

	ctx, trace := WithTrace(context.Background())
	require.True(t, f.Execute(ctx, NewIdentity("1", 0)), "trace error: %v", trace.Err())
	assert.Len(t, trace.Steps(), 2)
}

func TestChain_FileVariableCarriesIdentity(t *testing.T) {
	api, srv := newFakeAPI(t)

	sc := &config.Scenario{
		Name: "create",
		Requests: []config.RequestConfig{{
			Name:   "create",
			Method: "POST",
			URL:    "/users",
			JSON:   map[string]interface{}{"email": "{{email}}", "password": "{{password}}"},
		}},
	}
	settings := config.Settings{BaseURL: srv.URL}
	vars := map[string]string{"email": "user_{{id}}@test.com", "password": "pw"}
	f, err := Build(sc, settings, vars, NewClient(settings, 4))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.True(t, f.Execute(context.Background(), NewIdentity("9", i)), "invocation %d", i)
	}
	assert.Len(t, api.users, 50)
	assert.Contains(t, api.users, "user_9_49@test.com")
}
