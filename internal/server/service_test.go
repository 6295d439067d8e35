package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theirongolddev/mrrcast/internal/cache"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/store"
)

type fakeScenarios map[string]model.ParameterSet

func (f fakeScenarios) Get(name string) (store.Scenario, error) {
	p, ok := f[name]
	if !ok {
		return store.Scenario{}, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	return store.Scenario{Name: name, Params: p}, nil
}

func (f fakeScenarios) List() ([]store.ScenarioInfo, error) {
	var out []store.ScenarioInfo
	for name, p := range f {
		out = append(out, store.ScenarioInfo{Name: name, Price: p.Price})
	}
	return out, nil
}

func testParams() model.ParameterSet {
	return model.ParameterSet{
		KickOff:         time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Price:           40,
		TrialToPaidRate: 0.25,
		ChurnRate:       0.05,
		Channels: []model.Channel{{
			Name:       "SEM",
			Kind:       model.ChannelTraffic,
			Initial:    100_000,
			Conversion: model.FlatSchedule(0.04),
			CPA:        26,
		}},
	}
}

func postParams(t *testing.T, h http.Handler, p model.ParameterSet) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/projections", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProjectEndpoint(t *testing.T) {
	s := New(Config{CacheTTL: time.Minute}, nil, nil)
	h := s.Handler()

	rec := postParams(t, h, testParams())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var proj model.Projection
	if err := json.Unmarshal(rec.Body.Bytes(), &proj); err != nil {
		t.Fatalf("decoding projection: %v", err)
	}
	if len(proj.Rows) != model.ProjectionMonths {
		t.Fatalf("rows = %d", len(proj.Rows))
	}
	if proj.Summary.LTV.Value != 200 {
		t.Fatalf("LTV = %s, want 200", proj.Summary.LTV)
	}

	rec = postParams(t, h, testParams())
	if rec.Code != http.StatusOK {
		t.Fatalf("second status = %d", rec.Code)
	}
	st := s.snapshotStatus()
	if st.Projections != 1 || st.CacheHits != 1 || st.Requests != 2 {
		t.Fatalf("status = %+v, want one projection and one cache hit", st)
	}
	if st.EventCount != 1 {
		t.Fatalf("events = %d, want 1", st.EventCount)
	}
}

func TestProjectEndpointRejectsInvalidParameters(t *testing.T) {
	h := New(Config{}, nil, nil).Handler()

	p := testParams()
	p.ChurnRate = 2
	p.Price = 0
	rec := postParams(t, h, p)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Fields) != 2 {
		t.Fatalf("fields = %+v, want 2", resp.Fields)
	}
}

func TestProjectEndpointRejectsMalformedBody(t *testing.T) {
	h := New(Config{}, nil, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/projections", bytes.NewBufferString(`{"price": "forty"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScenarioEndpoints(t *testing.T) {
	scenarios := fakeScenarios{"base": testParams()}
	h := New(Config{}, cache.NewMemory(), scenarios).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/scenarios", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var infos []store.ScenarioInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil || len(infos) != 1 {
		t.Fatalf("list = %s, %v", rec.Body, err)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/scenarios/base/projection", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("projection status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/scenarios/missing/projection", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing scenario status = %d, want 404", rec.Code)
	}
}

func TestScenarioEndpointsWithoutStore(t *testing.T) {
	h := New(Config{}, nil, nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/scenarios", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := New(Config{}, nil, nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, fmt.Errorf("connection refused")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return fmt.Errorf("connection refused")
}

func (failingCache) Close() error { return nil }

func TestCacheErrorsDoNotFailRequests(t *testing.T) {
	s := New(Config{}, failingCache{}, nil)
	rec := postParams(t, s.Handler(), testParams())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite cache errors", rec.Code)
	}
	if s.snapshotStatus().LastError == "" {
		t.Fatal("cache error not recorded in status")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("MRRCAST_ADDR", ":9000")
	t.Setenv("MRRCAST_CACHE_TTL", "2m")

	cfg, err := LoadEnv(Config{Addr: "127.0.0.1:8471", RedisAddr: "redis:6379", CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.CacheTTL != 2*time.Minute || cfg.RedisAddr != "redis:6379" {
		t.Fatalf("cfg = %+v", cfg)
	}
}
