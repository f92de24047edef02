package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/index"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
	"github.com/psykzz/avalon-hideout-mapper/internal/report"
	"github.com/psykzz/avalon-hideout-mapper/internal/tracker"
	"github.com/psykzz/avalon-hideout-mapper/internal/tracker/github"
	"github.com/psykzz/avalon-hideout-mapper/internal/verify"
)

const validReport = `{"zone":"AVALON-LIONEL-01","guild":"Example Guild","server":"America"}`

func testSnapshot() *index.Snapshot {
	zones := index.NewZoneCatalog([]*domain.Zone{
		{Index: "AVALON-LIONEL-01", UniqueName: "Lionel Roads 1"},
		{Index: "AVALON-UTHER-01", UniqueName: "Uther Roads 1"},
		{Index: "TNL-001", UniqueName: "Quaent-Al-Viesom"},
		{Index: "0000", UniqueName: "Thetford"},
	}, domain.NewZoneFamily(nil))

	hideouts := index.NewHideoutRepository([]*domain.Hideout{
		{ID: "1", ZoneName: "AVALON-LIONEL-01", GuildName: "Example Guild", Server: domain.ServerAmerica, ReportedDate: "2024-01-01"},
		{ID: "2", ZoneName: "avalon-lionel-01", GuildName: "Arcane Order", Server: domain.ServerAmerica, ReportedDate: "2024-01-02"},
		{ID: "3", ZoneName: "AVALON-LIONEL-01", GuildName: "Example Guild", Server: domain.ServerEurope, ReportedDate: "2024-01-03"},
		{ID: "4", ZoneName: "Quaent-Al-Viesom", GuildName: "Deep Delvers", Server: domain.ServerAsia, ReportedDate: "2024-01-04"},
	})

	return &index.Snapshot{Zones: zones, Hideouts: hideouts, LoadedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
}

// fakeGitHub serves the create issue endpoint of the GitHub API.
func fakeGitHub(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/repos/psykzz/avalon-hideout-mapper/issues", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusCreated {
			_, _ = io.WriteString(w, `{"number":42,"html_url":"https://github.com/psykzz/avalon-hideout-mapper/issues/42"}`)
			return
		}
		_, _ = io.WriteString(w, `{"message":"Bad credentials"}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newGateway(t *testing.T, srv *httptest.Server) tracker.Tracker {
	t.Helper()
	gw, err := github.New(github.Options{
		Token:      "ghp_test",
		Owner:      "psykzz",
		Repo:       "avalon-hideout-mapper",
		BaseURL:    srv.URL,
		Timeout:    time.Second,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return gw
}

type harness struct {
	deps   deps.Deps
	router http.Handler
}

func newHarness(t *testing.T, opts report.Options, mutate ...func(*deps.Deps)) *harness {
	t.Helper()
	opts.Logger = logger.NewNop()
	d := deps.Deps{
		Logger:             logger.NewNop(),
		StartTime:          time.Now(),
		Version:            "test",
		TrustProxy:         true,
		CORSOrigins:        []string{"*"},
		Datasets:           index.NewDatasets(testSnapshot()),
		Reports:            report.NewService(opts),
		ReportBurst:        100,
		ReportRefillPerMin: 100,
		Repository:         "psykzz/avalon-hideout-mapper",
	}
	for _, m := range mutate {
		m(&d)
	}
	return &harness{deps: d, router: NewRouter(5*time.Second, d)}
}

func (h *harness) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// Scenario A
func TestCreateReport_Success(t *testing.T) {
	gh, calls := fakeGitHub(t, http.StatusCreated)
	h := newHarness(t, report.Options{Tracker: newGateway(t, gh)})

	rec := h.do(http.MethodPost, "/api/create-hideout-report", validReport)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 42, body["issueNumber"])
	assert.Equal(t, "https://github.com/psykzz/avalon-hideout-mapper/issues/42", body["issueUrl"])
	assert.EqualValues(t, 1, calls.Load())
}

func TestCreateReport_NetlifyAlias(t *testing.T) {
	gh, _ := fakeGitHub(t, http.StatusCreated)
	h := newHarness(t, report.Options{Tracker: newGateway(t, gh)})

	rec := h.do(http.MethodPost, "/.netlify/functions/create-hideout-report", validReport)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

// Scenarios B and C, plus malformed bodies.
func TestCreateReport_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "unknown server", body: `{"zone":"AVALON-LIONEL-01","guild":"Example Guild","server":"Mars"}`, want: "Server must be one of: America, Europe, Asia"},
		{name: "empty guild", body: `{"zone":"AVALON-LIONEL-01","guild":"","server":"America"}`, want: "Guild name is required and must be a non-empty string"},
		{name: "missing zone", body: `{"guild":"G","server":"America"}`, want: "Zone name is required and must be a non-empty string"},
		{name: "invalid json", body: `{"zone":`, want: "Invalid JSON in request body"},
		{name: "empty body", body: ``, want: "Zone name is required and must be a non-empty string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh, calls := fakeGitHub(t, http.StatusCreated)
			h := newHarness(t, report.Options{Tracker: newGateway(t, gh)})

			rec := h.do(http.MethodPost, "/api/create-hideout-report", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decode(t, rec)["error"])
			assert.Zero(t, calls.Load(), "no issue should be created")
		})
	}
}

// Scenario D
func TestCreateReport_MethodNotAllowed(t *testing.T) {
	gh, calls := fakeGitHub(t, http.StatusCreated)
	h := newHarness(t, report.Options{Tracker: newGateway(t, gh)})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := h.do(method, "/api/create-hideout-report", validReport)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"), method)
		assert.Equal(t, "Method not allowed", decode(t, rec)["error"], method)
	}
	assert.Zero(t, calls.Load())
}

// Scenario E
func TestCreateReport_MissingCredential(t *testing.T) {
	h := newHarness(t, report.Options{})

	rec := h.do(http.MethodPost, "/api/create-hideout-report", validReport)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server configuration error", decode(t, rec)["error"])
}

func TestCreateReport_GatewayFailure(t *testing.T) {
	gh, _ := fakeGitHub(t, http.StatusUnauthorized)
	h := newHarness(t, report.Options{Tracker: newGateway(t, gh)})

	rec := h.do(http.MethodPost, "/api/create-hideout-report", validReport)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Failed to create hideout report", body["error"])
	assert.NotContains(t, rec.Body.String(), "Bad credentials")
}

// Scenario F
func TestCreateReport_GuildVerification(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantError  string
	}{
		{
			name: "guild not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"guilds":[{"Id":"x","Name":"Other Guild"}],"players":[]}`)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  `Guild "Example Guild" not found on America server. Please check the spelling.`,
		},
		{
			name: "guild found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"guilds":[{"Id":"x","Name":"Example Guild"}],"players":[]}`)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "game api down fails open",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "game api timeout fails open",
			handler: func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gameinfo := httptest.NewServer(tt.handler)
			t.Cleanup(gameinfo.Close)
			gh, calls := fakeGitHub(t, http.StatusCreated)

			search := verify.NewGameInfoClient(map[string]string{"America": gameinfo.URL}, gameinfo.Client())
			h := newHarness(t, report.Options{
				Tracker: newGateway(t, gh),
				Guilds:  verify.NewGuildVerifier(search, nil, 100*time.Millisecond, logger.NewNop()),
			})

			rec := h.do(http.MethodPost, "/api/create-hideout-report", validReport)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode(t, rec)["error"])
				assert.Zero(t, calls.Load())
				return
			}
			assert.EqualValues(t, 1, calls.Load())
		})
	}
}

func TestCreateReport_ZoneVerification(t *testing.T) {
	gh, calls := fakeGitHub(t, http.StatusCreated)
	h := newHarness(t, report.Options{}, func(d *deps.Deps) {
		d.Reports = report.NewService(report.Options{
			Tracker: newGateway(t, gh),
			Zones:   verify.NewCatalogZoneVerifier(d.Datasets),
			Logger:  logger.NewNop(),
		})
	})

	rec := h.do(http.MethodPost, "/api/create-hideout-report", `{"zone":"AVALON-NOWHERE-99","guild":"G","server":"Asia"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Zone "AVALON-NOWHERE-99" not found. Please select a zone from the list.`, decode(t, rec)["error"])

	rec = h.do(http.MethodPost, "/api/create-hideout-report", `{"zone":"Lionel Roads 1","guild":"G","server":"Asia"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCreateReport_RateLimited(t *testing.T) {
	gh, _ := fakeGitHub(t, http.StatusCreated)
	h := newHarness(t, report.Options{Tracker: newGateway(t, gh)}, func(d *deps.Deps) {
		d.ReportBurst = 2
		d.ReportRefillPerMin = 1
	})

	ip := []string{"X-Forwarded-For", "203.0.113.9"}
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/create-hideout-report", validReport, ip...).Code)
	// The alias shares the budget.
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/.netlify/functions/create-hideout-report", validReport, ip...).Code)

	rec := h.do(http.MethodPost, "/api/create-hideout-report", validReport, ip...)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, decode(t, rec)["error"])

	// Another client is unaffected.
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/create-hideout-report", validReport, "X-Forwarded-For", "198.51.100.1").Code)
}

func TestCreateReport_NonPostIgnoresRateLimit(t *testing.T) {
	gh, _ := fakeGitHub(t, http.StatusCreated)
	h := newHarness(t, report.Options{Tracker: newGateway(t, gh)}, func(d *deps.Deps) {
		d.ReportBurst = 2
		d.ReportRefillPerMin = 1
	})

	ip := []string{"X-Forwarded-For", "203.0.113.9"}
	for i := 0; i < 3; i++ {
		rec := h.do(http.MethodGet, "/api/create-hideout-report", "", ip...)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code, "GET #%d", i+1)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
		assert.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
	}

	// GETs did not spend the POST budget.
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/create-hideout-report", validReport, ip...).Code)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/create-hideout-report", validReport, ip...).Code)
	assert.Equal(t, http.StatusTooManyRequests, h.do(http.MethodPost, "/api/create-hideout-report", validReport, ip...).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, h.do(http.MethodPut, "/api/create-hideout-report", validReport, ip...).Code)
}

type capturingTracker struct {
	issues []domain.Issue
}

func (c *capturingTracker) CreateIssue(_ context.Context, issue domain.Issue) (domain.IssueRef, error) {
	c.issues = append(c.issues, issue)
	return domain.IssueRef{Number: 1, URL: "https://example.test/issues/1"}, nil
}

func TestCreateReport_RequesterFromPlatformHeaders(t *testing.T) {
	for _, trustProxy := range []bool{true, false} {
		tr := &capturingTracker{}
		h := newHarness(t, report.Options{Tracker: tr, IncludeGeo: true}, func(d *deps.Deps) {
			d.TrustProxy = trustProxy
		})

		rec := h.do(http.MethodPost, "/api/create-hideout-report", validReport,
			"X-Forwarded-For", "203.0.113.9, 10.0.0.1",
			"X-Nf-Client-Connection-Ip", "198.51.100.7")
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, tr.issues, 1)
		assert.Contains(t, tr.issues[0].Body, `IP: 203\.0\.113\.9,`, "trustProxy=%v", trustProxy)

		rec = h.do(http.MethodPost, "/api/create-hideout-report", validReport,
			"X-Nf-Client-Connection-Ip", "198.51.100.7")
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, tr.issues, 2)
		assert.Contains(t, tr.issues[1].Body, `IP: 198\.51\.100\.7,`, "trustProxy=%v", trustProxy)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, report.Options{})

	rec := h.do(http.MethodOptions, "/api/create-hideout-report", "",
		"Origin", "https://hideouts.example",
		"Access-Control-Request-Method", "POST")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestListServers(t *testing.T) {
	h := newHarness(t, report.Options{})

	rec := h.do(http.MethodGet, "/api/servers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"America", "Europe", "Asia"}, decode(t, rec)["servers"])
}

func TestListZones(t *testing.T) {
	h := newHarness(t, report.Options{})

	rec := h.do(http.MethodGet, "/api/zones", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"AVALON-LIONEL-01", "AVALON-UTHER-01", "Quaent-Al-Viesom"}, decode(t, rec)["zones"])

	rec = h.do(http.MethodGet, "/api/zones?q=lionel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"AVALON-LIONEL-01"}, decode(t, rec)["zones"])

	rec = h.do(http.MethodGet, "/api/zones?q=a&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["zones"], 1)
}

func TestZoneHideouts(t *testing.T) {
	h := newHarness(t, report.Options{})

	rec := h.do(http.MethodGet, "/api/zones/AVALON-LIONEL-01/hideouts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 3, body["count"])
	assert.NotContains(t, body, "server")
	guilds := body["guilds"].([]any)
	require.Len(t, guilds, 2)
	assert.Equal(t, "Arcane Order", guilds[0].(map[string]any)["guild"])
	assert.EqualValues(t, 2, guilds[1].(map[string]any)["count"])

	rec = h.do(http.MethodGet, "/api/zones/AVALON-LIONEL-01/hideouts?server=Europe", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "Europe", body["server"])

	rec = h.do(http.MethodGet, "/api/zones/Quaent-Al-Viesom/hideouts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = h.do(http.MethodGet, "/api/zones/AVALON-LIONEL-01/hideouts?server=Mars", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.InvalidServerMessage, decode(t, rec)["error"])
}

func TestZoneGuilds(t *testing.T) {
	h := newHarness(t, report.Options{})

	rec := h.do(http.MethodGet, "/api/zones/avalon-lionel-01/guilds?server=America", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Arcane Order", "Example Guild"}, decode(t, rec)["guilds"])
}

func TestServerHideouts(t *testing.T) {
	h := newHarness(t, report.Options{})

	rec := h.do(http.MethodGet, "/api/servers/America/hideouts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "America", body["server"])
	assert.EqualValues(t, 2, body["count"])

	rec = h.do(http.MethodGet, "/api/servers/Mars/hideouts", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpsEndpoints(t *testing.T) {
	h := newHarness(t, report.Options{}, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", "").Code)

	rec := h.do(http.MethodGet, "/readyz", "", "X-Forwarded-For", "203.0.113.1")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, "/readyz", "", "X-Forwarded-For", "10.1.2.3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ready"])

	rec = h.do(http.MethodGet, "/infra", "", "X-Forwarded-For", "10.1.2.3")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	// No tracker credential in this harness.
	assert.Equal(t, "critical", body["mode"])
}

func TestReload(t *testing.T) {
	reloaded := &index.Snapshot{
		Zones:    index.NewZoneCatalog([]*domain.Zone{{Index: "AVALON-MERLYN-01"}}, domain.NewZoneFamily(nil)),
		Hideouts: index.NewHideoutRepository(nil),
		LoadedAt: time.Now(),
	}
	h := newHarness(t, report.Options{}, func(d *deps.Deps) {
		datasets := d.Datasets
		d.Reload = func(context.Context) (*index.Snapshot, error) {
			datasets.Swap(reloaded)
			return reloaded, nil
		}
	})

	rec := h.do(http.MethodPost, "/reload", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode(t, rec)["zones"])

	rec = h.do(http.MethodGet, "/api/zones", "")
	assert.Equal(t, []any{"AVALON-MERLYN-01"}, decode(t, rec)["zones"])
}

func TestReload_BusyGuardReturns429(t *testing.T) {
	h := newHarness(t, report.Options{}, func(d *deps.Deps) {
		d.Reload = func(context.Context) (*index.Snapshot, error) {
			return nil, index.ErrReloadInProgress
		}
	})

	rec := h.do(http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Reload already in progress, please wait", decode(t, rec)["error"])
}

func TestNotFoundIsJSON(t *testing.T) {
	h := newHarness(t, report.Options{})

	rec := h.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode(t, rec)["error"])
}
