package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ctedash/internal/errors"
	"ctedash/internal/feeds"
	"ctedash/internal/services"
	"ctedash/pkg/contracts/domain"
)

const testCtesCSV = "Numero,Serie,Emissao,Remetente,Destinatario,Prazo,Status,Coleta,Entrega,Baixa,Manifesto,Valor\n" +
	"101,1,01/03/2024,ACME LTDA,BETA SA,05/03/2024,NO PRAZO,MATRIZ,MATRIZ,ENTREGUE COM FOTO,COM MDFE,\"1.000,00\"\n" +
	"102,1,03/03/2024,ACME LTDA,GAMA ME,05/03/2024,ATRASADO,MATRIZ,FILIAL SUL,ENTREGUE SEM FOTO,SEM MDFE,\"500,00\"\n"

func testLoader(t *testing.T) *feeds.Loader {
	t.Helper()
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/ctes", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(testCtesCSV))
	})
	mux.HandleFunc("/targets", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte("Unidade,Meta\nMATRIZ,\"10.000,00\"\nFILIAL SUL,\"5.000,00\"\n"))
	})
	mux.HandleFunc("/calendar", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte("Mes,,,,,,15,5\n1,,,,15/03/2024\n"))
	})
	mux.HandleFunc("/users", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte("Usuario,Senha,Unidade\nadmin,s3cret,\nfilial.sul,abc123,FILIAL SUL\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	urls := feeds.URLs{
		Ctes:     srv.URL + "/ctes",
		Targets:  srv.URL + "/targets",
		Calendar: srv.URL + "/calendar",
		Users:    srv.URL + "/users",
	}
	return feeds.NewLoader(feeds.NewClient(5*time.Second, nil), urls, nil)
}

type testEnv struct {
	router    chi.Router
	dashboard *services.DashboardService
}

func newTestEnv(t *testing.T, refresh bool) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := apierrors.NewErrorHandler(logger, false)

	loader := testLoader(t)
	dashboard := services.NewDashboardService(loader, domain.FixedDays{Total: 21, Elapsed: 1}, logger, nil)
	auth := services.NewAuthService(loader, logger, nil)
	health := services.NewHealthService("test", "", dashboard, logger)

	if refresh {
		require.NoError(t, dashboard.Refresh(context.Background()))
	}

	r := chi.NewRouter()
	r.Mount("/api/dashboard", NewDashboardHandler(dashboard, logger, errorHandler).Routes())
	r.Mount("/api/auth", NewAuthHandler(auth, logger, errorHandler).Routes())
	r.Mount("/api/export", NewExportHandler(dashboard, logger, errorHandler, nil).Routes())
	r.Mount("/api/health", NewHealthHandler(health, logger).Routes())

	return &testEnv{router: r, dashboard: dashboard}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetDashboard(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/dashboard/")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])

	summary, ok := body["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, summary["total_documents"])
	assert.InDelta(t, 1500.0, summary["realized"].(float64), 0.001)
}

func TestGetDashboardBeforeLoad(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/api/dashboard/")
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestGetDashboardBadDate(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/dashboard/?start=03-01-2024")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestGetDashboardDateFilter(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/dashboard/?start=2024-03-01&end=2024-03-01")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	summary := decodeBody(t, rec)["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["total_documents"])
}

func TestGetDashboardStartOnlyFilter(t *testing.T) {
	env := newTestEnv(t, true)

	// A start without an end is an open-ended filter, not an empty one.
	rec := env.get(t, "/api/dashboard/?start=2024-03-01")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	summary := decodeBody(t, rec)["summary"].(map[string]interface{})
	assert.EqualValues(t, 2, summary["total_documents"])

	rec = env.get(t, "/api/dashboard/?start=2024-03-02")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	summary = decodeBody(t, rec)["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["total_documents"])

	rec = env.get(t, "/api/dashboard/?end=2024-03-02")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	summary = decodeBody(t, rec)["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["total_documents"])
}

func TestGetUnit(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/dashboard/units/matriz")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	unit := decodeBody(t, rec)["unit"].(map[string]interface{})
	assert.Equal(t, "MATRIZ", unit["unit"])
	assert.NotNil(t, unit["sales_docs"])
}

func TestGetUnitNotFound(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/dashboard/units/FILIAL%20OESTE")
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestGetSeries(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/dashboard/series")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	series := decodeBody(t, rec)["series"].(map[string]interface{})
	points := series["points"].([]interface{})
	assert.Len(t, points, 2)
}

func TestGetRankings(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/dashboard/rankings")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rankings := decodeBody(t, rec)["rankings"].(map[string]interface{})
	sales := rankings["sales"].([]interface{})
	require.NotEmpty(t, sales)
	first := sales[0].(map[string]interface{})
	assert.Equal(t, "MATRIZ", first["unit"])
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/dashboard/refresh", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.False(t, env.dashboard.LoadedAt().IsZero())

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["documents"])
	// Reference date from the period calendar export.
	assert.Equal(t, "2024-03-15", body["period_ref_date"])
}

func postLogin(t *testing.T, env *testEnv, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, false)

	rec := postLogin(t, env, `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	user := decodeBody(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "admin", user["username"])
	assert.Equal(t, true, user["manager"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t, false)

	rec := postLogin(t, env, `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t, false)

	rec := postLogin(t, env, `{"username":"","password":""}`)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = postLogin(t, env, `{not json`)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/export/ctes.csv")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	raw := rec.Body.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimRight(string(raw[3:]), "\n"), "\n")
	assert.Len(t, lines, 3)
}

func TestExportCSVUnitFilter(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/export/ctes.csv?unit=FILIAL+SUL")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	assert.Len(t, lines, 2, "header plus one matching document")
}

func TestExportXLSX(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/export/ctes.xlsx")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/api/health/")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = env.get(t, "/api/health/live")
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec = env.get(t, "/api/health/ready")
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)

	require.NoError(t, env.dashboard.Refresh(context.Background()))
	rec = env.get(t, "/api/health/ready")
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec = env.get(t, "/api/health/version")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "test", decodeBody(t, rec)["version"])
}
