package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	settings := DefaultSettings()
	settings.Export.Dir = t.TempDir()
	settings.Profiles.File = filepath.Join(t.TempDir(), "profiles.json")

	return &App{
		Settings:    settings,
		Logger:      zap.NewNop(),
		Wizard:      NewWizard(nil, WithClock(func() time.Time { return testToday })),
		Exporter:    NewExporter(settings, zap.NewNop()),
		Profiles:    newTestLibrary(NewFileProfileStore(settings.Profiles.File)),
		SessionFile: filepath.Join(t.TempDir(), "session.yaml"),
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *App) {
	t.Helper()
	app := newTestApp(t)
	srv := httptest.NewServer(NewWebServer(app, "localhost:0").routes())
	t.Cleanup(srv.Close)
	return srv, app
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeState(t *testing.T, resp *http.Response) APIStateResponse {
	t.Helper()
	var state APIStateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

func TestWebServer_Index(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "保障整理表 Insurance Quote Comparison")

	resp = doJSON(t, srv, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebServer_Catalog(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog APICatalogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&catalog))
	require.Len(t, catalog.Products, 4)
	assert.Equal(t, ProductEverlinkSignature, catalog.Products[0].ID)
	assert.True(t, catalog.Products[0].LoyaltyBonus)
	assert.Equal(t, MaxSlots, catalog.MaxSlots)
	assert.Equal(t, []CITier{Tier36, Tier77, Tier157}, catalog.CITiers)

	var riders []RiderID
	for _, r := range catalog.Products[2].Riders {
		riders = append(riders, r.ID)
	}
	assert.Equal(t, defaultCatalog.RidersFor(ProductUltimateLink), riders)
}

func TestWebServer_NextWithoutConfiguredSlot(t *testing.T) {
	srv, _ := newTestServer(t)

	state := decodeState(t, doJSON(t, srv, http.MethodPost, "/api/wizard/next", ""))
	assert.Equal(t, int(StepProducts), state.Step)

	resp := doJSON(t, srv, http.MethodPost, "/api/wizard/next", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	state = decodeState(t, resp)
	assert.False(t, state.Success)
	assert.Equal(t, "请至少配置一个方案再继续。", state.Error)
	assert.Equal(t, "slots", state.Field)
	assert.Equal(t, int(StepProducts), state.Step)
}

func TestWebServer_ConfigureSlotAndCompare(t *testing.T) {
	srv, app := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPut, "/api/customer", `{"name": "Tan Ah Kow", "dob": {"day": 15, "month": 6, "year": 1990}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(t, resp)
	assert.Equal(t, 33, state.Customer.Age)

	resp = doJSON(t, srv, http.MethodPut, "/api/slots/0", `{
		"product": "Ultimate Link",
		"toggle_riders": ["PrimeCare+"],
		"rider_sas": {"PrimeCare+": 100000},
		"life_sa": 200000
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decodeState(t, resp)
	require.Len(t, state.Slots, 1)
	assert.Equal(t, []RiderID{RiderPrimeCarePlus}, state.Slots[0].Riders)
	assert.Equal(t, int64(100000), state.Slots[0].RiderSAs[RiderPrimeCarePlus])
	assert.FileExists(t, app.SessionFile)

	resp = doJSON(t, srv, http.MethodGet, "/api/comparison?lang=en&columns=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cmp Comparison
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cmp))
	assert.Equal(t, LangEN, cmp.Lang)
	assert.Equal(t, []string{"Plan A", "Plan B", "Plan C"}, cmp.Headers)
	assert.Equal(t, []string{"RM 50,000", "-", "-"}, cmp.Section(SectionCI).Row("early").Values)
}

func TestWebServer_SlotErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad index", http.MethodPut, "/api/slots/x", `{}`, http.StatusBadRequest},
		{"missing slot", http.MethodPut, "/api/slots/3", `{"life_sa": 1}`, http.StatusNotFound},
		{"unknown product", http.MethodPut, "/api/slots/0", `{"product": "Mystery"}`, http.StatusBadRequest},
		{"rider not allowed", http.MethodPut, "/api/slots/0", `{"product": "Ultimate Link", "toggle_riders": ["AssuredLove"]}`, http.StatusBadRequest},
		{"bad tier", http.MethodPut, "/api/slots/0", `{"ci_tier": 50}`, http.StatusBadRequest},
		{"bad json", http.MethodPut, "/api/slots/0", `{`, http.StatusBadRequest},
		{"remove missing", http.MethodDelete, "/api/slots/9", "", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestWebServer_AddAndRemoveSlots(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 1; i < MaxSlots; i++ {
		resp := doJSON(t, srv, http.MethodPost, "/api/slots", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decodeState(t, resp).Slots, i+1)
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/slots", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/api/slots/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeState(t, resp).Slots, MaxSlots-1)
}

func TestWebServer_PutSession(t *testing.T) {
	srv, app := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPut, "/api/session", `{
		"customer": {"name": "Siti", "dob": {"day": 1, "month": 2, "year": 1985}},
		"slots": [{"name": "Main", "product": "Everlink Signature", "life_sa": 300000}],
		"advisor": {"name": "Lim", "contact": "012"}
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(t, resp)
	assert.Equal(t, "Siti", state.Customer.Name)
	assert.Equal(t, 38, state.Customer.Age)
	assert.Equal(t, "Lim", app.Wizard.Advisor().Name)

	saved, err := LoadSession(app.SessionFile)
	require.NoError(t, err)
	assert.Equal(t, "Main", saved.Slots[0].Name)

	resp = doJSON(t, srv, http.MethodPut, "/api/session", `{"customer": {"dob": {"day": 1, "month": 14, "year": 1985}}, "slots": [{}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Siti", app.Wizard.Customer().Name)
}

func TestWebServer_PutSessionRejectsRiderOutsideProduct(t *testing.T) {
	srv, app := newTestServer(t)
	require.NoError(t, app.Wizard.SetProduct(0, ProductUltimateLink))
	before := app.Wizard.Session()

	resp := doJSON(t, srv, http.MethodPut, "/api/session", `{
		"customer": {"name": "Siti", "dob": {"day": 1, "month": 2, "year": 1985}},
		"slots": [{"product": "Everlink Plus", "riders": ["PrimeCare+"], "rider_sas": {"PrimeCare+": 100000}}]
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	state := decodeState(t, resp)
	assert.False(t, state.Success)
	assert.Equal(t, "slots[0].riders", state.Field)
	assert.Equal(t, before, app.Wizard.Session())
	assert.NoFileExists(t, app.SessionFile)
}

func TestWebServer_UpdateCustomerRejectsInvalidDOB(t *testing.T) {
	srv, app := newTestServer(t)
	before := app.Wizard.Customer()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"month 13", `{"name": "Ali", "dob": {"day": 15, "month": 13, "year": 1990}}`, "dob.month"},
		{"day and month zero", `{"name": "Ali", "dob": {"day": 0, "month": 0, "year": 1990}}`, "dob.day"},
		{"future year", `{"dob": {"year": 2030}}`, "dob.year"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, srv, http.MethodPut, "/api/customer", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.field, decodeState(t, resp).Field)
			assert.Equal(t, before, app.Wizard.Customer())
		})
	}
}

func TestWebServer_RejectedSlotUpdateChangesNothing(t *testing.T) {
	srv, app := newTestServer(t)
	require.NoError(t, app.Wizard.SetProduct(0, ProductUltimateLink))
	require.NoError(t, app.Wizard.ToggleRider(0, RiderPrimeCarePlus))
	require.NoError(t, app.Wizard.SetRiderSA(0, RiderPrimeCarePlus, 100000))
	before, err := app.Wizard.Slot(0)
	require.NoError(t, err)

	resp := doJSON(t, srv, http.MethodPut, "/api/slots/0", `{"name": "Renamed", "product": "Assured Link", "age1": 65}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	state := decodeState(t, resp)
	assert.Equal(t, "age1", state.Field)
	require.Len(t, state.Slots, 1)
	assert.Equal(t, before.Name, state.Slots[0].Name)
	assert.Equal(t, ProductUltimateLink, state.Slots[0].Product)
	assert.Equal(t, []RiderID{RiderPrimeCarePlus}, state.Slots[0].Riders)

	resp = doJSON(t, srv, http.MethodPut, "/api/slots/0", `{"name": "Renamed", "product": "Assured Link", "toggle_riders": ["PrimeCare+"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	after, err := app.Wizard.Slot(0)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWebServer_Export(t *testing.T) {
	srv, app := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/export/pdf", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, app.Wizard.SetProduct(0, ProductEverlinkSignature))
	app.Wizard.SetCustomerName("Tan Ah Kow")

	tests := []struct {
		format      string
		contentType string
		prefix      []byte
	}{
		{"pdf", "application/pdf", []byte("%PDF")},
		{"xlsx", ExportXLSX.ContentType(), []byte("PK")},
		{"html", "text/html; charset=utf-8", []byte("<!DOCTYPE html>")},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			resp := doJSON(t, srv, http.MethodPost, "/api/export/"+tc.format, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.contentType, resp.Header.Get("Content-Type"))
			assert.Equal(t,
				`attachment; filename="Report_Tan_Ah_Kow_20240101_090000.`+tc.format+`"`,
				resp.Header.Get("Content-Disposition"))

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(body, tc.prefix))
		})
	}

	resp = doJSON(t, srv, http.MethodPost, "/api/export/docx", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebServer_Profiles(t *testing.T) {
	srv, app := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/profiles", `{"name": "Lim", "contact": "012"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved AdvisorProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.Equal(t, "profile-1", saved.ID)

	// An empty body saves the advisor currently on the session
	app.Wizard.SetAdvisor(AdvisorInfo{Name: "Wong", Contact: "019"})
	resp = doJSON(t, srv, http.MethodPost, "/api/profiles", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/profiles", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []AdvisorProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "Wong", list[0].Name)

	resp = doJSON(t, srv, http.MethodPost, "/api/profiles/profile-1/select", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lim", decodeState(t, resp).Advisor.Name)

	resp = doJSON(t, srv, http.MethodDelete, "/api/profiles/profile-1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, srv, http.MethodDelete, "/api/profiles/profile-1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doJSON(t, srv, http.MethodPost, "/api/profiles/profile-1/select", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/profiles", `{"name": " "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/wizard/next", "")

	resp := doJSON(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "insurepro_wizard_transitions_total")
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, errorStatus(ValidationError{Field: "x"}))
	assert.Equal(t, http.StatusBadRequest, errorStatus(&ExportError{Format: ExportPDF, Err: ErrNoConfiguredSlot}))
	assert.Equal(t, http.StatusNotFound, errorStatus(ErrSlotNotFound))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(io.ErrUnexpectedEOF))
}
