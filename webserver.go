package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxRequestBody = 4 << 20 // Advisor photos arrive as data URLs

// WebServer serves the wizard over HTTP. Requests run concurrently, so every
// access to the wizard goes through mu.
type WebServer struct {
	addr        string
	mu          sync.Mutex
	wizard      *Wizard
	exporter    *Exporter
	profiles    *ProfileLibrary
	sessionFile string
	logger      *zap.Logger
}

// NewWebServer creates a new web server instance
func NewWebServer(app *App, addr string) *WebServer {
	return &WebServer{
		addr:        addr,
		wizard:      app.Wizard,
		exporter:    app.Exporter,
		profiles:    app.Profiles,
		sessionFile: app.SessionFile,
		logger:      app.Logger.Named("web"),
	}
}

// APIStateResponse is the wizard state returned by most endpoints
type APIStateResponse struct {
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Field    string        `json:"field,omitempty"`
	Step     int           `json:"step"`
	StepName string        `json:"step_name"`
	Steps    []string      `json:"steps"`
	Customer CustomerInfo  `json:"customer"`
	Slots    []ProductSlot `json:"slots"`
	Advisor  AdvisorInfo   `json:"advisor"`
}

// APISlotUpdate edits one slot as a whole; a rejected update changes nothing
type APISlotUpdate struct {
	Name         *string           `json:"name,omitempty"`
	Product      *ProductID        `json:"product,omitempty"`
	ToggleRiders []RiderID         `json:"toggle_riders,omitempty"`
	RiderSAs     map[RiderID]int64 `json:"rider_sas,omitempty"`
	SlotPatch
}

// APICustomerUpdate edits the customer's name and date of birth
type APICustomerUpdate struct {
	Name *string  `json:"name,omitempty"`
	DOB  DOBPatch `json:"dob"`
}

// APICatalogProduct describes a product and its riders for the UI
type APICatalogProduct struct {
	ID            ProductID         `json:"id"`
	DescriptionCN string            `json:"description_cn"`
	DescriptionEN string            `json:"description_en"`
	LoyaltyBonus  bool              `json:"loyalty_bonus"`
	Riders        []APICatalogRider `json:"riders"`
}

// APICatalogRider describes a rider for the UI
type APICatalogRider struct {
	ID       RiderID `json:"id"`
	Kind     string  `json:"kind"`
	TakesSum bool    `json:"takes_sum"`
	NameCN   string  `json:"name_cn"`
	NameEN   string  `json:"name_en"`
}

// APICatalogResponse lists products and option values
type APICatalogResponse struct {
	Products           []APICatalogProduct `json:"products"`
	CoverageAgeOptions []int               `json:"coverage_age_options"`
	JaundiceOptions    []int64             `json:"jaundice_options"`
	CITiers            []CITier            `json:"ci_tiers"`
	MaxSlots           int                 `json:"max_slots"`
}

// routes registers every endpoint on a new mux
func (ws *WebServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Static/UI routes
	mux.HandleFunc("/", ws.handleIndex)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/catalog", ws.handleCatalog)
	mux.HandleFunc("GET /api/session", ws.handleGetSession)
	mux.HandleFunc("PUT /api/session", ws.handlePutSession)
	mux.HandleFunc("PUT /api/customer", ws.handleUpdateCustomer)
	mux.HandleFunc("POST /api/wizard/next", ws.handleNext)
	mux.HandleFunc("POST /api/wizard/back", ws.handleBack)
	mux.HandleFunc("POST /api/slots", ws.handleAddSlot)
	mux.HandleFunc("PUT /api/slots/{index}", ws.handleUpdateSlot)
	mux.HandleFunc("DELETE /api/slots/{index}", ws.handleRemoveSlot)
	mux.HandleFunc("PUT /api/advisor", ws.handleSetAdvisor)
	mux.HandleFunc("GET /api/comparison", ws.handleComparison)
	mux.HandleFunc("POST /api/export/{format}", ws.handleExport)
	mux.HandleFunc("GET /api/profiles", ws.handleListProfiles)
	mux.HandleFunc("POST /api/profiles", ws.handleSaveProfile)
	mux.HandleFunc("DELETE /api/profiles/{id}", ws.handleDeleteProfile)
	mux.HandleFunc("POST /api/profiles/{id}/select", ws.handleSelectProfile)

	return mux
}

// Start starts the web server and opens the external browser
func (ws *WebServer) Start() error {
	// Listen on the address (use :0 for auto-assign)
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return err
	}

	url := listenerURL(listener)
	ws.logger.Info("starting web server", zap.String("addr", listener.Addr().String()))
	ws.logger.Info("opening browser", zap.String("url", url))

	// Open browser
	go openBrowser(url)

	return http.Serve(listener, ws.routes())
}

// StartForEmbedded starts the server and returns the URL and a cleanup function.
// Unlike Start(), this does NOT open the browser and does NOT block.
func (ws *WebServer) StartForEmbedded() (url string, cleanup func(), err error) {
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return "", nil, err
	}
	url = listenerURL(listener)
	ws.logger.Info("starting embedded web server", zap.String("addr", listener.Addr().String()))

	server := &http.Server{Handler: ws.routes()}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			ws.logger.Error("server error", zap.Error(err))
		}
	}()

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
	return url, cleanup, nil
}

// listenerURL returns the browser URL for a listener, using localhost for wildcard addresses
func listenerURL(listener net.Listener) string {
	actualAddr := listener.Addr().String()
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") || strings.HasPrefix(actualAddr, "[::]:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		return fmt.Sprintf("http://localhost:%s", port)
	}
	return fmt.Sprintf("http://%s", actualAddr)
}

// handleIndex serves the main web UI
func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, webUIHTML)
}

func (ws *WebServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := ws.wizard.catalog
	resp := APICatalogResponse{
		CoverageAgeOptions: CoverageAgeOptions,
		JaundiceOptions:    JaundiceOptions,
		CITiers:            CITiers(),
		MaxSlots:           MaxSlots,
	}
	for _, p := range catalog.Products() {
		product := APICatalogProduct{
			ID:            p.ID,
			DescriptionCN: p.DescriptionCN,
			DescriptionEN: p.DescriptionEN,
			LoyaltyBonus:  p.LoyaltyBonus,
		}
		for _, id := range p.Riders {
			spec := catalog.Rider(id)
			product.Riders = append(product.Riders, APICatalogRider{
				ID:       spec.ID,
				Kind:     spec.Kind.String(),
				TakesSum: spec.TakesSum,
				NameCN:   spec.NameCN,
				NameEN:   spec.NameEN,
			})
		}
		resp.Products = append(resp.Products, product)
	}
	sendJSON(w, http.StatusOK, resp)
}

// stateLocked builds the state response; callers hold ws.mu
func (ws *WebServer) stateLocked() APIStateResponse {
	resp := APIStateResponse{
		Success:  true,
		Step:     int(ws.wizard.Step()),
		StepName: ws.wizard.Step().String(),
		Customer: ws.wizard.Customer(),
		Slots:    ws.wizard.Slots(),
		Advisor:  ws.wizard.Advisor(),
	}
	for s := StepCustomer; s <= LastStep; s++ {
		resp.Steps = append(resp.Steps, s.String())
	}
	return resp
}

// respondState writes the current state, or the error with the current state attached
func (ws *WebServer) respondState(w http.ResponseWriter, err error) {
	resp := ws.stateLocked()
	status := http.StatusOK
	if err != nil {
		resp.Success = false
		resp.Error = err.Error()
		status = errorStatus(err)
		var verr ValidationError
		if errors.As(err, &verr) {
			resp.Field = verr.Field
		}
	}
	sendJSON(w, status, resp)
}

func (ws *WebServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.respondState(w, nil)
}

// handlePutSession replaces the whole session after schema validation
func (ws *WebServer) handlePutSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := ValidateSessionDocument(body); err != nil {
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := ws.wizard.Restore(&session); err != nil {
		ws.respondState(w, err)
		return
	}
	ws.persistLocked()
	ws.respondState(w, nil)
}

// persistLocked saves the session file if one is configured; failures are only logged
func (ws *WebServer) persistLocked() {
	if ws.sessionFile == "" {
		return
	}
	if err := SaveSession(ws.wizard.Session(), ws.sessionFile); err != nil {
		ws.logger.Warn("failed to save session", zap.String("file", ws.sessionFile), zap.Error(err))
	}
}

func (ws *WebServer) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req APICustomerUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if req.DOB.Day != nil || req.DOB.Month != nil || req.DOB.Year != nil {
		if err := ws.wizard.UpdateDOB(req.DOB); err != nil {
			ws.respondState(w, err)
			return
		}
	}
	if req.Name != nil {
		ws.wizard.SetCustomerName(*req.Name)
	}
	ws.persistLocked()
	ws.respondState(w, nil)
}

func (ws *WebServer) handleNext(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	err := ws.wizard.Next()
	if err != nil {
		ws.logger.Debug("step change rejected", zap.Error(err))
	}
	ws.respondState(w, err)
}

func (ws *WebServer) handleBack(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.wizard.Back()
	ws.respondState(w, nil)
}

func (ws *WebServer) handleAddSlot(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	_, err := ws.wizard.AddSlot()
	if err == nil {
		ws.persistLocked()
	}
	ws.respondState(w, err)
}

func (ws *WebServer) handleRemoveSlot(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid slot index")
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	err = ws.wizard.RemoveSlot(index)
	if err == nil {
		ws.persistLocked()
	}
	ws.respondState(w, err)
}

func (ws *WebServer) handleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid slot index")
		return
	}
	var req APISlotUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	err = ws.applySlotUpdate(index, req)
	if err == nil {
		ws.persistLocked()
	}
	ws.respondState(w, err)
}

func (ws *WebServer) applySlotUpdate(index int, req APISlotUpdate) error {
	return ws.wizard.EditSlot(index, SlotEdit{
		Name:         req.Name,
		Product:      req.Product,
		ToggleRiders: req.ToggleRiders,
		RiderSAs:     req.RiderSAs,
		Patch:        req.SlotPatch,
	})
}

func (ws *WebServer) handleSetAdvisor(w http.ResponseWriter, r *http.Request) {
	var req AdvisorInfo
	if !decodeBody(w, r, &req) {
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.wizard.SetAdvisor(req)
	ws.persistLocked()
	ws.respondState(w, nil)
}

// comparisonOptions reads ?lang= and ?columns= over the exporter defaults
func (ws *WebServer) comparisonOptions(r *http.Request) ComparisonOptions {
	opts := ws.exporter.Options
	if lang := r.URL.Query().Get("lang"); lang != "" {
		opts.Lang = ParseLang(lang)
	}
	if cols := r.URL.Query().Get("columns"); cols != "" {
		opts.Columns = min(max(ParseInt(cols), 0), MaxSlots)
	}
	return opts
}

func (ws *WebServer) handleComparison(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	state := ws.wizard.Snapshot()
	ws.mu.Unlock()

	sendJSON(w, http.StatusOK, BuildComparison(state, ws.comparisonOptions(r)))
}

// handleExport returns the rendered document for browser download
func (ws *WebServer) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := ParseExportFormat(r.PathValue("format"))
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws.mu.Lock()
	state := ws.wizard.Snapshot()
	ws.mu.Unlock()

	exporter := *ws.exporter
	exporter.Options = ws.comparisonOptions(r)
	data, err := exporter.Render(format, state)
	if err != nil {
		ws.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		sendJSONError(w, errorStatus(err), err.Error())
		return
	}

	filename := ReportFilename(state.Customer.Name, format, state.Date)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (ws *WebServer) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := ws.profiles.List(r.Context())
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendJSON(w, http.StatusOK, profiles)
}

// handleSaveProfile stores the posted advisor, or the current one when the body is empty
func (ws *WebServer) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var info AdvisorInfo
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &info); err != nil {
			sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	} else {
		ws.mu.Lock()
		info = ws.wizard.Advisor()
		ws.mu.Unlock()
	}

	profile, err := ws.profiles.Save(r.Context(), info)
	if err != nil {
		sendJSONError(w, errorStatus(err), err.Error())
		return
	}
	sendJSON(w, http.StatusCreated, profile)
}

func (ws *WebServer) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := ws.profiles.Delete(r.Context(), r.PathValue("id")); err != nil {
		sendJSONError(w, errorStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ws *WebServer) handleSelectProfile(w http.ResponseWriter, r *http.Request) {
	info, err := ws.profiles.Select(r.Context(), r.PathValue("id"))
	if err != nil {
		sendJSONError(w, errorStatus(err), err.Error())
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.wizard.SetAdvisor(info)
	ws.persistLocked()
	ws.respondState(w, nil)
}

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	var verr ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, ErrNoConfiguredSlot),
		errors.Is(err, ErrSlotLimit),
		errors.Is(err, ErrUnknownProduct),
		errors.Is(err, ErrRiderNotAllowed),
		errors.Is(err, ErrProfileNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrProfileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(dst); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// APIErrorResponse is returned when a request fails before reaching the wizard
type APIErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// sendJSONError sends a JSON error response
func sendJSONError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, APIErrorResponse{
		Success: false,
		Error:   message,
	})
}

// webUIHTML is the embedded web interface HTML
const webUIHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>保障整理表 Insurance Quote Comparison</title>
    <style>
        :root {
            --primary: #003366;
            --accent: #dce6f1;
            --danger: #dc2626;
            --success: #16a34a;
            --bg: #f8fafc;
            --card-bg: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'PingFang SC', 'Microsoft YaHei', sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.5;
            padding: 1.5rem;
        }
        .container { max-width: 1200px; margin: 0 auto; }
        h1 { color: var(--primary); font-size: 1.6rem; margin-bottom: 1rem; }
        .steps { display: flex; gap: 0.5rem; margin-bottom: 1rem; }
        .steps div {
            flex: 1; padding: 0.5rem; text-align: center; border-radius: 6px;
            background: var(--border); color: var(--text-muted); font-weight: 600;
        }
        .steps div.active { background: var(--primary); color: #fff; }
        .card {
            background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px;
            padding: 1rem; margin-bottom: 1rem;
        }
        .slots { display: grid; grid-template-columns: repeat(auto-fit, minmax(260px, 1fr)); gap: 1rem; }
        label { display: block; font-size: 0.8rem; color: var(--text-muted); margin-top: 0.5rem; }
        input, select {
            width: 100%; padding: 0.35rem 0.5rem; border: 1px solid var(--border); border-radius: 4px;
            font-size: 0.9rem;
        }
        .row { display: flex; gap: 0.5rem; }
        .row > * { flex: 1; }
        .rider { display: flex; align-items: center; gap: 0.4rem; margin-top: 0.3rem; font-size: 0.85rem; }
        .rider input[type=checkbox] { width: auto; }
        .rider input.sa { width: 110px; }
        button {
            padding: 0.45rem 1rem; border: none; border-radius: 4px; cursor: pointer;
            background: var(--primary); color: #fff; font-size: 0.9rem;
        }
        button.secondary { background: var(--border); color: var(--text); }
        button.danger { background: var(--danger); }
        .nav { display: flex; justify-content: space-between; margin-top: 1rem; }
        .error { color: var(--danger); margin: 0.5rem 0; min-height: 1.2rem; }
        table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
        th, td { border: 1px solid var(--border); padding: 0.3rem 0.5rem; text-align: center; }
        th { background: var(--primary); color: #fff; }
        td.label { text-align: left; }
        tr.section td { background: var(--accent); color: var(--primary); font-weight: 700; text-align: left; }
        .profiles li { display: flex; justify-content: space-between; padding: 0.3rem 0; list-style: none; }
        .hidden { display: none; }
    </style>
</head>
<body>
<div class="container">
    <h1>保障整理表 <small style="color:var(--text-muted);font-size:0.9rem">Protection Summary</small></h1>
    <div class="steps" id="steps"></div>
    <div class="error" id="error"></div>

    <div id="step-0" class="card hidden">
        <label>顾客姓名 Customer name</label>
        <input id="cust-name">
        <div class="row">
            <div><label>日 Day</label><select id="dob-day"></select></div>
            <div><label>月 Month</label><select id="dob-month"></select></div>
            <div><label>年 Year</label><input id="dob-year" type="number"></div>
        </div>
        <p style="margin-top:0.5rem">年龄 Age: <strong id="cust-age"></strong></p>
    </div>

    <div id="step-1" class="hidden">
        <div class="slots" id="slots"></div>
        <button class="secondary" id="add-slot" style="margin-top:1rem">+ 新增方案 Add plan</button>
    </div>

    <div id="step-2" class="hidden">
        <div class="slots" id="amounts"></div>
        <div class="card" style="margin-top:1rem">
            <h3>理财顾问 Advisor</h3>
            <div class="row">
                <div><label>姓名 Name</label><input id="adv-name"></div>
                <div><label>联络 Contact</label><input id="adv-contact"></div>
                <div><label>照片 Photo</label><input id="adv-photo" type="file" accept="image/*"></div>
            </div>
            <button class="secondary" id="save-profile" style="margin-top:0.5rem">保存顾问 Save advisor</button>
            <ul class="profiles" id="profiles"></ul>
        </div>
    </div>

    <div id="step-3" class="card hidden">
        <div class="row" style="margin-bottom:0.5rem">
            <select id="lang"><option value="CN">中文</option><option value="EN">English</option></select>
            <button id="export-pdf">PDF</button>
            <button id="export-xlsx">Excel</button>
            <button id="export-html">HTML</button>
            <button class="secondary" onclick="window.print()">打印 Print</button>
        </div>
        <div id="comparison"></div>
    </div>

    <div class="nav">
        <button class="secondary" id="back">上一步 Back</button>
        <button id="next">下一步 Next</button>
    </div>
</div>
<script>
    let state = null;
    let catalog = null;

    async function api(method, path, body) {
        const opts = { method, headers: {} };
        if (body !== undefined) {
            opts.headers['Content-Type'] = 'application/json';
            opts.body = JSON.stringify(body);
        }
        const resp = await fetch(path, opts);
        if (resp.status === 204) return null;
        const data = await resp.json();
        document.getElementById('error').textContent = data && data.success === false ? data.error : '';
        if (data && data.step !== undefined) {
            state = data;
            render();
        }
        return data;
    }

    function esc(s) {
        const d = document.createElement('div');
        d.textContent = s == null ? '' : String(s);
        return d.innerHTML;
    }

    function money(v) { return Number(v || 0).toLocaleString('en-US'); }
    function parseMoney(s) {
        s = String(s || '').toLowerCase().replace(/rm|,|\s/g, '');
        let mult = 1;
        if (s.endsWith('k')) { mult = 1000; s = s.slice(0, -1); }
        else if (s.endsWith('m')) { mult = 1000000; s = s.slice(0, -1); }
        const n = parseFloat(s);
        return isNaN(n) ? 0 : Math.round(n * mult);
    }

    function render() {
        const steps = document.getElementById('steps');
        steps.innerHTML = state.steps.map((s, i) =>
            '<div class="' + (i === state.step ? 'active' : '') + '">' + (i + 1) + '. ' + esc(s) + '</div>').join('');
        for (let i = 0; i < 4; i++) {
            document.getElementById('step-' + i).classList.toggle('hidden', i !== state.step);
        }
        document.getElementById('back').disabled = state.step === 0;
        document.getElementById('next').classList.toggle('hidden', state.step === 3);
        if (state.step === 0) renderCustomer();
        if (state.step === 1) renderSlots();
        if (state.step === 2) renderAmounts();
        if (state.step === 3) loadComparison();
        window.scrollTo(0, 0);
    }

    function renderCustomer() {
        const c = state.customer;
        document.getElementById('cust-name').value = c.name;
        const daySel = document.getElementById('dob-day');
        const days = new Date(c.dob.year, c.dob.month, 0).getDate();
        daySel.innerHTML = Array.from({length: days}, (_, i) => '<option>' + (i + 1) + '</option>').join('');
        daySel.value = c.dob.day;
        const monSel = document.getElementById('dob-month');
        monSel.innerHTML = Array.from({length: 12}, (_, i) => '<option>' + (i + 1) + '</option>').join('');
        monSel.value = c.dob.month;
        document.getElementById('dob-year').value = c.dob.year;
        document.getElementById('cust-age').textContent = c.age;
    }

    function productOf(id) { return catalog.products.find(p => p.id === id); }

    function renderSlots() {
        const el = document.getElementById('slots');
        el.innerHTML = state.slots.map((s, i) => {
            const product = productOf(s.product);
            const options = ['<option value="">-- 选择产品 --</option>'].concat(catalog.products.map(p =>
                '<option value="' + esc(p.id) + '"' + (p.id === s.product ? ' selected' : '') + '>' + esc(p.id) + '</option>'));
            const riders = product ? product.riders.map(r => {
                const on = (s.riders || []).includes(r.id);
                let sa = '';
                if (on && r.takes_sum) {
                    sa = '<input class="sa" data-slot="' + i + '" data-rider-sa="' + esc(r.id) + '" value="' + money((s.rider_sas || {})[r.id]) + '">';
                }
                return '<div class="rider"><input type="checkbox" data-slot="' + i + '" data-rider="' + esc(r.id) + '"' +
                    (on ? ' checked' : '') + '><span>' + esc(r.id) + '</span>' + sa + '</div>';
            }).join('') : '';
            return '<div class="card"><label>方案名称 Plan name</label>' +
                '<input data-slot="' + i + '" data-field="name" value="' + esc(s.name) + '">' +
                '<label>产品 Product</label><select data-slot="' + i + '" data-field="product">' + options.join('') + '</select>' +
                (product ? '<p style="font-size:0.8rem;color:var(--text-muted)">' + esc(product.description_cn) + '</p>' : '') +
                riders +
                '<button class="danger" data-remove="' + i + '" style="margin-top:0.5rem">删除 Remove</button></div>';
        }).join('');
        document.getElementById('add-slot').disabled = state.slots.length >= catalog.max_slots;
    }

    function amountInput(i, field, label, value) {
        return '<label>' + label + '</label><input data-slot="' + i + '" data-money="' + field + '" value="' + money(value) + '">';
    }

    function selectInput(i, field, label, values, current, fmt) {
        return '<label>' + label + '</label><select data-slot="' + i + '" data-select="' + field + '">' +
            values.map(v => '<option value="' + esc(v) + '"' + (String(v) === String(current) ? ' selected' : '') + '>' + esc(fmt ? fmt(v) : v) + '</option>').join('') +
            '</select>';
    }

    function renderAmounts() {
        const el = document.getElementById('amounts');
        el.innerHTML = state.slots.filter(s => s.product).map(s => {
            const i = state.slots.indexOf(s);
            const has = id => (s.riders || []).includes(id);
            let html = '<div class="card"><h3>' + esc(s.name) + '</h3><p>' + esc(s.product) + '</p>' +
                amountInput(i, 'life_sa', '人寿保额 Life SA', s.life_sa) +
                amountInput(i, 'ci_sa', '疾病保额 CI SA', s.ci_sa) +
                amountInput(i, 'pa_sa', '意外保额 PA SA', s.pa_sa) +
                '<div class="row"><div>' + selectInput(i, 'age1', '保障年龄 A', catalog.coverage_age_options, s.age1) + '</div>' +
                '<div>' + amountInput(i, 'premium_70', '保费 A', s.premium_70) + '</div></div>' +
                '<div class="row"><div>' + selectInput(i, 'age2', '保障年龄 B', catalog.coverage_age_options, s.age2) + '</div>' +
                '<div>' + amountInput(i, 'premium_80', '保费 B', s.premium_80) + '</div></div>';
            if (has('AssuredLove')) {
                html += selectInput(i, 'assured_love_option', 'AssuredLove', ['5years', '10years'], s.assured_love_option || '5years');
            }
            if (has('PreciousCover')) {
                html += selectInput(i, 'jaundice_amount', '黄疸津贴 Jaundice', catalog.jaundice_options, s.jaundice_amount || 500, v => 'RM ' + money(v));
            }
            if (has('PA Plus') || has('Personal Accident')) {
                html += amountInput(i, 'pa_weekly_indemnity', '意外每周津贴 Weekly indemnity', s.pa_weekly_indemnity);
                html += selectInput(i, 'pa_minor_accident', '意外门诊 Minor accident', ['false', 'true'], String(!!s.pa_minor_accident), v => v === 'true' ? '有 Yes' : '无 No');
            }
            if (has('Secure Cover')) {
                html += selectInput(i, 'secure_cover_parent', 'Secure Cover', ['Father', 'Mother'], s.secure_cover_parent || 'Mother', v => v === 'Father' ? '父亲 Father' : '母亲 Mother');
            }
            return html + '</div>';
        }).join('');
        document.getElementById('adv-name').value = state.advisor.name || '';
        document.getElementById('adv-contact').value = state.advisor.contact || '';
        loadProfiles();
    }

    async function loadProfiles() {
        const list = await fetch('/api/profiles').then(r => r.json());
        document.getElementById('profiles').innerHTML = (list || []).map(p =>
            '<li><span>' + esc(p.name) + ' ' + esc(p.contact) + '</span><span>' +
            '<button class="secondary" data-select-profile="' + esc(p.id) + '">使用 Use</button> ' +
            '<button class="danger" data-delete-profile="' + esc(p.id) + '">删除</button></span></li>').join('');
    }

    async function loadComparison() {
        const lang = document.getElementById('lang').value;
        const cmp = await fetch('/api/comparison?lang=' + lang).then(r => r.json());
        const cols = cmp.headers.length + 1;
        let html = '<h2 style="text-align:center;color:var(--primary)">' + esc(cmp.title) + '</h2>' +
            '<p style="text-align:center">' + esc(cmp.customer_name) + ' · ' + cmp.customer_age + ' · ' + esc(cmp.date) + '</p>' +
            '<table><tr><th class="label"></th>' + cmp.headers.map(h => '<th>' + esc(h) + '</th>').join('') + '</tr>' +
            '<tr><td></td>' + cmp.products.map(p => '<td><strong>' + esc(p) + '</strong></td>').join('') + '</tr>';
        const sections = cmp.sections.concat(cmp.rider_details.rows && cmp.rider_details.rows.length ? [cmp.rider_details] : []);
        for (const s of sections) {
            if (!s.rows || !s.rows.length) continue;
            html += '<tr class="section"><td colspan="' + cols + '">' + esc(s.title) + '</td></tr>';
            for (const r of s.rows) {
                html += '<tr><td class="label">' + esc(r.label) + '</td>' + r.values.map(v => '<td>' + esc(v) + '</td>').join('') + '</tr>';
            }
        }
        html += '</table><p style="text-align:center;color:var(--text-muted);margin-top:0.5rem">' + esc(cmp.footer) + '</p>';
        document.getElementById('comparison').innerHTML = html;
    }

    async function exportReport(format) {
        const lang = document.getElementById('lang').value;
        const resp = await fetch('/api/export/' + format + '?lang=' + lang, { method: 'POST' });
        if (!resp.ok) {
            const data = await resp.json();
            document.getElementById('error').textContent = data.error;
            return;
        }
        const blob = await resp.blob();
        const disposition = resp.headers.get('Content-Disposition') || '';
        const match = disposition.match(/filename="([^"]+)"/);
        const a = document.createElement('a');
        a.href = URL.createObjectURL(blob);
        a.download = match ? match[1] : 'report.' + format;
        document.body.appendChild(a);
        a.click();
        a.remove();
    }

    function updateCustomer() {
        api('PUT', '/api/customer', {
            name: document.getElementById('cust-name').value,
            dob: {
                day: parseInt(document.getElementById('dob-day').value, 10),
                month: parseInt(document.getElementById('dob-month').value, 10),
                year: parseInt(document.getElementById('dob-year').value, 10),
            },
        });
    }

    function updateAdvisor(photo) {
        api('PUT', '/api/advisor', {
            name: document.getElementById('adv-name').value,
            contact: document.getElementById('adv-contact').value,
            photo: photo !== undefined ? photo : state.advisor.photo,
        });
    }

    document.addEventListener('change', e => {
        const t = e.target;
        if (t.id === 'cust-name' || t.id.startsWith('dob-')) return updateCustomer();
        if (t.id === 'adv-name' || t.id === 'adv-contact') return updateAdvisor();
        if (t.id === 'adv-photo' && t.files.length) {
            const reader = new FileReader();
            reader.onload = () => updateAdvisor(reader.result);
            reader.readAsDataURL(t.files[0]);
            return;
        }
        if (t.id === 'lang') return loadComparison();
        const i = t.dataset.slot;
        if (i === undefined) return;
        if (t.dataset.field === 'name') return api('PUT', '/api/slots/' + i, { name: t.value });
        if (t.dataset.field === 'product') return api('PUT', '/api/slots/' + i, { product: t.value });
        if (t.dataset.rider) return api('PUT', '/api/slots/' + i, { toggle_riders: [t.dataset.rider] });
        if (t.dataset.riderSa) return api('PUT', '/api/slots/' + i, { rider_sas: { [t.dataset.riderSa]: parseMoney(t.value) } });
        if (t.dataset.money) return api('PUT', '/api/slots/' + i, { [t.dataset.money]: parseMoney(t.value) });
        if (t.dataset.select) {
            let v = t.value;
            if (['age1', 'age2', 'jaundice_amount'].includes(t.dataset.select)) v = parseInt(v, 10);
            if (t.dataset.select === 'pa_minor_accident') v = v === 'true';
            return api('PUT', '/api/slots/' + i, { [t.dataset.select]: v });
        }
    });

    document.addEventListener('click', e => {
        const t = e.target;
        if (t.dataset.remove !== undefined) return api('DELETE', '/api/slots/' + t.dataset.remove);
        if (t.dataset.selectProfile) return api('POST', '/api/profiles/' + t.dataset.selectProfile + '/select');
        if (t.dataset.deleteProfile) return fetch('/api/profiles/' + t.dataset.deleteProfile, { method: 'DELETE' }).then(loadProfiles);
    });

    document.getElementById('next').onclick = () => api('POST', '/api/wizard/next');
    document.getElementById('back').onclick = () => api('POST', '/api/wizard/back');
    document.getElementById('add-slot').onclick = () => api('POST', '/api/slots');
    document.getElementById('save-profile').onclick = () => fetch('/api/profiles', { method: 'POST' }).then(loadProfiles);
    document.getElementById('export-pdf').onclick = () => exportReport('pdf');
    document.getElementById('export-xlsx').onclick = () => exportReport('xlsx');
    document.getElementById('export-html').onclick = () => exportReport('html');

    fetch('/api/catalog').then(r => r.json()).then(c => {
        catalog = c;
        api('GET', '/api/session');
    });
</script>
</body>
</html>
`
