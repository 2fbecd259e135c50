package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"github.com/romeoalpha/admin/internal/dashboard"
	"github.com/romeoalpha/admin/internal/model"
	"github.com/romeoalpha/admin/internal/session"
	"github.com/romeoalpha/admin/internal/storage"
)

// multipartOverhead is the room left for non-file form fields.
const multipartOverhead = 1 << 20

// Authenticator accepts the token handed over by the login view.
type Authenticator interface {
	Check() bool
	Login(token string) error
}

// DashboardHandler exposes the dashboard orchestrator over JSON.
type DashboardHandler struct {
	dash      *dashboard.Orchestrator
	auth      Authenticator
	maxUpload int64

	// formMu keeps a draft update and the submit that follows it together.
	formMu sync.Mutex

	initMu      sync.Mutex
	initialized bool
}

// NewDashboardHandler creates a DashboardHandler. maxUpload bounds the image
// part of multipart requests.
func NewDashboardHandler(dash *dashboard.Orchestrator, auth Authenticator, maxUpload int64) *DashboardHandler {
	if maxUpload <= 0 {
		maxUpload = storage.DefaultMaxImageSize
	}
	return &DashboardHandler{dash: dash, auth: auth, maxUpload: maxUpload}
}

// Register mounts the dashboard routes on mux.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/session", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)

	mux.HandleFunc("GET /api/dashboard", h.Get)
	mux.HandleFunc("POST /api/dashboard/tabs/{tab}", h.SelectTab)
	mux.HandleFunc("POST /api/dashboard/tabs/{tab}/retry", h.RetryTab)
	mux.HandleFunc("POST /api/dashboard/retry/{domain}", h.Retry)

	mux.HandleFunc("POST /api/marketplace", h.CreateListing)
	mux.HandleFunc("PUT /api/marketplace/{id}", h.UpdateListing)
	mux.HandleFunc("DELETE /api/marketplace/{id}", h.DeleteListing)

	mux.HandleFunc("POST /api/ads", h.CreateAd)
	mux.HandleFunc("DELETE /api/ads/{id}", h.DeleteAd)

	mux.HandleFunc("POST /api/faqs", h.CreateFaq)
	mux.HandleFunc("PUT /api/faqs/{id}", h.UpdateFaq)
	mux.HandleFunc("DELETE /api/faqs/{id}", h.DeleteFaq)
}

// dashboardResponse is the body of every state-returning endpoint.
type dashboardResponse struct {
	State   dashboard.State   `json:"state"`
	Summary dashboard.Summary `json:"summary"`
}

func (h *DashboardHandler) writeState(w http.ResponseWriter) {
	s := h.dash.Snapshot()
	writeJSON(w, http.StatusOK, dashboardResponse{State: s, Summary: s.Summary()})
}

type loginRequest struct {
	Token string `json:"token"`
}

// Login handles POST /api/session.
func (h *DashboardHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token_required")
		return
	}
	if err := h.auth.Login(req.Token); err != nil {
		slog.Error("failed to store session", "error", err)
		writeError(w, http.StatusInternalServerError, "login_failed")
		return
	}
	h.setInitialized(false)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": session.DashboardView})
}

// Logout handles POST /api/logout.
func (h *DashboardHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.dash.Logout()
	h.setInitialized(false)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": session.LoginView})
}

// Get handles GET /api/dashboard. The first call of a session loads the
// dashboard tab.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.auth.Check() {
		writeUnauthorized(w)
		return
	}
	h.initMu.Lock()
	if !h.initialized {
		err := h.dash.Init(r.Context())
		if dashboard.Classify(err) == dashboard.KindAuth {
			h.initMu.Unlock()
			writeUnauthorized(w)
			return
		}
		h.initialized = true
	}
	h.initMu.Unlock()
	h.writeState(w)
}

// SelectTab handles POST /api/dashboard/tabs/{tab}.
func (h *DashboardHandler) SelectTab(w http.ResponseWriter, r *http.Request) {
	tab, err := dashboard.ParseTab(r.PathValue("tab"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_tab")
		return
	}
	h.respondLoad(w, h.dash.SelectTab(r.Context(), tab))
}

// RetryTab handles POST /api/dashboard/tabs/{tab}/retry.
func (h *DashboardHandler) RetryTab(w http.ResponseWriter, r *http.Request) {
	tab, err := dashboard.ParseTab(r.PathValue("tab"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_tab")
		return
	}
	h.respondLoad(w, h.dash.RetryTab(r.Context(), tab))
}

// Retry handles POST /api/dashboard/retry/{domain}.
func (h *DashboardHandler) Retry(w http.ResponseWriter, r *http.Request) {
	d, err := dashboard.ParseDomain(r.PathValue("domain"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_domain")
		return
	}
	h.respondLoad(w, h.dash.Retry(r.Context(), d))
}

// respondLoad returns the state after a load. Domain failures are part of
// the state; only a lost session changes the status.
func (h *DashboardHandler) respondLoad(w http.ResponseWriter, err error) {
	if dashboard.Classify(err) == dashboard.KindAuth {
		h.setInitialized(false)
		writeUnauthorized(w)
		return
	}
	h.writeState(w)
}

// CreateListing handles POST /api/marketplace (multipart).
func (h *DashboardHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	h.saveListing(w, r, "")
}

// UpdateListing handles PUT /api/marketplace/{id} (multipart). The image
// part is optional and the current image is kept without it.
func (h *DashboardHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	h.saveListing(w, r, r.PathValue("id"))
}

func (h *DashboardHandler) saveListing(w http.ResponseWriter, r *http.Request, id string) {
	file, closeFile, err := h.parseUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}
	defer closeFile()

	h.formMu.Lock()
	defer h.formMu.Unlock()

	if id == "" {
		h.dash.CancelMarketplaceForm()
	} else if err := h.editListing(r, id); err != nil {
		h.writeFailure(w, err)
		return
	}
	h.dash.SetMarketplaceDraft(dashboard.MarketplaceDraft{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    model.Category(r.FormValue("category")),
		Price:       r.FormValue("price"),
	})

	item, err := h.dash.SubmitMarketplaceItem(r.Context(), file)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	status := http.StatusCreated
	if id != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, item)
}

// editListing opens the form on id, loading the listings once if it has
// not been seen yet.
func (h *DashboardHandler) editListing(r *http.Request, id string) error {
	err := h.dash.EditMarketplaceItem(id)
	if !errors.Is(err, dashboard.ErrUnknownRecord) {
		return err
	}
	if err := h.dash.Load(r.Context(), dashboard.DomainMarketplace); err != nil {
		return err
	}
	return h.dash.EditMarketplaceItem(id)
}

// DeleteListing handles DELETE /api/marketplace/{id}?confirm=true.
func (h *DashboardHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	done, err := h.dash.DeleteMarketplaceItem(r.Context(), r.PathValue("id"), confirmFromQuery(r))
	h.respondDelete(w, done, err)
}

// CreateAd handles POST /api/ads (multipart: title, link_url, image).
func (h *DashboardHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	file, closeFile, err := h.parseUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}
	defer closeFile()

	h.formMu.Lock()
	defer h.formMu.Unlock()

	h.dash.SetAdDraft(r.FormValue("title"), r.FormValue("link_url"))
	ad, err := h.dash.SubmitAd(r.Context(), file)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ad)
}

// DeleteAd handles DELETE /api/ads/{id}?confirm=true.
func (h *DashboardHandler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	done, err := h.dash.DeleteAd(r.Context(), r.PathValue("id"), confirmFromQuery(r))
	h.respondDelete(w, done, err)
}

type faqRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CreateFaq handles POST /api/faqs.
func (h *DashboardHandler) CreateFaq(w http.ResponseWriter, r *http.Request) {
	h.saveFaq(w, r, "")
}

// UpdateFaq handles PUT /api/faqs/{id}.
func (h *DashboardHandler) UpdateFaq(w http.ResponseWriter, r *http.Request) {
	h.saveFaq(w, r, r.PathValue("id"))
}

func (h *DashboardHandler) saveFaq(w http.ResponseWriter, r *http.Request, id string) {
	var req faqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	h.formMu.Lock()
	defer h.formMu.Unlock()

	if id == "" {
		h.dash.CancelFaqForm()
	} else if err := h.editFaq(r, id); err != nil {
		h.writeFailure(w, err)
		return
	}
	h.dash.SetFaqDraft(req.Question, req.Answer)

	entry, err := h.dash.SaveFaq(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	status := http.StatusCreated
	if id != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, entry)
}

func (h *DashboardHandler) editFaq(r *http.Request, id string) error {
	err := h.dash.EditFaq(id)
	if !errors.Is(err, dashboard.ErrUnknownRecord) {
		return err
	}
	if err := h.dash.Load(r.Context(), dashboard.DomainFAQ); err != nil {
		return err
	}
	return h.dash.EditFaq(id)
}

// DeleteFaq handles DELETE /api/faqs/{id}?confirm=true.
func (h *DashboardHandler) DeleteFaq(w http.ResponseWriter, r *http.Request) {
	done, err := h.dash.DeleteFaq(r.Context(), r.PathValue("id"), confirmFromQuery(r))
	h.respondDelete(w, done, err)
}

func (h *DashboardHandler) respondDelete(w http.ResponseWriter, done bool, err error) {
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": done})
}

// confirmFromQuery answers the delete prompt with the confirm query parameter.
func confirmFromQuery(r *http.Request) dashboard.ConfirmFunc {
	confirmed := r.URL.Query().Get("confirm") == "true"
	return func(string) bool { return confirmed }
}

// parseUpload parses a multipart body and returns its "image" part, or nil
// when none was sent.
func (h *DashboardHandler) parseUpload(w http.ResponseWriter, r *http.Request) (*storage.File, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload + multipartOverhead); err != nil {
		return nil, noop, err
	}
	f, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	return &storage.File{Name: header.Filename, Body: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close upload", "error", err)
		}
	}
}

func (h *DashboardHandler) setInitialized(v bool) {
	h.initMu.Lock()
	h.initialized = v
	h.initMu.Unlock()
}

// writeFailure maps a dashboard error onto a status code.
func (h *DashboardHandler) writeFailure(w http.ResponseWriter, err error) {
	var (
		verr *dashboard.ValidationError
		aerr *dashboard.AuthError
		uerr *dashboard.UploadError
		derr *dashboard.DomainError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "validation_failed", "message": verr.Message})
	case errors.As(err, &aerr):
		h.setInitialized(false)
		writeUnauthorized(w)
	case errors.Is(err, dashboard.ErrFormBusy):
		writeError(w, http.StatusConflict, "form_busy")
	case errors.Is(err, dashboard.ErrUnknownRecord):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.As(err, &uerr):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upload_failed", "message": uerr.Error()})
	case errors.As(err, &derr):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "backend_failed", "message": derr.Error()})
	default:
		slog.Error("unexpected dashboard error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "redirect": session.LoginView})
}
