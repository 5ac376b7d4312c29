package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"postcraft/internal/calendar"
	"postcraft/internal/credentials"
	"postcraft/internal/faults"
	"postcraft/internal/gallery"
	"postcraft/internal/imaging"
	"postcraft/internal/logging"
	"postcraft/internal/notify"
	"postcraft/internal/presets"
	"postcraft/internal/state"
	"postcraft/internal/studio"
	"postcraft/internal/usage"
)

// formRequest carries the client's form state and optional reference images
// as data URIs.
type formRequest struct {
	State      state.App `json:"state"`
	Logo       string    `json:"logo,omitempty"`
	Background string    `json:"background,omitempty"`
}

func (f formRequest) references() (studio.References, error) {
	var refs studio.References
	if f.Logo != "" {
		in, err := imaging.FromDataURI(f.Logo)
		if err != nil {
			return refs, faults.Wrap(faults.KindInvalidInput, "invalid logo image", err)
		}
		refs.Logo = &in
	}
	if f.Background != "" {
		in, err := imaging.FromDataURI(f.Background)
		if err != nil {
			return refs, faults.Wrap(faults.KindInvalidInput, "invalid background image", err)
		}
		refs.Background = &in
	}
	return refs, nil
}

type errorBody struct {
	faults.Report
	Detail        string                `json:"detail,omitempty"`
	State         *state.App            `json:"state,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

type generateResponse struct {
	State         state.App             `json:"state"`
	Images        []gallery.Image       `json:"images"`
	Notifications []notify.Notification `json:"notifications"`
}

type captionsRequest struct {
	Keywords string `json:"keywords"`
}

type captionsResponse struct {
	Captions      []string              `json:"captions"`
	Notifications []notify.Notification `json:"notifications"`
}

type presetRequest struct {
	Name  string    `json:"name"`
	State state.App `json:"state"`
}

type credentialsRequest struct {
	APIKey  string `json:"apiKey"`
	Persist bool   `json:"persist"`
}

type statusResponse struct {
	Credential credentials.Status `json:"credential"`
	Templates  int                `json:"templates"`
	Gallery    int                `json:"gallery"`
	Presets    int                `json:"presets"`
}

type calendarResponse struct {
	Year     int      `json:"year"`
	Month    int      `json:"month"`
	Weeks    [][7]int `json:"weeks"`
	Markdown string   `json:"markdown"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Get(logging.CategoryServer).Error("encoding response: %v", err)
	}
}

// writeError answers with the classified report of err.
func writeError(w http.ResponseWriter, err error, extra errorBody) {
	report := faults.Classify(err)
	status := faults.HTTPStatus(report.Kind)
	if errors.Is(err, studio.ErrNotFound) {
		status = http.StatusNotFound
	}
	extra.Report = report
	extra.Detail = err.Error()
	writeJSON(w, status, extra)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return faults.Wrap(faults.KindInvalidInput, "invalid request body", err)
	}
	return nil
}

func (s *Server) newForm() formRequest {
	return formRequest{State: s.initialState()}
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.studio.Templates.List())
}

func (s *Server) handleInitialState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.initialState())
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, month, ok := calendar.ParseInput(q.Get("year"), q.Get("month"))
	if !ok || month < 1 || month > 12 {
		writeError(w, faults.Invalidf("invalid year/month %q/%q", q.Get("year"), q.Get("month")), errorBody{})
		return
	}
	g := calendar.Build(year, month)
	writeJSON(w, http.StatusOK, calendarResponse{Year: year, Month: month, Weeks: g.Weeks, Markdown: g.Markdown()})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req := s.newForm()
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	refs, err := req.references()
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}
	text, err := s.studio.Preview(req.State, refs)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prompt": text})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req := s.newForm()
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	refs, err := req.references()
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}

	rec := notify.NewRecorder()
	res, err := s.studio.GenerateImages(notify.NewContext(r.Context(), rec), req.State, refs)
	if err != nil {
		writeError(w, err, errorBody{State: &res.App, Notifications: rec.All()})
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{State: res.App, Images: res.Images, Notifications: rec.All()})
}

func (s *Server) handleCaptions(w http.ResponseWriter, r *http.Request) {
	var req captionsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	rec := notify.NewRecorder()
	out, err := s.studio.GenerateCaptions(notify.NewContext(r.Context(), rec), req.Keywords)
	if err != nil {
		writeError(w, err, errorBody{Notifications: rec.All()})
		return
	}
	if out == nil {
		out = []string{}
	}
	writeJSON(w, http.StatusOK, captionsResponse{Captions: out, Notifications: rec.All()})
}

func (s *Server) handleGalleryList(w http.ResponseWriter, r *http.Request) {
	images := s.studio.Gallery.List()
	if images == nil {
		images = []gallery.Image{}
	}
	writeJSON(w, http.StatusOK, images)
}

func (s *Server) handleGalleryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.studio.ClearGallery(r.Context()); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGalleryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.studio.DeleteImage(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePresetList(w http.ResponseWriter, r *http.Request) {
	list := s.studio.Presets.List()
	if list == nil {
		list = []presets.Preset{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePresetSave(w http.ResponseWriter, r *http.Request) {
	req := presetRequest{State: s.initialState()}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	p, err := s.studio.SavePreset(r.Context(), req.State, req.Name)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePresetGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := s.studio.Presets.Get(id)
	if !ok {
		writeError(w, fmt.Errorf("preset %q: %w", id, studio.ErrNotFound), errorBody{})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePresetApply(w http.ResponseWriter, r *http.Request) {
	req := s.newForm()
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeError(w, err, errorBody{})
			return
		}
	}
	app, err := s.studio.ApplyPreset(r.Context(), req.State, r.PathValue("id"))
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]state.App{"state": app})
}

func (s *Server) handlePresetDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.studio.DeletePreset(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	// Key resolves lazily; a missing key just leaves the flag false.
	_, _ = s.studio.Credentials.Key()
	writeJSON(w, http.StatusOK, statusResponse{
		Credential: s.studio.Credentials.Status(),
		Templates:  len(s.studio.Templates.IDs()),
		Gallery:    s.studio.Gallery.Len(),
		Presets:    len(s.studio.Presets.List()),
	})
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	path := ""
	if req.Persist {
		path = s.opts.CredentialsPath
	}
	if err := s.studio.SetKey(strings.TrimSpace(req.APIKey), path); err != nil {
		writeError(w, err, errorBody{})
		return
	}
	writeJSON(w, http.StatusOK, s.studio.Credentials.Status())
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if s.studio.Usage == nil {
		writeJSON(w, http.StatusOK, usage.AggregatedStats{})
		return
	}
	writeJSON(w, http.StatusOK, s.studio.Usage.Stats())
}
