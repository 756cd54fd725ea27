// Package web exposes a small status/control HTTP API for the timer so the
// appliance can be inspected and driven from the darkroom workstation.
package web

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"

	"nbtimer/internal/config"
	"nbtimer/internal/display"
	"nbtimer/internal/exposure"
	"nbtimer/internal/fstop"
	appLog "nbtimer/internal/log"
)

// Panel is the slice of the display driver the server needs.
type Panel interface {
	Snapshot() []byte
}

// Server provides HTTP APIs for status, exposure control and configuration.
type Server struct {
	cfg     *config.Config
	cfgPath string
	panel   Panel
	session *exposure.Controller
	mux     *http.ServeMux
}

// NewServer constructs a new Server. cfgPath may be empty; config saves are
// then rejected.
func NewServer(cfg *config.Config, cfgPath string, panel Panel, session *exposure.Controller) *Server {
	s := &Server{
		cfg:     cfg,
		cfgPath: cfgPath,
		panel:   panel,
		session: session,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/exposure", s.handleExposure)
	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// statusResponse is the JSON response shape for /api/status.
type statusResponse struct {
	State       string   `json:"state"`
	BaseMS      uint32   `json:"base_ms"`
	Resolution  string   `json:"resolution"`
	RemainingMS uint32   `json:"remaining_ms,omitempty"`
	Strip       []uint32 `json:"strip,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	s.writeStatus(w)
}

func (s *Server) writeStatus(w http.ResponseWriter) {
	st := s.session.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		State:       st.State.String(),
		BaseMS:      st.BaseMS,
		Resolution:  st.Resolution.String(),
		RemainingMS: st.RemainingMS,
		Strip:       st.Strip,
	})
}

// exposureRequest is the JSON request shape for POST /api/exposure.
//
// Actions:
//   - "run":    start the next exposure
//   - "cancel": abort the running exposure
//   - "focus":  toggle focus mode
//   - "strip":  arm a test strip (steps defaults to the configured value)
//   - "up", "down": step the base time one f-stop
type exposureRequest struct {
	Action string `json:"action"`
	Steps  int    `json:"steps,omitempty"`
}

func (s *Server) handleExposure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req exposureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var err error
	switch req.Action {
	case "run":
		err = s.session.Run()
	case "cancel":
		err = s.session.Cancel()
	case "focus":
		err = s.session.Focus()
	case "strip":
		steps := req.Steps
		if steps <= 0 {
			steps = s.cfg.Exposure.TestStripSteps
		}
		err = s.session.StartStrip(steps)
	case "up":
		err = s.session.Adjust(true)
	case "down":
		err = s.session.Adjust(false)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.writeStatus(w)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.cfg)
	case http.MethodPut:
		if s.cfgPath == "" {
			writeError(w, http.StatusForbidden, "config save disabled")
			return
		}
		var next config.Config
		if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		next.Normalize()
		if err := next.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := next.Save(s.cfgPath); err != nil {
			appLog.Error("config save failed", err, "path", s.cfgPath)
			writeError(w, http.StatusInternalServerError, "save failed")
			return
		}
		*s.cfg = next
		// Exposure defaults apply to the next session step.
		s.session.SetResolution(parseResolution(next.Exposure.StopResolution))
		writeJSON(w, http.StatusOK, s.cfg)
	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or PUT")
	}
}

// handlePreview renders the current framebuffer as a PNG, one image pixel
// per panel pixel.
func (s *Server) handlePreview(w http.ResponseWriter, _ *http.Request) {
	raw := s.panel.Snapshot()
	img := image.NewGray(image.Rect(0, 0, display.Width, display.Height))
	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			if raw[(y/8)*display.PageSize+x]&(1<<(y%8)) != 0 {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		appLog.Error("preview encode failed", err)
	}
}

func parseResolution(s string) fstop.Resolution {
	switch s {
	case "full":
		return fstop.Full
	case "half":
		return fstop.Half
	case "sixth":
		return fstop.Sixth
	default:
		return fstop.Third
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
