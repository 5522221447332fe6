package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/tosih/rpm-simulator/pkg/compare"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/guide"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/selector"
	"github.com/tosih/rpm-simulator/pkg/store"
	"github.com/tosih/rpm-simulator/pkg/sweep"
)

//go:embed templates/*
var templates embed.FS

const (
	defaultSweepMax  = 120
	defaultSweepStep = 5
)

type Server struct {
	sim         *store.Simulator
	sel         *selector.Selector
	port        int
	openBrowser bool

	// ctx outlives single requests; make loads started over HTTP run under it.
	ctx context.Context
	mux *Mux
}

func NewServer(ctx context.Context, sim *store.Simulator, sel *selector.Selector, port int, openBrowser bool) *Server {
	s := &Server{
		sim:         sim,
		sel:         sel,
		port:        port,
		openBrowser: openBrowser,
		ctx:         ctx,
		mux:         NewMux("rpm-simulator"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/speed", s.handleSpeed)
	s.mux.HandleFunc("POST /api/gear", s.handleGear)
	s.mux.HandleFunc("POST /api/gear-count", s.handleGearCount)
	s.mux.HandleFunc("POST /api/gear-ratio", s.handleGearRatio)
	s.mux.HandleFunc("POST /api/axle-ratio", s.handleAxleRatio)
	s.mux.HandleFunc("POST /api/tire-diameter", s.handleTireDiameter)
	s.mux.HandleFunc("POST /api/custom-mode", s.handleCustomMode)
	s.mux.HandleFunc("POST /api/preset", s.handlePreset)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)

	s.mux.HandleFunc("GET /api/vehicle", s.handleVehicle)
	s.mux.HandleFunc("POST /api/vehicle/make", s.handleSelectMake)
	s.mux.HandleFunc("POST /api/vehicle/model", s.handleSelectModel)
	s.mux.HandleFunc("POST /api/vehicle/year", s.handleSelectYear)
	s.mux.HandleFunc("POST /api/vehicle/trim", s.handleSelectTrim)

	s.mux.HandleFunc("GET /api/makes", s.handleMakes)
	s.mux.HandleFunc("GET /api/presets", s.handlePresets)
	s.mux.HandleFunc("GET /api/references", s.handleReferences)
	s.mux.HandleFunc("GET /api/guide", s.handleGuide)
	s.mux.HandleFunc("GET /api/guide/{key}", s.handleGuideTopic)
	s.mux.HandleFunc("GET /api/sweep", s.handleSweep)
	s.mux.HandleFunc("GET /api/compare", s.handleCompare)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	url := fmt.Sprintf("http://localhost%s", addr)

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("RPM Simulator Web Interface Started")

	pterm.Info.Printf("Serving at %s\n", url)
	pterm.Info.Println("Press Ctrl+C to stop the server")
	pterm.Println()

	if s.openBrowser {
		openBrowser(url)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-s.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			glog.Errorf("Server shutdown: %s", err)
		}
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	content, err := templates.ReadFile("templates/index.html")
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Errorf("Cannot encode response: %s", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	switch {
	case errors.Is(err, store.ErrUnknownPreset), errors.Is(err, selector.ErrTrimNotFound), errors.Is(err, errNotFound):
		code = http.StatusNotFound
	case errors.Is(err, selector.ErrMakeNotLoaded):
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

var (
	errNotFound     = errors.New("not found")
	errMissingValue = errors.New("missing value")
)

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}

func (s *Server) writeState(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, s.sim.State())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w)
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

func (s *Server) decodeValue(w http.ResponseWriter, r *http.Request) (float64, bool) {
	var req valueRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return 0, false
	}
	if req.Value == nil {
		writeError(w, errMissingValue)
		return 0, false
	}
	return *req.Value, true
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	v, ok := s.decodeValue(w, r)
	if !ok {
		return
	}
	if v < 0 {
		writeError(w, errors.Errorf("speed must not be negative, got %g", v))
		return
	}
	s.sim.SetSpeed(v)
	s.writeState(w)
}

func (s *Server) handleAxleRatio(w http.ResponseWriter, r *http.Request) {
	v, ok := s.decodeValue(w, r)
	if !ok {
		return
	}
	s.sim.SetAxleRatio(v)
	s.writeState(w)
}

type tireRequest struct {
	Value *float64 `json:"value"`
	Size  string   `json:"size"`
}

func (s *Server) handleTireDiameter(w http.ResponseWriter, r *http.Request) {
	var req tireRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch {
	case req.Size != "":
		d, err := formula.ParseTireSize(req.Size)
		if err != nil {
			writeError(w, err)
			return
		}
		s.sim.SetTireDiameter(d)
	case req.Value != nil:
		s.sim.SetTireDiameter(*req.Value)
	default:
		writeError(w, errors.New("missing value or size"))
		return
	}
	s.writeState(w)
}

func (s *Server) handleGear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Gear int `json:"gear"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sim.SetSelectedGear(req.Gear); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleGearCount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sim.SetGearCount(req.Count); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleGearRatio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int      `json:"index"`
		Value *float64 `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Value == nil {
		writeError(w, errMissingValue)
		return
	}
	if err := s.sim.SetGearRatio(req.Index, *req.Value); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleCustomMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.sim.SetCustomMode(req.Enabled)
	s.writeState(w)
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sim.ApplyPreset(req.Key); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sim.Reset()
	s.writeState(w)
}

func (s *Server) handleVehicle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sel.View())
}

func (s *Server) handleSelectMake(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Make string `json:"make"`
		// Wait holds the response until the make's catalog is loaded.
		Wait bool `json:"wait"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	done := s.sel.SelectMake(s.ctx, req.Make)
	if req.Wait {
		select {
		case <-done:
		case <-r.Context().Done():
			return
		}
	}
	writeJSON(w, http.StatusOK, s.sel.View())
}

func (s *Server) handleSelectModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sel.SelectModel(req.Model); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sel.View())
}

func (s *Server) handleSelectYear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year int `json:"year"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sel.SelectYear(req.Year); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sel.View())
}

func (s *Server) handleSelectTrim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Trim string `json:"trim"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sel.SelectTrim(req.Trim); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleMakes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sel.View().Makes)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Presets)
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"axleRatios": models.CommonAxleRatios,
		"tireSizes":  models.CommonTireSizes,
	})
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, guide.Topics())
}

func (s *Server) handleGuideTopic(w http.ResponseWriter, r *http.Request) {
	topic, ok := guide.Find(r.PathValue("key"))
	if !ok {
		writeError(w, errors.Wrapf(errNotFound, "guide topic %q", r.PathValue("key")))
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, errors.Wrapf(err, "invalid %s", name)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	min, err := queryFloat(r, "min", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	max, err := queryFloat(r, "max", defaultSweepMax)
	if err != nil {
		writeError(w, err)
		return
	}
	step, err := queryFloat(r, "step", defaultSweepStep)
	if err != nil {
		writeError(w, err)
		return
	}
	speeds, err := sweep.Speeds(min, max, step)
	if err != nil {
		writeError(w, err)
		return
	}

	state := s.sim.State()
	t := sweep.Build("current", state.Spec(), speeds, state.Thresholds)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":       t,
		"shiftPoints": t.ShiftPoints(),
	})
}

// vehicleByKey resolves a preset key, or "current" for the simulator's parameters.
func (s *Server) vehicleByKey(key string) (compare.Vehicle, error) {
	if key == "current" {
		return compare.Vehicle{Name: "Current", Spec: s.sim.State().Spec()}, nil
	}
	p, ok := models.FindPreset(key)
	if !ok {
		return compare.Vehicle{}, errors.Wrapf(store.ErrUnknownPreset, "%q", key)
	}
	return compare.Vehicle{Name: p.Name, Spec: p.Spec}, nil
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	a, err := s.vehicleByKey(r.URL.Query().Get("a"))
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := s.vehicleByKey(r.URL.Query().Get("b"))
	if err != nil {
		writeError(w, err)
		return
	}
	speed, err := queryFloat(r, "speed", s.sim.State().Speed)
	if err != nil {
		writeError(w, err)
		return
	}

	c := compare.Vehicles(a, b, speed)
	gears := make([]map[string]interface{}, 0, len(c.Gears))
	for _, g := range c.Gears {
		gear := map[string]interface{}{"gear": g.Gear}
		if !g.MissingA {
			gear["rpmA"] = g.RPMA
		}
		if !g.MissingB {
			gear["rpmB"] = g.RPMB
		}
		if !g.MissingA && !g.MissingB {
			gear["diff"] = g.Diff()
		}
		gears = append(gears, gear)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"a":     a.Name,
		"b":     b.Name,
		"speed": speed,
		"gears": gears,
	})
}
