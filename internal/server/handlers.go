package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/powercurve/internal/export"
	"github.com/jgoulah/powercurve/internal/logger"
	"github.com/jgoulah/powercurve/internal/metrics"
	"github.com/jgoulah/powercurve/internal/report"
)

//go:embed static/index.html
var static embed.FS

// metaResponse describes the loaded data set for the dashboard controls
type metaResponse struct {
	Years        []int         `json:"years"`
	Records      int           `json:"records"`
	Latest       string        `json:"latest,omitempty"`
	LoadedAt     string        `json:"loaded_at"`
	SourceURL    string        `json:"source_url,omitempty"`
	Reports      []report.Kind `json:"reports"`
	DefaultDays  report.Range  `json:"default_days"`
	DefaultWeeks report.Range  `json:"default_weeks"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	store := s.Store()
	resp := metaResponse{
		Years:        store.Years(),
		Records:      store.Len(),
		LoadedAt:     store.LoadedAt().Format(time.RFC3339),
		SourceURL:    s.opts.SourceURL,
		Reports:      report.Kinds,
		DefaultDays:  report.DefaultDays,
		DefaultWeeks: report.DefaultWeeks,
	}
	if !store.Latest().IsZero() {
		resp.Latest = store.Latest().Format(time.RFC3339)
	}

	writeJSON(w, resp)
}

// handleReport serves GET /api/reports/{year,day,week}
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	kind, err := report.ParseKind(strings.TrimPrefix(r.URL.Path, "/api/reports/"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	filter, err := parseFilter(r, kind)
	if err != nil {
		metrics.ObserveReport(string(kind), metrics.ResultError, 0)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		res, err := report.Build(s.Store(), kind, filter)
		if err != nil {
			metrics.ObserveReport(string(kind), metrics.ResultError, 0)
			http.Error(w, "build report error", http.StatusInternalServerError)
			return
		}
		metrics.ObserveReport(string(kind), metrics.ResultSuccess, time.Since(start))
		writeJSON(w, res)
		return
	}

	exportFormat, err := export.ParseFormat(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := report.Build(s.Store(), kind, filter)
	if err != nil {
		metrics.ObserveReport(string(kind), metrics.ResultError, 0)
		http.Error(w, "build report error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveReport(string(kind), metrics.ResultSuccess, time.Since(start))

	data, err := export.Render(res, exportFormat)
	if err != nil {
		metrics.IncExport(string(exportFormat), metrics.ResultError)
		logger.Error("rendering %s export: %v", exportFormat, err)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.IncExport(string(exportFormat), metrics.ResultSuccess)

	w.Header().Set("Content-Type", exportFormat.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFormat.FileName(kind)))
	_, _ = w.Write(data)
}

// parseFilter reads from, to and years; a missing bound takes the default
func parseFilter(r *http.Request, kind report.Kind) (report.Filter, error) {
	q := r.URL.Query()

	from, err := parseIntQuery(q.Get("from"))
	if err != nil {
		return report.Filter{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseIntQuery(q.Get("to"))
	if err != nil {
		return report.Filter{}, fmt.Errorf("to: %w", err)
	}
	years, err := report.ParseYears(q.Get("years"))
	if err != nil {
		return report.Filter{}, err
	}

	return report.NewFilter(kind, from, to, years)
}

func parseIntQuery(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid number %q", value)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encoding response: %v", err)
	}
}
