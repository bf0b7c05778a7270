package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/core"
	"github.com/ChrisMcGann/PeakMatch/pkg/fragment"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
)

// PeakArrays is a spectrum as parallel arrays.
type PeakArrays struct {
	MZs         []float64 `json:"mzs"`
	Intensities []float64 `json:"intensities"`
}

// MatchRequest is the body of POST /api/v1/match.
type MatchRequest struct {
	Query     PeakArrays        `json:"query"`
	Reference PeakArrays        `json:"reference"`
	Tolerance *tolerance.Window `json:"tolerance,omitempty"`
	Strategy  string            `json:"strategy,omitempty"`
	Workers   int               `json:"workers,omitempty"`
	Strict    *bool             `json:"strict,omitempty"`
}

// AnnotateRequest is the body of POST /api/v1/annotate.
type AnnotateRequest struct {
	Sequence      string            `json:"sequence"`
	MZs           []float64         `json:"mzs"`
	Intensities   []float64         `json:"intensities"`
	Tolerance     *tolerance.Window `json:"tolerance,omitempty"`
	Series        []string          `json:"series,omitempty"`
	Charges       []int             `json:"charges,omitempty"`
	Modifications string            `json:"modifications,omitempty"` // e.g. "Oxidation@M3;Carbamidomethyl@C5"
}

// AnnotateResponse wraps the annotation records.
type AnnotateResponse struct {
	Sequence string                         `json:"sequence"`
	Records  []annotate.MatchedFragmentPeak `json:"records"`
}

// IonTypesResponse is the body of GET /api/v1/ion-types.
type IonTypesResponse struct {
	IonTypes []annotate.IonType `json:"ion_types"`
	Colors   map[string]string  `json:"colors"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !s.decode(w, r, &req) {
		return
	}

	window := s.window
	if req.Tolerance != nil {
		window = *req.Tolerance
	}
	if err := window.Validate(); err != nil {
		s.respondFailure(w, err)
		return
	}

	cfg := s.matchCfg
	if req.Strategy != "" {
		strategy, err := match.ParseStrategy(req.Strategy)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Strategy = strategy
	}
	if req.Workers < 0 {
		s.respondError(w, http.StatusBadRequest, "workers must not be negative")
		return
	}
	if req.Workers != 0 {
		cfg.Workers = req.Workers
	}
	if req.Strict != nil {
		cfg.Strict = *req.Strict
	}

	s.logger.Debug("match request",
		zap.Int("query_peaks", len(req.Query.MZs)),
		zap.Int("reference_peaks", len(req.Reference.MZs)),
		zap.Stringer("tolerance", window),
		zap.String("strategy", string(cfg.Strategy)))

	result, err := match.MatchArrays(req.Query.MZs, req.Query.Intensities, req.Reference.MZs, req.Reference.Intensities,
		window, match.WithConfig(cfg))
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	if result.NonComparable > 0 {
		s.logger.Warn("NaN intensities ranked lowest", zap.Int("count", result.NonComparable))
	}
	if result.Matches == nil {
		result.Matches = []match.Index{}
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req AnnotateRequest
	if !s.decode(w, r, &req) {
		return
	}

	window := s.window
	if req.Tolerance != nil {
		window = *req.Tolerance
	}

	opts := append([]annotate.Option(nil), s.annotate...)
	if len(req.Series) > 0 {
		series := make([]fragment.Series, 0, len(req.Series))
		for _, label := range req.Series {
			sr, err := fragment.ParseSeries(label)
			if err != nil {
				s.respondFailure(w, err)
				return
			}
			series = append(series, sr)
		}
		opts = append(opts, annotate.WithSeries(series...))
	}
	if len(req.Charges) > 0 {
		opts = append(opts, annotate.WithCharges(req.Charges...))
	}
	if req.Modifications != "" {
		mods, err := core.DefaultModDatabase().ParseModString(req.Modifications, req.Sequence)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts = append(opts, annotate.WithModifications(mods))
	}

	s.logger.Debug("annotate request",
		zap.String("sequence", req.Sequence),
		zap.Int("peaks", len(req.MZs)),
		zap.Stringer("tolerance", window))

	records, err := annotate.Spectrum(req.Sequence, req.MZs, req.Intensities, window, opts...)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	if records == nil {
		records = []annotate.MatchedFragmentPeak{}
	}
	s.respondJSON(w, http.StatusOK, AnnotateResponse{Sequence: req.Sequence, Records: records})
}

func (s *Server) handleIonTypes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, IonTypesResponse{IonTypes: annotate.IonTypes(), Colors: annotate.PeakColors})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.Debug("invalid request body", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// preconditionErrors are caller mistakes answered with 400
var preconditionErrors = []error{
	core.ErrLengthMismatch,
	core.ErrEmptySequence,
	tolerance.ErrInvalidBounds,
	tolerance.ErrUnknownUnit,
	fragment.ErrInvalidSequence,
	fragment.ErrUnknownSeries,
	fragment.ErrUnsupportedSeries,
	fragment.ErrInvalidCharge,
	match.ErrNonComparableIntensity,
}

func statusFor(err error) int {
	for _, target := range preconditionErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) respondFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
