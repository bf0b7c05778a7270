// Package proxi fetches spectra by Universal Spectrum Identifier from PROXI repositories.
package proxi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

var (
	// ErrNotFound is returned when no source could deliver the spectrum.
	ErrNotFound = errors.New("spectrum not found in any source")

	// ErrInvalidUSI is returned for identifiers that are not mzspec USIs.
	ErrInvalidUSI = errors.New("invalid USI")
)

// Source is the spectra endpoint of a PROXI repository.
type Source string

const (
	ProteomeCentral Source = "https://proteomecentral.proteomexchange.org/api/proxi/v0.1/spectra"
	PRIDE           Source = "https://www.ebi.ac.uk/pride/proxi/archive/v0.1/spectra"
	PeptideAtlas    Source = "https://peptideatlas.org/api/proxi/v0.1/spectra"
	MassIVE         Source = "https://massive.ucsd.edu/ProteoSAFe/proxi/v0.1/spectra"
	JPOST           Source = "https://repository.jpostdb.org/proxi/spectra"
)

// DefaultSources is the source priority used when none is configured.
var DefaultSources = []Source{ProteomeCentral, PRIDE, PeptideAtlas, MassIVE, JPOST}

// DefaultTimeout bounds a whole Fetch when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// CV accessions read from the spectrum attributes.
const (
	accessionSelectedIonMZ = "MS:1000744"
	accessionChargeState   = "MS:1000041"
)

// Attribute is a PROXI spectrum attribute.
type Attribute struct {
	Accession string `json:"accession"`
	Name      string `json:"name"`
	Value     any    `json:"value"`
}

// Spectrum is the PROXI wire representation of a spectrum.
type Spectrum struct {
	USI         string      `json:"usi,omitempty"`
	Attributes  []Attribute `json:"attributes"`
	MZs         []float64   `json:"mzs"`
	Intensities []float64   `json:"intensities"`
}

// Client fetches spectra from a prioritised list of sources.
type Client struct {
	httpClient *http.Client
	sources    []Source
	timeout    time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSources replaces the source priority list.
func WithSources(sources ...Source) Option {
	return func(c *Client) { c.sources = sources }
}

// WithTimeout sets the timeout applied to a Fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger for per-source failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a PROXI client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		sources:    DefaultSources,
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseSources parses source names or URLs ("pride", "massive", "https://...").
func ParseSources(names []string) ([]Source, error) {
	byName := map[string]Source{
		"proteomecentral": ProteomeCentral,
		"pride":           PRIDE,
		"peptideatlas":    PeptideAtlas,
		"massive":         MassIVE,
		"jpost":           JPOST,
	}

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if s, ok := byName[strings.ToLower(name)]; ok {
			sources = append(sources, s)
			continue
		}
		if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
			sources = append(sources, Source(name))
			continue
		}
		return nil, fmt.Errorf("unknown PROXI source %q", name)
	}
	return sources, nil
}

// Fetch queries all sources concurrently and returns the spectrum from the
// highest-priority source that answered successfully. When every source fails the
// error wraps ErrNotFound and joins the per-source errors.
func (c *Client) Fetch(ctx context.Context, usi string) (*core.Spectrum, error) {
	if !strings.HasPrefix(usi, "mzspec:") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUSI, usi)
	}
	if len(c.sources) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", ErrNotFound)
	}

	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type result struct {
		spec *Spectrum
		err  error
	}
	results := make([]result, len(c.sources))

	var wg sync.WaitGroup
	for i, source := range c.sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()
			spec, err := c.fetchFromSource(ctx, usi, source)
			results[i] = result{spec: spec, err: err}
		}(i, source)
	}
	wg.Wait()

	errs := make([]error, 0, len(results))
	for i, r := range results {
		if r.err == nil {
			spec, err := r.spec.toCore(usi)
			if err == nil {
				return spec, nil
			}
			r.err = err
		}
		c.logger.Debug("PROXI source failed",
			zap.String("source", string(c.sources[i])),
			zap.String("usi", usi),
			zap.Error(r.err))
		errs = append(errs, r.err)
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, usi, errors.Join(errs...))
}

// fetchFromSource requests {source}?usi=...&resultType=full
func (c *Client) fetchFromSource(ctx context.Context, usi string, source Source) (*Spectrum, error) {
	params := url.Values{}
	params.Set("usi", usi)
	params.Set("resultType", "full")
	reqURL := string(source) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", source, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spectrum from %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", reqURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch spectrum from %s: %d %s", reqURL, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	spec, err := decodeSpectrum(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spectrum json from %s: %w", reqURL, err)
	}
	return spec, nil
}

// decodeSpectrum accepts both a list of spectra (first one wins) and a single object.
func decodeSpectrum(body []byte) (*Spectrum, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var list []Spectrum
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, errors.New("empty spectrum list")
		}
		return &list[0], nil
	}

	var spec Spectrum
	if err := json.Unmarshal(body, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// toCore converts the wire spectrum; mismatched arrays are rejected.
func (s *Spectrum) toCore(usi string) (*core.Spectrum, error) {
	peaks, err := core.PeaksFromArrays(s.MZs, s.Intensities)
	if err != nil {
		return nil, fmt.Errorf("invalid spectrum for %s: %w", usi, err)
	}

	spec := &core.Spectrum{
		Name:         usi,
		Peaks:        peaks,
		Source:       usi,
		SourceFormat: "proxi",
	}
	for _, attr := range s.Attributes {
		switch attr.Accession {
		case accessionSelectedIonMZ:
			if v, ok := attrFloat(attr.Value); ok {
				spec.PrecursorMZ = v
			}
		case accessionChargeState:
			if v, ok := attrFloat(attr.Value); ok {
				spec.Charge = int(v)
			}
		}
	}
	return spec, nil
}

// attrFloat reads attribute values that repositories send as numbers or strings
func attrFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
