package proxi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testUSI = "mzspec:PXD000561:Adult_Frontalcortex_bRP_Elite_85_f09:scan:17555:VLHPLEGAVVIIFK/2"

func newSource(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("usi") != testUSI || r.URL.Query().Get("resultType") != "full" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPriority(t *testing.T) {
	failing := newSource(t, http.StatusNotFound, "")
	second := newSource(t, http.StatusOK, `[{"mzs":[100.5,200.25],"intensities":[10,20],
		"attributes":[{"accession":"MS:1000744","name":"selected ion m/z","value":"767.9714"},
		{"accession":"MS:1000041","name":"charge state","value":2}]}]`)
	third := newSource(t, http.StatusOK, `{"mzs":[1],"intensities":[1],"attributes":[]}`)

	c := NewClient(WithSources(Source(failing.URL), Source(second.URL), Source(third.URL)))
	spec, err := c.Fetch(context.Background(), testUSI)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(spec.Peaks) != 2 || spec.Peaks[1].MZ != 200.25 {
		t.Errorf("peaks = %+v", spec.Peaks)
	}
	if spec.PrecursorMZ != 767.9714 || spec.Charge != 2 {
		t.Errorf("precursor = %v, charge = %d", spec.PrecursorMZ, spec.Charge)
	}
	if spec.Source != testUSI || spec.SourceFormat != "proxi" {
		t.Errorf("source = %s / %s", spec.Source, spec.SourceFormat)
	}
}

func TestFetchSingleObject(t *testing.T) {
	src := newSource(t, http.StatusOK, `{"mzs":[300],"intensities":[5],"attributes":[]}`)
	spec, err := NewClient(WithSources(Source(src.URL))).Fetch(context.Background(), testUSI)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Peaks) != 1 || spec.Peaks[0].MZ != 300 {
		t.Errorf("peaks = %+v", spec.Peaks)
	}
}

func TestFetchSkipsMalformedSource(t *testing.T) {
	mismatched := newSource(t, http.StatusOK, `{"mzs":[1,2],"intensities":[1],"attributes":[]}`)
	good := newSource(t, http.StatusOK, `{"mzs":[3],"intensities":[4],"attributes":[]}`)

	spec, err := NewClient(WithSources(Source(mismatched.URL), Source(good.URL))).Fetch(context.Background(), testUSI)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Peaks[0].MZ != 3 {
		t.Errorf("peaks = %+v", spec.Peaks)
	}
}

func TestFetchAllFail(t *testing.T) {
	notFound := newSource(t, http.StatusNotFound, "")
	garbage := newSource(t, http.StatusOK, "not json")
	empty := newSource(t, http.StatusOK, "[]")

	_, err := NewClient(WithSources(Source(notFound.URL), Source(garbage.URL), Source(empty.URL))).
		Fetch(context.Background(), testUSI)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, part := range []string{"404", "parse spectrum json", "empty spectrum list"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("error %q does not mention %q", err, part)
		}
	}
}

func TestFetchTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	c := NewClient(WithSources(Source(slow.URL)), WithTimeout(50*time.Millisecond))
	if _, err := c.Fetch(context.Background(), testUSI); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after timeout, got %v", err)
	}
}

func TestFetchInvalidUSI(t *testing.T) {
	if _, err := NewClient().Fetch(context.Background(), "PXD000561:scan:1"); !errors.Is(err, ErrInvalidUSI) {
		t.Errorf("expected ErrInvalidUSI, got %v", err)
	}
	if _, err := NewClient(WithSources()).Fetch(context.Background(), testUSI); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound without sources, got %v", err)
	}
}

func TestParseSources(t *testing.T) {
	got, err := ParseSources([]string{"PRIDE", " massive ", "https://example.org/proxi/spectra"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Source{PRIDE, MassIVE, Source("https://example.org/proxi/spectra")}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("source %d = %s, want %s", i, got[i], want[i])
		}
	}
	if _, err := ParseSources([]string{"uniprot"}); err == nil {
		t.Error("expected error for unknown source")
	}
}
