//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"math"
	"syscall/js"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorProcessing
	ErrorPanic
)

// Matches two spectra.
// Args: queryMZs, queryIntensities, referenceMZs, referenceIntensities, low, high, unit
// Returns: {error: number, data: {matches, forward, backward, candidates, non_comparable} | string}
func matchPeaks(this js.Value, args []js.Value) (result interface{}) {
	defer recoverResponse(&result)

	if len(args) < 7 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 7 arguments: queryMZs, queryIntensities, referenceMZs, referenceIntensities, low, high, unit")
	}

	arrays := make([][]float64, 4)
	names := []string{"queryMZs", "queryIntensities", "referenceMZs", "referenceIntensities"}
	for i := range arrays {
		values, err := floatArray(args[i], names[i])
		if err != nil {
			return makeErrorResponse(ErrorInvalidArgs, err.Error())
		}
		arrays[i] = values
	}

	window, err := windowArg(args[4], args[5], args[6])
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}

	res, err := match.MatchArrays(arrays[0], arrays[1], arrays[2], arrays[3], window)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, err.Error())
	}
	if res.Matches == nil {
		res.Matches = []match.Index{}
	}
	return makeDataResponse(res)
}

// Annotates a spectrum with the b and y ions of a peptide.
// Args: sequence, mzs, intensities, low, high, unit
// Returns: {error: number, data: array | string}
func annotateSpectrum(this js.Value, args []js.Value) (result interface{}) {
	defer recoverResponse(&result)

	if len(args) < 6 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 6 arguments: sequence, mzs, intensities, low, high, unit")
	}
	if args[0].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "sequence must be a string")
	}
	mzs, err := floatArray(args[1], "mzs")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	intensities, err := floatArray(args[2], "intensities")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	window, err := windowArg(args[3], args[4], args[5])
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}

	records, err := annotate.Spectrum(args[0].String(), mzs, intensities, window)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, err.Error())
	}
	if records == nil {
		records = []annotate.MatchedFragmentPeak{}
	}
	return makeDataResponse(records)
}

func floatArray(v js.Value, name string) ([]float64, error) {
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("%s must be an Array or Float64Array", name)
	}
	length := v.Length()
	out := make([]float64, length)
	for i := 0; i < length; i++ {
		val := v.Index(i)
		if val.Type() != js.TypeNumber {
			return nil, fmt.Errorf("%s element %d is not a number", name, i)
		}
		out[i] = val.Float()
	}
	return out, nil
}

// windowArg accepts the unit as a name ("Da", "ppm", "mmu") or a code (0 ppm, 1 Da, 2 mmu)
func windowArg(low, high, unit js.Value) (tolerance.Window, error) {
	if low.Type() != js.TypeNumber || high.Type() != js.TypeNumber {
		return tolerance.Window{}, fmt.Errorf("low and high must be numbers")
	}

	var (
		u   tolerance.Unit
		err error
	)
	switch unit.Type() {
	case js.TypeString:
		u, err = tolerance.ParseUnit(unit.String())
	case js.TypeNumber:
		code := unit.Float()
		if code != math.Trunc(code) {
			return tolerance.Window{}, fmt.Errorf("unit code must be an integer, got %v", code)
		}
		u, err = tolerance.UnitFromCode(int(code))
	default:
		return tolerance.Window{}, fmt.Errorf("unit must be a string or a number")
	}
	if err != nil {
		return tolerance.Window{}, err
	}
	return tolerance.New(u, low.Float(), high.Float())
}

func makeDataResponse(data any) js.Value {
	encoded, err := json.Marshal(data)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, fmt.Sprintf("Failed to encode result: %v", err))
	}
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", js.Global().Get("JSON").Call("parse", string(encoded)))
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func recoverResponse(result *interface{}) {
	if r := recover(); r != nil {
		*result = makeErrorResponse(ErrorPanic, fmt.Sprintf("internal error: %v", r))
	}
}

func main() {
	console := js.Global().Get("console")

	done := make(chan struct{})

	js.Global().Set("matchPeaks", js.FuncOf(matchPeaks))
	js.Global().Set("annotateSpectrum", js.FuncOf(annotateSpectrum))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	}

	if !console.IsUndefined() {
		console.Call("log", "PeakMatch WASM module loaded")
	}

	<-done
}
