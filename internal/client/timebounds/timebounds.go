// Package timebounds maps named long-running operations to the two delays
// used for user feedback: when to say "still working" and when to give up.
//
// A fixed default table can be overridden per operation by the server
// configuration. Overrides are validated one by one; a malformed entry is
// dropped and only that operation keeps its default.
package timebounds

import (
	"math"
	"time"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

// Operation names a time-bounded operation.
type Operation string

const (
	ConfigLoad     Operation = "config_load"
	WopiInfo       Operation = "wopi_info"
	WopiIframe     Operation = "wopi_iframe"
	PreviewPDF     Operation = "preview_pdf"
	UploadCreate   Operation = "upload_create"
	UploadPut      Operation = "upload_put"
	UploadFinalize Operation = "upload_finalize"
)

// TimeBound holds the "still working" threshold and the failure threshold.
// StillWorking <= Fail is expected but not enforced.
type TimeBound struct {
	StillWorking time.Duration
	Fail         time.Duration
}

// Fallback is returned for operations absent from the resolved table.
var Fallback = TimeBound{StillWorking: 5 * time.Second, Fail: 20 * time.Second}

const (
	stillWorkingKey = "still_working_ms"
	failKey         = "fail_ms"
)

// Defaults returns a fresh copy of the built-in table.
func Defaults() map[Operation]TimeBound {
	return map[Operation]TimeBound{
		ConfigLoad:     {StillWorking: 2 * time.Second, Fail: 10 * time.Second},
		WopiInfo:       {StillWorking: 3 * time.Second, Fail: 15 * time.Second},
		WopiIframe:     {StillWorking: 5 * time.Second, Fail: 30 * time.Second},
		PreviewPDF:     {StillWorking: 4 * time.Second, Fail: 25 * time.Second},
		UploadCreate:   {StillWorking: 2500 * time.Millisecond, Fail: 12 * time.Second},
		UploadPut:      {StillWorking: 10 * time.Second, Fail: 900 * time.Second},
		UploadFinalize: {StillWorking: 3 * time.Second, Fail: 20 * time.Second},
	}
}

// Resolve merges valid overrides from cfg over the defaults. cfg may be nil.
func Resolve(cfg *models.ApiConfig) map[Operation]TimeBound {
	bounds := Defaults()
	if cfg == nil {
		return bounds
	}

	for name, raw := range cfg.OperationTimeBounds {
		b, ok := parseOverride(raw)
		if !ok {
			continue
		}
		bounds[Operation(name)] = b
	}
	return bounds
}

// Get returns the resolved bound for name, or Fallback when unknown.
func Get(name Operation, cfg *models.ApiConfig) TimeBound {
	if b, ok := Resolve(cfg)[name]; ok {
		return b
	}
	return Fallback
}

func parseOverride(raw any) (TimeBound, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return TimeBound{}, false
	}

	stillWorking, ok := millis(obj[stillWorkingKey])
	if !ok {
		return TimeBound{}, false
	}
	fail, ok := millis(obj[failKey])
	if !ok {
		return TimeBound{}, false
	}
	return TimeBound{StillWorking: stillWorking, Fail: fail}, true
}

// millis accepts the numeric types produced by encoding/json and by Go
// callers building a config by hand.
func millis(v any) (time.Duration, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	// Durations past the int64 range saturate instead of wrapping negative.
	ns := f * float64(time.Millisecond)
	if ns >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(ns), true
}
