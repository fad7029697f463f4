package timebounds

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

func TestDefaults_UploadPutHasLargestFailBound(t *testing.T) {
	d := Defaults()
	require.Len(t, d, 7)

	put := d[UploadPut]
	assert.Equal(t, 900*time.Second, put.Fail)
	for op, b := range d {
		if op != UploadPut {
			assert.Less(t, b.Fail, put.Fail, op)
		}
	}
}

func TestResolve_NilConfigReturnsDefaults(t *testing.T) {
	assert.Equal(t, Defaults(), Resolve(nil))
	assert.Equal(t, Defaults(), Resolve(&models.ApiConfig{}))
}

func TestResolve_ValidOverridesAreTakenVerbatim(t *testing.T) {
	cfg := &models.ApiConfig{OperationTimeBounds: map[string]any{
		"upload_put":  map[string]any{"still_working_ms": 1000.0, "fail_ms": 2000.0},
		"config_load": map[string]any{"still_working_ms": 0, "fail_ms": 0},
		"custom_op":   map[string]any{"still_working_ms": int64(7), "fail_ms": 8.5},
	}}

	got := Resolve(cfg)

	assert.Equal(t, TimeBound{StillWorking: time.Second, Fail: 2 * time.Second}, got[UploadPut])
	assert.Equal(t, TimeBound{}, got[ConfigLoad])
	assert.Equal(t, TimeBound{StillWorking: 7 * time.Millisecond, Fail: 8500 * time.Microsecond}, got["custom_op"])
	assert.Equal(t, Defaults()[WopiInfo], got[WopiInfo])
}

func TestResolve_InvalidOverridesKeepDefaultPerKey(t *testing.T) {
	defaults := Defaults()

	tests := []struct {
		name string
		op   Operation
		raw  any
	}{
		{name: "not an object", op: UploadCreate, raw: "fast"},
		{name: "nil", op: ConfigLoad, raw: nil},
		{name: "missing fail", op: UploadCreate, raw: map[string]any{"still_working_ms": 10.0}},
		{name: "missing still working", op: UploadFinalize, raw: map[string]any{"fail_ms": 10.0}},
		{name: "negative", op: WopiInfo, raw: map[string]any{"still_working_ms": -1.0, "fail_ms": 10.0}},
		{name: "NaN", op: WopiIframe, raw: map[string]any{"still_working_ms": math.NaN(), "fail_ms": 10.0}},
		{name: "infinite", op: PreviewPDF, raw: map[string]any{"still_working_ms": 1.0, "fail_ms": math.Inf(1)}},
		{name: "string number", op: ConfigLoad, raw: map[string]any{"still_working_ms": "1", "fail_ms": "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &models.ApiConfig{OperationTimeBounds: map[string]any{
				string(tt.op): tt.raw,
				"upload_put":  map[string]any{"still_working_ms": 1.0, "fail_ms": 2.0},
			}}

			var got map[Operation]TimeBound
			require.NotPanics(t, func() { got = Resolve(cfg) })

			assert.Equal(t, defaults[tt.op], got[tt.op])
			assert.Equal(t, TimeBound{StillWorking: time.Millisecond, Fail: 2 * time.Millisecond}, got[UploadPut])
		})
	}
}

func TestResolve_FromServerJSON(t *testing.T) {
	var cfg models.ApiConfig
	require.NoError(t, json.Unmarshal([]byte(`{
		"OPERATION_TIME_BOUNDS": {
			"wopi_info": {"still_working_ms": 100, "fail_ms": 300},
			"preview_pdf": {"still_working_ms": 100},
			"upload_create": [1, 2]
		}
	}`), &cfg))

	got := Resolve(&cfg)
	assert.Equal(t, TimeBound{StillWorking: 100 * time.Millisecond, Fail: 300 * time.Millisecond}, got[WopiInfo])
	assert.Equal(t, Defaults()[PreviewPDF], got[PreviewPDF])
	assert.Equal(t, Defaults()[UploadCreate], got[UploadCreate])
}

func TestGet_UnknownOperationFallsBack(t *testing.T) {
	assert.Equal(t, TimeBound{StillWorking: 5000 * time.Millisecond, Fail: 20000 * time.Millisecond}, Get("nonexistent_key", nil))
	assert.Equal(t, Defaults()[UploadPut], Get(UploadPut, nil))
}

func TestGet_HugeOverridesSaturate(t *testing.T) {
	cfg := &models.ApiConfig{OperationTimeBounds: map[string]any{
		"upload_put": map[string]any{"still_working_ms": 1e13, "fail_ms": 1e300},
	}}

	got := Get(UploadPut, cfg)
	assert.Equal(t, time.Duration(math.MaxInt64), got.StillWorking)
	assert.Equal(t, time.Duration(math.MaxInt64), got.Fail)

	cfg.OperationTimeBounds["upload_put"] = map[string]any{"still_working_ms": 9.2e12, "fail_ms": 1e12}
	got = Get(UploadPut, cfg)
	assert.Equal(t, time.Duration(9.2e12)*time.Millisecond, got.StillWorking)
	assert.Equal(t, time.Duration(1e12)*time.Millisecond, got.Fail)
}

func TestGet_StillWorkingAboveFailIsNotRejected(t *testing.T) {
	cfg := &models.ApiConfig{OperationTimeBounds: map[string]any{
		"config_load": map[string]any{"still_working_ms": 500.0, "fail_ms": 100.0},
	}}
	assert.Equal(t, TimeBound{StillWorking: 500 * time.Millisecond, Fail: 100 * time.Millisecond}, Get(ConfigLoad, cfg))
}
