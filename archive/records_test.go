package archive

import (
	"testing"
	"time"

	"github.com/pithecene-io/assay/types"
)

func testConfig() Config {
	return Config{
		Dataset: Dataset,
		Metric:  "signal_rate",
		Day:     "2026-03-14",
		RunID:   "run-1",
	}
}

func TestToResultRecordMap_Success(t *testing.T) {
	rec := types.SuccessRecord("1.0", 9996, "signal_rate", 0.4991, 153, 42)

	m := toResultRecordMap(rec, testConfig())

	if m["record_kind"] != RecordKind {
		t.Errorf("record_kind = %v, want %q", m["record_kind"], RecordKind)
	}
	if m["contract_version"] != types.Version {
		t.Errorf("contract_version = %v, want %q", m["contract_version"], types.Version)
	}
	if m["version"] != "1.0" || m["rows_processed"] != 9996 {
		t.Errorf("version/rows = %v/%v", m["version"], m["rows_processed"])
	}
	if m["value"] != 0.4991 {
		t.Errorf("value = %v, want 0.4991", m["value"])
	}
	if m["status"] != "success" {
		t.Errorf("status = %v, want success", m["status"])
	}
	if _, present := m["error"]; present {
		t.Error("success record map should omit error")
	}

	// Partition keys carried inside the record
	if m["metric"] != "signal_rate" || m["day"] != "2026-03-14" || m["run_id"] != "run-1" {
		t.Errorf("partition keys = %v/%v/%v", m["metric"], m["day"], m["run_id"])
	}
}

func TestToResultRecordMap_Failure(t *testing.T) {
	rec := types.FailureRecord("1.0", 120, 3, 42, "window 500 exceeds row count 120")

	m := toResultRecordMap(rec, testConfig())

	if m["status"] != "failure" {
		t.Errorf("status = %v, want failure", m["status"])
	}
	if m["error"] != "window 500 exceeds row count 120" {
		t.Errorf("error = %v", m["error"])
	}
	if _, present := m["value"]; present {
		t.Error("failure record map should omit value")
	}
}

func TestDeriveDay(t *testing.T) {
	// Partition day is derived in UTC regardless of local zone
	loc := time.FixedZone("UTC-5", -5*3600)
	start := time.Date(2026, 3, 14, 22, 30, 0, 0, loc)

	if got := DeriveDay(start); got != "2026-03-15" {
		t.Errorf("DeriveDay = %q, want 2026-03-15 (UTC rollover)", got)
	}
}
