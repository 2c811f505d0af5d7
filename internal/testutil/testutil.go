// Package testutil provides shared fixtures and a test logger.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// RecapCSV is a small recap export in the layout of the monthly template.
//
//	PT Maju    Bob  2 RFQ (1 converted)  Rp 700.000
//	PT Maju    Cy   1 RFQ (converted)    Rp 300.000
//	CV Sentosa Cy   1 RFQ (no status)    Rp  50.000
//	CV Sentosa Dee  1 RFQ (converted)    Rp 400.000
//	UD Jaya    Bob  1 RFQ (not converted)
const RecapCSV = `NO,NO. PENAWARAN,DATE,MARKERTING,CUSTOMER NAME,HARGA,HARGA (NEW),TOTAL,KETERANGAN
1,Q-001,2024-01-10,Bob,PT Maju,100000,0,500000,JADI OC
2,Q-002,2024-01-20,Bob,PT Maju,0,200000,0,TIDAK JADI OC
3,Q-003,05-Feb-24,Cy,PT Maju,,300000,,JADI OC
4,Q-004,,Cy,CV Sentosa,,50000,,
5,Q-005,2024-03-01,Bob,UD Jaya,,,,TIDAK JADI OC
6,Q-006,2024-02-28,Dee,CV Sentosa,,"Rp 400,000",,JADI OC
`

// WriteRecapFile writes content to name inside a fresh temp dir and returns
// the full path.
func WriteRecapFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
