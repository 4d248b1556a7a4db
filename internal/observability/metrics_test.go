package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/health", "", 200, 12*time.Millisecond)
	RecordHTTPRequest("POST", "/documents/:schema/decode", "Article", 400, time.Millisecond)
	RecordConversion(OpMarshal, 512, time.Millisecond, true)
	RecordConversion(OpUnmarshal, 0, time.Millisecond, false)

	if got := testutil.ToFloat64(codecConversions.WithLabelValues(OpUnmarshal, "false")); got < 1 {
		t.Fatalf("expected failed unmarshal to be counted, got %v", got)
	}
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "/documents/:schema/decode", "Article", "400")); got < 1 {
		t.Fatalf("expected schema-labelled request to be counted, got %v", got)
	}
	if n := testutil.CollectAndCount(codecBytes); n == 0 {
		t.Fatalf("expected wire byte histogram samples")
	}
	if err := prometheus.Register(codecDuration); err == nil {
		t.Fatalf("expected duplicate registration to be rejected")
	}
}

func TestInitLoggerTagsApp(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	InitLogger("docwire-test", &buf, zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	out := buf.String()
	if !strings.Contains(out, "docwire-test") || !strings.Contains(out, "visible") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
}
