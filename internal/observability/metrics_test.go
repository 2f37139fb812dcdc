package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObservePush("ok", 3, 1, 2, 20*time.Millisecond)
	m.ObservePush("ok", 2, 0, 0, 10*time.Millisecond)
	m.ObserveAPI("POST", "/sync/push", "200", 30*time.Millisecond)
	m.ObserveLeaderboardRun("ok", time.Second, 10, 42)
	m.ObserveLeaderboardRun("failed", time.Second, 0, 0)

	if got := m.PushItems("accepted"); got != 5 {
		t.Fatalf("accepted = %v", got)
	}
	if got := m.LeaderboardRuns("failed"); got != 1 {
		t.Fatalf("failed runs = %v", got)
	}
	if got := m.leaderboardEntries.Value(); got != 10 {
		t.Fatalf("entries gauge = %v (failed run must not reset it)", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`es_sync_push_items_total{outcome="accepted"} 5`,
		`es_sync_push_items_total{outcome="invalid"} 2`,
		`es_api_requests_total{method="POST",route="/sync/push",status="200"} 1`,
		`es_sync_push_duration_seconds_count{status="ok"} 2`,
		`es_sync_push_duration_seconds_bucket{status="ok",le="+Inf"} 2`,
		`# TYPE es_leaderboard_runs_total counter`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObservePush("ok", 1, 1, 1, time.Millisecond)
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncRateLimited("/sync/push")
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLabelEscaping(t *testing.T) {
	if got := labelString([]string{"route"}, []string{`a"b\c`}); got != `{route="a\"b\\c"}` {
		t.Fatalf("labelString = %s", got)
	}
	if got := labelString([]string{"a", "b"}, []string{"x"}); got != `{a="x",b="unknown"}` {
		t.Fatalf("missing value = %s", got)
	}
	if got := withLe("", "0.5"); got != `{le="0.5"}` {
		t.Fatalf("withLe = %s", got)
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" api-key = abc , broken, =x ,team=core")
	if len(h) != 2 || h["api-key"] != "abc" || h["team"] != "core" {
		t.Fatalf("headers = %v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty input")
	}
}
