package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"CommonsSim/internal/model"
	"CommonsSim/internal/rng"
	"CommonsSim/internal/score"
	"CommonsSim/internal/simulation"
)

func testNotifier(url string) *TelegramNotifier {
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = url
	tn.Backoff = time.Millisecond
	return tn
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := testNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatal(err)
	}
	if got["chat_id"] != "42" || got["text"] != "<b>hi</b>" || got["parse_mode"] != "HTML" {
		t.Errorf("payload = %v", got)
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chat not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := testNotifier(srv.URL).Send(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Errorf("err = %v, want status 400", err)
	}
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := testNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testNotifier(srv.URL).SendWithRetry(context.Background(), "x", 2)
	if err == nil || !strings.Contains(err.Error(), "all 3 retries exhausted") {
		t.Errorf("err = %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestSendWithRetry_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tn := testNotifier(srv.URL)
	tn.Backoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := tn.SendWithRetry(ctx, "x", 3); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	if err := n.SendWithRetry(context.Background(), "x", 3); err != nil {
		t.Error(err)
	}
}

func testRun(t *testing.T, seed uint64) RunSummary {
	t.Helper()
	params := model.DefaultParams()
	params.Timesteps = 12
	params.RandomSeed = seed
	res, err := simulation.Run(params, rng.New(seed), simulation.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return RunSummary{Seed: seed, Result: res, Score: score.Evaluate(score.FromRun(res), score.DefaultSigma)}
}

func TestFormatRunReport(t *testing.T) {
	r := testRun(t, 5)
	msg := FormatRunReport(r.Result, r.Score)
	for _, want := range []string{
		"<b>CommonsSim run</b> " + r.Result.RunID[:8],
		"seed 5, 12 timesteps",
		"Token price:",
		"SMA10:",
		"Funding pool:",
		"price_ratio(",
		"Total:",
		r.Score.Grade,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatSweepReport(t *testing.T) {
	a, b := testRun(t, 1), testRun(t, 2)
	a.Score.Total, b.Score.Total = 100, 300
	msg := FormatSweepReport(4, []RunSummary{a, b})
	for _, want := range []string{"Sweep #4", "seed 1:", "seed 2:", "Mean score: 200", "Median score: 200", "Best: seed 2 (300"} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}

	if msg := FormatSweepReport(1, nil); !strings.Contains(msg, "No runs completed") {
		t.Errorf("empty sweep report = %q", msg)
	}
}
