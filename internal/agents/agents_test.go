package agents

import (
	"context"
	"strings"
	"testing"

	"tradingagents/internal/adapters/ai"
	"tradingagents/internal/adapters/config"
	"tradingagents/internal/dataflows"
	"tradingagents/pkg/errors"
)

type fakeChat struct {
	reply   string
	err     error
	lastReq ai.CompletionRequest
}

func (f *fakeChat) Provider() string { return "fake" }
func (f *fakeChat) Model() string    { return "fake-model" }

func (f *fakeChat) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestAgent_Respond(t *testing.T) {
	client := &fakeChat{reply: "measured take"}
	agent := New(RoleTrader, "You are the trader.", client)

	reply, err := agent.Respond(context.Background(), "what now?")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if reply != "measured take" {
		t.Errorf("reply = %q", reply)
	}
	if client.lastReq.System != "You are the trader." {
		t.Errorf("system prompt not forwarded: %q", client.lastReq.System)
	}
	if len(client.lastReq.Messages) != 1 || client.lastReq.Messages[0].Role != ai.RoleUser {
		t.Errorf("messages = %+v", client.lastReq.Messages)
	}
}

func TestAgent_RespondPropagatesError(t *testing.T) {
	client := &fakeChat{err: errors.New("model down")}
	agent := New(RoleTrader, "system", client)

	if _, err := agent.Respond(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}
}

func offlineRouter(t *testing.T, seed ...*dataflows.ToolResult) *dataflows.Router {
	t.Helper()
	cfg := config.Default()
	cfg.Tools.Online = false
	cfg.Paths.DataCacheDir = t.TempDir()

	cache := dataflows.NewFileCache(cfg.Paths.DataCacheDir)
	for _, result := range seed {
		if err := cache.Write(result); err != nil {
			t.Fatalf("seed cache: %v", err)
		}
	}
	return dataflows.NewRouter(cfg)
}

func TestAnalyst_Report(t *testing.T) {
	router := offlineRouter(t, &dataflows.ToolResult{
		Tool:   dataflows.ToolCompanyNews,
		Ticker: "AAPL",
		Date:   "2026-08-01",
		Source: dataflows.SourceLive,
		Text:   "supplier checks look strong",
	})

	client := &fakeChat{reply: "news skews positive"}
	analyst := NewAnalyst(RoleNewsAnalyst, "You are a news analyst.",
		[]string{dataflows.ToolCompanyNews}, client, router)

	report, err := analyst.Report(context.Background(), "AAPL", "2026-08-01")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if report != "news skews positive" {
		t.Errorf("report = %q", report)
	}

	prompt := client.lastReq.Messages[0].Content
	if !strings.Contains(prompt, "supplier checks look strong") {
		t.Errorf("fetched data missing from prompt: %q", prompt)
	}
}

func TestAnalyst_ReportAbortsOnMissingData(t *testing.T) {
	router := offlineRouter(t)
	analyst := NewAnalyst(RoleNewsAnalyst, "system",
		[]string{dataflows.ToolCompanyNews}, &fakeChat{reply: "unused"}, router)

	_, err := analyst.Report(context.Background(), "AAPL", "2026-08-01")
	if !errors.Is(err, errors.ErrDataUnavailable) {
		t.Errorf("got %v, want ErrDataUnavailable", err)
	}
}

func TestJudgeSufficient(t *testing.T) {
	tests := []struct {
		verdict string
		want    bool
	}{
		{"SUFFICIENT", true},
		{"The debate is sufficient to decide.", true},
		{"CONTINUE", false},
		{"keep going", false},
	}

	for _, tt := range tests {
		predicate := JudgeSufficient(&fakeChat{reply: tt.verdict})
		got, err := predicate(context.Background(), "transcript")
		if err != nil {
			t.Fatalf("predicate failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("verdict %q: got %v, want %v", tt.verdict, got, tt.want)
		}
	}
}

func TestJudgeSufficient_ErrorSurfaces(t *testing.T) {
	predicate := JudgeSufficient(&fakeChat{err: errors.New("model down")})
	if _, err := predicate(context.Background(), "transcript"); err == nil {
		t.Fatal("expected judge error to surface")
	}
}

func TestResearcher_ArgueWithoutMemory(t *testing.T) {
	client := &fakeChat{reply: "the bull case holds"}
	bull := NewBullResearcher(client, nil)

	arg, err := bull.Argue(context.Background(), "reports", "transcript so far")
	if err != nil {
		t.Fatalf("Argue failed: %v", err)
	}
	if arg != "the bull case holds" {
		t.Errorf("argument = %q", arg)
	}
	if !strings.Contains(client.lastReq.Messages[0].Content, "No past memories found.") {
		t.Error("memoryless researcher should state no memories")
	}
}
