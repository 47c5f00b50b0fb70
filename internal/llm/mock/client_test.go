package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skurihin/autograder/internal/llm"
)

func TestClient_RecordsCalls(t *testing.T) {
	client := New()

	resp, usage, err := client.CompleteWithSystem(context.Background(), "you are a grader", "evaluate readme")
	if err != nil {
		t.Fatalf("CompleteWithSystem() error = %v", err)
	}
	if resp != client.Response {
		t.Errorf("response = %q, want default", resp)
	}
	if usage.Total() != 150 {
		t.Errorf("usage total = %d, want 150", usage.Total())
	}
	if client.CallCount != 1 {
		t.Errorf("CallCount = %d, want 1", client.CallCount)
	}
	if client.LastSystem != "you are a grader" || client.LastPrompt != "evaluate readme" {
		t.Errorf("last call = (%q, %q) not recorded", client.LastSystem, client.LastPrompt)
	}

	client.Reset()
	if client.CallCount != 0 || len(client.Calls()) != 0 {
		t.Error("Reset() did not clear call history")
	}
}

func TestClient_ResponseForPromptSubstring(t *testing.T) {
	client := New().
		WithResponseFor("Unit Tests", `{"score": 40, "severity": "critical"}`).
		WithResponseFor("README", `{"score": 90, "severity": "strength"}`)

	resp, _, err := client.CompleteWithSystem(context.Background(), "", "CRITERION: unit tests coverage")
	if err != nil {
		t.Fatalf("CompleteWithSystem() error = %v", err)
	}
	if resp != `{"score": 40, "severity": "critical"}` {
		t.Errorf("response = %q, want the unit tests mapping (match is case-insensitive)", resp)
	}

	resp, _, _ = client.CompleteWithSystem(context.Background(), "", "CRITERION: something else")
	if resp != client.Response {
		t.Errorf("unmatched prompt got %q, want the default response", resp)
	}
}

func TestClient_Error(t *testing.T) {
	wantErr := errors.New("oracle down")
	client := New().WithError(wantErr)

	_, _, err := client.CompleteWithSystem(context.Background(), "", "anything")
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
	if client.CallCount != 1 {
		t.Errorf("CallCount = %d, failed calls must still be recorded", client.CallCount)
	}
}

func TestClient_DelayHonorsContext(t *testing.T) {
	client := New().WithDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := client.CompleteWithSystem(ctx, "", "anything")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
}

func TestClient_WithUsage(t *testing.T) {
	client := New().WithUsage(llm.Usage{InputTokens: 1, OutputTokens: 2})

	_, usage, err := client.CompleteWithSystem(context.Background(), "", "anything")
	if err != nil {
		t.Fatalf("CompleteWithSystem() error = %v", err)
	}
	if usage.InputTokens != 1 || usage.OutputTokens != 2 {
		t.Errorf("usage = %+v, want {1 2}", usage)
	}
}
