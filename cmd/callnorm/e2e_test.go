package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestCLIReplayJSONOutput(t *testing.T) {
	cmd := exec.Command("go", "run", "./cmd/callnorm", "replay", "--json")
	cmd.Env = append(os.Environ(), "CALLNORM_MOCK_STREAM=1")
	wd, _ := os.Getwd()
	cmd.Dir = filepath.Dir(filepath.Dir(wd))

	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if payload["run_id"] == "" {
		t.Fatalf("expected run_id")
	}
	calls, ok := payload["tool_calls"].([]any)
	if !ok || len(calls) != 2 {
		t.Fatalf("expected two tool calls, got %v", payload["tool_calls"])
	}
}

func TestCLINormalizeAssignIDs(t *testing.T) {
	fixture := t.TempDir()
	payloadPath := filepath.Join(fixture, "payload.json")
	payload := `[{"type":"function","function":{"name":"calculator","arguments":"{\"n\":1}"}}]`
	if err := os.WriteFile(payloadPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cmd := exec.Command("go", "run", "./cmd/callnorm", "normalize", "--json", "--assign-ids", payloadPath)
	wd, _ := os.Getwd()
	cmd.Dir = filepath.Dir(filepath.Dir(wd))

	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var msg struct {
		ToolCalls []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"tool_calls"`
	}
	if err := json.Unmarshal(out, &msg); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(msg.ToolCalls))
	}
	if msg.ToolCalls[0].ID == "" {
		t.Fatalf("expected an assigned identifier")
	}
}

func TestCLINormalizeMalformedEntry(t *testing.T) {
	fixture := t.TempDir()
	payloadPath := filepath.Join(fixture, "payload.json")
	payload := `[{"id":"call_1","type":"function","function":{"name":"calculator","arguments":"{\"a\": }"}}]`
	if err := os.WriteFile(payloadPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cmd := exec.Command("go", "run", "./cmd/callnorm", "normalize", "--json", payloadPath)
	wd, _ := os.Getwd()
	cmd.Dir = filepath.Dir(filepath.Dir(wd))

	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var msg struct {
		ToolCalls    []any `json:"tool_calls"`
		InvalidCalls []struct {
			Args  string `json:"args"`
			Error string `json:"error"`
		} `json:"invalid_tool_calls"`
	}
	if err := json.Unmarshal(out, &msg); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if len(msg.ToolCalls) != 0 || len(msg.InvalidCalls) != 1 {
		t.Fatalf("expected one invalid call, got %d/%d", len(msg.ToolCalls), len(msg.InvalidCalls))
	}
	if msg.InvalidCalls[0].Args != `{"a": }` || msg.InvalidCalls[0].Error == "" {
		t.Fatalf("expected raw args and error preserved, got %+v", msg.InvalidCalls[0])
	}
}
