package dispatch

import (
	"os"
	"path/filepath"
	"testing"
)

const testDispatchersYAML = `dispatchers:
  - id: hook
    type: http
    http:
      url: https://example.com/hook
      headers:
        X-Token: abc
  - id: queue
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.example.com/q
      region: us-east-1
  - id: topic
    type: pubsub
    pubsub:
      project_id: proj
      topic: news
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadRegistryParsesYAMLAndDefaults(t *testing.T) {
	reg, err := LoadRegistry(writeTempFile(t, "dispatchers.yaml", testDispatchersYAML))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if got := len(reg.All()); got != 3 {
		t.Fatalf("expected 3 dispatchers, got %d", got)
	}

	enabled := reg.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled dispatchers, got %d", len(enabled))
	}

	hook, ok := reg.ByID("hook")
	if !ok {
		t.Fatalf("hook dispatcher not found")
	}
	if hook.HTTP.Method != "POST" {
		t.Fatalf("expected default method POST, got %s", hook.HTTP.Method)
	}
	if hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", hook.HTTP.TimeoutSeconds)
	}
}

func TestLoadRegistryRejectsIncompleteEntries(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{name: "missing id", yaml: "dispatchers:\n  - type: http\n    http:\n      url: https://x\n"},
		{name: "sqs without region", yaml: "dispatchers:\n  - id: q\n    type: sqs\n    sqs:\n      uri: https://x\n"},
		{name: "sns without topic", yaml: "dispatchers:\n  - id: t\n    type: sns\n    sns:\n      region: us-east-1\n"},
		{name: "pubsub without topic", yaml: "dispatchers:\n  - id: p\n    type: pubsub\n    pubsub:\n      project_id: proj\n"},
		{name: "duplicate ids", yaml: "dispatchers:\n  - id: a\n    type: http\n    http:\n      url: https://x\n  - id: a\n    type: http\n    http:\n      url: https://y\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadRegistry(writeTempFile(t, "dispatchers.yaml", tc.yaml)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
