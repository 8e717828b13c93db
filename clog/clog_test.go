package clog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithNilConfig(t *testing.T) {
	logger, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) should use defaults, got error: %v", err)
	}
	if logger == nil {
		t.Fatal("New should return a valid logger")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "verbose"})
	if err == nil {
		t.Fatal("New with invalid level should return error")
	}
}

func TestNewInvalidFormat(t *testing.T) {
	_, err := New(&Config{Format: "xml"})
	if err == nil {
		t.Fatal("New with invalid format should return error")
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "debug", Format: "json"}, WithWriter(&buf))
	if err != nil {
		t.Fatalf("New should not return error, got: %v", err)
	}

	logger.Info("cache ready", String("name", "responses"), Int("capacity", 100))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output should be valid JSON: %v\noutput: %s", err, buf.String())
	}
	if record["msg"] != "cache ready" {
		t.Errorf("unexpected msg: %v", record["msg"])
	}
	if record["name"] != "responses" {
		t.Errorf("unexpected name field: %v", record["name"])
	}
	if record["level"] != "INFO" {
		t.Errorf("unexpected level: %v", record["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&Config{Level: "warn", Format: "json"}, WithWriter(&buf))

	logger.Debug("should be dropped")
	logger.Info("should be dropped too")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("below-threshold logs should be filtered, got: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn log should pass through, got: %s", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&Config{Level: "error", Format: "json"}, WithWriter(&buf))

	logger.Info("before")
	if err := logger.SetLevel(DebugLevel); err != nil {
		t.Fatalf("SetLevel should not fail: %v", err)
	}
	logger.Info("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("info log should be filtered at error level")
	}
	if !strings.Contains(out, "after") {
		t.Error("info log should pass after SetLevel(debug)")
	}
}

func TestWithNamespace(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&Config{Level: "info", Format: "json"}, WithWriter(&buf))

	child := logger.WithNamespace("aegis", "cache")
	child.Info("hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if record[NamespaceKey] != "aegis.cache" {
		t.Errorf("expected namespace aegis.cache, got: %v", record[NamespaceKey])
	}

	// 父 Logger 不应被污染
	buf.Reset()
	logger.Info("parent")
	var parent map[string]any
	_ = json.Unmarshal(buf.Bytes(), &parent)
	if _, ok := parent[NamespaceKey]; ok {
		t.Error("parent logger should not carry the child namespace")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(&Config{Level: "info", Format: "json"}, WithWriter(&buf))

	child := logger.With(String("pool", "llm-clients"))
	child.Info("acquired")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if record["pool"] != "llm-clients" {
		t.Errorf("expected pool field, got: %v", record)
	}
}

func TestErrorField(t *testing.T) {
	f := Error(nil)
	if f.Value.String() != "<nil>" {
		t.Errorf("Error(nil) should render <nil>, got: %s", f.Value.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// 所有方法都不应 panic
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
	if logger.With(String("k", "v")) == nil {
		t.Error("With should return a logger")
	}
	if logger.WithNamespace("x") == nil {
		t.Error("WithNamespace should return a logger")
	}
	if err := logger.SetLevel(DebugLevel); err != nil {
		t.Errorf("SetLevel on noop should be nil, got: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"Warn":  WarnLevel,
		"error": ErrorLevel,
		"fatal": FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel should reject unknown levels")
	}
}
