package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Init("scaff-test", Options{Level: "debug", Format: "json", Out: &buf})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Discard()

	logger.Debug().Str("k", "v").Msg("hello")
	L().Trace().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, `"app":"scaff-test"`) || !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("trace line written at debug level")
	}
}

func TestInitBadLevel(t *testing.T) {
	if _, err := Init("x", Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Init("x", Options{Format: "json", Out: &buf}); err != nil {
		t.Fatal(err)
	}
	defer Discard()

	L().Info().Msg("info")
	L().Warn().Msg("warn")
	if !strings.Contains(buf.String(), `"message":"warn"`) {
		t.Errorf("warn line missing: %s", buf.String())
	}
	if strings.Contains(buf.String(), `"message":"info"`) {
		t.Error("info written at default warn level")
	}
}
