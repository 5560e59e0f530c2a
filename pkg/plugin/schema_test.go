package plugin

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateRunResultSchema(t *testing.T) {
	data, err := GenerateRunResultSchema()
	if err != nil {
		t.Fatalf("GenerateRunResultSchema: %v", err)
	}
	if !json.Valid(data) {
		t.Fatal("schema is not valid JSON")
	}
	if !strings.Contains(string(data), "edit-file") {
		t.Error("schema does not enumerate action kinds")
	}
}

func TestDecodeRunResult(t *testing.T) {
	want := []Action{
		CopyFileSubstituted("a.txt"),
		CopyFileToRaw("b.png.raw", "b.png"),
		WriteFileBinary("c.bin", []byte{1, 2, 3, 4}),
		CreateDir("d"),
		EditFile("spin.toml", 7),
	}
	data, err := json.Marshal(RunResult{Actions: want})
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeRunResult(data)
	if err != nil {
		t.Fatalf("DecodeRunResult: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d actions, want %d", len(got), len(want))
	}
	if string(got[2].Bytes) != "\x01\x02\x03\x04" {
		t.Errorf("binary payload = %v", got[2].Bytes)
	}
	if got[4].Edit != 7 {
		t.Errorf("edit handle = %d", got[4].Edit)
	}
}

func TestDecodeRunResultRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"missing actions", `{}`},
		{"unknown kind", `{"actions":[{"kind":"format-disk"}]}`},
		{"missing kind", `{"actions":[{"path":"a"}]}`},
		{"copy without path", `{"actions":[{"kind":"copy-file-substituted"}]}`},
		{"edit without handle", `{"actions":[{"kind":"edit-file","path":"x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRunResult([]byte(tt.raw)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestModeJSON(t *testing.T) {
	var opts RunOptions
	if err := json.Unmarshal([]byte(`{"mode":{"kind":"add-to","manifest":"spin.toml"},"use_default_values":true}`), &opts); err != nil {
		t.Fatal(err)
	}
	if m, ok := opts.Mode.IsAddTo(); !ok || m != "spin.toml" || !opts.UseDefaultValues {
		t.Errorf("opts = %+v", opts)
	}

	var empty Mode
	if err := json.Unmarshal([]byte(`{}`), &empty); err != nil {
		t.Fatal(err)
	}
	if empty.Kind != ModeCreateNew {
		t.Errorf("empty mode kind = %q", empty.Kind)
	}
	if err := json.Unmarshal([]byte(`{"kind":"explode"}`), &empty); err == nil {
		t.Error("expected unknown mode to fail")
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		a    Action
		want string
	}{
		{CopyFileSubstituted("a"), "Copy a"},
		{CopyFileToSubstituted("a.tmpl", "a"), "Copy file a.tmpl to a"},
		{CopyFileToRaw("a.raw", "a"), "Copy raw file a.raw to a"},
		{WriteFile("p", "hi"), "Write 'hi' to p"},
		{WriteFileBinary("p", []byte{1, 2}), "Write 2 bytes to p"},
		{CreateDir("d"), "Create directory d"},
		{EditFile("spin.toml", 3), "Edit spin.toml"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
