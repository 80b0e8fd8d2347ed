package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	env := Env{Game: "limbo", DataDir: t.TempDir()}

	tests := []struct {
		name    string
		hooks   []string
		wantErr bool
		wantLen int
	}{
		{name: "none", hooks: nil, wantLen: 0},
		{name: "playtime", hooks: []string{"playtime"}, wantLen: 1},
		{name: "pause helper with pattern", hooks: []string{"pause-helper:xcape"}, wantLen: 1},
		{name: "pause helper without pattern", hooks: []string{"pause-helper"}, wantErr: true},
		{name: "notify", hooks: []string{"notify"}, wantLen: 1},
		{name: "unknown", hooks: []string{"teleport"}, wantErr: true},
		{name: "several in order", hooks: []string{"playtime", "notify"}, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Load(tt.hooks, env)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Load: want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(set) != tt.wantLen {
				t.Errorf("len(set) = %d, want %d", len(set), tt.wantLen)
			}
		})
	}
}

func TestSetFansOutInOrder(t *testing.T) {
	var order []string
	set := Set{
		recorderHook{name: "a", order: &order},
		recorderHook{name: "b", order: &order},
	}
	set.OnStart()
	set.OnFocus()
	set.OnUnfocus()
	set.OnStop()

	want := []string{
		"a.start", "b.start",
		"a.focus", "b.focus",
		"a.unfocus", "b.unfocus",
		"a.stop", "b.stop",
	}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
}

type recorderHook struct {
	name  string
	order *[]string
}

func (h recorderHook) OnStart()   { *h.order = append(*h.order, h.name+".start") }
func (h recorderHook) OnStop()    { *h.order = append(*h.order, h.name+".stop") }
func (h recorderHook) OnFocus()   { *h.order = append(*h.order, h.name+".focus") }
func (h recorderHook) OnUnfocus() { *h.order = append(*h.order, h.name+".unfocus") }

func TestPlaytimeLogRecords(t *testing.T) {
	dir := t.TempDir()
	h := newPlaytimeLog(Env{Game: "limbo", DataDir: dir})

	h.OnStart()
	h.OnUnfocus()
	h.OnFocus()
	h.OnStop()

	data, err := os.ReadFile(filepath.Join(dir, "time", "limbo.log"))
	if err != nil {
		t.Fatalf("reading time log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	wantSuffix := []string{"game started", "user left", "user returned", "game stopped"}
	if len(lines) != len(wantSuffix) {
		t.Fatalf("lines = %d, want %d:\n%s", len(lines), len(wantSuffix), data)
	}
	for i, line := range lines {
		if !strings.HasSuffix(line, ": "+wantSuffix[i]) {
			t.Errorf("line %d = %q, want suffix %q", i, line, wantSuffix[i])
		}
	}
}
