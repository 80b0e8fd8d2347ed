package commands

import (
	"testing"

	"gamewrap/internal/wm"
)

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		arg     string
		want    wm.Window
		wantErr bool
	}{
		{arg: "1234", want: 1234},
		{arg: "0x4a0000f", want: 0x4a0000f},
		{arg: "0X4A0000F", want: 0x4a0000f},
		{arg: "", wantErr: true},
		{arg: "0x", wantErr: true},
		{arg: "window", wantErr: true},
		{arg: "-5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.arg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseWindowID(%q): want error, got %v", tt.arg, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseWindowID(%q): %v", tt.arg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseWindowID(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}
