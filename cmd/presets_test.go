package main

import "testing"

func TestParsePreset(t *testing.T) {
	tests := []struct {
		preset     string
		wantWidth  int
		wantHeight int
		wantErr    bool
	}{
		{"hd_h", 1920, 1080, false},
		{"hd_v", 1080, 1920, false},
		{"hd_s", 1920, 1920, false},
		{"2k_h", 2048, 1080, false},
		{"4k_v", 2160, 3840, false},
		{" 4K_S ", 3840, 3840, false},
		{"4k", 0, 0, true},
		{"8k_h", 0, 0, true},
		{"hd_x", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			w, h, err := parsePreset(tt.preset)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePreset(%q) error = %v, wantErr %v", tt.preset, err, tt.wantErr)
			}
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("parsePreset(%q) = %dx%d, want %dx%d", tt.preset, w, h, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}
