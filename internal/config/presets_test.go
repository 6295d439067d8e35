package config

import "testing"

func TestNormalizePresetName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"SEM", "sem"},
		{"  Ad Network ", "ad-network"},
		{"ad_affiliate", "ad-affiliate"},
	}
	for _, tt := range tests {
		if got := NormalizePresetName(tt.in); got != tt.want {
			t.Errorf("NormalizePresetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookupPreset(t *testing.T) {
	if _, ok := LookupPreset("SEO"); !ok {
		t.Fatal("SEO preset missing")
	}
	if _, ok := LookupPreset("ad-network"); ok {
		t.Fatal("ad-network is a revenue preset, not an acquisition channel")
	}
	if p, ok := LookupRevenuePreset("Ad Network"); !ok || p.PayoutPerUnit <= 0 {
		t.Fatalf("LookupRevenuePreset = %+v, %v", p, ok)
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	if len(names) != len(DefaultChannels)+len(DefaultRevenueChannels) {
		t.Fatalf("PresetNames = %v", names)
	}
	if names[0] != "affiliate" || names[len(names)-1] != "ad-network" {
		t.Fatalf("PresetNames order = %v", names)
	}
}
