package config

import (
	"sort"
	"strings"

	"github.com/theirongolddev/mrrcast/internal/model"
)

// ChannelPreset holds default assumptions for a common acquisition channel.
type ChannelPreset struct {
	DisplayName string
	Kind        model.ChannelKind
	Growth      model.Schedule
	Conversion  model.Schedule
	CPA         float64
}

// RevenuePreset holds default assumptions for a non-subscription revenue
// stream.
type RevenuePreset struct {
	DisplayName   string
	Growth        model.Schedule
	Yield         model.Schedule
	PayoutPerUnit float64
}

// DefaultChannels maps preset keys to acquisition channel defaults.
var DefaultChannels = map[string]ChannelPreset{
	"sem": {
		DisplayName: "SEM",
		Kind:        model.ChannelTraffic,
		Growth:      model.Schedule{0.05, 0.04, 0.03, 0.02, 0.02},
		Conversion:  model.Schedule{0.04, 0.042, 0.045, 0.045, 0.045},
		CPA:         26,
	},
	"seo": {
		DisplayName: "SEO",
		Kind:        model.ChannelTraffic,
		Growth:      model.Schedule{0.08, 0.06, 0.04, 0.03, 0.02},
		Conversion:  model.Schedule{0.02, 0.022, 0.025, 0.025, 0.025},
		CPA:         8,
	},
	"affiliate": {
		DisplayName: "Affiliate",
		Kind:        model.ChannelSubscriptions,
		Growth:      model.Schedule{0.03, 0.03, 0.02, 0.02, 0.01},
		CPA:         30,
	},
}

// DefaultRevenueChannels maps preset keys to revenue channel defaults.
var DefaultRevenueChannels = map[string]RevenuePreset{
	"ad-network": {
		DisplayName:   "Ad Network",
		Growth:        model.FlatSchedule(0.05),
		Yield:         model.FlatSchedule(0.01),
		PayoutPerUnit: 0.35,
	},
	"ad-affiliate": {
		DisplayName:   "Ad Affiliate",
		Growth:        model.FlatSchedule(0.03),
		Yield:         model.FlatSchedule(0.002),
		PayoutPerUnit: 12,
	},
}

// NormalizePresetName lowercases a preset name and folds spaces and
// underscores into dashes, e.g. "Ad Network" -> "ad-network".
func NormalizePresetName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(s)
}

// LookupPreset returns the acquisition channel preset for name.
func LookupPreset(name string) (ChannelPreset, bool) {
	p, ok := DefaultChannels[NormalizePresetName(name)]
	return p, ok
}

// LookupRevenuePreset returns the revenue channel preset for name.
func LookupRevenuePreset(name string) (RevenuePreset, bool) {
	p, ok := DefaultRevenueChannels[NormalizePresetName(name)]
	return p, ok
}

// PresetNames lists every preset key, acquisition channels first.
func PresetNames() []string {
	names := make([]string, 0, len(DefaultChannels))
	for k := range DefaultChannels {
		names = append(names, k)
	}
	sort.Strings(names)
	revenue := make([]string, 0, len(DefaultRevenueChannels))
	for k := range DefaultRevenueChannels {
		revenue = append(revenue, k)
	}
	sort.Strings(revenue)
	return append(names, revenue...)
}
