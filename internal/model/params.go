// Package model defines the projection inputs and outputs shared by every layer.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Projection horizon constants.
const (
	YearsProjected   = 5
	MonthsPerYear    = 12
	ProjectionMonths = YearsProjected * MonthsPerYear
	MaxFreeTrialDays = 28
)

// Schedule holds one rate per projected year; index 0 is year 1.
type Schedule [YearsProjected]float64

// FlatSchedule returns a schedule with the same rate in every year.
func FlatSchedule(rate float64) Schedule {
	var s Schedule
	for i := range s {
		s[i] = rate
	}
	return s
}

// ChannelKind distinguishes channels measured in visits from channels that
// deliver subscriptions directly.
type ChannelKind string

const (
	ChannelTraffic       ChannelKind = "traffic"
	ChannelSubscriptions ChannelKind = "subscriptions"
)

// Channel is one paid acquisition channel (SEM, SEO, Affiliate, ...).
type Channel struct {
	Name       string      `json:"name"`
	Kind       ChannelKind `json:"kind"`
	Initial    float64     `json:"initial"`
	Growth     Schedule    `json:"growth"`
	Conversion Schedule    `json:"conversion"` // ignored for subscription channels
	CPA        float64     `json:"cpa"`
}

// RevenueChannel is a non-subscription revenue stream such as an ad network.
// Monthly revenue is volume x yield x payout.
type RevenueChannel struct {
	Name          string   `json:"name"`
	Initial       float64  `json:"initial"`
	Growth        Schedule `json:"growth"`
	Yield         Schedule `json:"yield"`
	PayoutPerUnit float64  `json:"payout_per_unit"`
}

// CostAssumptions holds the rate-based and fixed monthly cost lines.
type CostAssumptions struct {
	CardProcessingRate float64 `json:"card_processing_rate"`
	RefundRate         float64 `json:"refund_rate"`
	ChargebackRate     float64 `json:"chargeback_rate"`
	Hosting            float64 `json:"hosting"`
	TechSoftware       float64 `json:"tech_software"`
	Labor              float64 `json:"labor"`
}

// ParameterSet is the full set of model inputs. Treat it as a value: the
// projection engine copies it and never writes through it.
type ParameterSet struct {
	KickOff         time.Time        `json:"kick_off"`
	Price           float64          `json:"price"`
	FreeTrialDays   int              `json:"free_trial_days"`
	TrialToPaidRate float64          `json:"trial_to_paid_rate"`
	ChurnRate       float64          `json:"churn_rate"`
	Channels        []Channel        `json:"channels"`
	RevenueChannels []RevenueChannel `json:"revenue_channels,omitempty"`
	Costs           CostAssumptions  `json:"costs"`
}

// Clone returns a deep copy so later edits to the receiver's slices cannot
// leak into the copy.
func (p ParameterSet) Clone() ParameterSet {
	out := p
	if p.Channels != nil {
		out.Channels = append([]Channel(nil), p.Channels...)
	}
	if p.RevenueChannels != nil {
		out.RevenueChannels = append([]RevenueChannel(nil), p.RevenueChannels...)
	}
	return out
}

// Fingerprint returns a stable hex SHA-256 of the JSON encoding, used as a
// cache key for computed projections.
func (p ParameterSet) Fingerprint() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in t's calendar month.
func DaysIn(t time.Time) int {
	first := MonthStart(t)
	return first.AddDate(0, 1, -1).Day()
}
