package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/mrrcast/internal/config"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/tui/theme"
)

// WizardAnswers holds the raw text collected by the setup wizard. Rates are
// entered as percentages.
type WizardAnswers struct {
	KickOff       string
	Price         string
	FreeTrialDays string
	TrialToPaid   string
	Churn         string

	Channels        []string // preset keys
	Initial         map[string]string
	RevenueChannels []string // preset keys

	CardProcessing string
	Labor          string
	Hosting        string
	TechSoftware   string

	Theme string
}

// DefaultWizardAnswers returns answers pre-filled with a plausible launch
// plan starting next month.
func DefaultWizardAnswers(now time.Time) WizardAnswers {
	return WizardAnswers{
		KickOff:        model.MonthStart(now).AddDate(0, 1, 0).Format("2006-01"),
		Price:          "40",
		FreeTrialDays:  "14",
		TrialToPaid:    "25",
		Churn:          "5",
		Channels:       []string{"sem"},
		Initial:        map[string]string{"sem": "100000"},
		CardProcessing: "2.9",
		Labor:          "60000",
		Hosting:        "1500",
		TechSoftware:   "500",
		Theme:          "flexoki-dark",
	}
}

// RunWizard asks for the launch assumptions interactively, starting from
// defaults. It returns huh.ErrUserAborted if the user cancels.
func RunWizard(defaults WizardAnswers) (WizardAnswers, error) {
	a := defaults
	if a.Initial == nil {
		a.Initial = make(map[string]string)
	}

	channelOpts := make([]huh.Option[string], 0, len(config.DefaultChannels))
	revenueOpts := make([]huh.Option[string], 0, len(config.DefaultRevenueChannels))
	for _, key := range config.PresetNames() {
		if p, ok := config.DefaultChannels[key]; ok {
			channelOpts = append(channelOpts, huh.NewOption(p.DisplayName, key))
		} else if p, ok := config.DefaultRevenueChannels[key]; ok {
			revenueOpts = append(revenueOpts, huh.NewOption(p.DisplayName, key))
		}
	}
	themeOpts := huh.NewOptions(theme.Names()...)

	basics := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Kick-off month").Description("YYYY-MM").
				Value(&a.KickOff).Validate(validateKickOff),
			huh.NewInput().Title("Monthly price ($)").
				Value(&a.Price).Validate(validateMoney),
			huh.NewInput().Title("Free trial (days)").
				Value(&a.FreeTrialDays).Validate(validateTrialDays),
			huh.NewInput().Title("Trial-to-paid rate (%)").
				Value(&a.TrialToPaid).Validate(validatePercent),
			huh.NewInput().Title("Monthly churn (%)").
				Value(&a.Churn).Validate(validatePercent),
		).Title("Subscription"),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Acquisition channels").
				Options(channelOpts...).Value(&a.Channels),
			huh.NewMultiSelect[string]().Title("Other revenue").
				Options(revenueOpts...).Value(&a.RevenueChannels),
		).Title("Channels"),
		huh.NewGroup(
			huh.NewInput().Title("Card processing (%)").
				Value(&a.CardProcessing).Validate(validatePercent),
			huh.NewInput().Title("Labor ($/month)").
				Value(&a.Labor).Validate(validateMoney),
			huh.NewInput().Title("Hosting ($/month)").
				Value(&a.Hosting).Validate(validateMoney),
			huh.NewInput().Title("Tech & software ($/month)").
				Value(&a.TechSoftware).Validate(validateMoney),
		).Title("Costs"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Color theme").
				Options(themeOpts...).Value(&a.Theme),
		).Title("Appearance"),
	).WithTheme(huh.ThemeCharm())

	if err := basics.Run(); err != nil {
		return a, err
	}

	// Starting volume depends on which channels were picked.
	values := make(map[string]*string, len(a.Channels)+len(a.RevenueChannels))
	var fields []huh.Field
	for _, key := range append(append([]string(nil), a.Channels...), a.RevenueChannels...) {
		v := a.Initial[key]
		values[key] = &v
		fields = append(fields, huh.NewInput().
			Title(initialTitle(key)).
			Value(values[key]).
			Validate(validateCount))
	}
	if len(fields) > 0 {
		volumes := huh.NewForm(huh.NewGroup(fields...).Title("Starting volume")).
			WithTheme(huh.ThemeCharm())
		if err := volumes.Run(); err != nil {
			return a, err
		}
	}
	for key, v := range values {
		a.Initial[key] = *v
	}
	return a, nil
}

func initialTitle(key string) string {
	if p, ok := config.DefaultChannels[key]; ok {
		if p.Kind == model.ChannelSubscriptions {
			return p.DisplayName + ": subscriptions in month 1"
		}
		return p.DisplayName + ": visits in month 1"
	}
	if p, ok := config.DefaultRevenueChannels[key]; ok {
		return p.DisplayName + ": impressions in month 1"
	}
	return key
}

// Assumptions converts the answers into an assumptions file, taking channel
// schedules and costs from the presets.
func (a WizardAnswers) Assumptions() (config.Assumptions, error) {
	var errs []error
	money := func(field, s string) decimal.Decimal {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an amount", field, s))
		}
		return d
	}
	number := func(field, s string) float64 {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", field, s))
		}
		return f
	}

	out := config.Assumptions{
		KickOff:         strings.TrimSpace(a.KickOff),
		Price:           money("price", a.Price),
		TrialToPaidRate: number("trial-to-paid rate", a.TrialToPaid) / 100,
		ChurnRate:       number("churn", a.Churn) / 100,
		Costs: config.CostAssumptions{
			CardProcessingRate: number("card processing", a.CardProcessing) / 100,
			Labor:              money("labor", a.Labor),
			Hosting:            money("hosting", a.Hosting),
			TechSoftware:       money("tech & software", a.TechSoftware),
		},
	}
	days, err := strconv.Atoi(strings.TrimSpace(a.FreeTrialDays))
	if err != nil {
		errs = append(errs, fmt.Errorf("free trial: %q is not a whole number of days", a.FreeTrialDays))
	}
	out.FreeTrialDays = days

	for _, key := range a.Channels {
		out.Channels = append(out.Channels, config.ChannelAssumptions{
			Preset:  key,
			Initial: number(key, a.Initial[key]),
		})
	}
	for _, key := range a.RevenueChannels {
		out.RevenueChannels = append(out.RevenueChannels, config.RevenueAssumptions{
			Preset:  key,
			Initial: number(key, a.Initial[key]),
		})
	}
	return out, errors.Join(errs...)
}

// ParameterSet converts the answers into model inputs.
func (a WizardAnswers) ParameterSet() (model.ParameterSet, error) {
	as, err := a.Assumptions()
	if err != nil {
		return model.ParameterSet{}, err
	}
	return as.ParameterSet()
}

func validateKickOff(s string) error {
	if _, err := time.Parse("2006-01", strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM, e.g. 2025-01")
	}
	return nil
}

func validateMoney(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter an amount, e.g. 39.99")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func validatePercent(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a percentage, e.g. 5")
	}
	if f < 0 || f > 100 {
		return errors.New("must be between 0 and 100")
	}
	return nil
}

func validateTrialDays(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of days")
	}
	if n < 0 || n > model.MaxFreeTrialDays {
		return fmt.Errorf("must be between 0 and %d", model.MaxFreeTrialDays)
	}
	return nil
}

func validateCount(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if f < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
