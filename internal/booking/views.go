package booking

import (
	"time"

	"github.com/sunshinecoast4wd/booking-engine/internal/flow"
	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	"github.com/sunshinecoast4wd/booking-engine/pkg/money"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

// CartView is the API shape of a session cart. Totals carry both minor
// units and display strings so clients never format money themselves.
type CartView struct {
	Tour          *types.Tour     `json:"tour,omitempty"`
	TourStartDate *string         `json:"tour_start_date,omitempty"`
	Participants  int             `json:"participants"`
	Lines         []CartLineView  `json:"lines"`
	Totals        CartTotalsView  `json:"totals"`
	RemoteCartID  string          `json:"remote_cart_id,omitempty"`
}

// CartLineView is a selected add-on with its computed line total.
type CartLineView struct {
	AddOn            types.AddOn `json:"addon"`
	Quantity         int         `json:"quantity"`
	UnitPriceDisplay string      `json:"unit_price_display"`
	LineTotalMinor   int64       `json:"line_total_minor"`
	LineTotalDisplay string      `json:"line_total_display"`
}

// CartTotalsView breaks the order total into its three components.
type CartTotalsView struct {
	TourTotalMinor      int64  `json:"tour_total_minor"`
	TourTotalDisplay    string `json:"tour_total_display"`
	AddOnsSubtotalMinor int64  `json:"addons_subtotal_minor"`
	AddOnsSubtotal      string `json:"addons_subtotal_display"`
	TotalMinor          int64  `json:"total_minor"`
	TotalDisplay        string `json:"total_display"`
	PerPersonDisplay    string `json:"per_person_display"`
	CurrencyCode        string `json:"currency_code"`
}

// FlowView is the wizard state plus the steps it walks.
type FlowView struct {
	Steps       []types.CategoryStep `json:"steps"`
	Current     *StepView            `json:"current,omitempty"`
	OnSummary   bool                 `json:"on_summary"`
	Progress    int                  `json:"progress"`
	IsFirstStep bool                 `json:"is_first_step"`
	IsLastStep  bool                 `json:"is_last_step"`
}

// StepView is the current category step annotated with its progress marks.
type StepView struct {
	Index        int    `json:"index"`
	CategoryName string `json:"category_name"`
	StepNumber   int    `json:"step_number"`
	TotalSteps   int    `json:"total_steps"`
	Completed    bool   `json:"completed"`
	Skipped      bool   `json:"skipped"`
}

// TourChangeResult reports a tour selection: the new cart, any selections
// dropped for incompatibility, and the rebuilt wizard.
type TourChangeResult struct {
	Cart    CartView              `json:"cart"`
	Removed []types.SelectedAddOn `json:"removed_addons"`
	Flow    FlowView              `json:"flow"`
}

func newCartView(state types.CartState) *CartView {
	currency := string(enums.CurrencyAUD)
	if state.Tour != nil && state.Tour.CurrencyCode != "" {
		currency = state.Tour.CurrencyCode
	} else if len(state.SelectedAddOns) > 0 && state.SelectedAddOns[0].AddOn.CurrencyCode != "" {
		currency = state.SelectedAddOns[0].AddOn.CurrencyCode
	}
	if parsed, err := enums.ParseCurrency(currency); err == nil {
		currency = parsed.String()
	} else {
		currency = string(enums.CurrencyAUD)
	}

	lines := make([]CartLineView, 0, len(state.SelectedAddOns))
	for _, sel := range state.SelectedAddOns {
		lines = append(lines, CartLineView{
			AddOn:            sel.AddOn,
			Quantity:         sel.Quantity,
			UnitPriceDisplay: money.FormatUnit(sel.AddOn.BasePriceMinor, sel.AddOn.PricingUnit, currency),
			LineTotalMinor:   sel.LineTotalMinor,
			LineTotalDisplay: money.Format(sel.LineTotalMinor, currency),
		})
	}

	var startDate *string
	if state.TourStartDate != nil {
		formatted := state.TourStartDate.Format(time.DateOnly)
		startDate = &formatted
	}

	return &CartView{
		Tour:          state.Tour,
		TourStartDate: startDate,
		Participants:  state.Participants,
		Lines:         lines,
		Totals: CartTotalsView{
			TourTotalMinor:      state.TourTotalMinor,
			TourTotalDisplay:    money.Format(state.TourTotalMinor, currency),
			AddOnsSubtotalMinor: state.SubtotalMinor,
			AddOnsSubtotal:      money.Format(state.SubtotalMinor, currency),
			TotalMinor:          state.TotalMinor,
			TotalDisplay:        money.Format(state.TotalMinor, currency),
			PerPersonDisplay:    money.PerPerson(state.TotalMinor, state.Participants),
			CurrencyCode:        currency,
		},
		RemoteCartID: state.RemoteCartID,
	}
}

func newFlowView(steps []types.CategoryStep, state *flow.State) *FlowView {
	view := &FlowView{
		Steps:       steps,
		OnSummary:   state.Position().IsSummary(),
		Progress:    state.Progress(),
		IsFirstStep: state.IsFirstStep(),
		IsLastStep:  state.IsLastStep(),
	}
	if !view.OnSummary {
		idx := state.Position().Index()
		current := &StepView{
			Index:      idx,
			StepNumber: idx + 1,
			TotalSteps: state.TotalSteps(),
			Completed:  state.Completed(idx),
			Skipped:    state.Skipped(idx),
		}
		if idx < len(steps) {
			current.CategoryName = steps[idx].CategoryName
		}
		view.Current = current
	}
	return view
}
