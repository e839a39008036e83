package planner

import "github.com/shopspring/decimal"

// View is the JSON shape of a Result. Absent values are null and a zero
// savings rate is flagged with NeverFunded instead of an infinite month
// count.
type View struct {
	MonthsUntilDeparture     *int             `json:"months_until_departure"`
	RequiredMonthlyTotal     *decimal.Decimal `json:"required_monthly_total"`
	RequiredMonthlyPerPerson *decimal.Decimal `json:"required_monthly_per_person"`
	RecommendedPerPerson     *decimal.Decimal `json:"recommended_per_person"`
	ChosenMonthlyPerPerson   decimal.Decimal  `json:"chosen_monthly_per_person"`
	ChosenMonthlyTotal       decimal.Decimal  `json:"chosen_monthly_total"`
	ChosenFrom               string           `json:"chosen_from"`
	MonthsNeeded             *int             `json:"months_needed"`
	NeverFunded              bool             `json:"never_funded"`
	ProjectedFundingDate     *string          `json:"projected_funding_date"`
	FeasibleBeforeDeparture  *bool            `json:"feasible_before_departure"`
}

// View converts r into its JSON shape. Amounts are rounded to cents.
func (r Result) View() View {
	v := View{
		ChosenMonthlyPerPerson: r.ChosenMonthlyPerPerson.Round(2),
		ChosenMonthlyTotal:     r.ChosenMonthlyTotal.Round(2),
		ChosenFrom:             r.ChosenFrom.String(),
		NeverFunded:            !r.Projection.Funded(),
	}
	if m, ok := r.Horizon.Months(); ok {
		v.MonthsUntilDeparture = &m
	}
	if r.RequiredMonthlyTotal != nil {
		d := r.RequiredMonthlyTotal.Round(2)
		v.RequiredMonthlyTotal = &d
	}
	if r.RequiredMonthlyPerPerson != nil {
		d := r.RequiredMonthlyPerPerson.Round(2)
		v.RequiredMonthlyPerPerson = &d
	}
	if rec, ok := Recommended(r); ok {
		v.RecommendedPerPerson = &rec
	}
	if m, ok := r.Projection.Months(); ok {
		v.MonthsNeeded = &m
	}
	if date, ok := r.Projection.Date(); ok {
		s := date.Format(DateLayout)
		v.ProjectedFundingDate = &s
	}
	if r.Feasibility.Known() {
		ok := r.Feasibility == Feasible
		v.FeasibleBeforeDeparture = &ok
	}
	return v
}
