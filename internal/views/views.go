// Package views holds the HTML components of the dashboard.
package views

import "github.com/mauv0809/sales-dashboard/internal/report"

// Dashboard is everything the index page shows. Either report may be nil
// when it failed; the matching message explains why.
type Dashboard struct {
	Start, End     string
	Period         string
	TopN           int
	Timezone       string
	UpdatedAt      string
	Overview       *report.Overview
	OverviewError  string
	Products       *report.TopProducts
	ProductsNotice string
}

type periodOption struct {
	value string
	label string
}

// periods are the choices of the products period selector.
var periods = []periodOption{
	{value: report.PeriodMonth, label: "Mes Actual"},
	{value: report.PeriodYear, label: "Año Actual"},
}
