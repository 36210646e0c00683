// Package renderer turns analytics results into markdown reports.
//
// Each report is a text/template stored in templates/. Amounts are displayed
// in a reporting currency given at render time.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"text/template"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/amortization"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/payoff"
	"github.com/etnz/analytics/performance"
	"github.com/etnz/analytics/risk"
	"github.com/etnz/analytics/tax"
)

//go:embed templates/*.md
var templates embed.FS

// RenderPerformance renders the performance metrics of one account.
func RenderPerformance(r *performance.Result, currency string) string {
	return renderTemplate("performance.md", currency, r)
}

// RenderRisk renders the risk metrics of one account.
func RenderRisk(r *risk.Result, currency string) string {
	return renderTemplate("risk.md", currency, r)
}

// RenderSchedule renders a full amortization schedule.
func RenderSchedule(s *amortization.Schedule, currency string) string {
	return renderTemplate("schedule.md", currency, s)
}

// RenderLoanSummary renders the progress of a loan.
func RenderLoanSummary(s *amortization.Summary, currency string) string {
	return renderTemplate("loan_summary.md", currency, s)
}

// RenderExtraPayment renders the effect of an extra monthly payment on a loan.
func RenderExtraPayment(c *amortization.Comparison, currency string) string {
	return renderTemplate("extra_payment.md", currency, c)
}

// RenderPayoff renders the comparison of payoff strategies.
func RenderPayoff(c *payoff.Comparison, currency string) string {
	return renderTemplate("payoff.md", currency, c)
}

// RenderTax renders tax-lot insights.
func RenderTax(i *tax.Insights, currency string) string {
	return renderTemplate("tax.md", currency, i)
}

// renderTemplate executes the template file with the report helpers bound to currency.
// Errors are rendered in place of the report.
func renderTemplate(file, currency string, data any) string {
	content, err := fs.ReadFile(templates, "templates/"+file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(file).Funcs(funcs(currency)).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", file, err)
	}
	return b.String()
}

func funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"money": func(v float64) string { return analytics.Format(v, currency) },
		"signed": func(v float64) string {
			return analytics.M(v, currency).SignedString()
		},
		"pct":       func(v any) string { return analytics.Percent(toFloat(v)).String() },
		"signedpct": func(v any) string { return analytics.Percent(toFloat(v)).SignedString() },
		"date":      formatDate,
		"months":    formatMonths,
		"converged": func(s analytics.Status) bool { return s == analytics.Converged },
		"join":      strings.Join,
	}
}

func toFloat(v any) float64 {
	switch v := v.(type) {
	case analytics.Percent:
		return float64(v)
	case float64:
		return v
	case int:
		return float64(v)
	}
	return math.NaN()
}

func formatDate(d date.Date) string {
	switch {
	case d.IsZero():
		return "-"
	case d == date.Never:
		return "never"
	}
	return d.String()
}

func formatMonths(n int) string {
	if n == payoff.NeverMonths {
		return "never"
	}
	return fmt.Sprint(n)
}
