package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alexanderjulianmartinez/schema-watch/internal/conformance"
	"github.com/alexanderjulianmartinez/schema-watch/internal/constraint"
)

const (
	ok   = "ok"
	fail = "FAIL"
)

// Conformance writes one row per expected field followed by any undeclared
// columns, then a status line.
func Conformance(w io.Writer, rep *conformance.Report) {
	fmt.Fprintf(w, "Table: %s\n", rep.Table)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Present", "Expected type", "Actual type", "Result"})
	table.SetAutoWrapText(false)

	for i, p := range rep.Presence {
		tr := rep.Types[i]
		actual := "-"
		if tr.ActualType != nil {
			actual = *tr.ActualType
		}
		result := ok
		if !tr.Matches {
			result = fail
		}
		table.Append([]string{p.Name, yesNo(p.Present), tr.ExpectedType, actual, result})
	}
	for _, iss := range rep.IssuesOfKind(conformance.KindColumnUnexpected) {
		table.Append([]string{iss.Column, yesNo(true), "-", iss.Actual, conformance.SeverityInfo})
	}
	table.Render()

	sum := rep.Summary()
	fmt.Fprintf(w, "Status: %s (%d issues)\n", sum.Status, len(rep.Issues))
}

func Probes(w io.Writer, results []constraint.ProbeResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Probe", "Result", "Duration", "Detail"})
	table.SetAutoWrapText(false)

	var failed int
	for _, res := range results {
		result, detail := ok, ""
		if !res.Passed {
			failed++
			result = fail
			detail = res.Err.Error()
		}
		table.Append([]string{res.Name, result, res.Duration.Round(time.Millisecond).String(), detail})
	}
	table.Render()

	fmt.Fprintf(w, "Probes: %d passed, %d failed\n", len(results)-failed, failed)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
