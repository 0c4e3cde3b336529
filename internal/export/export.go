// Package export renders portfolio results as a text table, CSV or an XLSX
// workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/asset-cli/internal/assets"
	"github.com/sells-group/asset-cli/internal/estimate"
)

// Header is the column order shared by every format.
var Header = []string{
	"asset_id", "name", "commodity", "status",
	"monthly_revenue", "annual_revenue", "net_cash_flow", "breakeven_price",
	"risk_score", "reason",
}

// Row is one flattened portfolio item.
type Row struct {
	AssetID        string
	Name           string
	Commodity      string
	Status         string
	MonthlyRevenue *float64
	AnnualRevenue  *float64
	NetCashFlow    *float64
	BreakevenPrice *float64
	RiskScore      *int
	Reason         string
}

// Rows flattens portfolio items. Items that failed to load get status
// "error" with the load error as reason.
func Rows(items []assets.Item) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		r := Row{AssetID: it.AssetID}
		if it.Detail == nil {
			r.Status = "error"
			r.Reason = it.Err
			rows = append(rows, r)
			continue
		}
		d := it.Detail
		out := d.Outcome
		r.Name = d.Asset.Name
		r.Commodity = d.Asset.Profile.Commodity
		r.Status = string(out.Status)
		r.Reason = out.Reason
		if out.Available() {
			e := out.Estimate
			r.Commodity = string(e.Commodity)
			r.MonthlyRevenue = &e.MonthlyRevenue
			r.AnnualRevenue = &e.AnnualRevenue
			r.NetCashFlow = &e.EstimatedNetCashFlow
			r.BreakevenPrice = e.BreakevenPrice
		}
		if out.Risk != nil {
			score := out.Risk.TotalScore
			r.RiskScore = &score
		}
		rows = append(rows, r)
	}
	return rows
}

// WriteTable writes an aligned, human-readable table followed by the summary.
func WriteTable(w io.Writer, items []assets.Item, sum assets.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSET\tNAME\tSTATUS\tMONTHLY\tANNUAL\tNET CF\tBREAKEVEN\tRISK")
	for _, r := range Rows(items) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.AssetID, r.Name, r.Status,
			money(r.MonthlyRevenue), money(r.AnnualRevenue), money(r.NetCashFlow),
			money(r.BreakevenPrice), score(r.RiskScore),
		)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "export: flush table")
	}

	_, err := fmt.Fprintf(w, "\n%d assets (%d errors)  monthly %s  annual %s  risk mean %.1f median %.0f sd %.1f max %d\n",
		sum.Assets, sum.Errors,
		estimate.FormatCompact(sum.TotalMonthlyRevenue), estimate.FormatCompact(sum.TotalAnnualRevenue),
		sum.RiskMean, sum.RiskMedian, sum.RiskStdDev, sum.RiskMax,
	)
	return eris.Wrap(err, "export: write summary")
}

// WriteCSV writes the rows as CSV with a header. Numbers are unformatted.
func WriteCSV(w io.Writer, items []assets.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range Rows(items) {
		if err := cw.Write(r.strings()); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", r.AssetID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX saves a workbook with a "Portfolio" sheet of rows and a
// "Summary" sheet.
func WriteXLSX(path string, items []assets.Item, sum assets.Summary) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Portfolio")
	if err != nil {
		return eris.Wrap(err, "export: add portfolio sheet")
	}
	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}
	for _, r := range Rows(items) {
		row := sheet.AddRow()
		row.AddCell().SetString(r.AssetID)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.Commodity)
		row.AddCell().SetString(r.Status)
		for _, v := range []*float64{r.MonthlyRevenue, r.AnnualRevenue, r.NetCashFlow, r.BreakevenPrice} {
			c := row.AddCell()
			if v != nil {
				c.SetFloat(*v)
			}
		}
		c := row.AddCell()
		if r.RiskScore != nil {
			c.SetInt(*r.RiskScore)
		}
		row.AddCell().SetString(r.Reason)
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addPair := func(k string, v float64) {
		row := summary.AddRow()
		row.AddCell().SetString(k)
		row.AddCell().SetFloat(v)
	}
	addPair("assets", float64(sum.Assets))
	addPair("errors", float64(sum.Errors))
	for _, st := range []estimate.Status{estimate.StatusStored, estimate.StatusComputed, estimate.StatusNoData, estimate.StatusFailed} {
		addPair("status_"+string(st), float64(sum.ByStatus[st]))
	}
	addPair("total_monthly_revenue", sum.TotalMonthlyRevenue)
	addPair("total_annual_revenue", sum.TotalAnnualRevenue)
	addPair("total_net_cash_flow", sum.TotalNetCashFlow)
	addPair("risk_mean", sum.RiskMean)
	addPair("risk_median", sum.RiskMedian)
	addPair("risk_stddev", sum.RiskStdDev)
	addPair("risk_max", float64(sum.RiskMax))

	return eris.Wrap(f.Save(path), "export: save xlsx")
}

func (r Row) strings() []string {
	return []string{
		r.AssetID, r.Name, r.Commodity, r.Status,
		num(r.MonthlyRevenue), num(r.AnnualRevenue), num(r.NetCashFlow), num(r.BreakevenPrice),
		score(r.RiskScore), r.Reason,
	}
}

func num(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return estimate.FormatMoney(*v)
}

func score(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
