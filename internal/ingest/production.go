// Package ingest parses production histories and asset registers from the
// CSV, XLSX and YAML files the import command accepts.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/asset-cli/internal/model"
)

// Production columns. asset_id and month are required; every volume column is
// optional and an empty cell leaves the field unreported.
const (
	ColAssetID       = "asset_id"
	ColMonth         = "month"
	ColOilVolumeBbl  = "oil_volume_bbl"
	ColGasVolumeMcf  = "gas_volume_mcf"
	ColOreVolumeTons = "ore_volume_tons"
	ColWaterCutPct   = "water_cut_pct"
	ColDowntimeDays  = "downtime_days"
)

var monthLayouts = []string{"2006-01-02", "2006-01", "01/02/2006", "1/2/2006"}

// Production groups parsed samples by asset id. Each asset's samples are
// most-recent-first with at most one sample per month; a later row for the
// same month replaces an earlier one.
type Production map[string][]model.ProductionSample

// Rows returns the total number of samples.
func (p Production) Rows() int {
	n := 0
	for _, s := range p {
		n += len(s)
	}
	return n
}

// AssetIDs returns the asset ids in sorted order.
func (p Production) AssetIDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadProductionCSV parses a production CSV with a header row.
func ReadProductionCSV(ctx context.Context, r io.Reader) (Production, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ingest: read csv cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		rows = append(rows, record)
	}
	return parseRows(rows)
}

// ReadProductionXLSX parses the named sheet (or the first sheet when sheet is
// empty) of a production workbook.
func ReadProductionXLSX(path, sheet string) (Production, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}

	var sh *xlsx.Sheet
	if sheet != "" {
		var ok bool
		if sh, ok = f.Sheet[sheet]; !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", sheet)
		}
	} else {
		if len(f.Sheets) == 0 {
			return nil, eris.New("ingest: workbook has no sheets")
		}
		sh = f.Sheets[0]
	}

	rows := make([][]string, 0, len(sh.Rows))
	for _, row := range sh.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) (Production, error) {
	if len(rows) == 0 {
		return Production{}, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{ColAssetID, ColMonth} {
		if _, ok := idx[col]; !ok {
			return nil, eris.Errorf("ingest: missing required column %q", col)
		}
	}

	byMonth := make(map[string]map[time.Time]model.ProductionSample)
	for n, row := range rows[1:] {
		line := n + 2
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		assetID := cell(ColAssetID)
		if assetID == "" {
			if isBlank(row) {
				continue
			}
			return nil, eris.Errorf("ingest: row %d: asset_id is empty", line)
		}

		month, err := parseMonth(cell(ColMonth))
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: row %d", line)
		}

		s := model.ProductionSample{Month: month}
		for _, f := range []struct {
			col string
			dst **float64
		}{
			{ColOilVolumeBbl, &s.OilVolumeBbl},
			{ColGasVolumeMcf, &s.GasVolumeMcf},
			{ColOreVolumeTons, &s.OreVolumeTons},
			{ColWaterCutPct, &s.WaterCutPct},
			{ColDowntimeDays, &s.DowntimeDays},
		} {
			v, err := parseNumber(cell(f.col))
			if err != nil {
				return nil, eris.Wrapf(err, "ingest: row %d: %s", line, f.col)
			}
			*f.dst = v
		}

		if byMonth[assetID] == nil {
			byMonth[assetID] = make(map[time.Time]model.ProductionSample)
		}
		byMonth[assetID][month] = s
	}

	out := make(Production, len(byMonth))
	for id, months := range byMonth {
		samples := make([]model.ProductionSample, 0, len(months))
		for _, s := range months {
			samples = append(samples, s)
		}
		sort.Slice(samples, func(i, j int) bool { return samples[i].Month.After(samples[j].Month) })
		out[id] = samples
	}
	return out, nil
}

func parseMonth(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, eris.New("month is empty")
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.MonthStart(t), nil
		}
	}
	return time.Time{}, eris.Errorf("unrecognized month %q", raw)
}

func parseNumber(raw string) (*float64, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, eris.Errorf("invalid number %q", raw)
	}
	return &v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
