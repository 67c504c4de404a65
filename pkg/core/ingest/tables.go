package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/models"
)

// tableConfidence is the base confidence for values lifted from table
// grids. The extractor's band validation may raise it, never lower it.
const tableConfidence = 0.7

// buildGrid flattens a table element into a cell matrix using a virtual
// grid, so colspan and rowspan cells land in their true columns.
func buildGrid(table *goquery.Selection) [][]string {
	rows := table.Find("tr")
	rowCount := rows.Length()
	if rowCount == 0 {
		return nil
	}

	maxCols := 0
	rows.Each(func(_ int, tr *goquery.Selection) {
		cols := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cols += spanAttr(cell, "colspan")
		})
		if cols > maxCols {
			maxCols = cols
		}
	})
	if maxCols == 0 {
		return nil
	}

	grid := make([][]string, rowCount)
	taken := make([][]bool, rowCount)
	for i := range grid {
		grid[i] = make([]string, maxCols)
		taken[i] = make([]bool, maxCols)
	}

	rows.Each(func(rowIdx int, tr *goquery.Selection) {
		colIdx := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			for colIdx < maxCols && taken[rowIdx][colIdx] {
				colIdx++
			}
			if colIdx >= maxCols {
				return
			}
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			for r := 0; r < rowspan && rowIdx+r < rowCount; r++ {
				for c := 0; c < colspan && colIdx+c < maxCols; c++ {
					taken[rowIdx+r][colIdx+c] = true
				}
			}
			grid[rowIdx][colIdx] = cleanCellText(cell.Text())
			colIdx += colspan
		})
	})
	return grid
}

func spanAttr(cell *goquery.Selection, name string) int {
	span, _ := strconv.Atoi(cell.AttrOr(name, "1"))
	if span < 1 {
		span = 1
	}
	return span
}

func cleanCellText(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	return strings.Join(strings.Fields(text), " ")
}

// renderGrid joins cells with pipes so term search still hits table
// content.
func renderGrid(grid [][]string) string {
	lines := make([]string, 0, len(grid))
	for _, row := range grid {
		line := strings.TrimSpace(strings.Join(row, " | "))
		if strings.Trim(line, "| ") == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ScanGrid searches a cell matrix for rows whose label names a known
// metric and lifts the first plausible numeric cell from each. The first
// matching row per metric wins; in comparative statements the current
// period is the leftmost numeric column, so first-cell selection reads
// the current figure, not the prior-year one.
func ScanGrid(grid [][]string, catalog *metrics.Catalog) map[models.MetricKind]models.TableMetric {
	found := make(map[models.MetricKind]models.TableMetric)
	for _, row := range grid {
		label := rowLabel(row)
		if label == "" {
			continue
		}
		value, ok := firstFinancialValue(row)
		if !ok {
			continue
		}
		for _, spec := range catalog.Metrics() {
			if _, taken := found[spec.Metric]; taken {
				continue
			}
			if matchesKeyword(label, spec.Keywords) {
				found[spec.Metric] = models.TableMetric{
					Value:      value,
					RowLabel:   label,
					Confidence: tableConfidence,
				}
				break
			}
		}
	}
	if len(found) == 0 {
		return nil
	}
	return found
}

// rowLabel returns descriptive text from the first three cells,
// lowercased. Numeric-only cells (note references, figures) never label
// a row.
func rowLabel(row []string) string {
	for i := 0; i < len(row) && i < 3; i++ {
		cell := strings.TrimSpace(row[i])
		if len(cell) > 3 && !numericOnly.MatchString(cell) {
			return strings.ToLower(cell)
		}
	}
	return ""
}

func matchesKeyword(label string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

var (
	numericOnly  = regexp.MustCompile(`^[\d,.\-()=\s]+$`)
	numericShape = regexp.MustCompile(`^[\d,.\s]+$`)
	nonNumeric   = regexp.MustCompile(`[^\d.]`)
)

// firstFinancialValue scans a row for the first cell shaped like a
// reported figure: digits with optional grouping, at least three digits
// or a decimal point. Two-digit cells are note references, not values.
func firstFinancialValue(row []string) (float64, bool) {
	for _, cell := range row {
		v, ok := parseFinancialCell(cell)
		if ok {
			return v, true
		}
	}
	return 0, false
}

func parseFinancialCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" || !numericShape.MatchString(cell) {
		return 0, false
	}
	cleaned := nonNumeric.ReplaceAllString(cell, "")
	if cleaned == "" || cleaned == "." {
		return 0, false
	}
	if !strings.Contains(cleaned, ".") && len(cleaned) < 3 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(cleaned, "."), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
