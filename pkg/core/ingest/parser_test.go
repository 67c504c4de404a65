package ingest

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

func testParser() *Parser {
	return NewParser(metrics.Default(), zerolog.Nop())
}

func testMeta(q temporal.Quarter) models.DocumentMetadata {
	return models.DocumentMetadata{
		Bank:         "FAB",
		Year:         2022,
		Quarter:      q,
		DocumentType: models.DocFinancialStatement,
	}
}

func TestParseHTMLSectionsAndChunks(t *testing.T) {
	html := `<html><body>
		<h2>Consolidated statement of profit or loss</h2>
		<p>Net profit for the period was AED 5,120 million, an increase of 19 percent over the prior year.</p>
		<p>Operating income continued to grow across all business segments during the quarter.</p>
		<h2>Consolidated statement of financial position</h2>
		<p>Total assets stood at AED 1,110,000 million at quarter end, supported by continued loan growth.</p>
	</body></html>`

	chunks, err := testParser().ParseHTML(strings.NewReader(html), testMeta(temporal.Q1))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}

	if chunks[0].Section != "income_statement" {
		t.Errorf("Expected section income_statement, got %s", chunks[0].Section)
	}
	if !strings.Contains(chunks[0].Content, "5,120") {
		t.Errorf("Expected first chunk to carry the profit sentence, got %q", chunks[0].Content)
	}
	if !strings.Contains(chunks[0].Content, "Operating income") {
		t.Errorf("Expected paragraphs of one section to share a chunk, got %q", chunks[0].Content)
	}
	if chunks[1].Section != "balance_sheet" {
		t.Errorf("Expected section balance_sheet, got %s", chunks[1].Section)
	}

	if chunks[0].ID != "2022_Q1_financial_statement_income_statement_1" {
		t.Errorf("Unexpected chunk ID: %s", chunks[0].ID)
	}
	if chunks[0].Metadata.Currency != "AED" || chunks[0].Metadata.Units != "millions" {
		t.Errorf("Expected reporting defaults on metadata, got %s/%s",
			chunks[0].Metadata.Currency, chunks[0].Metadata.Units)
	}
}

func TestParseHTMLTableMetrics(t *testing.T) {
	html := `<html><body>
		<h2>Consolidated statement of financial position</h2>
		<table>
			<tr><th>Description</th><th>Note</th><th>2022</th><th>2021</th></tr>
			<tr><td>Loans and advances</td><td>12</td><td>459,000</td><td>410,000</td></tr>
			<tr><td>Total assets</td><td></td><td>1,110,000</td><td>982,000</td></tr>
			<tr><td>Customer deposits</td><td>14</td><td>621,000</td><td>580,000</td></tr>
		</table>
	</body></html>`

	chunks, err := testParser().ParseHTML(strings.NewReader(html), testMeta(temporal.Annual))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 table chunk, got %d", len(chunks))
	}

	chunk := chunks[0]
	if chunk.Section != "table" {
		t.Errorf("Expected section table, got %s", chunk.Section)
	}
	if chunk.ID != "2022_Annual_financial_statement_table_1" {
		t.Errorf("Unexpected table chunk ID: %s", chunk.ID)
	}
	if !strings.Contains(chunk.Content, "1,110,000") {
		t.Errorf("Expected rendered grid to keep cell text, got %q", chunk.Content)
	}

	if len(chunk.TableMetrics) != 3 {
		t.Fatalf("Expected 3 table metrics, got %d", len(chunk.TableMetrics))
	}
	cases := []struct {
		metric models.MetricKind
		value  float64
		label  string
	}{
		{models.TotalLoans, 459000, "loans and advances"},
		{models.TotalAssets, 1110000, "total assets"},
		{models.TotalDeposits, 621000, "customer deposits"},
	}
	for _, tc := range cases {
		tm, ok := chunk.TableMetrics[tc.metric]
		if !ok {
			t.Errorf("Expected table metric %s", tc.metric)
			continue
		}
		if tm.Value != tc.value {
			t.Errorf("Expected %s value %.0f, got %.0f", tc.metric, tc.value, tm.Value)
		}
		if tm.RowLabel != tc.label {
			t.Errorf("Expected %s row label %q, got %q", tc.metric, tc.label, tm.RowLabel)
		}
		if tm.Confidence != 0.7 {
			t.Errorf("Expected base confidence 0.7 for %s, got %.2f", tc.metric, tm.Confidence)
		}
	}
}

func TestParseHTMLColspanGrid(t *testing.T) {
	html := `<html><body>
		<table>
			<tr><th>Item</th><th colspan="2">Year ended</th></tr>
			<tr><td>Net profit</td><td>5,120</td><td>4,500</td></tr>
		</table>
	</body></html>`

	chunks, err := testParser().ParseHTML(strings.NewReader(html), testMeta(temporal.Q2))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}

	tm, ok := chunks[0].TableMetrics[models.NetProfit]
	if !ok {
		t.Fatalf("Expected net_profit from spanned table")
	}
	if tm.Value != 5120 {
		t.Errorf("Expected current-period column 5120, got %.0f", tm.Value)
	}
}

func TestParseHTMLSkipsCellParagraphs(t *testing.T) {
	html := `<html><body>
		<table>
			<tr><td><p>Total equity</p></td><td><p>112,000</p></td></tr>
			<tr><td>Share capital</td><td>11,000</td></tr>
		</table>
	</body></html>`

	chunks, err := testParser().ParseHTML(strings.NewReader(html), testMeta(temporal.Q3))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected only the table chunk, got %d chunks", len(chunks))
	}
	tm, ok := chunks[0].TableMetrics[models.ShareholderEquity]
	if !ok {
		t.Fatalf("Expected shareholder_equity from cell paragraphs")
	}
	if tm.Value != 112000 {
		t.Errorf("Expected 112000, got %.0f", tm.Value)
	}
}

func TestParseHTMLDropsShortRuns(t *testing.T) {
	html := `<html><body><p>Page 3</p><p>FAB</p></body></html>`

	chunks, err := testParser().ParseHTML(strings.NewReader(html), testMeta(temporal.Q1))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected no chunks from page-number fragments, got %d", len(chunks))
	}
}

func TestParseHTMLUnknownHeadingKeepsSection(t *testing.T) {
	html := `<html><body>
		<h2>Consolidated statement of profit or loss</h2>
		<p>Net interest income rose on the back of higher rates and balance sheet growth in the quarter.</p>
		<h3>Note 7</h3>
		<p>Fee and commission income benefited from strong client activity across global markets desks.</p>
	</body></html>`

	chunks, err := testParser().ParseHTML(strings.NewReader(html), testMeta(temporal.Q4))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Section != "income_statement" {
			t.Errorf("Expected chunk %d to stay in income_statement, got %s", i, c.Section)
		}
	}
	if chunks[1].ID != "2022_Q4_financial_statement_income_statement_2" {
		t.Errorf("Expected per-section sequence numbering, got %s", chunks[1].ID)
	}
}

func TestParseHTMLInvalidMetadata(t *testing.T) {
	meta := testMeta(temporal.Q1)
	meta.Bank = ""

	chunks, err := testParser().ParseHTML(strings.NewReader("<p>anything</p>"), meta)
	if err == nil {
		t.Fatalf("Expected metadata validation error")
	}
	if chunks != nil {
		t.Errorf("Expected no chunks on invalid metadata, got %d", len(chunks))
	}
}

func TestClassifySection(t *testing.T) {
	cases := []struct {
		heading string
		want    string
	}{
		{"Consolidated statement of cash flows", "cash_flow"},
		{"STATEMENT OF CHANGES IN EQUITY", "equity_changes"},
		{"Risk management review", "risk_management"},
		{"Notes to the financial statements", "notes"},
		{"Chairman's message", "other"},
	}
	for _, tc := range cases {
		if got := classifySection(tc.heading); got != tc.want {
			t.Errorf("classifySection(%q): expected %s, got %s", tc.heading, tc.want, got)
		}
	}
}

func TestScanGridFirstRowWins(t *testing.T) {
	grid := [][]string{
		{"Total equity", "112,000", "105,000"},
		{"Total equity and liabilities", "1,110,000", "982,000"},
	}

	found := ScanGrid(grid, metrics.Default())
	tm, ok := found[models.ShareholderEquity]
	if !ok {
		t.Fatalf("Expected shareholder_equity match")
	}
	if tm.Value != 112000 {
		t.Errorf("Expected first matching row to win, got %.0f", tm.Value)
	}
}

func TestScanGridSkipsNumericLabels(t *testing.T) {
	grid := [][]string{
		{"1,200", "2,400"},
		{"", "500"},
	}

	if found := ScanGrid(grid, metrics.Default()); found != nil {
		t.Errorf("Expected no metrics from unlabeled rows, got %v", found)
	}
}

func TestParseFinancialCell(t *testing.T) {
	cases := []struct {
		cell  string
		want  float64
		valid bool
	}{
		{"5,120", 5120, true},
		{"1,110,000", 1110000, true},
		{"1.21", 1.21, true},
		{"12", 0, false},
		{"(500)", 0, false},
		{"Note 12", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseFinancialCell(tc.cell)
		if ok != tc.valid {
			t.Errorf("parseFinancialCell(%q): expected valid=%v, got %v", tc.cell, tc.valid, ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("parseFinancialCell(%q): expected %g, got %g", tc.cell, tc.want, got)
		}
	}
}
