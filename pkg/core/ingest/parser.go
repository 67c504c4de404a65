// Package ingest converts HTML financial statements into retrievable
// chunks. Headings drive section labels, paragraph runs become text
// chunks, and table grids are scanned for metric rows. Table values are
// provisional at the ingestion base confidence; the extraction engine
// re-validates them against the metric bands before they become data
// points.
package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/models"
)

const (
	// maxSectionRun caps how much paragraph text accumulates before a
	// chunk is flushed mid-section.
	maxSectionRun = 4000
	// minChunkLen drops page-number fragments and heading stubs.
	minChunkLen = 50
)

// Parser turns one HTML statement into chunks for a single filing.
type Parser struct {
	catalog *metrics.Catalog
	log     zerolog.Logger
}

// NewParser builds a parser over the given metric catalog.
func NewParser(catalog *metrics.Catalog, log zerolog.Logger) *Parser {
	return &Parser{
		catalog: catalog,
		log:     log.With().Str("component", "ingest").Logger(),
	}
}

// ParseHTML reads an HTML document and returns its chunks. Metadata is
// validated up front; a filing that fails the boundary contract produces
// no chunks. Chunk IDs are deterministic per (filing, section, sequence)
// so re-ingesting the same document upserts instead of duplicating.
func (p *Parser) ParseHTML(r io.Reader, meta models.DocumentMetadata) ([]models.ChunkRecord, error) {
	meta = meta.WithDefaults()
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := newChunkBuilder(meta, p.catalog)
	doc.Find("h1, h2, h3, h4, h5, h6, p, table").Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)
		if name != "table" && sel.ParentsFiltered("table").Length() > 0 {
			return
		}
		switch name {
		case "table":
			b.addTable(sel)
		case "p":
			b.addText(sel.Text())
		default:
			b.startSection(sel.Text())
		}
	})
	chunks := b.finish()

	p.log.Info().
		Str("bank", meta.Bank).
		Str("period", string(meta.Period())).
		Str("document_type", string(meta.DocumentType)).
		Int("chunks", len(chunks)).
		Int("tables", b.tables).
		Msg("parsed filing")
	return chunks, nil
}

// Section labels follow the bank's statement structure. A heading that
// names none of these keeps the current label.
const sectionOther = "other"

var sectionRules = []struct {
	label    string
	keywords []string
}{
	{"balance_sheet", []string{"statement of financial position", "balance sheet"}},
	{"income_statement", []string{"statement of profit or loss", "income statement", "profit and loss"}},
	{"comprehensive_income", []string{"statement of comprehensive income"}},
	{"equity_changes", []string{"statement of changes in equity"}},
	{"cash_flow", []string{"statement of cash flows", "cash flow"}},
	{"notes", []string{"notes to the financial statements"}},
	{"risk_management", []string{"risk management", "credit risk", "market risk"}},
	{"management_commentary", []string{"management discussion", "executive summary"}},
}

// classifySection maps heading text to a canonical section label, or
// sectionOther when nothing matches.
func classifySection(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range sectionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label
			}
		}
	}
	return sectionOther
}

// chunkBuilder accumulates paragraph runs between headings and tables.
type chunkBuilder struct {
	meta    models.DocumentMetadata
	catalog *metrics.Catalog

	section string
	buf     strings.Builder
	seq     map[string]int
	tables  int
	chunks  []models.ChunkRecord
}

func newChunkBuilder(meta models.DocumentMetadata, catalog *metrics.Catalog) *chunkBuilder {
	return &chunkBuilder{
		meta:    meta,
		catalog: catalog,
		section: "header",
		seq:     make(map[string]int),
	}
}

// startSection flushes the running text and, when the heading names a
// known statement section, switches to it.
func (b *chunkBuilder) startSection(heading string) {
	b.flush()
	if label := classifySection(heading); label != sectionOther {
		b.section = label
	}
}

func (b *chunkBuilder) addText(text string) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return
	}
	b.buf.WriteString(text)
	b.buf.WriteByte('\n')
	if b.buf.Len() >= maxSectionRun {
		b.flush()
	}
}

// addTable converts a table element into its own chunk, scanning the
// grid for metric rows. Grids with fewer than two rows carry no
// label/value structure and are skipped.
func (b *chunkBuilder) addTable(sel *goquery.Selection) {
	b.flush()

	grid := buildGrid(sel)
	if len(grid) < 2 {
		return
	}
	content := renderGrid(grid)
	if content == "" {
		return
	}

	b.tables++
	b.chunks = append(b.chunks, models.ChunkRecord{
		ID:           b.chunkID("table"),
		Content:      content,
		Metadata:     b.meta,
		Section:      "table",
		TableMetrics: ScanGrid(grid, b.catalog),
	})
}

// flush emits the buffered paragraph run as a chunk. Runs shorter than
// minChunkLen are dropped.
func (b *chunkBuilder) flush() {
	content := strings.TrimSpace(b.buf.String())
	b.buf.Reset()
	if len(content) < minChunkLen {
		return
	}
	b.chunks = append(b.chunks, models.ChunkRecord{
		ID:       b.chunkID(b.section),
		Content:  content,
		Metadata: b.meta,
		Section:  b.section,
	})
}

func (b *chunkBuilder) finish() []models.ChunkRecord {
	b.flush()
	return b.chunks
}

func (b *chunkBuilder) chunkID(section string) string {
	b.seq[section]++
	return fmt.Sprintf("%d_%s_%s_%s_%d",
		b.meta.Year, b.meta.Quarter, b.meta.DocumentType, section, b.seq[section])
}
