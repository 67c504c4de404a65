package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"agentic_finqa/pkg/models"
)

func TestDefaultCatalogBuilds(t *testing.T) {
	c := Default()
	if len(c.Metrics()) != len(models.ExtractionMetrics()) {
		t.Fatalf("Expected %d metrics, got %d", len(models.ExtractionMetrics()), len(c.Metrics()))
	}
	for _, kind := range models.ExtractionMetrics() {
		cm, ok := c.Spec(kind)
		if !ok {
			t.Errorf("Missing spec for %s", kind)
			continue
		}
		if len(cm.Patterns) == 0 {
			t.Errorf("No patterns for %s", kind)
		}
		if cm.TableBand == nil || cm.MainBand == nil {
			t.Errorf("Missing bands for %s", kind)
		}
	}
}

func TestDefaultBandsDisjoint(t *testing.T) {
	for _, cm := range Default().Metrics() {
		tb, mb := cm.TableBand, cm.MainBand
		if tb.Max > mb.Min && tb.Min < mb.Max {
			t.Errorf("%s: table band [%g, %g] overlaps main band [%g, %g]",
				cm.Metric, tb.Min, tb.Max, mb.Min, mb.Max)
		}
	}
}

func TestNewCatalogRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec MetricSpec
	}{
		{"empty metric", MetricSpec{Patterns: []string{`(\d+)`}}},
		{"bad pattern", MetricSpec{Metric: "x", Patterns: []string{`([unclosed`}}},
		{"no capture group", MetricSpec{Metric: "x", Patterns: []string{`\d+`}}},
		{"inverted band", MetricSpec{Metric: "x", TableBand: &Band{Min: 10, Max: 1}}},
		{"overlapping bands", MetricSpec{
			Metric:    "x",
			TableBand: &Band{Min: 1, Max: 500},
			MainBand:  &Band{Min: 400, Max: 900},
		}},
	}
	for _, c := range cases {
		if _, err := NewCatalog([]MetricSpec{c.spec}); err == nil {
			t.Errorf("Expected error for %s", c.name)
		}
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	spec := MetricSpec{Metric: models.NetProfit, Patterns: []string{`(\d+)`}}
	if _, err := NewCatalog([]MetricSpec{spec, spec}); err == nil {
		t.Error("Expected error for duplicate metric specs")
	}
}

func TestSyntheticCatalog(t *testing.T) {
	c, err := NewCatalog([]MetricSpec{
		{
			Metric:    "widgets",
			Patterns:  []string{`(?i)widgets?\s+(\d+)`},
			TableBand: &Band{Min: 1, Max: 10},
			MainBand:  &Band{Min: 100, Max: 200},
		},
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	cm, ok := c.Spec("widgets")
	if !ok {
		t.Fatal("Missing synthetic spec")
	}
	if !cm.Patterns[0].MatchString("Widgets 42") {
		t.Error("Synthetic pattern did not match")
	}
	if cm.MainBand.Midpoint() != 150 {
		t.Errorf("Expected midpoint 150, got %g", cm.MainBand.Midpoint())
	}
}

func TestLoadCatalogFromYAML(t *testing.T) {
	doc := `metrics:
  - metric: net_profit
    patterns:
      - (?i)profit\s+(\d+)
    table_band: {min: 1, max: 1000}
    main_band: {min: 1000, max: 20000}
    keywords: [net profit]
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write temp catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cm, ok := c.Spec(models.NetProfit)
	if !ok {
		t.Fatal("Loaded catalog missing net_profit")
	}
	if cm.TableBand.Max != 1000 || cm.MainBand.Max != 20000 {
		t.Errorf("Band limits not loaded: %+v %+v", cm.TableBand, cm.MainBand)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
