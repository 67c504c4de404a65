package metrics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"agentic_finqa/pkg/models"
)

type yamlBand struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type yamlMetric struct {
	Metric    string    `yaml:"metric"`
	Patterns  []string  `yaml:"patterns"`
	TableBand *yamlBand `yaml:"table_band"`
	MainBand  *yamlBand `yaml:"main_band"`
	Keywords  []string  `yaml:"keywords"`
}

type yamlCatalog struct {
	Metrics []yamlMetric `yaml:"metrics"`
}

// Load builds a catalog from a YAML file. Deployments override the
// compiled-in specs this way when the bank's statement phrasing or
// plausibility limits change between reporting years.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metric catalog: %w", err)
	}
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse metric catalog: %w", err)
	}
	if len(doc.Metrics) == 0 {
		return nil, fmt.Errorf("metric catalog %s defines no metrics", path)
	}

	specs := make([]MetricSpec, 0, len(doc.Metrics))
	for _, m := range doc.Metrics {
		spec := MetricSpec{
			Metric:   models.MetricKind(m.Metric),
			Patterns: m.Patterns,
			Keywords: m.Keywords,
		}
		if m.TableBand != nil {
			spec.TableBand = &Band{Min: m.TableBand.Min, Max: m.TableBand.Max}
		}
		if m.MainBand != nil {
			spec.MainBand = &Band{Min: m.MainBand.Min, Max: m.MainBand.Max}
		}
		specs = append(specs, spec)
	}
	return NewCatalog(specs)
}
