package metrics

import "agentic_finqa/pkg/models"

// Statement phrasing, unit gaps, and band limits below follow the bank's
// published quarterly and annual statements (AED, figures in millions).
// Table bands accept comparative-table cells; main bands accept headline
// statement figures. The two never overlap, so the validator classifies
// every positive value exactly once.

// DefaultSpecs returns the production metric catalog.
func DefaultSpecs() []MetricSpec {
	return []MetricSpec{
		{
			Metric: models.NetProfit,
			Patterns: []string{
				`(?i)profit\s+for\s+the\s+(?:period|year)[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)net\s+profit\s+for\s+the\s+(?:period|year)[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)profit\s+after\s+tax[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)net\s+profit.*?([\d,]+(?:\.\d+)?)\s*(?:billion|bn)`,
				`(?i)profit.*?([\d,]+(?:\.\d+)?)\s*(?:billion|bn)\s*aed`,
				`(?i)net\s+profit[\s\S]{1,200}?aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)net\s+profit.*?aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|bn|billion)?`,
			},
			TableBand: &Band{Min: 1, Max: 1000},
			MainBand:  &Band{Min: 1000, Max: 20000},
			Keywords:  []string{"net profit", "profit for the", "net income", "profit after"},
		},
		{
			Metric: models.ShareholderEquity,
			Patterns: []string{
				`(?i)total\s+equity[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)total\s+shareholders['\s]*equity[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)shareholders['\s]*equity[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)shareholders.*?equity.*?([\d,]+(?:\.\d+)?)\s*(?:billion|bn)`,
				`(?i)equity[\s\S]{1,200}?aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)equity.*?aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|bn|billion)?`,
			},
			TableBand: &Band{Min: 1, Max: 10000},
			MainBand:  &Band{Min: 80000, Max: 120000},
			Keywords:  []string{"total equity", "shareholders equity", "equity"},
		},
		{
			Metric: models.TotalAssets,
			Patterns: []string{
				`(?i)total\s+assets[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)total\s+assets.*?([\d,]+(?:\.\d+)?)\s*(?:billion|bn)\s*aed`,
				`(?i)total\s+assets.*?([\d,]+(?:\.\d+)?)\s*(?:billion|bn)`,
				`(?i)assets\s+total[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)total\s+assets.*?([\d,]+(?:\.\d+)?)\s*trillion`,
				`(?i)total\s+assets.*?aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|bn|billion|trillion)?`,
			},
			TableBand: &Band{Min: 1, Max: 10000},
			MainBand:  &Band{Min: 400000, Max: 1200000},
			Keywords:  []string{"total assets", "assets total"},
		},
		{
			Metric: models.TotalLoans,
			Patterns: []string{
				`(?i)total\s+loans[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)loans\s+and\s+advances[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)loans\s+and\s+advances.*?([\d,]+(?:\.\d+)?)\s*(?:billion|bn)`,
				`(?i)net\s+loans[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)loans.*?aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|bn|billion)?`,
			},
			TableBand: &Band{Min: 1, Max: 10000},
			MainBand:  &Band{Min: 200000, Max: 500000},
			Keywords:  []string{"total loans", "loans and advances", "net loans"},
		},
		{
			Metric: models.TotalDeposits,
			Patterns: []string{
				`(?i)total\s+deposits[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)customer\s+deposits[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)customer\s+deposits.*?([\d,]+(?:\.\d+)?)\s*(?:billion|bn)`,
				// Columnar presentation rows: take the leftmost (current) figure.
				`(?i)customer\s+deposits\s+([\d,]+(?:\.\d+)?)(?:\s+[\d,]+(?:\.\d+)?){2,}`,
				`(?i)deposits[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)deposits.*?aed\s*([\d,]+(?:\.\d+)?)`,
			},
			TableBand: &Band{Min: 1, Max: 10000},
			MainBand:  &Band{Min: 300000, Max: 600000},
			Keywords:  []string{"total deposits", "customer deposits", "deposits"},
		},
		{
			Metric: models.NetInterestIncome,
			Patterns: []string{
				`(?i)net\s+interest\s+income[^\d]{0,200}aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)net\s+interest\s+income.*?([\d,]+(?:\.\d+)?)\s*(?:billion|bn)`,
				`(?i)net\s+interest\s+income[\s\S]{1,200}?aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|'000)`,
				`(?i)net\s+interest\s+income.*?aed\s*([\d,]+(?:\.\d+)?)\s*(?:million|bn|billion)?`,
			},
			TableBand: &Band{Min: 1, Max: 1000},
			MainBand:  &Band{Min: 1000, Max: 15000},
			Keywords:  []string{"net interest income", "interest income net"},
		},
	}
}
