package models

// SummaryRow holds per-company means rounded to two decimals.
type SummaryRow struct {
	Company   string `json:"company"`
	Revenue   Float  `json:"revenue"`
	NetIncome Float  `json:"netIncome"`
	EPS       Float  `json:"eps"`
	MarketCap Float  `json:"marketCap"`
	ROE       Float  `json:"roe"`
	ROA       Float  `json:"roa"`
}

// FormattedSummaryRow is the display form of a SummaryRow.
type FormattedSummaryRow struct {
	Company   string `json:"company"`
	Revenue   string `json:"revenue"`
	NetIncome string `json:"netIncome"`
	EPS       string `json:"eps"`
	MarketCap string `json:"marketCap"`
	ROE       string `json:"roe"`
	ROA       string `json:"roa"`
}

// SummaryTable is the financial data summary section.
type SummaryTable struct {
	Columns   []string              `json:"columns"`
	Rows      []SummaryRow          `json:"rows"`
	Formatted []FormattedSummaryRow `json:"formatted"`
}
