// Package models contains domain types for the corporate financials dashboard.
package models

import "math"

// FinancialRecord is one row of the financial statements table, one per (company, year).
// Revenue-type amounts are in millions USD, MarketCap is in billions USD.
type FinancialRecord struct {
	Year                   int     `json:"year" msgpack:"year"`
	Company                string  `json:"company" msgpack:"company"`
	Industry               string  `json:"industry" msgpack:"industry"`
	MarketCap              float64 `json:"marketCap" msgpack:"marketCap"`
	Revenue                float64 `json:"revenue" msgpack:"revenue"`
	GrossProfit            float64 `json:"grossProfit" msgpack:"grossProfit"`
	NetIncome              float64 `json:"netIncome" msgpack:"netIncome"`
	EPS                    float64 `json:"eps" msgpack:"eps"`
	EBITDA                 float64 `json:"ebitda" msgpack:"ebitda"`
	ShareholderEquity      float64 `json:"shareholderEquity" msgpack:"shareholderEquity"`
	CashFlowOperating      float64 `json:"cashFlowOperating" msgpack:"cashFlowOperating"`
	CashFlowInvesting      float64 `json:"cashFlowInvesting" msgpack:"cashFlowInvesting"`
	CashFlowFinancing      float64 `json:"cashFlowFinancing" msgpack:"cashFlowFinancing"`
	CurrentRatio           float64 `json:"currentRatio" msgpack:"currentRatio"`
	DebtEquityRatio        float64 `json:"debtEquityRatio" msgpack:"debtEquityRatio"`
	ROE                    float64 `json:"roe" msgpack:"roe"`
	ROA                    float64 `json:"roa" msgpack:"roa"`
	ROI                    float64 `json:"roi" msgpack:"roi"`
	NetProfitMargin        float64 `json:"netProfitMargin" msgpack:"netProfitMargin"`
	FreeCashFlowPerShare   float64 `json:"freeCashFlowPerShare" msgpack:"freeCashFlowPerShare"`
	ReturnOnTangibleEquity float64 `json:"returnOnTangibleEquity" msgpack:"returnOnTangibleEquity"`
	Employees              float64 `json:"employees" msgpack:"employees"`
	InflationRate          float64 `json:"inflationRate" msgpack:"inflationRate"`
}

// Column names after header normalization.
const (
	ColYear                   = "Year"
	ColCompany                = "Company"
	ColIndustry               = "Industry"
	ColMarketCap              = "Market_Cap"
	ColRevenue                = "Revenue"
	ColGrossProfit            = "Gross_Profit"
	ColNetIncome              = "Net_Income"
	ColEPS                    = "Earning_Per_Share"
	ColEBITDA                 = "EBITDA"
	ColShareholderEquity      = "Share_Holder_Equity"
	ColCashFlowOperating      = "Cash_Flow_from_Operating"
	ColCashFlowInvesting      = "Cash_Flow_from_Investing"
	ColCashFlowFinancing      = "Cash_Flow_from_Financial_Activities"
	ColCurrentRatio           = "Current_Ratio"
	ColDebtEquityRatio        = "Debt_Equity_Ratio"
	ColROE                    = "ROE"
	ColROA                    = "ROA"
	ColROI                    = "ROI"
	ColNetProfitMargin        = "Net_Profit_Margin"
	ColFreeCashFlowPerShare   = "Free_Cash_Flow_per_Share"
	ColReturnOnTangibleEquity = "Return_on_Tangible_Equity"
	ColEmployees              = "Number_of_Employees"
	ColInflationRate          = "Inflation_Rate"
)

// NumericColumns lists every float column in file order.
var NumericColumns = []string{
	ColMarketCap, ColRevenue, ColGrossProfit, ColNetIncome, ColEPS, ColEBITDA,
	ColShareholderEquity, ColCashFlowOperating, ColCashFlowInvesting, ColCashFlowFinancing,
	ColCurrentRatio, ColDebtEquityRatio, ColROE, ColROA, ColROI, ColNetProfitMargin,
	ColFreeCashFlowPerShare, ColReturnOnTangibleEquity, ColEmployees, ColInflationRate,
}

// Value returns the numeric column by normalized name. Unknown columns yield NaN.
func (r *FinancialRecord) Value(col string) float64 {
	if p := r.field(col); p != nil {
		return *p
	}
	return math.NaN()
}

// SetValue assigns a numeric column by normalized name and reports whether the column is known.
func (r *FinancialRecord) SetValue(col string, v float64) bool {
	p := r.field(col)
	if p == nil {
		return false
	}
	*p = v
	return true
}

func (r *FinancialRecord) field(col string) *float64 {
	switch col {
	case ColMarketCap:
		return &r.MarketCap
	case ColRevenue:
		return &r.Revenue
	case ColGrossProfit:
		return &r.GrossProfit
	case ColNetIncome:
		return &r.NetIncome
	case ColEPS:
		return &r.EPS
	case ColEBITDA:
		return &r.EBITDA
	case ColShareholderEquity:
		return &r.ShareholderEquity
	case ColCashFlowOperating:
		return &r.CashFlowOperating
	case ColCashFlowInvesting:
		return &r.CashFlowInvesting
	case ColCashFlowFinancing:
		return &r.CashFlowFinancing
	case ColCurrentRatio:
		return &r.CurrentRatio
	case ColDebtEquityRatio:
		return &r.DebtEquityRatio
	case ColROE:
		return &r.ROE
	case ColROA:
		return &r.ROA
	case ColROI:
		return &r.ROI
	case ColNetProfitMargin:
		return &r.NetProfitMargin
	case ColFreeCashFlowPerShare:
		return &r.FreeCashFlowPerShare
	case ColReturnOnTangibleEquity:
		return &r.ReturnOnTangibleEquity
	case ColEmployees:
		return &r.Employees
	case ColInflationRate:
		return &r.InflationRate
	}
	return nil
}

// NewRecord returns a record with every numeric column set to NaN.
func NewRecord(company, industry string, year int) FinancialRecord {
	r := FinancialRecord{Year: year, Company: company, Industry: industry}
	for _, col := range NumericColumns {
		r.SetValue(col, math.NaN())
	}
	return r
}
