package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 that encodes NaN and ±Inf as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler. null decodes to NaN.
func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Floats converts a float64 slice.
func Floats(values []float64) []Float {
	out := make([]Float, len(values))
	for i, v := range values {
		out[i] = Float(v)
	}
	return out
}

type recordJSON struct {
	Year                   int    `json:"year"`
	Company                string `json:"company"`
	Industry               string `json:"industry"`
	MarketCap              Float  `json:"marketCap"`
	Revenue                Float  `json:"revenue"`
	GrossProfit            Float  `json:"grossProfit"`
	NetIncome              Float  `json:"netIncome"`
	EPS                    Float  `json:"eps"`
	EBITDA                 Float  `json:"ebitda"`
	ShareholderEquity      Float  `json:"shareholderEquity"`
	CashFlowOperating      Float  `json:"cashFlowOperating"`
	CashFlowInvesting      Float  `json:"cashFlowInvesting"`
	CashFlowFinancing      Float  `json:"cashFlowFinancing"`
	CurrentRatio           Float  `json:"currentRatio"`
	DebtEquityRatio        Float  `json:"debtEquityRatio"`
	ROE                    Float  `json:"roe"`
	ROA                    Float  `json:"roa"`
	ROI                    Float  `json:"roi"`
	NetProfitMargin        Float  `json:"netProfitMargin"`
	FreeCashFlowPerShare   Float  `json:"freeCashFlowPerShare"`
	ReturnOnTangibleEquity Float  `json:"returnOnTangibleEquity"`
	Employees              Float  `json:"employees"`
	InflationRate          Float  `json:"inflationRate"`
}

// MarshalJSON writes missing values as null instead of failing on NaN.
func (r FinancialRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Year:                   r.Year,
		Company:                r.Company,
		Industry:               r.Industry,
		MarketCap:              Float(r.MarketCap),
		Revenue:                Float(r.Revenue),
		GrossProfit:            Float(r.GrossProfit),
		NetIncome:              Float(r.NetIncome),
		EPS:                    Float(r.EPS),
		EBITDA:                 Float(r.EBITDA),
		ShareholderEquity:      Float(r.ShareholderEquity),
		CashFlowOperating:      Float(r.CashFlowOperating),
		CashFlowInvesting:      Float(r.CashFlowInvesting),
		CashFlowFinancing:      Float(r.CashFlowFinancing),
		CurrentRatio:           Float(r.CurrentRatio),
		DebtEquityRatio:        Float(r.DebtEquityRatio),
		ROE:                    Float(r.ROE),
		ROA:                    Float(r.ROA),
		ROI:                    Float(r.ROI),
		NetProfitMargin:        Float(r.NetProfitMargin),
		FreeCashFlowPerShare:   Float(r.FreeCashFlowPerShare),
		ReturnOnTangibleEquity: Float(r.ReturnOnTangibleEquity),
		Employees:              Float(r.Employees),
		InflationRate:          Float(r.InflationRate),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *FinancialRecord) UnmarshalJSON(b []byte) error {
	var aux recordJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = FinancialRecord{
		Year:                   aux.Year,
		Company:                aux.Company,
		Industry:               aux.Industry,
		MarketCap:              float64(aux.MarketCap),
		Revenue:                float64(aux.Revenue),
		GrossProfit:            float64(aux.GrossProfit),
		NetIncome:              float64(aux.NetIncome),
		EPS:                    float64(aux.EPS),
		EBITDA:                 float64(aux.EBITDA),
		ShareholderEquity:      float64(aux.ShareholderEquity),
		CashFlowOperating:      float64(aux.CashFlowOperating),
		CashFlowInvesting:      float64(aux.CashFlowInvesting),
		CashFlowFinancing:      float64(aux.CashFlowFinancing),
		CurrentRatio:           float64(aux.CurrentRatio),
		DebtEquityRatio:        float64(aux.DebtEquityRatio),
		ROE:                    float64(aux.ROE),
		ROA:                    float64(aux.ROA),
		ROI:                    float64(aux.ROI),
		NetProfitMargin:        float64(aux.NetProfitMargin),
		FreeCashFlowPerShare:   float64(aux.FreeCashFlowPerShare),
		ReturnOnTangibleEquity: float64(aux.ReturnOnTangibleEquity),
		Employees:              float64(aux.Employees),
		InflationRate:          float64(aux.InflationRate),
	}
	return nil
}
