package ml

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/stats"
)

// ErrInsufficientData is returned when there are too few rows to train.
var ErrInsufficientData = errors.New("not enough data to train the model")

// MinRows is the number of rows that must be exceeded to train.
const MinRows = 10

// FeatureColumns are the model inputs, in order.
var FeatureColumns = []string{
	models.ColMarketCap,
	models.ColRevenue,
	models.ColGrossProfit,
	models.ColNetIncome,
	models.ColEBITDA,
	models.ColROE,
	models.ColROA,
	models.ColROI,
	models.ColCurrentRatio,
	models.ColDebtEquityRatio,
}

// Config holds the pipeline hyperparameters.
type Config struct {
	Trees    int
	MaxDepth int // depth of the final model; the selector is unlimited
	Seed     int64
	TestSize float64
	Workers  int
}

// DefaultConfig mirrors the dashboard's fixed settings.
func DefaultConfig() Config {
	return Config{
		Trees:    100,
		MaxDepth: 5,
		Seed:     42,
		TestSize: 0.3,
	}
}

// Dataset is the design matrix built from records.
type Dataset struct {
	X         [][]float64
	Y         []int
	Threshold float64
}

// Prepare labels each record 1 when its EPS is above the median EPS and
// builds the feature matrix with missing values as 0.
func Prepare(records []models.FinancialRecord) Dataset {
	threshold := stats.Median(stats.Column(records, models.ColEPS))

	ds := Dataset{
		X:         make([][]float64, len(records)),
		Y:         make([]int, len(records)),
		Threshold: threshold,
	}
	for i := range records {
		row := make([]float64, len(FeatureColumns))
		for j, col := range FeatureColumns {
			v := records[i].Value(col)
			if math.IsNaN(v) {
				v = 0
			}
			row[j] = v
		}
		ds.X[i] = row
		if records[i].EPS > threshold {
			ds.Y[i] = 1
		}
	}
	return ds
}

// Run selects features with a random forest, trains the final forest on a
// train split of the selected features and reports test accuracy and
// importances.
func Run(ctx context.Context, records []models.FinancialRecord, cfg Config) (*models.ModelReport, error) {
	if len(records) <= MinRows {
		return nil, fmt.Errorf("%w: %d rows, need more than %d", ErrInsufficientData, len(records), MinRows)
	}

	ds := Prepare(records)

	selector, err := FitForest(ctx, ds.X, ds.Y, ForestParams{
		Trees:   cfg.Trees,
		Seed:    cfg.Seed,
		Workers: cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("fitting selector: %w", err)
	}
	support, cutoff := SelectFromModel(selector.FeatureImportances())

	Xsel := Columns(ds.X, support)
	trainIdx, testIdx := TrainTestSplit(len(Xsel), cfg.TestSize, cfg.Seed)
	Xtrain, ytrain := Rows(Xsel, ds.Y, trainIdx)
	Xtest, ytest := Rows(Xsel, ds.Y, testIdx)

	model, err := FitForest(ctx, Xtrain, ytrain, ForestParams{
		Trees:    cfg.Trees,
		MaxDepth: cfg.MaxDepth,
		Seed:     cfg.Seed,
		Workers:  cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("fitting model: %w", err)
	}

	report := &models.ModelReport{
		Accuracy:        model.Score(Xtest, ytest),
		EPSThreshold:    ds.Threshold,
		SelectionCutoff: cutoff,
		Features:        append([]string(nil), FeatureColumns...),
		TrainRows:       len(trainIdx),
		TestRows:        len(testIdx),
		PositiveRate:    positiveRate(ds.Y),
	}
	for j, imp := range model.FeatureImportances() {
		name := FeatureColumns[support[j]]
		report.SelectedFeatures = append(report.SelectedFeatures, name)
		report.Importances = append(report.Importances, models.FeatureImportance{Feature: name, Importance: imp})
	}
	return report, nil
}

func positiveRate(y []int) float64 {
	pos := 0
	for _, v := range y {
		pos += v
	}
	return float64(pos) / float64(len(y))
}
