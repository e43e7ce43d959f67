package charts

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/corpfin/dashboard/internal/models"
	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// DefaultAssetsHost serves echarts.min.js and the theme scripts.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Theme is the color scheme applied to every chart.
type Theme struct {
	Background string
	Text       string
}

// Renderer converts chart datasets into go-echarts charts.
type Renderer struct {
	theme      Theme
	assetsHost string
}

// NewRenderer creates a renderer. An empty assetsHost uses DefaultAssetsHost.
func NewRenderer(theme Theme, assetsHost string) *Renderer {
	if assetsHost == "" {
		assetsHost = DefaultAssetsHost
	}
	return &Renderer{theme: theme, assetsHost: assetsHost}
}

// AssetsHost is where chart scripts are loaded from.
func (r *Renderer) AssetsHost() string {
	return r.assetsHost
}

// ThemeName is the echarts theme registered by the theme script.
func (r *Renderer) ThemeName() string {
	return types.ThemeChalk
}

type echart interface {
	Validate()
	JSON() map[string]interface{}
	Render(w io.Writer) error
}

// Options returns the echarts option object of c, ready for setOption.
func (r *Renderer) Options(c models.Chart) (template.JS, error) {
	e, err := r.build(c)
	if err != nil {
		return "", err
	}
	e.Validate()

	b, err := json.Marshal(e.JSON())
	if err != nil {
		return "", fmt.Errorf("encoding %s options: %w", c.Name, err)
	}
	return template.JS(b), nil
}

// Page writes a standalone HTML page with c.
func (r *Renderer) Page(w io.Writer, c models.Chart) error {
	e, err := r.build(c)
	if err != nil {
		return err
	}
	return e.Render(w)
}

func (r *Renderer) build(c models.Chart) (echart, error) {
	switch c.Kind {
	case models.ChartBar:
		return r.bar(c), nil
	case models.ChartPie:
		return r.pie(c), nil
	case models.ChartScatter:
		return r.scatter(c), nil
	case models.ChartLine:
		return r.line(c), nil
	case models.ChartBox:
		return r.box(c), nil
	}
	return nil, fmt.Errorf("%w: kind %q", ErrUnknownChart, c.Kind)
}

// ChartID is the DOM id used for c. It is also a JS identifier.
func ChartID(name string) string {
	return "chart_" + strings.ReplaceAll(name, "-", "_")
}

func (r *Renderer) globals(c models.Chart, trigger string) []echarts.GlobalOpts {
	text := &opts.TextStyle{Color: r.theme.Text}
	return []echarts.GlobalOpts{
		echarts.WithInitializationOpts(opts.Initialization{
			PageTitle:       c.Title,
			Width:           "100%",
			Height:          fmt.Sprintf("%dpx", c.Height),
			BackgroundColor: r.theme.Background,
			ChartID:         ChartID(c.Name),
			AssetsHost:      r.assetsHost,
			Theme:           types.ThemeChalk,
		}),
		echarts.WithTitleOpts(opts.Title{Title: c.Title, TitleStyle: text}),
		echarts.WithTooltipOpts(opts.Tooltip{Trigger: trigger}),
		echarts.WithLegendOpts(opts.Legend{Top: "bottom", TextStyle: text}),
	}
}

func (r *Renderer) bar(c models.Chart) *echarts.Bar {
	bar := echarts.NewBar()
	bar.SetGlobalOptions(r.globals(c, "axis")...)

	if c.Horizontal {
		bar.SetGlobalOptions(
			echarts.WithXAxisOpts(opts.XAxis{Name: c.XTitle, Type: "value"}),
			echarts.WithYAxisOpts(opts.YAxis{Name: c.YTitle, Type: "category", Data: c.Categories}),
		)
	} else {
		bar.SetXAxis(c.Categories)
		bar.SetGlobalOptions(
			echarts.WithXAxisOpts(opts.XAxis{Name: c.XTitle, Type: "category"}),
			echarts.WithYAxisOpts(opts.YAxis{Name: c.YTitle, Type: "value"}),
		)
	}

	for _, s := range c.Series {
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.BarData{Name: category(c, i), Value: value(v)}
			if i < len(s.Colors) {
				data[i].ItemStyle = &opts.ItemStyle{Color: s.Colors[i]}
			}
		}

		var so []echarts.SeriesOpts
		if c.BarMode == models.BarModeStack {
			so = append(so, echarts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		if s.Color != "" {
			so = append(so, echarts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
		}
		bar.AddSeries(s.Name, data, so...)
	}
	return bar
}

func (r *Renderer) pie(c models.Chart) *echarts.Pie {
	pie := echarts.NewPie()
	pie.SetGlobalOptions(r.globals(c, "item")...)

	for _, s := range c.Series {
		data := make([]opts.PieData, 0, len(s.Values))
		for i, v := range s.Values {
			if v := value(v); v != nil {
				data = append(data, opts.PieData{Name: category(c, i), Value: v})
			}
		}
		pie.AddSeries(s.Name, data, echarts.WithPieChartOpts(opts.PieChart{Radius: "65%"}))
	}
	return pie
}

func (r *Renderer) scatter(c models.Chart) *echarts.Scatter {
	sc := echarts.NewScatter()
	sc.SetGlobalOptions(r.globals(c, "item")...)
	sc.SetGlobalOptions(
		echarts.WithXAxisOpts(opts.XAxis{Name: c.XTitle, Type: "value"}),
		echarts.WithYAxisOpts(opts.YAxis{Name: c.YTitle, Type: "value"}),
	)

	maxSize := 0.0
	for _, s := range c.Series {
		for _, p := range s.Points {
			if v := float64(p.Size); !math.IsNaN(v) && v > maxSize {
				maxSize = v
			}
		}
	}

	for _, s := range c.Series {
		data := make([]opts.ScatterData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.ScatterData{
				Name:       p.Label,
				Value:      []interface{}{value(p.X), value(p.Y)},
				SymbolSize: symbolSize(float64(p.Size), maxSize),
			}
		}
		sc.AddSeries(s.Name, data)
	}
	return sc
}

// symbolSize scales marker area with size, between 6 and 30 pixels wide.
func symbolSize(size, maxSize float64) int {
	if math.IsNaN(size) || size <= 0 || maxSize <= 0 {
		return 6
	}
	return int(math.Round(6 + 24*math.Sqrt(size/maxSize)))
}

func (r *Renderer) line(c models.Chart) *echarts.Line {
	line := echarts.NewLine()
	line.SetGlobalOptions(r.globals(c, "axis")...)
	line.SetXAxis(c.Categories)
	line.SetGlobalOptions(
		echarts.WithXAxisOpts(opts.XAxis{Name: c.XTitle, Type: "category"}),
		echarts.WithYAxisOpts(opts.YAxis{Name: c.YTitle, Type: "value"}),
	)

	for _, s := range c.Series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: value(v)}
		}
		line.AddSeries(s.Name, data)
	}
	return line
}

func (r *Renderer) box(c models.Chart) *echarts.BoxPlot {
	box := echarts.NewBoxPlot()
	box.SetGlobalOptions(r.globals(c, "item")...)
	box.SetXAxis(c.Categories)
	box.SetGlobalOptions(
		echarts.WithXAxisOpts(opts.XAxis{Name: c.XTitle, Type: "category"}),
		echarts.WithYAxisOpts(opts.YAxis{Name: c.YTitle, Type: "value"}),
	)

	data := make([]opts.BoxPlotData, len(c.Boxes))
	var outliers []opts.ScatterData
	for i, b := range c.Boxes {
		data[i] = opts.BoxPlotData{
			Name: b.Name,
			Value: []float64{
				float64(b.LowerFence), float64(b.Q1), float64(b.Median), float64(b.Q3), float64(b.UpperFence),
			},
		}
		for _, o := range b.Outliers {
			outliers = append(outliers, opts.ScatterData{Value: []interface{}{b.Name, float64(o)}})
		}
	}
	box.AddSeries(c.YTitle, data)

	if len(outliers) > 0 {
		sc := echarts.NewScatter()
		sc.AddSeries("Outliers", outliers)
		box.Overlap(sc)
	}
	return box
}

func category(c models.Chart, i int) string {
	if i < len(c.Categories) {
		return c.Categories[i]
	}
	return ""
}

// value maps missing numbers to nil so echarts leaves a gap.
func value(f models.Float) interface{} {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
