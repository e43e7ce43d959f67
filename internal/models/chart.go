package models

// ChartKind selects the plot type used to render a Chart.
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartPie     ChartKind = "pie"
	ChartScatter ChartKind = "scatter"
	ChartLine    ChartKind = "line"
	ChartBox     ChartKind = "box"
)

// BarMode controls how several bar series share a category.
type BarMode string

const (
	BarModeGroup BarMode = "group"
	BarModeStack BarMode = "stack"
)

// Chart is a rendering-independent chart dataset.
type Chart struct {
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	Kind       ChartKind `json:"kind"`
	Horizontal bool      `json:"horizontal,omitempty"`
	BarMode    BarMode   `json:"barMode,omitempty"`
	XTitle     string    `json:"xTitle,omitempty"`
	YTitle     string    `json:"yTitle,omitempty"`
	Height     int       `json:"height"`
	Categories []string  `json:"categories,omitempty"`
	Series     []Series  `json:"series"`
	Boxes      []BoxStat `json:"boxes,omitempty"`
}

// Series is one trace of a chart. Bar, pie and line charts use Values aligned
// with Chart.Categories; scatter charts use Points. Colors, when set, colors
// each value individually.
type Series struct {
	Name   string   `json:"name"`
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
	Values []Float  `json:"values,omitempty"`
	Points []Point  `json:"points,omitempty"`
}

// Point is a scatter point.
type Point struct {
	X     Float  `json:"x"`
	Y     Float  `json:"y"`
	Size  Float  `json:"size"`
	Label string `json:"label,omitempty"`
}

// BoxStat is the five-number summary of one box in a box plot.
type BoxStat struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Min        Float   `json:"min"`
	LowerFence Float   `json:"lowerFence"`
	Q1         Float   `json:"q1"`
	Median     Float   `json:"median"`
	Q3         Float   `json:"q3"`
	UpperFence Float   `json:"upperFence"`
	Max        Float   `json:"max"`
	Outliers   []Float `json:"outliers,omitempty"`
}

// Empty reports whether the chart has nothing to draw.
func (c *Chart) Empty() bool {
	if len(c.Boxes) > 0 {
		return false
	}
	for _, s := range c.Series {
		if len(s.Values) > 0 || len(s.Points) > 0 {
			return false
		}
	}
	return true
}
