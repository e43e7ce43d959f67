// Package web provides the embedded dashboard template and stylesheet.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/corpfin/dashboard/internal/format"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html static/*
var assets embed.FS

// NoDataMessage is shown when the filters match no rows.
const NoDataMessage = "No data available for the selected filters."

// LoadErrorMessage is shown when the dataset cannot be read.
const LoadErrorMessage = "Failed to load data. Please check the file path."

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"selected": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
}).ParseFS(assets, "templates/dashboard.html"))

// Theme holds the page colors.
type Theme struct {
	Primary             string
	Background          string
	SecondaryBackground string
	Text                string
	Panel               string
}

// Card is a metric tile ready for display.
type Card struct {
	Title      string
	Value      string
	Delta      string
	DeltaColor string
}

// NewCard formats a metric card. The delta line is omitted when the card has
// none.
func NewCard(m models.MetricCard) Card {
	card := Card{Title: m.Title, Value: m.Value}
	if m.HasDelta() {
		card.Delta = format.Delta(*m.Delta)
		card.DeltaColor = m.DeltaColor()
	}
	return card
}

// Panel is one chart in the grid.
type Panel struct {
	ID      string
	Title   string
	Height  int
	Options template.JS
}

// Page is the dashboard view.
type Page struct {
	Title           string
	Icon            string
	Theme           Theme
	AssetsHost      string
	ChartTheme      string
	SidebarExpanded bool
	Wide            bool
	XSRF            bool

	Options models.FilterOptions
	Filter  models.Filter

	Error   string // replaces the whole content when set
	Notice  string // replaces charts and tables when set
	Cards   []Card
	Rows    [][]Panel
	Summary models.SummaryTable
}

// Render writes the dashboard HTML.
func Render(w io.Writer, p *Page) error {
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

// StaticFS returns the stylesheet directory.
func StaticFS() (fs.FS, error) {
	return fs.Sub(assets, "static")
}

// RegisterStaticRoutes serves the embedded stylesheet under /static.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := StaticFS()
	if err != nil {
		return err
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	e.GET("/static/*", echo.WrapHandler(fileServer))
	return nil
}
