package models

// Filter is the sidebar selection: companies, an inclusive year range and industries.
// An empty Companies or Industries list selects nothing.
type Filter struct {
	Companies  []string `json:"companies"`
	YearFrom   int      `json:"yearFrom"`
	YearTo     int      `json:"yearTo"`
	Industries []string `json:"industries"`
}

// FilterOptions lists what the dataset offers to filter on.
type FilterOptions struct {
	Companies  []string `json:"companies"`
	Industries []string `json:"industries"`
	MinYear    int      `json:"minYear"`
	MaxYear    int      `json:"maxYear"`
	Defaults   Filter   `json:"defaults"`
}
