package models

// PlaceRecord is a visitable place from the catalog.
type PlaceRecord struct {
	ID                       int64    `json:"id"`
	Name                     string   `json:"name"`
	Description              string   `json:"description"`
	Address                  string   `json:"address"`
	Region                   string   `json:"region"`
	Themes                   []string `json:"themes"`
	EstimatedCost            int      `json:"estimatedCost"`
	EstimatedDurationMinutes int      `json:"estimatedDurationMinutes"`
	Contact                  string   `json:"contact,omitempty"`
}

// RouteSummary is a stored route as returned by route searches.
type RouteSummary struct {
	ID                   int64  `json:"id"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	Theme                string `json:"theme"`
	Region               string `json:"region"`
	DayCount             int    `json:"dayCount"`
	TotalCost            int    `json:"totalCost"`
	TotalDurationMinutes int    `json:"totalDurationMinutes"`
	Popularity           int    `json:"popularity"`
}

// CreatedRoute is what the route persistence collaborator returns.
type CreatedRoute struct {
	RouteID              int64  `json:"routeId"`
	TitleKo              string `json:"titleKo"`
	DescriptionKo        string `json:"descriptionKo"`
	TotalCost            int    `json:"totalCost"`
	TotalDurationMinutes int    `json:"totalDurationMinutes"`
}
