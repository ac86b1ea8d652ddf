package models

// Intent is the classified purpose of a free-form request.
type Intent string

const (
	IntentCreateRoute          Intent = "CREATE_ROUTE"
	IntentSearchExistingRoutes Intent = "SEARCH_EXISTING_ROUTES"
	IntentSearchPlaces         Intent = "SEARCH_PLACES"
	IntentGeneralQuestion      Intent = "GENERAL_QUESTION"
)

// Intents lists every intent in keyword fallback priority order.
var Intents = []Intent{IntentCreateRoute, IntentSearchExistingRoutes, IntentSearchPlaces, IntentGeneralQuestion}

func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

type IntentClassificationResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ResponseType tells the client how to render a ChatResponse.
type ResponseType string

const (
	ResponseQuestion            ResponseType = "QUESTION"
	ResponseRouteRecommendation ResponseType = "ROUTE_RECOMMENDATION"
	ResponseExistingRoutes      ResponseType = "EXISTING_ROUTES"
	ResponsePlaceInfo           ResponseType = "PLACE_INFO"
	ResponseGeneralInfo         ResponseType = "GENERAL_INFO"
)

type ChatRequest struct {
	Query    string               `json:"query"`
	Context  *ConversationContext `json:"context"`
	Language string               `json:"language"`
}

type ChatResponse struct {
	ResponseType        ResponseType         `json:"responseType"`
	Message             string               `json:"message"`
	Context             ConversationContext  `json:"context"`
	RouteRecommendation *RouteRecommendation `json:"routeRecommendation,omitempty"`
	ExistingRoutes      []RouteSummary       `json:"existingRoutes,omitempty"`
	Places              []PlaceRecord        `json:"places,omitempty"`
}

// DayPlan is the ordered stops of one day of a generated route.
type DayPlan struct {
	Day    int           `json:"day"`
	Places []PlaceRecord `json:"places"`
}

type RouteRecommendation struct {
	RouteID              int64     `json:"routeId"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	DayCount             int       `json:"dayCount"`
	RequestedDayCount    int       `json:"requestedDayCount"`
	TotalCost            int       `json:"totalCost"`
	TotalDurationMinutes int       `json:"totalDurationMinutes"`
	Days                 []DayPlan `json:"days"`
}

// PlanDays spreads places over dayCount days in order, filling earlier days
// first. Days that would be empty are omitted.
func PlanDays(places []PlaceRecord, dayCount int) []DayPlan {
	if len(places) == 0 {
		return []DayPlan{}
	}
	if dayCount < 1 {
		dayCount = 1
	}
	perDay := (len(places) + dayCount - 1) / dayCount
	days := make([]DayPlan, 0, dayCount)
	for start, day := 0, 1; start < len(places); start, day = start+perDay, day+1 {
		end := start + perDay
		if end > len(places) {
			end = len(places)
		}
		days = append(days, DayPlan{Day: day, Places: places[start:end]})
	}
	return days
}
