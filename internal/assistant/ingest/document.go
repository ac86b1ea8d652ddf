package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"trip-assistant/internal/models"
)

// PlaceDocumentID is the document id used for a catalog place.
func PlaceDocumentID(placeID int64) string {
	return "place-" + strconv.FormatInt(placeID, 10)
}

// PlaceDocument renders a place as retrievable text. The layout is fixed so
// that re-ingesting the same record yields the same content.
func PlaceDocument(p models.PlaceRecord) models.Document {
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+strings.TrimSpace(value))
		}
	}

	add("장소명", p.Name)
	add("설명", p.Description)
	add("주소", p.Address)
	add("지역", p.Region)
	add("테마", strings.Join(p.Themes, ", "))
	if p.EstimatedCost > 0 {
		add("예상 비용", fmt.Sprintf("%d원", p.EstimatedCost))
	}
	if p.EstimatedDurationMinutes > 0 {
		add("예상 소요 시간", fmt.Sprintf("%d분", p.EstimatedDurationMinutes))
	}
	add("연락처", p.Contact)

	id := PlaceDocumentID(p.ID)
	themes := make([]string, len(p.Themes))
	copy(themes, p.Themes)

	return models.Document{
		ID:      id,
		Content: strings.Join(lines, "\n"),
		Metadata: map[string]interface{}{
			models.MetaDocumentID: id,
			models.MetaPlaceID:    p.ID,
			models.MetaName:       p.Name,
			models.MetaRegion:     p.Region,
			models.MetaThemes:     themes,
		},
	}
}
