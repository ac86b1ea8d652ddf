package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanDays(t *testing.T) {
	places := make([]PlaceRecord, 8)
	for i := range places {
		places[i].ID = int64(i + 1)
	}

	days := PlanDays(places, 2)
	assert.Len(t, days, 2)
	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, int64(1), days[0].Places[0].ID)
	assert.Len(t, days[1].Places, 4)
	assert.Equal(t, int64(8), days[1].Places[3].ID)

	uneven := PlanDays(places[:5], 2)
	assert.Len(t, uneven[0].Places, 3)
	assert.Len(t, uneven[1].Places, 2)

	assert.Len(t, PlanDays(places[:2], 3), 2)
	assert.Empty(t, PlanDays(nil, 2))
	assert.Len(t, PlanDays(places, 0), 1)
}

func TestIntentValid(t *testing.T) {
	assert.True(t, IntentSearchPlaces.Valid())
	assert.False(t, Intent("BOOK_HOTEL").Valid())
	assert.Equal(t, IntentCreateRoute, Intents[0])
	assert.Equal(t, IntentGeneralQuestion, Intents[len(Intents)-1])
}
