package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennelworks/kennelworks/internal/domain/animal"
	"github.com/kennelworks/kennelworks/internal/types"
)

func TestRenderCSV(t *testing.T) {
	rabies := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	arrival := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	snapshot := &Snapshot{
		TakenAt: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
		Animals: []*animal.Animal{
			{
				ID:            "animal_1",
				Name:          "Biscuit",
				OwnerName:     "Jordan Reeves",
				AgeYears:      3,
				Gender:        types.GenderFemale,
				Neutered:      true,
				Walks:         true,
				Vaccinations:  map[types.Vaccine]*time.Time{types.VaccineRabies: &rabies},
				PresenceState: types.PresenceStateDaycarePresent,
				ArrivalAt:     arrival,
				VisitCount:    4,
				BaseModel:     types.BaseModel{Status: types.StatusActive},
			},
			{
				ID:            "animal_2",
				Name:          "Mabel",
				OwnerName:     "Sam Ortiz",
				PresenceState: types.PresenceStateBoarding,
				BaseModel:     types.BaseModel{Status: types.StatusActive},
			},
		},
	}

	data, err := RenderCSV(snapshot)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, "id", header[0])
	assert.Contains(t, header, "vaccine_rabies_expires_at")

	byName := map[string][]string{}
	index := map[string]int{}
	for i, col := range header {
		index[col] = i
	}
	for _, row := range rows[1:] {
		byName[row[index["name"]]] = row
	}

	biscuit := byName["Biscuit"]
	assert.Equal(t, "animal_1", biscuit[index["id"]])
	assert.Equal(t, "true", biscuit[index["neutered"]])
	assert.Equal(t, "daycare_present", biscuit[index["presence_state"]])
	assert.Equal(t, "2024-03-01T08:30:00Z", biscuit[index["arrival_at"]])
	assert.Equal(t, "2024-09-01T00:00:00Z", biscuit[index["vaccine_rabies_expires_at"]])

	// Unset optional fields render empty, not zero times.
	mabel := byName["Mabel"]
	assert.Empty(t, mabel[index["departure_at"]])
	assert.Empty(t, mabel[index["arrival_at"]])
	assert.Empty(t, mabel[index["vaccine_rabies_expires_at"]])
}

func TestRenderCSVEmptySnapshot(t *testing.T) {
	data, err := RenderCSV(&Snapshot{TakenAt: time.Now()})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
