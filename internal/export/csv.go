package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/types"
)

// RenderCSV flattens a snapshot into CSV rows, one animal per row.
// Column order is fixed so successive backups diff cleanly.
func RenderCSV(snapshot *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "name", "owner_name", "owner_phone", "age_years", "gender",
		"neutered", "allergy_notes", "feeding_notes", "notes",
		"walks", "walking_notes", "house_feeding",
		"presence_state", "arrival_at", "departure_at", "boarding_end_date",
		"visit_count", "last_visit_at", "status", "created_at", "updated_at",
	}
	for _, vaccine := range types.AllVaccines() {
		header = append(header, "vaccine_"+vaccine.String()+"_expires_at")
	}
	if err := w.Write(header); err != nil {
		return nil, renderError(err)
	}

	for _, a := range snapshot.Animals {
		row := []string{
			a.ID,
			a.Name,
			a.OwnerName,
			a.OwnerPhone,
			strconv.Itoa(a.AgeYears),
			a.Gender.String(),
			strconv.FormatBool(a.Neutered),
			a.AllergyNotes,
			a.FeedingNotes,
			a.Notes,
			strconv.FormatBool(a.Walks),
			a.WalkingNotes,
			strconv.FormatBool(a.HouseFeeding),
			a.PresenceState.String(),
			formatTime(&a.ArrivalAt),
			formatTime(a.DepartureAt),
			formatTime(a.BoardingEndDate),
			strconv.Itoa(a.VisitCount),
			formatTime(a.LastVisitAt),
			a.Status.String(),
			formatTime(&a.CreatedAt),
			formatTime(&a.UpdatedAt),
		}
		for _, vaccine := range types.AllVaccines() {
			row = append(row, formatTime(a.VaccinationExpiration(vaccine)))
		}
		if err := w.Write(row); err != nil {
			return nil, renderError(err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, renderError(err)
	}
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func renderError(err error) error {
	return ierr.WithError(err).
		WithHint("Failed to render backup rows").
		Mark(ierr.ErrSystem)
}
