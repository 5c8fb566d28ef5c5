package automation

import (
	"time"

	"channelos/internal/domain"
)

const (
	teaserLeadDays = 2

	firstMission = "Open with a fulfilling before/after montage"
	laterMission = "Drop a mid-roll micro-challenge at 45% watch time"
)

// BuildSchedule lays the ideas out on a release calendar starting at now.
// Releases are spaced by the cadence gap and land on the cadence's prime hour
// in now's location; each teaser goes live two days earlier at 09:30.
func BuildSchedule(ideas []domain.IdeaBlueprint, input domain.IdeaInput, now time.Time) []domain.ScheduleEntry {
	input = input.Normalize()
	gap := input.Cadence.GapDays()
	hour := primeHour(input.Cadence)

	entries := make([]domain.ScheduleEntry, 0, len(ideas))
	for i, idea := range ideas {
		day := now.AddDate(0, 0, i*gap)
		release := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, now.Location())
		t := release.AddDate(0, 0, -teaserLeadDays)
		teaser := time.Date(t.Year(), t.Month(), t.Day(), 9, 30, 0, 0, now.Location())

		mission := laterMission
		if i == 0 {
			mission = firstMission
		}
		entries = append(entries, domain.ScheduleEntry{
			Title:            idea.Title,
			Release:          release.Format(time.RFC3339),
			Teaser:           teaser.Format(time.RFC3339),
			RetentionMission: mission,
		})
	}
	return entries
}

func primeHour(c domain.Cadence) int {
	if c == domain.CadenceDaily {
		return 13
	}
	return 16
}
