package schedule

import (
	"fmt"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/modules/schedule/dto"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
)

func validateTimeRange(start, end string) error {
	if _, err := time.Parse("15:04", start); err != nil {
		return fmt.Errorf("start_time must be in HH:MM format: %w", apperror.ErrInvalidInput)
	}
	if _, err := time.Parse("15:04", end); err != nil {
		return fmt.Errorf("end_time must be in HH:MM format: %w", apperror.ErrInvalidInput)
	}
	// Zero-padded HH:MM compares correctly as strings.
	if start >= end {
		return fmt.Errorf("start_time must be before end_time: %w", apperror.ErrInvalidInput)
	}
	return nil
}

func validateDaysOfWeek(days []int) error {
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return fmt.Errorf("days_of_week values must be between 0 and 6: %w", apperror.ErrInvalidInput)
		}
		if seen[d] {
			return fmt.Errorf("days_of_week contains duplicate day %d: %w", d, apperror.ErrInvalidInput)
		}
		seen[d] = true
	}
	return nil
}

// buildWeekCalendar expands recurring entries into one bucket per weekday.
func buildWeekCalendar(entries []*entity.ScheduleEntry) []dto.CalendarDay {
	days := make([]dto.CalendarDay, 7)
	for i := range days {
		days[i] = dto.CalendarDay{Day: i, Entries: []dto.ScheduleResponse{}}
	}

	for _, entry := range entries {
		resp := buildScheduleResponse(entry)
		for day := 0; day < 7; day++ {
			if entry.OccursOn(time.Weekday(day)) {
				days[day].Entries = append(days[day].Entries, resp)
			}
		}
	}

	return days
}

func buildScheduleResponse(entry *entity.ScheduleEntry) dto.ScheduleResponse {
	return dto.ScheduleResponse{
		ID:          entry.ID,
		TeacherID:   entry.TeacherID,
		ClassroomID: entry.ClassroomID,
		DaysOfWeek:  entry.DaysOfWeek,
		StartTime:   entry.StartTime,
		EndTime:     entry.EndTime,
		Location:    entry.Location,
		Color:       entry.Color,
		CreatedAt:   entry.CreatedAt,
	}
}
