package service

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

// StageDateLayout is the textual date convention used by stage forms (DD-MM-YYYY).
const StageDateLayout = "02-01-2006"

var formValidator = validator.New()

// ValidateStageRequest checks a stage form against today and shapes the request
// sent to the API. Rules run in order and the first failure is returned:
// required fields, date format, no past dates, ordered range, panel size and
// finally the stage name. Dates come out as UTC midnight.
func ValidateStageRequest(form models.StageForm, today time.Time) (models.StageRequest, error) {
	if err := formValidator.Struct(form); err != nil {
		return models.StageRequest{}, appErrors.Wrap(err, appErrors.ErrMissingFields.Code, appErrors.ErrMissingFields.Status, appErrors.ErrMissingFields.Message)
	}

	start, err := ParseStageDate(form.StartDate)
	if err != nil {
		return models.StageRequest{}, err
	}
	end, err := ParseStageDate(form.EndDate)
	if err != nil {
		return models.StageRequest{}, err
	}

	midnight := calendarDay(today)
	if start.Before(midnight) || end.Before(midnight) {
		return models.StageRequest{}, appErrors.Clone(appErrors.ErrDateInPast, "")
	}

	if end.Before(start) {
		return models.StageRequest{}, appErrors.Clone(appErrors.ErrInvertedRange, "")
	}

	if !validPanel(form.Panel) {
		return models.StageRequest{}, appErrors.Clone(appErrors.ErrPanelSizeViolation, "")
	}

	if !form.Name.Valid() {
		return models.StageRequest{}, appErrors.Clone(appErrors.ErrInvalidStageName, "unknown stage name "+string(form.Name))
	}

	panel := make([]string, len(form.Panel))
	copy(panel, form.Panel)
	return models.StageRequest{
		Name:      form.Name,
		StartDate: start,
		EndDate:   end,
		Panel:     panel,
	}, nil
}

// ParseStageDate parses a DD-MM-YYYY date into UTC midnight.
func ParseStageDate(raw string) (time.Time, error) {
	d, err := time.Parse(StageDateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrMalformedDate.Code, appErrors.ErrMalformedDate.Status, appErrors.ErrMalformedDate.Message)
	}
	return d, nil
}

// FormatStageDate renders t using the form convention, in t's own calendar.
func FormatStageDate(t time.Time) string {
	return t.Format(StageDateLayout)
}

// ToggleEvaluator adds or removes candidateID from the panel. Adding to a full
// panel returns the panel unchanged together with ErrPanelLimitReached, which
// callers surface as a warning. The input slice is never modified.
func ToggleEvaluator(panel []string, candidateID string) ([]string, error) {
	out := make([]string, 0, models.MaxPanelSize)
	removed := false
	for _, id := range panel {
		if id == candidateID {
			removed = true
			continue
		}
		out = append(out, id)
	}
	if removed {
		return out, nil
	}
	if len(panel) >= models.MaxPanelSize {
		unchanged := make([]string, len(panel))
		copy(unchanged, panel)
		return unchanged, appErrors.Clone(appErrors.ErrPanelLimitReached, "")
	}
	return append(out, candidateID), nil
}

// calendarDay returns the calendar date of t, in t's location, as UTC midnight.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validPanel(panel []string) bool {
	if len(panel) < 1 || len(panel) > models.MaxPanelSize {
		return false
	}
	seen := make(map[string]struct{}, len(panel))
	for _, id := range panel {
		if id == "" {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}
