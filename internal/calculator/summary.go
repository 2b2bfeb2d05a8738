package calculator

import "github.com/mmynk/dinnerpicker/internal/models"

// Summarize counts how many people chose each starter and each main course.
// Unchosen courses are not counted. The input is not modified; Individual
// shares the same mapping the caller passed in.
func Summarize(date string, day models.DaySelections) *models.SelectionSummary {
	if day == nil {
		day = models.DaySelections{}
	}

	summary := &models.SelectionSummary{
		Date:       date,
		Individual: day,
		Starters:   make(map[string]int),
		Mains:      make(map[string]int),
	}

	for _, sel := range day {
		if sel == nil {
			continue
		}
		if sel.Starter != nil && *sel.Starter != "" {
			summary.Starters[*sel.Starter]++
		}
		if sel.Main != nil && *sel.Main != "" {
			summary.Mains[*sel.Main]++
		}
	}

	return summary
}

// Headcount returns the number of people with any selection and how many of
// them left each course unchosen.
func Headcount(day models.DaySelections) (people, noStarter, noMain int) {
	for _, sel := range day {
		if sel == nil || !sel.HasChoice() {
			continue
		}
		people++
		if sel.Starter == nil {
			noStarter++
		}
		if sel.Main == nil {
			noMain++
		}
	}
	return people, noStarter, noMain
}
