package selection

import "strings"

// NoSelection is the value the picker UI sends for an unchosen course.
const NoSelection = "no-selection"

// normalizeDish trims v and maps blank and sentinel values to nil.
func normalizeDish(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, NoSelection) || strings.EqualFold(v, "none") {
		return nil
	}
	return &v
}
