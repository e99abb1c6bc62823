package sheets

import (
	"fmt"
	"strings"
	"time"
)

// HasData implements the generic filled-in rule: at least one row with at
// least one cell that is non-empty after trimming whitespace. The caller is
// expected to have excluded the header row from the range.
func HasData(rows [][]string) bool {
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return true
			}
		}
	}

	return false
}

// HasDate implements the 'Class Taken' rule: the tab has rows beyond the
// header and some cell, anywhere in the tab, contains today's date in one of
// three textual forms:
//
//   - MM/DD/YYYY (locale short date, also accepted unpadded as M/D/YYYY)
//   - YYYY-MM-DD
//   - DD/MM/YYYY
//
// Matching is case-insensitive substring containment, so a cell like
// "Class on 05/06/2025 (holiday)" matches. The date formats are fixed - the
// padded M/D and D/M forms are ambiguous for days <= 12 but match what
// faculty actually type into these sheets.
func HasDate(rows [][]string, now time.Time) bool {
	if len(rows) <= 1 {
		return false
	}

	formats := []string{
		now.Format("01/02/2006"),
		fmt.Sprintf("%d/%d/%d", now.Month(), now.Day(), now.Year()),
		now.Format("2006-01-02"),
		now.Format("02/01/2006"),
	}

	for _, row := range rows {
		for _, cell := range row {
			v := strings.ToLower(cell)
			for _, format := range formats {
				if strings.Contains(v, format) {
					return true
				}
			}
		}
	}

	return false
}
