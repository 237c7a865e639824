// Package matrix computes the derived aggregates rendered by coverage
// matrices, credit charts, and objective tables. Everything here is a pure
// function over snapshot data; nothing is cached or stored.
package matrix

import (
	"sort"

	"curricore/pkg/domain"
)

// CourseOutcome keys a course-outcome matrix cell.
type CourseOutcome struct {
	CourseID  string
	OutcomeID string
}

// CourseIndicator keys a course-indicator matrix cell.
type CourseIndicator struct {
	CourseID    string
	IndicatorID string
}

// OutcomeCoverage builds an O(1) cell lookup from the flat link rows.
// Absent cells mean no coverage.
func OutcomeCoverage(links []domain.CourseOutcomeLink) map[CourseOutcome]domain.CoverageLevel {
	out := make(map[CourseOutcome]domain.CoverageLevel, len(links))
	for _, l := range links {
		if l.Level == domain.LevelNone {
			continue
		}
		out[CourseOutcome{CourseID: l.CourseID, OutcomeID: l.OutcomeID}] = l.Level
	}
	return out
}

// IndicatorCoverage builds the presence set for the indicator matrix.
func IndicatorCoverage(links []domain.CourseIndicatorLink) map[CourseIndicator]bool {
	out := make(map[CourseIndicator]bool, len(links))
	for _, l := range links {
		out[CourseIndicator{CourseID: l.CourseID, IndicatorID: l.IndicatorID}] = true
	}
	return out
}

// MappedOutcomesByCourse groups covered outcome ids per course, sorted for
// deterministic rendering.
func MappedOutcomesByCourse(links []domain.CourseOutcomeLink) map[string][]string {
	out := make(map[string][]string)
	for _, l := range links {
		if l.Level == domain.LevelNone {
			continue
		}
		out[l.CourseID] = append(out[l.CourseID], l.OutcomeID)
	}
	for id := range out {
		sort.Strings(out[id])
	}
	return out
}

// CoverageStat aggregates the courses covering one outcome.
type CoverageStat struct {
	Courses int
	Credits int
}

// OutcomeCoverageStats counts distinct covering courses and their credit
// total per outcome, limited to the supplied course subset. Outcomes with
// no covering course are absent from the result.
func OutcomeCoverageStats(courses []domain.Course, links []domain.CourseOutcomeLink) map[string]CoverageStat {
	credits := make(map[string]int, len(courses))
	for _, c := range courses {
		credits[c.ID] = c.Credits
	}
	out := make(map[string]CoverageStat)
	for _, l := range links {
		if l.Level == domain.LevelNone {
			continue
		}
		cr, inSubset := credits[l.CourseID]
		if !inSubset {
			continue
		}
		stat := out[l.OutcomeID]
		stat.Courses++
		stat.Credits += cr
		out[l.OutcomeID] = stat
	}
	return out
}
