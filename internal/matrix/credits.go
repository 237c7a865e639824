package matrix

import "curricore/pkg/domain"

// CreditsByKnowledgeArea sums course credits grouped by knowledge area.
func CreditsByKnowledgeArea(courses []domain.Course) map[string]int {
	out := make(map[string]int)
	for _, c := range courses {
		out[c.KnowledgeAreaID] += c.Credits
	}
	return out
}

// CreditsBySemester sums course credits grouped by semester. Members of
// elective blocks are excluded from the standalone sum; the block's
// MinCredits is injected once at its preferred semester instead, so
// "pick N of M" pools are never double-counted. Blocks with no members
// contribute nothing.
func CreditsBySemester(courses []domain.Course, blocks []domain.ProgramBlock) map[int]int {
	pooled := make(map[string]bool)
	for _, b := range blocks {
		if b.Type != domain.BlockElective {
			continue
		}
		for _, id := range b.CourseIDs {
			pooled[id] = true
		}
	}

	out := make(map[int]int)
	for _, c := range courses {
		if pooled[c.ID] {
			continue
		}
		out[c.Semester] += c.Credits
	}
	for _, b := range blocks {
		if b.Type != domain.BlockElective || len(b.CourseIDs) == 0 {
			continue
		}
		semester := 0
		if b.PreferredSemester != nil {
			semester = *b.PreferredSemester
		}
		out[semester] += b.MinCredits
	}
	return out
}

// TotalCredits sums all per-semester aggregates, block injections included.
func TotalCredits(courses []domain.Course, blocks []domain.ProgramBlock) int {
	total := 0
	for _, credits := range CreditsBySemester(courses, blocks) {
		total += credits
	}
	return total
}
