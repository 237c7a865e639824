package matrix

import "curricore/pkg/domain"

// CourseObjective keys a course-objective matrix cell.
type CourseObjective struct {
	CourseID    string
	ObjectiveID string
}

// LinkState classifies how a course-objective cell is linked. The three
// states carry different epistemic weight and must render distinguishably.
type LinkState int

const (
	// LinkNone means no relation at all.
	LinkNone LinkState = iota
	// LinkOutcomeImplied is weak evidence: the objective lists an outcome
	// the course covers.
	LinkOutcomeImplied
	// LinkSyllabusImplied is strong evidence: a CLO mapping in the course
	// syllabus references the objective.
	LinkSyllabusImplied
	// LinkManual is an explicit assertion and wins over both implied states.
	LinkManual
)

// ObjectiveLinkStates merges the three link sources into one state per
// cell. Manual links take precedence over syllabus-implied links, which
// take precedence over outcome-implied links.
func ObjectiveLinkStates(
	courses []domain.Course,
	objectives []domain.MoetObjective,
	outcomeLinks []domain.CourseOutcomeLink,
	manual []domain.CourseObjectiveLink,
) map[CourseObjective]LinkState {
	out := make(map[CourseObjective]LinkState)
	upgrade := func(key CourseObjective, state LinkState) {
		if out[key] < state {
			out[key] = state
		}
	}

	// Outcome-implied: objective lists an outcome the course covers.
	coveredBy := make(map[string][]string)
	for _, l := range outcomeLinks {
		if l.Level == domain.LevelNone {
			continue
		}
		coveredBy[l.OutcomeID] = append(coveredBy[l.OutcomeID], l.CourseID)
	}
	for _, obj := range objectives {
		for _, outcomeID := range obj.OutcomeIDs {
			for _, courseID := range coveredBy[outcomeID] {
				upgrade(CourseObjective{CourseID: courseID, ObjectiveID: obj.ID}, LinkOutcomeImplied)
			}
		}
	}

	// Syllabus-implied: CLO mappings reference the objective directly.
	for _, course := range courses {
		for _, m := range course.CLOMap {
			for _, objectiveID := range m.ObjectiveIDs {
				upgrade(CourseObjective{CourseID: course.ID, ObjectiveID: objectiveID}, LinkSyllabusImplied)
			}
		}
	}

	for _, l := range manual {
		upgrade(CourseObjective{CourseID: l.CourseID, ObjectiveID: l.ObjectiveID}, LinkManual)
	}
	return out
}
