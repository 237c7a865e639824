package core

import (
	"context"
	"fmt"

	"curricore/pkg/domain"
)

// NewCLOAlignmentRule returns the in-transaction rule keeping each course's
// CLO mapping array aligned with its CLO lists: indices stay in range, no
// index appears twice, and outcome links never store an empty level.
func NewCLOAlignmentRule() domain.Rule {
	return cloAlignmentRule{}
}

type cloAlignmentRule struct{}

func (cloAlignmentRule) Name() string { return "clo_alignment" }

func (cloAlignmentRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, course := range view.ListCourses() {
		max := course.CLOs.Max()
		seen := make(map[int]bool, len(course.CLOMap))
		for _, m := range course.CLOMap {
			if m.CLOIndex < 0 || m.CLOIndex >= max {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "clo_alignment",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("course %s mapping index %d out of range (CLO count %d)", course.Code, m.CLOIndex, max),
					Entity:   domain.EntityCourse,
					EntityID: course.ID,
				})
			}
			if seen[m.CLOIndex] {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "clo_alignment",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("course %s has duplicate mapping rows for CLO %d", course.Code, m.CLOIndex+1),
					Entity:   domain.EntityCourse,
					EntityID: course.ID,
				})
			}
			seen[m.CLOIndex] = true
		}
	}
	for _, l := range view.CourseOutcomeLinks() {
		if l.Level == domain.LevelNone {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "clo_alignment",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("outcome link %s/%s stores an empty level", l.CourseID, l.OutcomeID),
				Entity:   domain.EntityCourse,
				EntityID: l.CourseID,
			})
		}
	}
	return res, nil
}
