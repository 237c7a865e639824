package core

import (
	"context"
	"fmt"

	"curricore/pkg/domain"
)

// NewStructureExclusivityRule returns the in-transaction rule enforcing that
// every course occupies exactly one structural location and that location
// agrees with the course type.
func NewStructureExclusivityRule() domain.Rule {
	return structureExclusivityRule{}
}

type structureExclusivityRule struct{}

func (structureExclusivityRule) Name() string { return "structure_exclusivity" }

func (structureExclusivityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	type location struct {
		count     int
		inRoot    bool
		blockType domain.BlockType
	}
	locations := make(map[string]location)
	for _, ids := range view.Structure() {
		for _, id := range ids {
			loc := locations[id]
			loc.count++
			loc.inRoot = true
			locations[id] = loc
		}
	}
	for _, block := range view.ListProgramBlocks() {
		for _, id := range block.CourseIDs {
			loc := locations[id]
			loc.count++
			loc.blockType = block.Type
			locations[id] = loc
		}
	}

	res := domain.Result{}
	for _, course := range view.ListCourses() {
		loc := locations[course.ID]
		switch {
		case loc.count > 1:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "structure_exclusivity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("course %s occupies %d structural locations", course.Code, loc.count),
				Entity:   domain.EntityCourse,
				EntityID: course.ID,
			})
		case loc.count == 0:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "structure_exclusivity",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("course %s is not placed in the program structure", course.Code),
				Entity:   domain.EntityCourse,
				EntityID: course.ID,
			})
		case loc.inRoot && course.Type.IsElective():
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "structure_exclusivity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("elective course %s sits in a root structure list", course.Code),
				Entity:   domain.EntityCourse,
				EntityID: course.ID,
			})
		case !loc.inRoot && !course.Type.IsElective() && loc.blockType == domain.BlockElective:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "structure_exclusivity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("required course %s sits in an elective block", course.Code),
				Entity:   domain.EntityCourse,
				EntityID: course.ID,
			})
		case !loc.inRoot && course.Type.IsElective() && loc.blockType == domain.BlockCompulsory:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "structure_exclusivity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("elective course %s sits in a compulsory block", course.Code),
				Entity:   domain.EntityCourse,
				EntityID: course.ID,
			})
		}
	}
	return res, nil
}
