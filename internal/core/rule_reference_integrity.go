package core

import (
	"context"
	"fmt"

	"curricore/pkg/domain"
)

// NewReferenceIntegrityRule returns the in-transaction rule checking that
// stored references resolve. Dangling link rows and structure members are
// blocking; stale CLO-mapping references only warn because the mapping
// editor can repair them in place.
func NewReferenceIntegrityRule() domain.Rule {
	return referenceIntegrityRule{}
}

type referenceIntegrityRule struct{}

func (referenceIntegrityRule) Name() string { return "reference_integrity" }

func (referenceIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	courses := make(map[string]domain.Course)
	for _, c := range view.ListCourses() {
		courses[c.ID] = c
	}
	outcomes := make(map[string]bool)
	indicators := make(map[string]bool)
	for _, o := range view.ListStudentOutcomes() {
		outcomes[o.ID] = true
		for _, pi := range o.Indicators {
			indicators[pi.ID] = true
		}
	}
	peos := make(map[string]bool)
	for _, p := range view.ListPEOs() {
		peos[p.ID] = true
	}
	constituents := make(map[string]bool)
	for _, c := range view.ListMissionConstituents() {
		constituents[c.ID] = true
	}
	objectives := make(map[string]bool)
	for _, o := range view.ListObjectives() {
		objectives[o.ID] = true
	}
	areas := make(map[string]bool)
	for _, a := range view.ListKnowledgeAreas() {
		areas[a.ID] = true
	}

	res := domain.Result{}
	block := func(msg string, entity domain.EntityType, id string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "reference_integrity",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   entity,
			EntityID: id,
		})
	}
	warn := func(msg string, entity domain.EntityType, id string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "reference_integrity",
			Severity: domain.SeverityWarn,
			Message:  msg,
			Entity:   entity,
			EntityID: id,
		})
	}

	for _, l := range view.CourseOutcomeLinks() {
		if _, ok := courses[l.CourseID]; !ok {
			block(fmt.Sprintf("outcome link references missing course %s", l.CourseID), domain.EntityCourse, l.CourseID)
		}
		if !outcomes[l.OutcomeID] {
			block(fmt.Sprintf("outcome link references missing outcome %s", l.OutcomeID), domain.EntityStudentOutcome, l.OutcomeID)
		}
	}
	for _, l := range view.CourseIndicatorLinks() {
		if _, ok := courses[l.CourseID]; !ok {
			block(fmt.Sprintf("indicator link references missing course %s", l.CourseID), domain.EntityCourse, l.CourseID)
		}
		if !indicators[l.IndicatorID] {
			block(fmt.Sprintf("indicator link references missing indicator %s", l.IndicatorID), domain.EntityStudentOutcome, l.IndicatorID)
		}
	}
	for _, l := range view.CoursePEOLinks() {
		if _, ok := courses[l.CourseID]; !ok {
			block(fmt.Sprintf("peo link references missing course %s", l.CourseID), domain.EntityCourse, l.CourseID)
		}
		if !peos[l.PEOID] {
			block(fmt.Sprintf("peo link references missing peo %s", l.PEOID), domain.EntityPEO, l.PEOID)
		}
	}
	for _, l := range view.PEOOutcomeLinks() {
		if !peos[l.PEOID] {
			block(fmt.Sprintf("peo-outcome link references missing peo %s", l.PEOID), domain.EntityPEO, l.PEOID)
		}
		if !outcomes[l.OutcomeID] {
			block(fmt.Sprintf("peo-outcome link references missing outcome %s", l.OutcomeID), domain.EntityStudentOutcome, l.OutcomeID)
		}
	}
	for _, l := range view.PEOConstituentLinks() {
		if !peos[l.PEOID] {
			block(fmt.Sprintf("peo-constituent link references missing peo %s", l.PEOID), domain.EntityPEO, l.PEOID)
		}
		if !constituents[l.ConstituentID] {
			block(fmt.Sprintf("peo-constituent link references missing constituent %s", l.ConstituentID), domain.EntityMissionConstituent, l.ConstituentID)
		}
	}
	for _, l := range view.CourseObjectiveLinks() {
		if _, ok := courses[l.CourseID]; !ok {
			block(fmt.Sprintf("objective link references missing course %s", l.CourseID), domain.EntityCourse, l.CourseID)
		}
		if !objectives[l.ObjectiveID] {
			block(fmt.Sprintf("objective link references missing objective %s", l.ObjectiveID), domain.EntityObjective, l.ObjectiveID)
		}
	}

	for branch, ids := range view.Structure() {
		for _, id := range ids {
			if _, ok := courses[id]; !ok {
				block(fmt.Sprintf("structure branch %s lists missing course %s", branch, id), domain.EntityCourse, id)
			}
		}
	}
	for _, b := range view.ListProgramBlocks() {
		for _, id := range b.CourseIDs {
			if _, ok := courses[id]; !ok {
				block(fmt.Sprintf("block %s lists missing course %s", b.ID, id), domain.EntityProgramBlock, b.ID)
			}
		}
	}

	for _, course := range courses {
		if course.KnowledgeAreaID != "" && !areas[course.KnowledgeAreaID] {
			block(fmt.Sprintf("course %s references missing knowledge area %s", course.Code, course.KnowledgeAreaID), domain.EntityCourse, course.ID)
		}
		for _, pid := range course.PrerequisiteIDs {
			if _, ok := courses[pid]; !ok {
				block(fmt.Sprintf("course %s has dangling prerequisite %s", course.Code, pid), domain.EntityCourse, course.ID)
			}
		}
		for _, cid := range course.CoRequisiteIDs {
			if _, ok := courses[cid]; !ok {
				block(fmt.Sprintf("course %s has dangling co-requisite %s", course.Code, cid), domain.EntityCourse, course.ID)
			}
		}
		for _, m := range course.CLOMap {
			for _, oid := range m.OutcomeIDs {
				if !outcomes[oid] {
					warn(fmt.Sprintf("course %s CLO %d maps missing outcome %s", course.Code, m.CLOIndex+1, oid), domain.EntityCourse, course.ID)
				}
			}
			for _, pid := range m.IndicatorIDs {
				if !indicators[pid] {
					warn(fmt.Sprintf("course %s CLO %d maps missing indicator %s", course.Code, m.CLOIndex+1, pid), domain.EntityCourse, course.ID)
				}
			}
			for _, oid := range m.ObjectiveIDs {
				if !objectives[oid] {
					warn(fmt.Sprintf("course %s CLO %d maps missing objective %s", course.Code, m.CLOIndex+1, oid), domain.EntityCourse, course.ID)
				}
			}
		}
	}
	return res, nil
}
