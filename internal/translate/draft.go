package translate

import (
	"context"

	"curricore/pkg/domain"
)

// ApplyDraft merges an extracted course draft into an existing course in
// one transaction. Only empty fields on the course are filled; the
// draft never overwrites authored data, and CLO texts are appended
// after the existing rows so mapping indices stay valid.
func ApplyDraft(ctx context.Context, store domain.PersistentStore, courseID string, draft CourseDraft) (domain.Course, error) {
	var updated domain.Course
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		course, err := tx.UpdateCourse(courseID, func(c *domain.Course) error {
			if c.Code == "" && draft.Code != "" {
				c.Code = draft.Code
			}
			if c.Name.VI == "" {
				c.Name.VI = draft.Name.VI
			}
			if c.Name.EN == "" {
				c.Name.EN = draft.Name.EN
			}
			if c.Credits == 0 && draft.Credits > 0 {
				c.Credits = draft.Credits
			}
			if c.Semester == 0 && draft.Semester > 0 {
				c.Semester = draft.Semester
			}
			if c.Description.VI == "" {
				c.Description.VI = draft.Description.VI
			}
			if c.Description.EN == "" {
				c.Description.EN = draft.Description.EN
			}
			if len(c.CLOs.VI) == 0 && len(c.CLOs.EN) == 0 {
				c.CLOs = domain.CLOSet{
					VI: append([]string(nil), draft.CLOs.VI...),
					EN: append([]string(nil), draft.CLOs.EN...),
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = course
		return nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return updated, nil
}
