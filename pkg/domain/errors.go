package domain

import "fmt"

// NotFoundError reports a lookup against a missing entity.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DuplicateIDError reports an id collision on create or rename.
type DuplicateIDError struct {
	Entity EntityType
	ID     string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.ID)
}

// EntityInUseError rejects a delete while dependents still reference the
// entity. Count is surfaced so callers can show "N courses use this".
type EntityInUseError struct {
	Entity EntityType
	ID     string
	Count  int
}

func (e EntityInUseError) Error() string {
	return fmt.Sprintf("%s %s is referenced by %d record(s)", e.Entity, e.ID, e.Count)
}

// ValidationError reports a user-correctable input problem detected
// before any state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BlockChoiceRequiredError is returned when a classification change needs
// an explicit target elective block. Candidates lists the eligible block
// ids; a course is never dropped into an arbitrary block.
type BlockChoiceRequiredError struct {
	CourseID   string
	Candidates []string
}

func (e BlockChoiceRequiredError) Error() string {
	return fmt.Sprintf("course %s: target elective block required (%d candidates)", e.CourseID, len(e.Candidates))
}
