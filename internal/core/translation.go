package core

import (
	"context"
	"fmt"

	"curricore/pkg/domain"
)

// Translator is the external translation collaborator. A false ok means
// the service declined the text; the original stays untouched. Any error
// aborts the whole batch before state changes.
type Translator interface {
	Translate(ctx context.Context, text string, from, to domain.Language) (string, bool, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text string, from, to domain.Language) (string, bool, error)

// Translate implements Translator.
func (f TranslatorFunc) Translate(ctx context.Context, text string, from, to domain.Language) (string, bool, error) {
	return f(ctx, text, from, to)
}

// TranslationReport summarizes a completed translation batch.
type TranslationReport struct {
	Requested int
	Applied   int
	Declined  int
}

// TranslateCourse fills the English side of a course's name, description,
// and learning outcomes from the Vietnamese side. All translations are
// fetched before the transaction opens, so a transport failure leaves the
// course untouched and a commit applies the whole batch at once.
func (s *Service) TranslateCourse(ctx context.Context, courseID string, translator Translator) (TranslationReport, Result, error) {
	if translator == nil {
		return TranslationReport{}, Result{}, domain.ValidationError{Field: "translator", Message: "translator required"}
	}

	var course Course
	found := false
	if err := s.store.View(ctx, func(view TransactionView) error {
		course, found = view.FindCourse(courseID)
		return nil
	}); err != nil {
		return TranslationReport{}, Result{}, err
	}
	if !found {
		return TranslationReport{}, Result{}, domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}

	type pending struct {
		apply func(*Course, string)
		text  string
	}
	var batch []pending
	if course.Name.EN == "" && course.Name.VI != "" {
		batch = append(batch, pending{text: course.Name.VI, apply: func(c *Course, out string) { c.Name.EN = out }})
	}
	if course.Description.EN == "" && course.Description.VI != "" {
		batch = append(batch, pending{text: course.Description.VI, apply: func(c *Course, out string) { c.Description.EN = out }})
	}
	for i, text := range course.CLOs.VI {
		if text == "" {
			continue
		}
		if i < len(course.CLOs.EN) && course.CLOs.EN[i] != "" {
			continue
		}
		idx := i
		batch = append(batch, pending{text: text, apply: func(c *Course, out string) {
			for len(c.CLOs.EN) <= idx {
				c.CLOs.EN = append(c.CLOs.EN, "")
			}
			c.CLOs.EN[idx] = out
		}})
	}

	report := TranslationReport{Requested: len(batch)}
	if len(batch) == 0 {
		return report, Result{}, nil
	}

	type resolved struct {
		apply func(*Course, string)
		out   string
	}
	var results []resolved
	for _, p := range batch {
		out, ok, err := translator.Translate(ctx, p.text, domain.LanguageVI, domain.LanguageEN)
		if err != nil {
			return TranslationReport{}, Result{}, fmt.Errorf("translate: %w", err)
		}
		if !ok {
			report.Declined++
			continue
		}
		results = append(results, resolved{apply: p.apply, out: out})
	}
	if len(results) == 0 {
		return report, Result{}, nil
	}

	res, err := s.run(ctx, "translate_course", func(tx Transaction) error {
		_, err := tx.UpdateCourse(courseID, func(c *Course) error {
			for _, r := range results {
				r.apply(c, r.out)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return TranslationReport{}, res, err
	}
	report.Applied = len(results)
	return report, res, err
}
