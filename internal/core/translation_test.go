package core

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"curricore/pkg/domain"
)

func seedTranslatableCourse(t *testing.T, svc *Service) domain.Course {
	t.Helper()
	mustCreateArea(t, svc, "ka", domain.BranchFundamental)
	course, _, err := svc.CreateCourse(context.Background(), domain.Course{
		Base:        domain.Base{ID: "c1"},
		Code:        "CS101",
		Name:        domain.LocalizedText{VI: "Nhập môn lập trình"},
		Credits:     3,
		Description: domain.LocalizedText{VI: "Giới thiệu lập trình", EN: "Already translated"},
		CLOs: domain.CLOSet{
			VI: []string{"Viết chương trình đơn giản", "Sử dụng vòng lặp"},
			EN: []string{"", "Use loops"},
		},
		KnowledgeAreaID: "ka",
	})
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func TestTranslateCourseFillsOnlyGaps(t *testing.T) {
	svc := newTestService(t)
	course := seedTranslatableCourse(t, svc)

	var asked []string
	translator := TranslatorFunc(func(_ context.Context, text string, from, to domain.Language) (string, bool, error) {
		asked = append(asked, text)
		return "[en] " + text, true, nil
	})
	report, _, err := svc.TranslateCourse(context.Background(), course.ID, translator)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if report.Requested != 2 || report.Applied != 2 || report.Declined != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	// Name gap and the first CLO gap; the description and second CLO are
	// already translated.
	if !reflect.DeepEqual(asked, []string{"Nhập môn lập trình", "Viết chương trình đơn giản"}) {
		t.Fatalf("unexpected batch %v", asked)
	}
	got, _ := svc.Store().GetCourse(course.ID)
	if got.Name.EN != "[en] Nhập môn lập trình" {
		t.Fatalf("name not translated: %+v", got.Name)
	}
	if got.Description.EN != "Already translated" {
		t.Fatalf("existing translation overwritten: %+v", got.Description)
	}
	if got.CLOs.EN[0] != "[en] Viết chương trình đơn giản" || got.CLOs.EN[1] != "Use loops" {
		t.Fatalf("CLO translation wrong: %v", got.CLOs.EN)
	}
}

func TestTranslateCourseDeclinedFieldsAreSkipped(t *testing.T) {
	svc := newTestService(t)
	course := seedTranslatableCourse(t, svc)

	translator := TranslatorFunc(func(_ context.Context, text string, from, to domain.Language) (string, bool, error) {
		if text == "Nhập môn lập trình" {
			return "", false, nil
		}
		return "[en] " + text, true, nil
	})
	report, _, err := svc.TranslateCourse(context.Background(), course.ID, translator)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if report.Declined != 1 || report.Applied != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	got, _ := svc.Store().GetCourse(course.ID)
	if got.Name.EN != "" {
		t.Fatalf("declined field must stay unchanged: %+v", got.Name)
	}
	if got.CLOs.EN[0] == "" {
		t.Fatalf("accepted field must be applied")
	}
}

func TestTranslateCourseTransportErrorLeavesStateUntouched(t *testing.T) {
	svc := newTestService(t)
	course := seedTranslatableCourse(t, svc)
	before, _ := svc.Store().GetCourse(course.ID)

	calls := 0
	boom := errors.New("gateway timeout")
	translator := TranslatorFunc(func(_ context.Context, text string, from, to domain.Language) (string, bool, error) {
		calls++
		if calls == 2 {
			return "", false, boom
		}
		return "[en] " + text, true, nil
	})
	_, _, err := svc.TranslateCourse(context.Background(), course.ID, translator)
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
	after, _ := svc.Store().GetCourse(course.ID)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("aborted batch must not change the course")
	}
}

func TestTranslateCourseNothingToDo(t *testing.T) {
	svc := newTestService(t)
	mustCreateArea(t, svc, "ka", domain.BranchFundamental)
	course, _, err := svc.CreateCourse(context.Background(), domain.Course{
		Base:            domain.Base{ID: "c1"},
		Code:            "CS101",
		Name:            domain.LocalizedText{VI: "A", EN: "A"},
		Credits:         3,
		KnowledgeAreaID: "ka",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	report, _, err := svc.TranslateCourse(context.Background(), course.ID, TranslatorFunc(func(_ context.Context, text string, from, to domain.Language) (string, bool, error) {
		t.Fatalf("translator must not be called")
		return "", false, nil
	}))
	if err != nil || report.Requested != 0 {
		t.Fatalf("unexpected result %+v %v", report, err)
	}
}
