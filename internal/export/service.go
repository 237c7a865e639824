package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"curricore/internal/blob"
	"curricore/internal/core"
	"curricore/pkg/domain"
)

// ErrSuperseded reports that a newer export request for the same
// course and dialect finished first; the stale result was discarded.
var ErrSuperseded = errors.New("export superseded by a newer request")

// Service renders documents and stores the resulting artifacts in the
// blob store. Requests for the same course and dialect follow a
// last-request-wins policy: a completion that was overtaken by a newer
// request is discarded instead of overwriting the newer artifact.
type Service struct {
	store  domain.PersistentStore
	blobs  blob.Store
	render Renderer
	logger core.Logger

	mu     sync.Mutex
	seq    map[string]uint64
	latest map[string]blob.Info
}

// Option customizes a Service.
type Option func(*Service)

// WithRenderer swaps the artifact renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.render = r
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l core.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService wires an export service over the persistent store and a
// blob backend.
func NewService(store domain.PersistentStore, blobs blob.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		blobs:  blobs,
		render: JSONRenderer{},
		logger: core.NewNopLogger(),
		seq:    make(map[string]uint64),
		latest: make(map[string]blob.Info),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin registers a new request for the artifact key and returns its
// token. A token is stale once a later begin for the same key happened.
func (s *Service) begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[key]++
	return s.seq[key]
}

func (s *Service) stale(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[key] != token
}

// finish records the artifact as latest for the key and returns the
// blob it replaces, if any. Returns false when the token went stale.
func (s *Service) finish(key string, token uint64, info blob.Info) (blob.Info, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[key] != token {
		return blob.Info{}, false, false
	}
	previous, had := s.latest[key]
	s.latest[key] = info
	return previous, had, true
}

// LatestArtifact returns the most recent artifact stored for a course
// and dialect.
func (s *Service) LatestArtifact(courseID string, dialect domain.Dialect) (blob.Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.latest[syllabusKey(courseID, dialect)]
	return info, ok
}

func syllabusKey(courseID string, dialect domain.Dialect) string {
	return "syllabus/" + courseID + "/" + string(dialect)
}

// ExportSyllabus builds, renders, and stores the syllabus document for
// one course.
func (s *Service) ExportSyllabus(ctx context.Context, courseID string, lang domain.Language, dialect domain.Dialect) (blob.Info, error) {
	opKey := syllabusKey(courseID, dialect)
	token := s.begin(opKey)

	in, err := s.snapshotInput(ctx, courseID, lang, dialect)
	if err != nil {
		return blob.Info{}, err
	}
	data, err := s.render.Render(BuildSyllabus(in))
	if err != nil {
		return blob.Info{}, err
	}
	if s.stale(opKey, token) {
		return blob.Info{}, ErrSuperseded
	}
	key := fmt.Sprintf("syllabi/%s.%s", uuid.NewString(), s.render.Extension())
	info, err := s.blobs.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
		ContentType: s.render.ContentType(),
		Metadata: map[string]string{
			"course_id": courseID,
			"dialect":   string(dialect),
			"language":  string(lang),
		},
	})
	if err != nil {
		return blob.Info{}, err
	}
	previous, hadPrevious, current := s.finish(opKey, token, info)
	if !current {
		// A newer request won while we were writing; drop our artifact.
		if _, err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn("discard stale syllabus artifact", "key", key, "error", err)
		}
		return blob.Info{}, ErrSuperseded
	}
	if hadPrevious {
		if _, err := s.blobs.Delete(ctx, previous.Key); err != nil {
			s.logger.Warn("delete superseded syllabus artifact", "key", previous.Key, "error", err)
		}
	}
	s.logger.Info("syllabus exported", "course_id", courseID, "dialect", string(dialect), "key", key, "size", info.Size)
	return info, nil
}

// snapshotInput assembles the read-only builder input from one store view.
func (s *Service) snapshotInput(ctx context.Context, courseID string, lang domain.Language, dialect domain.Dialect) (SyllabusInput, error) {
	var in SyllabusInput
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		course, ok := view.FindCourse(courseID)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
		}
		courses := view.ListCourses()
		in = SyllabusInput{
			Course:            course,
			Index:             catalogIndex(courseID, courses),
			Language:          lang,
			Dialect:           dialect,
			GeneralInfo:       view.GeneralInfo(),
			Courses:           courses,
			Faculties:         view.ListFacultyMembers(),
			StudentOutcomes:   view.ListStudentOutcomes(),
			Objectives:        view.ListObjectives(),
			Departments:       view.ListDepartments(),
			AcademicFaculties: view.ListAcademicFaculties(),
			Schools:           view.ListSchools(),
			TeachingMethods:   view.ListTeachingMethods(),
			AssessmentMethods: view.ListAssessmentMethods(),
			LibraryResources:  view.ListLibraryResources(),
		}
		return nil
	})
	if err != nil {
		return SyllabusInput{}, err
	}
	return in, nil
}

// catalogIndex returns the 1-based position of the course in code order.
func catalogIndex(courseID string, courses []domain.Course) int {
	sorted := append([]domain.Course(nil), courses...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Code != sorted[j].Code {
			return sorted[i].Code < sorted[j].Code
		}
		return sorted[i].ID < sorted[j].ID
	})
	for i, c := range sorted {
		if c.ID == courseID {
			return i + 1
		}
	}
	return 0
}

// ExportCatalogCSV writes the whole catalog as a CSV artifact.
func (s *Service) ExportCatalogCSV(ctx context.Context) (blob.Info, error) {
	const opKey = "catalog/csv"
	token := s.begin(opKey)

	var in CatalogCSVInput
	if err := s.store.View(ctx, func(view domain.TransactionView) error {
		in = CatalogCSVInput{
			Courses:      view.ListCourses(),
			Outcomes:     view.ListStudentOutcomes(),
			OutcomeLinks: view.CourseOutcomeLinks(),
		}
		return nil
	}); err != nil {
		return blob.Info{}, err
	}
	data, err := WriteCatalogCSV(in)
	if err != nil {
		return blob.Info{}, err
	}
	if s.stale(opKey, token) {
		return blob.Info{}, ErrSuperseded
	}
	key := fmt.Sprintf("catalog/%s.csv", uuid.NewString())
	info, err := s.blobs.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{ContentType: "text/csv; charset=utf-8"})
	if err != nil {
		return blob.Info{}, err
	}
	previous, hadPrevious, current := s.finish(opKey, token, info)
	if !current {
		if _, err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn("discard stale catalog artifact", "key", key, "error", err)
		}
		return blob.Info{}, ErrSuperseded
	}
	if hadPrevious {
		if _, err := s.blobs.Delete(ctx, previous.Key); err != nil {
			s.logger.Warn("delete superseded catalog artifact", "key", previous.Key, "error", err)
		}
	}
	s.logger.Info("catalog exported", "key", key, "courses", len(in.Courses))
	return info, nil
}

// ImportCatalogCSV applies a parsed catalog file additively in one
// transaction. Prerequisite codes resolve against both the existing
// catalog and the batch itself; an unresolvable code rejects the whole
// batch, matching the malformed-row policy.
func (s *Service) ImportCatalogCSV(ctx context.Context, data []byte) (int, error) {
	rows, err := ParseCatalogCSV(data)
	if err != nil {
		return 0, err
	}
	imported := 0
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		created := make(map[string]string, len(rows)) // code -> id, batch-local
		ids := make([]string, 0, len(rows))
		for i, row := range rows {
			course, err := tx.CreateCourse(domain.Course{
				Code:            row.Code,
				Name:            row.Name,
				Credits:         row.Credits,
				Semester:        row.Semester,
				Type:            row.Type,
				KnowledgeAreaID: row.KnowledgeAreaID,
			})
			if err != nil {
				return fmt.Errorf("row %d (%s): %w", i+2, row.Code, err)
			}
			created[row.Code] = course.ID
			ids = append(ids, course.ID)
		}
		resolve := func(codes []string) ([]string, error) {
			var out []string
			for _, code := range codes {
				if id, ok := created[code]; ok {
					out = append(out, id)
					continue
				}
				if existing, ok := tx.Snapshot().FindCourseByCode(code); ok {
					out = append(out, existing.ID)
					continue
				}
				return nil, fmt.Errorf("unknown course code %q", code)
			}
			return out, nil
		}
		for i, row := range rows {
			prereqs, err := resolve(row.PrerequisiteCodes)
			if err != nil {
				return fmt.Errorf("row %d (%s): %w", i+2, row.Code, err)
			}
			coreqs, err := resolve(row.CoRequisiteCodes)
			if err != nil {
				return fmt.Errorf("row %d (%s): %w", i+2, row.Code, err)
			}
			if len(prereqs) == 0 && len(coreqs) == 0 {
				continue
			}
			if _, err := tx.UpdateCourse(ids[i], func(c *domain.Course) error {
				c.PrerequisiteIDs = prereqs
				c.CoRequisiteIDs = coreqs
				return nil
			}); err != nil {
				return err
			}
		}
		imported = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("catalog imported", "rows", imported)
	return imported, nil
}
