package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"curricore/pkg/domain"
)

// stubState is the shared backing store for every stub connection.
type stubState struct {
	mu      sync.Mutex
	buckets map[string][]byte
	execs   []string
}

func newStubDB() (*sql.DB, *stubState) {
	state := &stubState{buckets: make(map[string][]byte)}
	return sql.OpenDB(stubConnector{state: state}), state
}

type stubConnector struct{ state *stubState }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{state: c.state}, nil
}

func (c stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, driver.ErrBadConn }

type stubConn struct{ state *stubState }

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }
func (c *stubConn) Ping(context.Context) error          { return nil }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.execs = append(c.state.execs, query)
	if strings.HasPrefix(strings.TrimSpace(query), "INSERT INTO state") {
		name, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		c.state.buckets[name] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(query, "FROM state") {
		return nil, driver.ErrSkip
	}
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	rows := &stubRows{}
	for name, payload := range c.state.buckets {
		rows.data = append(rows.data, [2]driver.Value{name, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	data [][2]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	dest[0] = r.data[r.pos][0]
	dest[1] = r.data[r.pos][1]
	r.pos++
	return nil
}

func TestNewStoreLoadsExistingSnapshot(t *testing.T) {
	db, state := newStubDB()
	payload, err := json.Marshal(map[string]domain.Course{
		"c1": {Base: domain.Base{ID: "c1"}, Code: "CS101", Credits: 3, Type: domain.CourseRequired},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	state.buckets["courses"] = payload

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	courses := store.ListCourses()
	if len(courses) != 1 || courses[0].Code != "CS101" {
		t.Fatalf("snapshot not hydrated: %+v", courses)
	}
	sawDDL := false
	for _, stmt := range state.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("state table DDL not applied: %v", state.execs)
	}
}

func TestRunInTransactionPersistsSnapshot(t *testing.T) {
	db, state := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateKnowledgeArea(domain.KnowledgeArea{
			Base:   domain.Base{ID: "ka-cs"},
			Name:   domain.LocalizedText{EN: "Computer Science"},
			Branch: domain.BranchFundamental,
		}); err != nil {
			return err
		}
		_, err := tx.CreateCourse(domain.Course{
			Code:            "CS101",
			Name:            domain.LocalizedText{EN: "Introduction"},
			Credits:         3,
			KnowledgeAreaID: "ka-cs",
		})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	state.mu.Lock()
	coursesPayload := state.buckets["courses"]
	state.mu.Unlock()
	if len(coursesPayload) == 0 {
		t.Fatalf("courses bucket not persisted; buckets: %v", bucketNames(state))
	}
	if !strings.Contains(string(coursesPayload), "CS101") {
		t.Fatalf("persisted payload missing course: %s", coursesPayload)
	}
}

func bucketNames(state *stubState) []string {
	state.mu.Lock()
	defer state.mu.Unlock()
	names := make([]string, 0, len(state.buckets))
	for name := range state.buckets {
		names = append(names, name)
	}
	return names
}
