package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plume-oss/plume-driver/internal/extern"
	"github.com/plume-oss/plume-driver/internal/ir"
	"github.com/plume-oss/plume-driver/internal/lower"
	"github.com/plume-oss/plume-driver/internal/store"
)

// callerMethod builds `demo.Calc.caller()void`, which invokes
// `demo.Calc.helper()void` on itself, so the test fixture exercises the
// real lower.RunMethod -> store.Apply pipeline rather than a graph shaped
// by hand to merely resemble one.
func callerMethod() *ir.Method {
	this := &ir.Local{Name: "r0", Type: "demo.Calc"}
	m := ir.NewMethod("demo.Calc.caller()void", "demo.Calc", "void", this, nil, ir.Position{Line: 1})

	thisId := &ir.IdentityStmt{P: ir.Position{Line: 1}, Local: this, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calc"}}
	invoke := &ir.InvokeStmt{P: ir.Position{Line: 2}, Invoke: &ir.InvokeExpr{
		DeclaringClass: "demo.Calc",
		Name:           "helper",
		ReturnType:     "void",
		Receiver:       &ir.LocalValue{Local: this},
	}}
	ret := &ir.ReturnVoidStmt{P: ir.Position{Line: 3}}

	for _, s := range []ir.Stmt{thisId, invoke, ret} {
		m.AddStmt(s)
	}
	m.MarkHead(thisId)
	m.SetSuccessors(thisId, invoke)
	m.SetSuccessors(invoke, ret)
	return m
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m := callerMethod()
	methodIdx := extern.NewInMemoryMethodIndex()
	methodIdx.Register(m.FullName, m.ReturnType)
	typeIdx := extern.NewInMemoryTypeIndex()
	var warnings []string
	dg := lower.RunMethod(m, methodIdx, typeIdx, extern.DefaultEvalStrategy, func(format string, args ...any) {
		warnings = append(warnings, format)
	})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings lowering fixture: %v", warnings)
	}
	if _, _, err := db.Apply(dg); err != nil {
		t.Fatalf("apply fixture: %v", err)
	}
	return db
}

func TestHandleMethods(t *testing.T) {
	db := setupTestStore(t)
	app := NewApp(db)

	req := httptest.NewRequest(http.MethodGet, "/api/methods", nil)
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(names) != 1 || names[0] != "demo.Calc.caller()void" {
		t.Fatalf("want [demo.Calc.caller()void], got %v", names)
	}
}

func TestHandleMethod(t *testing.T) {
	db := setupTestStore(t)
	app := NewApp(db)

	cases := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"missing name", "", http.StatusBadRequest},
		{"unknown method", "?name=does.not.Exist()void", http.StatusNotFound},
		{"known method", "?name=demo.Calc.caller()void", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/method"+tc.query, nil)
			rec := httptest.NewRecorder()
			app.Handler().ServeHTTP(rec, req)
			if rec.Code != tc.wantCode {
				t.Fatalf("want %d, got %d (%s)", tc.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleNode(t *testing.T) {
	db := setupTestStore(t)
	app := NewApp(db)

	cases := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"missing id", "", http.StatusBadRequest},
		{"invalid id", "?id=not-a-number", http.StatusBadRequest},
		{"unknown id", "?id=999999", http.StatusNotFound},
		{"known id", "?id=1", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/node"+tc.query, nil)
			rec := httptest.NewRecorder()
			app.Handler().ServeHTTP(rec, req)
			if rec.Code != tc.wantCode {
				t.Fatalf("want %d, got %d (%s)", tc.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	db := setupTestStore(t)
	app := NewApp(db)

	req := httptest.NewRequest(http.MethodOptions, "/api/methods", nil)
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("want Access-Control-Allow-Origin: *, got %q", got)
	}
}
