package extern

import (
	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// callRecord pairs an invocation with the call node produced for it.
type callRecord struct {
	Invoke *ir.InvokeExpr
	Call   *cpg.Node
}

type methodStubs struct {
	method       *cpg.Node
	block        *cpg.Node
	methodReturn *cpg.Node
	params       []*cpg.Node
}

// InMemoryMethodIndex is a process-local MethodIndex used by tests and by
// the CLI driver's demo fixtures. It mirrors the role of the teacher's
// PosLookup/FuncLookup maps (string-keyed identity lookups populated
// ahead of a pass and queried during it), but keyed on a method's full
// name rather than a source position, since the program-wide stub pass
// that would normally populate this is out of scope for the core.
type InMemoryMethodIndex struct {
	methods map[string]*methodStubs
	calls   []callRecord
}

// NewInMemoryMethodIndex returns an index with no registered methods.
func NewInMemoryMethodIndex() *InMemoryMethodIndex {
	return &InMemoryMethodIndex{methods: make(map[string]*methodStubs)}
}

// Register pre-creates the METHOD/BLOCK/METHOD_RETURN stub triple for
// fullName, as the external method-stub pass would before the core runs.
// Calling Register twice for the same name is a no-op.
func (idx *InMemoryMethodIndex) Register(fullName, returnType string) {
	if _, ok := idx.methods[fullName]; ok {
		return
	}
	idx.methods[fullName] = &methodStubs{
		method:       &cpg.Node{Label: cpg.Method, Name: fullName, MethodFullName: fullName, Code: fullName},
		block:        &cpg.Node{Label: cpg.Block, Order: 1},
		methodReturn: &cpg.Node{Label: cpg.MethodReturn, TypeFullName: returnType},
	}
}

func (idx *InMemoryMethodIndex) MethodNode(fullName string) *cpg.Node {
	if s := idx.methods[fullName]; s != nil {
		return s.method
	}
	return nil
}

func (idx *InMemoryMethodIndex) BlockNode(fullName string) *cpg.Node {
	if s := idx.methods[fullName]; s != nil {
		return s.block
	}
	return nil
}

func (idx *InMemoryMethodIndex) MethodReturnNode(fullName string) *cpg.Node {
	if s := idx.methods[fullName]; s != nil {
		return s.methodReturn
	}
	return nil
}

func (idx *InMemoryMethodIndex) AddCall(invoke *ir.InvokeExpr, call *cpg.Node) {
	idx.calls = append(idx.calls, callRecord{Invoke: invoke, Call: call})
}

func (idx *InMemoryMethodIndex) StoreMethodNode(m *ir.Method, params []*cpg.Node) {
	s := idx.methods[m.FullName]
	if s == nil {
		idx.Register(m.FullName, m.ReturnType)
		s = idx.methods[m.FullName]
	}
	s.params = params
}

// Calls returns every call recorded via AddCall, for assertions in tests.
func (idx *InMemoryMethodIndex) Calls() []callRecord {
	return idx.calls
}

// InMemoryTypeIndex is a process-local TypeIndex: a type-name-keyed
// registry of previously resolved type nodes, grounded on the same
// identity-lookup idiom as InMemoryMethodIndex.
type InMemoryTypeIndex struct {
	types map[string]*cpg.Node
}

// NewInMemoryTypeIndex returns an index with no registered types.
func NewInMemoryTypeIndex() *InMemoryTypeIndex {
	return &InMemoryTypeIndex{types: make(map[string]*cpg.Node)}
}

// Register ensures a TYPE node exists for fullName and returns it.
func (idx *InMemoryTypeIndex) Register(fullName string) *cpg.Node {
	if n, ok := idx.types[fullName]; ok {
		return n
	}
	n := &cpg.Node{Label: cpg.TypeRef, Name: fullName, TypeFullName: fullName}
	idx.types[fullName] = n
	return n
}

func (idx *InMemoryTypeIndex) TypeNode(fullName string) *cpg.Node {
	return idx.types[fullName]
}
