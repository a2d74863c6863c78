// Package jsonir decodes the CLI driver's JSON input format into the
// ir.Method shape the lowering core consumes (§12 step 1). The wire
// format is not part of the core's contract — it exists purely so
// cmd/cpglower has something concrete to parse; the core itself never
// imports this package.
package jsonir

import (
	"encoding/json"
	"fmt"

	"github.com/plume-oss/plume-driver/internal/ir"
)

// LocalDecl declares one local by name so every reference to it within a
// method decodes to the same *ir.Local pointer.
type LocalDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MethodDecl is the wire shape of a single method.
type MethodDecl struct {
	FullName       string            `json:"fullName"`
	DeclaringClass string            `json:"declaringClass"`
	ReturnType     string            `json:"returnType"`
	ThisLocal      *LocalDecl        `json:"thisLocal,omitempty"`
	Params         []LocalDecl       `json:"params"`
	Locals         []LocalDecl       `json:"locals"`
	Body           []json.RawMessage `json:"body"`
	Heads          []int             `json:"heads,omitempty"`
}

// Batch is the top-level wire shape: every type the methods reference
// (pre-registered with the type index) and the methods themselves.
type Batch struct {
	Types   []string     `json:"types"`
	Methods []MethodDecl `json:"methods"`
}

// stmtWire is the tagged-union envelope every body statement decodes
// through: a "kind" discriminator plus whichever fields that kind needs.
type stmtWire struct {
	Kind    string            `json:"kind"`
	Line    int               `json:"line"`
	Col     int               `json:"col"`
	Local   string            `json:"local,omitempty"`
	Ref     json.RawMessage   `json:"ref,omitempty"`
	Left    json.RawMessage   `json:"left,omitempty"`
	Right   json.RawMessage   `json:"right,omitempty"`
	Cond    json.RawMessage   `json:"condition,omitempty"`
	Key     json.RawMessage   `json:"key,omitempty"`
	Lookups []int64           `json:"lookups,omitempty"`
	Low     int64             `json:"low,omitempty"`
	Targets []int             `json:"targets,omitempty"`
	Default int               `json:"default,omitempty"`
	HasDef  bool              `json:"hasDefault,omitempty"`
	Invoke  json.RawMessage   `json:"invoke,omitempty"`
	Operand json.RawMessage   `json:"operand,omitempty"`
	Enter   bool              `json:"enter,omitempty"`
	Text    string            `json:"text,omitempty"`
	Succs   []int             `json:"succs,omitempty"`
}

// valueWire is the tagged-union envelope for every value kind.
type valueWire struct {
	Kind           string            `json:"kind"`
	Name           string            `json:"name,omitempty"`
	RefKind        string            `json:"refKind,omitempty"`
	Index          int               `json:"index,omitempty"`
	Type           string            `json:"type,omitempty"`
	Code           string            `json:"code,omitempty"`
	Op             string            `json:"op,omitempty"`
	Left           json.RawMessage   `json:"left,omitempty"`
	Right          json.RawMessage   `json:"right,omitempty"`
	Operand        json.RawMessage   `json:"operand,omitempty"`
	Base           json.RawMessage   `json:"base,omitempty"`
	Index_         json.RawMessage   `json:"indexValue,omitempty"`
	Size           json.RawMessage   `json:"size,omitempty"`
	ElementType    string            `json:"elementType,omitempty"`
	DeclaringClass string            `json:"declaringClass,omitempty"`
	FieldName      string            `json:"fieldName,omitempty"`
	FieldType      string            `json:"fieldType,omitempty"`
	ReturnType     string            `json:"returnType,omitempty"`
	ParamTypes     []string          `json:"paramTypes,omitempty"`
	Static         bool              `json:"static,omitempty"`
	Dynamic        bool              `json:"dynamic,omitempty"`
	Receiver       json.RawMessage   `json:"receiver,omitempty"`
	Args           []json.RawMessage `json:"args,omitempty"`
	BootstrapArgs  []json.RawMessage `json:"bootstrapArgs,omitempty"`
}

// DecodeValue decodes one tagged value node, or nil for an empty/null
// RawMessage (a value-typed field left unset, e.g. a void return).
func DecodeValue(raw json.RawMessage, locals map[string]*ir.Local) (ir.Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var w valueWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}

	child := func(r json.RawMessage) (ir.Value, error) { return DecodeValue(r, locals) }

	switch w.Kind {
	case "Local":
		l, ok := locals[w.Name]
		if !ok {
			return nil, fmt.Errorf("undeclared local %q", w.Name)
		}
		return &ir.LocalValue{Local: l}, nil
	case "IdentityRef":
		return &ir.IdentityRefValue{Kind: w.RefKind, Index: w.Index, Type: w.Type}, nil
	case "Const":
		return &ir.Constant{Code: w.Code, Type: w.Type}, nil
	case "New":
		return &ir.NewExpr{Type: w.Type}, nil
	case "NewArray":
		size, err := child(w.Size)
		if err != nil {
			return nil, err
		}
		return &ir.NewArrayExpr{ElementType: w.ElementType, Size: size}, nil
	case "CaughtException":
		return &ir.CaughtExceptionRef{Type: w.Type}, nil
	case "StaticField":
		return &ir.StaticFieldRef{DeclaringClass: w.DeclaringClass, FieldName: w.FieldName, FieldType: w.FieldType}, nil
	case "InstanceField":
		base, err := child(w.Base)
		if err != nil {
			return nil, err
		}
		return &ir.InstanceFieldRef{Base: base, DeclaringClass: w.DeclaringClass, FieldName: w.FieldName, FieldType: w.FieldType}, nil
	case "Binop":
		left, err := child(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := child(w.Right)
		if err != nil {
			return nil, err
		}
		return &ir.BinopExpr{Op: w.Op, Left: left, Right: right}, nil
	case "Condition":
		left, err := child(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := child(w.Right)
		if err != nil {
			return nil, err
		}
		return &ir.ConditionExpr{Op: w.Op, Left: left, Right: right}, nil
	case "Cast":
		operand, err := child(w.Operand)
		if err != nil {
			return nil, err
		}
		return &ir.CastExpr{Type: w.Type, Operand: operand}, nil
	case "InstanceOf":
		operand, err := child(w.Operand)
		if err != nil {
			return nil, err
		}
		return &ir.InstanceOfExpr{Type: w.Type, Operand: operand}, nil
	case "Length":
		operand, err := child(w.Operand)
		if err != nil {
			return nil, err
		}
		return &ir.LengthExpr{Operand: operand}, nil
	case "Neg":
		operand, err := child(w.Operand)
		if err != nil {
			return nil, err
		}
		return &ir.NegExpr{Operand: operand}, nil
	case "ArrayRef":
		base, err := child(w.Base)
		if err != nil {
			return nil, err
		}
		idx, err := child(w.Index_)
		if err != nil {
			return nil, err
		}
		return &ir.ArrayRef{Base: base, Index: idx}, nil
	case "Invoke":
		return decodeInvoke(w, locals)
	default:
		return nil, fmt.Errorf("unknown value kind %q", w.Kind)
	}
}

func decodeInvoke(w valueWire, locals map[string]*ir.Local) (*ir.InvokeExpr, error) {
	receiver, err := DecodeValue(w.Receiver, locals)
	if err != nil {
		return nil, err
	}
	args, err := decodeValueList(w.Args, locals)
	if err != nil {
		return nil, err
	}
	bootstrap, err := decodeValueList(w.BootstrapArgs, locals)
	if err != nil {
		return nil, err
	}
	return &ir.InvokeExpr{
		DeclaringClass: w.DeclaringClass,
		Name:           w.Name,
		ReturnType:     w.ReturnType,
		ParamTypes:     w.ParamTypes,
		Static:         w.Static,
		Dynamic:        w.Dynamic,
		Receiver:       receiver,
		Args:           args,
		BootstrapArgs:  bootstrap,
	}, nil
}

func decodeValueList(raws []json.RawMessage, locals map[string]*ir.Local) ([]ir.Value, error) {
	out := make([]ir.Value, 0, len(raws))
	for _, r := range raws {
		v, err := DecodeValue(r, locals)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
