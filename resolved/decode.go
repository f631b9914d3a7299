package resolved

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
)

// Program is one decoded front-end document.
//
// The document format is
//
//	{"types": [<type>...], "units": [<TypeDecl node>...]}
//
// Types, variables and methods are interned: a type is referenced by its
// name, a variable or method either inline as an object with an "id" or by
// its id string. Nodes carry a "kind" discriminator naming the Go type in
// this package; unknown kinds decode into *Unsupported.
type Program struct {
	Units []*TypeDecl
}

type document struct {
	Types []json.RawMessage `json:"types"`
	Units []json.RawMessage `json:"units"`
}

var nodeKinds = map[string]reflect.Type{}

func init() {
	for _, n := range []Node{
		&TypeDecl{}, &FieldDecl{}, &MethodDecl{}, &Initializer{}, &EnumConstant{}, &VarFrag{}, &Catch{},
		&Block{}, &LocalVar{}, &LocalType{}, &ExprStmt{}, &If{}, &While{}, &DoWhile{}, &For{}, &ForEach{},
		&Labeled{}, &Break{}, &Continue{}, &Return{}, &Throw{}, &Try{}, &Switch{}, &Case{},
		&Synchronized{}, &CtorCall{}, &Empty{},
		&Literal{}, &Name{}, &FieldAccess{}, &Infix{}, &Prefix{}, &Postfix{}, &Assign{}, &Call{},
		&New{}, &NewArray{}, &ArrayInit{}, &Index{}, &Cast{}, &InstanceOf{}, &Conditional{},
		&This{}, &Paren{}, &TypeLit{},
	} {
		rt := reflect.TypeOf(n).Elem()
		nodeKinds[rt.Name()] = rt
	}
}

var (
	typePtr   = reflect.TypeOf((*Type)(nil))
	varPtr    = reflect.TypeOf((*Variable)(nil))
	methodPtr = reflect.TypeOf((*Method)(nil))
)

// Decoder turns front-end documents into resolved trees. Several documents
// decoded with the same Decoder share one set of bindings.
type Decoder struct {
	u       *Universe
	vars    map[string]*Variable
	methods map[string]*Method
}

func NewDecoder(u *Universe) *Decoder {
	return &Decoder{
		u:       u,
		vars:    make(map[string]*Variable),
		methods: make(map[string]*Method),
	}
}

func (d *Decoder) Decode(r io.Reader) (*Program, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for i, raw := range doc.Types {
		if err := d.typeDef(raw); err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
	}
	p := &Program{}
	for i, raw := range doc.Units {
		n, err := d.node(raw)
		if err != nil {
			return nil, fmt.Errorf("units[%d]: %w", i, err)
		}
		decl, ok := n.(*TypeDecl)
		if !ok {
			return nil, fmt.Errorf("units[%d]: expected TypeDecl, got %T", i, n)
		}
		p.Units = append(p.Units, decl)
	}
	var undefined []string
	for id, v := range d.vars {
		if v.Type == nil {
			undefined = append(undefined, id)
		}
	}
	if len(undefined) > 0 {
		slices.Sort(undefined)
		return nil, fmt.Errorf("variable %s is referenced but never defined", strings.Join(undefined, ", "))
	}
	return p, nil
}

func (d *Decoder) typeDef(raw json.RawMessage) error {
	obj, err := object(raw)
	if err != nil {
		return err
	}
	var name string
	if err := json.Unmarshal(obj["name"], &name); err != nil || name == "" {
		return errors.New("type without name")
	}
	return d.fill(reflect.ValueOf(d.u.Type(name)).Elem(), obj)
}

func (d *Decoder) node(raw json.RawMessage) (Node, error) {
	obj, err := object(raw)
	if err != nil {
		return nil, err
	}
	var kind string
	if err := json.Unmarshal(obj["kind"], &kind); err != nil {
		return nil, errors.New("node without kind")
	}
	rt, ok := nodeKinds[kind]
	if !ok {
		u := &Unsupported{Kind: kind}
		if err := d.fill(reflect.ValueOf(u).Elem(), obj); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return u, nil
	}
	p := reflect.New(rt)
	if err := d.fill(p.Elem(), obj); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return p.Interface().(Node), nil
}

func (d *Decoder) variable(raw json.RawMessage) (*Variable, error) {
	id, obj, err := reference(raw)
	if err != nil {
		return nil, err
	}
	v, ok := d.vars[id]
	if !ok {
		v = &Variable{ID: id}
		d.vars[id] = v
	}
	if obj != nil {
		if err := d.fill(reflect.ValueOf(v).Elem(), obj); err != nil {
			return nil, fmt.Errorf("variable %s: %w", id, err)
		}
	}
	return v, nil
}

func (d *Decoder) method(raw json.RawMessage) (*Method, error) {
	id, obj, err := reference(raw)
	if err != nil {
		return nil, err
	}
	m, ok := d.methods[id]
	if !ok {
		m = &Method{ID: id}
		d.methods[id] = m
	}
	if obj != nil {
		if err := d.fill(reflect.ValueOf(m).Elem(), obj); err != nil {
			return nil, fmt.Errorf("method %s: %w", id, err)
		}
	}
	return m, nil
}

// fill decodes the members of obj into the struct v by json tag.
func (d *Decoder) fill(v reflect.Value, obj map[string]json.RawMessage) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			if err := d.fill(v.Field(i), obj); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		raw, ok := obj[name]
		if !ok || isNull(raw) {
			continue
		}
		if err := d.value(v.Field(i), raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (d *Decoder) value(v reflect.Value, raw json.RawMessage) error {
	switch v.Type() {
	case typePtr:
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return fmt.Errorf("type reference: %w", err)
		}
		v.Set(reflect.ValueOf(d.u.Type(name)))
		return nil
	case varPtr:
		x, err := d.variable(raw)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(x))
		return nil
	case methodPtr:
		x, err := d.method(raw)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(x))
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		n, err := d.node(raw)
		if err != nil {
			return err
		}
		rv := reflect.ValueOf(n)
		if !rv.Type().Implements(v.Type()) {
			return fmt.Errorf("%T is not a %s", n, v.Type().Name())
		}
		v.Set(rv)
	case reflect.Slice:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return err
		}
		s := reflect.MakeSlice(v.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := d.value(s.Index(i), e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		v.Set(s)
	case reflect.Pointer:
		if v.Type().Elem().Kind() != reflect.Struct {
			return json.Unmarshal(raw, v.Addr().Interface())
		}
		obj, err := object(raw)
		if err != nil {
			return err
		}
		p := reflect.New(v.Type().Elem())
		if err := d.fill(p.Elem(), obj); err != nil {
			return err
		}
		v.Set(p)
	case reflect.Struct:
		obj, err := object(raw)
		if err != nil {
			return err
		}
		return d.fill(v, obj)
	default:
		return json.Unmarshal(raw, v.Addr().Interface())
	}
	return nil
}

func object(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("expected object")
	}
	return obj, nil
}

// reference splits an interned binding reference into its id and, for the
// inline form, its members.
func reference(raw json.RawMessage) (string, map[string]json.RawMessage, error) {
	var id string
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte(`"`)) {
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", nil, err
		}
		return id, nil, nil
	}
	obj, err := object(raw)
	if err != nil {
		return "", nil, err
	}
	if err := json.Unmarshal(obj["id"], &id); err != nil || id == "" {
		return "", nil, errors.New("binding without id")
	}
	return id, obj, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
