package hl7

import (
	"fmt"
	"reflect"

	"github.com/zoobzio/sentinel"
)

func init() {
	sentinel.Tag("hl7")
	for _, ca := range contextActions {
		sentinel.Tag(ca)
	}
}

// bindPlan describes how a struct type maps onto message fields.
type bindPlan struct {
	typeName string
	fields   []bindField
}

// bindField describes a single tagged struct field.
type bindField struct {
	index   []int  // reflect.Value.FieldByIndex access path
	name    string // field name for error messages
	path    string
	coord   Coordinate
	isSlice bool // []string, one element per repetition
	actions Actions
}

// buildBindPlan scans T for hl7 struct tags.
//
//	type Patient struct {
//	    MRN    string   `hl7:"PID.3.1" receive.hash:"sha256"`
//	    Family string   `hl7:"PID.5.1" send.mask:"name"`
//	    Phones []string `hl7:"PID.13"`
//	    Kin    *NextOfKin
//	}
func buildBindPlan[T any]() (*bindPlan, error) {
	meta := sentinel.Scan[T]()
	plan := &bindPlan{typeName: meta.TypeName}
	if err := buildBindPlanRecursive(plan, meta, nil, ""); err != nil {
		return nil, err
	}
	return plan, nil
}

func buildBindPlanRecursive(plan *bindPlan, meta sentinel.Metadata, parentIndex []int, namePrefix string) error {
	for _, f := range meta.Fields {
		fullIndex := append(append([]int{}, parentIndex...), f.Index...)
		fullName := f.Name
		if namePrefix != "" {
			fullName = namePrefix + "." + f.Name
		}

		path, tagged := f.Tags["hl7"]

		var nested reflect.Type
		switch {
		case f.Kind == sentinel.KindStruct:
			nested = f.ReflectType
		case f.Kind == sentinel.KindPointer && f.ReflectType.Elem().Kind() == reflect.Struct:
			nested = f.ReflectType.Elem()
		}
		if nested != nil && !tagged {
			if ns := scanNestedType(nested); ns != nil {
				if err := buildBindPlanRecursive(plan, *ns, fullIndex, fullName); err != nil {
					return err
				}
			}
			continue
		}
		if !tagged || path == "-" {
			continue
		}

		isString := f.ReflectType.Kind() == reflect.String
		isStringSlice := f.ReflectType.Kind() == reflect.Slice &&
			f.ReflectType.Elem().Kind() == reflect.String
		if !isString && !isStringSlice {
			return fmt.Errorf("%w: field %s: hl7 tag on unsupported type %s", ErrInvalidPolicy, fullName, f.Type)
		}

		c, err := Resolve(path)
		if err != nil {
			return fmt.Errorf("field %s: %w", fullName, err)
		}
		if c.Field == 0 {
			return fmt.Errorf("%w: field %s: path %q does not address a field", ErrInvalidPolicy, fullName, path)
		}
		if isStringSlice && c.Repetition > 0 {
			return fmt.Errorf("%w: field %s: slice path %q must not select a repetition", ErrInvalidPolicy, fullName, path)
		}

		bf := bindField{
			index:   fullIndex,
			name:    fullName,
			path:    path,
			coord:   c,
			isSlice: isStringSlice,
		}
		for _, ca := range contextActions {
			if val, ok := f.Tags[ca]; ok {
				if !validCapability(ca, val) {
					return newConfigError(ErrInvalidPolicy, val, path)
				}
				if bf.actions == nil {
					bf.actions = make(Actions)
				}
				bf.actions[ca] = val
			}
		}
		plan.fields = append(plan.fields, bf)
	}
	return nil
}

// scanNestedType scans a nested struct type and returns its metadata.
func scanNestedType(rt reflect.Type) *sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return &meta
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        bindTags(sf.Tag),
		}
		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}
		meta.Fields = append(meta.Fields, fm)
	}
	return &meta
}

// bindTags extracts the hl7 and context.action tags from a struct tag.
func bindTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, key := range append([]string{"hl7"}, contextActions...) {
		if val, ok := tag.Lookup(key); ok {
			tags[key] = val
		}
	}
	return tags
}

// Decode reads the tagged fields of a new T from m. Values are unescaped.
// Paths whose segment is absent leave the field at its zero value.
func Decode[T any](m *Message) (*T, error) {
	plan, err := planFor[T]()
	if err != nil {
		return nil, err
	}

	var obj T
	rv := reflect.ValueOf(&obj).Elem()
	for _, bf := range plan.fields {
		s, err := m.find(bf.coord.Segment, bf.coord.Occurrence)
		if err != nil {
			continue
		}
		fv := fieldByIndex(rv, bf.index, true)

		if !bf.isSlice {
			fv.SetString(Unescape(s.Get(bf.coord), m.delims))
			continue
		}
		n := s.Repetitions(bf.coord.Field)
		values := reflect.MakeSlice(fv.Type(), n, n)
		for i := 0; i < n; i++ {
			c := bf.coord
			c.Repetition = i + 1
			values.Index(i).SetString(Unescape(s.Get(c), m.delims))
		}
		fv.Set(values)
	}
	return &obj, nil
}

// Encode writes the tagged fields of v into m, escaping values and creating
// missing segments as needed. Empty strings and nil pointers are skipped.
func Encode[T any](m *Message, v *T) error {
	plan, err := planFor[T]()
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v).Elem()
	for _, bf := range plan.fields {
		fv := fieldByIndex(rv, bf.index, false)
		if !fv.IsValid() {
			continue
		}
		if !bf.isSlice && fv.String() == "" {
			continue
		}
		if bf.isSlice && fv.Len() == 0 {
			continue
		}

		s, err := m.ensure(bf.coord.Segment, bf.coord.Occurrence)
		if err != nil {
			return err
		}

		if !bf.isSlice {
			if err := s.Set(bf.coord, Escape(fv.String(), m.delims)); err != nil {
				return fmt.Errorf("field %s: %w", bf.name, err)
			}
			continue
		}
		if err := clearRepetitions(s, bf.coord, fv.Len()); err != nil {
			return fmt.Errorf("field %s: %w", bf.name, err)
		}
		for i := 0; i < fv.Len(); i++ {
			c := bf.coord
			c.Repetition = i + 1
			if err := s.Set(c, Escape(fv.Index(i).String(), m.delims)); err != nil {
				return fmt.Errorf("field %s: %w", bf.name, err)
			}
		}
	}
	return nil
}

// clearRepetitions drops values a slice of length n no longer covers. A field
// path is replaced outright; a component path is blanked in the surplus
// repetitions so sibling components survive.
func clearRepetitions(s *Segment, c Coordinate, n int) error {
	if c.Depth() == 1 {
		return s.Set(c, "")
	}
	for r := s.Repetitions(c.Field); r > n; r-- {
		c.Repetition = r
		if err := s.Set(c, ""); err != nil {
			return err
		}
	}
	return nil
}

// PolicyOf collects the context.action tags of T into a Policy.
func PolicyOf[T any]() (Policy, error) {
	plan, err := planFor[T]()
	if err != nil {
		return nil, err
	}
	policy := make(Policy)
	for _, bf := range plan.fields {
		if len(bf.actions) == 0 {
			continue
		}
		actions, ok := policy[bf.path]
		if !ok {
			actions = make(Actions)
			policy[bf.path] = actions
		}
		for k, v := range bf.actions {
			if prev, dup := actions[k]; dup && prev != v {
				return nil, newConfigError(ErrInvalidPolicy, v, bf.path)
			}
			actions[k] = v
		}
	}
	return policy, nil
}

// fieldByIndex walks index, dereferencing pointers along the way. With alloc
// set, nil pointers are allocated; otherwise a nil pointer yields an invalid Value.
func fieldByIndex(v reflect.Value, index []int, alloc bool) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// ensure returns the occurrence-th segment named name, appending empty
// segments until it exists.
func (m *Message) ensure(name string, occurrence int) (*Segment, error) {
	want := max(occurrence, 1)
	for {
		s, err := m.find(name, want)
		if err == nil {
			return s, nil
		}
		if _, err := m.CreateSegment(name); err != nil {
			return nil, err
		}
	}
}
