package openapi

import (
	"encoding"
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/spec"
	"github.com/google/uuid"
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	uuidType          = reflect.TypeOf(uuid.UUID{})
	rawMessageType    = reflect.TypeOf(json.RawMessage{})
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

	definitionNameCleaner = regexp.MustCompile(`[^A-Za-z0-9_.]+`)
)

// Schemas builds JSON schemas from Go types and keeps named structs as definitions.
type Schemas struct {
	definitions spec.Definitions
}

func NewSchemas() *Schemas {
	return &Schemas{definitions: spec.Definitions{}}
}

func (s *Schemas) Definitions() spec.Definitions {
	return s.definitions
}

func (s *Schemas) For(v any) *spec.Schema {
	if v == nil {
		return nil
	}
	return s.schemaFor(reflect.TypeOf(v))
}

func (s *Schemas) schemaFor(t reflect.Type) *spec.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return spec.DateTimeProperty()
	case uuidType:
		return spec.StrFmtProperty("uuid")
	case rawMessageType:
		return &spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"object"}}}
	}

	switch t.Kind() {
	case reflect.Bool:
		return spec.BoolProperty()
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return spec.Int64Property()
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return spec.Int32Property()
	case reflect.Float32:
		return spec.Float32Property()
	case reflect.Float64:
		return spec.Float64Property()
	case reflect.String:
		return spec.StringProperty()
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return spec.StrFmtProperty("byte")
		}
		return spec.ArrayProperty(s.schemaFor(t.Elem()))
	case reflect.Map:
		return spec.MapProperty(s.schemaFor(t.Elem()))
	case reflect.Struct:
		if t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
			return spec.StringProperty()
		}
		if t.Name() == "" {
			return s.structSchema(t)
		}
		name := definitionName(t)
		if _, ok := s.definitions[name]; !ok {
			// Placeholder first so self-referencing types terminate.
			s.definitions[name] = spec.Schema{}
			s.definitions[name] = *s.structSchema(t)
		}
		return spec.RefProperty("#/definitions/" + name)
	default:
		return &spec.Schema{}
	}
}

func (s *Schemas) structSchema(t reflect.Type) *spec.Schema {
	schema := &spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"object"}}}
	s.addFields(schema, t)
	return schema
}

func (s *Schemas) addFields(schema *spec.Schema, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name, omit := jsonName(f)
		if omit {
			continue
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if f.Anonymous && name == "" && ft.Kind() == reflect.Struct {
			s.addFields(schema, ft)
			continue
		}
		if name == "" {
			name = f.Name
		}

		prop := s.schemaFor(f.Type)
		rules := ruleSet(f)
		if rules.has("required") {
			schema.AddRequired(name)
		}
		applyRules(prop, ft, rules)
		if enums := f.Tag.Get("enums"); enums != "" {
			prop.WithEnum(toAny(strings.Split(enums, ","))...)
		}
		if ex := f.Tag.Get("example"); ex != "" {
			prop.Example = ex
		}
		schema.SetProperty(name, *prop)
	}
}

// QueryParams describes the fields of a query-string model as Swagger parameters.
func (s *Schemas) QueryParams(v any) []*spec.Parameter {
	if v == nil {
		return nil
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var params []*spec.Parameter
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}

		prop := s.schemaFor(f.Type)
		p := spec.QueryParam(name)
		if len(prop.Type) > 0 {
			p.Typed(prop.Type[0], prop.Format)
		}
		rules := ruleSet(f)
		if rules.has("required") {
			p.AsRequired()
		}
		if def := formDefault(f); def != "" {
			p.WithDefault(def)
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if enum := rules.param("oneof"); enum != "" {
			p.WithEnum(toAny(strings.Fields(enum))...)
		}
		if isNumber(ft) {
			if min, ok := rules.float("gte"); ok {
				p.WithMinimum(min, false)
			}
			if max, ok := rules.float("lte"); ok {
				p.WithMaximum(max, false)
			}
		}
		params = append(params, p)
	}
	return params
}

func jsonName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	return strings.SplitN(tag, ",", 2)[0], false
}

func formDefault(f reflect.StructField) string {
	for _, part := range strings.Split(f.Tag.Get("form"), ",")[1:] {
		if strings.HasPrefix(part, "default=") {
			return strings.TrimPrefix(part, "default=")
		}
	}
	return ""
}

type rules map[string]string

func ruleSet(f reflect.StructField) rules {
	r := rules{}
	for _, tag := range []string{f.Tag.Get("binding"), f.Tag.Get("validate")} {
		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			key, val, _ := strings.Cut(part, "=")
			r[key] = val
		}
	}
	return r
}

func (r rules) has(key string) bool {
	_, ok := r[key]
	return ok
}

func (r rules) param(key string) string {
	return r[key]
}

func (r rules) float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

func applyRules(prop *spec.Schema, t reflect.Type, r rules) {
	if enum := r.param("oneof"); enum != "" {
		prop.WithEnum(toAny(strings.Fields(enum))...)
	}
	switch {
	case t.Kind() == reflect.String:
		if n, ok := r.float("max"); ok {
			prop.WithMaxLength(int64(n))
		}
		if n, ok := r.float("min"); ok {
			prop.WithMinLength(int64(n))
		}
	case isNumber(t):
		if n, ok := r.float("gte"); ok {
			prop.WithMinimum(n, false)
		}
		if n, ok := r.float("lte"); ok {
			prop.WithMaximum(n, false)
		}
		if n, ok := r.float("gt"); ok {
			prop.WithMinimum(n, true)
		}
		if n, ok := r.float("lt"); ok {
			prop.WithMaximum(n, true)
		}
	}
}

func isNumber(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// definitionName renders "pkg.Type"; generic instantiations become "pkg.Type_arg".
func definitionName(t reflect.Type) string {
	pkg := t.PkgPath()
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		pkg = pkg[i+1:]
	}

	name := t.Name()
	if i := strings.Index(name, "["); i >= 0 {
		args := name[i+1 : len(name)-1]
		var short []string
		for _, a := range strings.Split(args, ",") {
			if j := strings.LastIndex(a, "/"); j >= 0 {
				a = a[j+1:]
			}
			short = append(short, a)
		}
		name = name[:i] + "_" + strings.Join(short, "_")
	}

	full := name
	if pkg != "" {
		full = pkg + "." + name
	}
	return strings.Trim(definitionNameCleaner.ReplaceAllString(full, "_"), "_")
}
