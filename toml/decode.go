package toml

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Unmarshal parses TOML data and stores the result in the value pointed to by v
// Keys absent from the document leave the target field untouched, so callers
// can pre-fill defaults
func Unmarshal(data []byte, v any) error {
	m, err := Parse(data)
	if err != nil {
		return err
	}
	return Decode(m, v)
}

// Decode maps parsed data onto v using `toml` tags, falling back to field names
func Decode(data map[string]any, v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer || val.IsNil() {
		return fmt.Errorf("toml: target must be a non-nil pointer, got %T", v)
	}
	return decodeValue(data, val.Elem(), "")
}

func decodeValue(data any, val reflect.Value, path string) error {
	switch val.Kind() {
	case reflect.Pointer:
		if val.IsNil() {
			val.Set(reflect.New(val.Type().Elem()))
		}
		return decodeValue(data, val.Elem(), path)

	case reflect.Struct:
		m, ok := data.(map[string]any)
		if !ok {
			return mismatch(path, "table", data)
		}
		return decodeStruct(m, val, path)

	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("toml: %s: only string-keyed maps are supported", path)
		}
		m, ok := data.(map[string]any)
		if !ok {
			return mismatch(path, "table", data)
		}
		if val.IsNil() {
			val.Set(reflect.MakeMapWithSize(val.Type(), len(m)))
		}
		for k, item := range m {
			elem := reflect.New(val.Type().Elem()).Elem()
			if err := decodeValue(item, elem, join(path, k)); err != nil {
				return err
			}
			val.SetMapIndex(reflect.ValueOf(k).Convert(val.Type().Key()), elem)
		}

	case reflect.Slice:
		arr, ok := data.([]any)
		if !ok {
			return mismatch(path, "array", data)
		}
		s := reflect.MakeSlice(val.Type(), len(arr), len(arr))
		for i, item := range arr {
			if err := decodeValue(item, s.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		val.Set(s)

	case reflect.Interface:
		if data != nil {
			val.Set(reflect.ValueOf(data))
		}

	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return mismatch(path, "string", data)
		}
		val.SetString(s)

	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return mismatch(path, "boolean", data)
		}
		val.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := data.(int64)
		if !ok {
			return mismatch(path, "integer", data)
		}
		if val.OverflowInt(i) {
			return fmt.Errorf("toml: %s: %d overflows %s", path, i, val.Type())
		}
		val.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok := data.(int64)
		if !ok {
			return mismatch(path, "integer", data)
		}
		if i < 0 || val.OverflowUint(uint64(i)) {
			return fmt.Errorf("toml: %s: %d out of range for %s", path, i, val.Type())
		}
		val.SetUint(uint64(i))

	case reflect.Float32, reflect.Float64:
		var f float64
		switch n := data.(type) {
		case float64:
			f = n
		case int64:
			f = float64(n)
		default:
			return mismatch(path, "float", data)
		}
		if val.Kind() == reflect.Float32 && math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
			return fmt.Errorf("toml: %s: %g overflows float32", path, f)
		}
		val.SetFloat(f)

	default:
		return fmt.Errorf("toml: %s: unsupported target type %s", path, val.Type())
	}
	return nil
}

func decodeStruct(m map[string]any, val reflect.Value, path string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		key := field.Name
		if tag := field.Tag.Get("toml"); tag != "" {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				continue
			}
			if name != "" {
				key = name
			}
		}

		item, ok := m[key]
		if !ok {
			continue
		}
		if err := decodeValue(item, val.Field(i), join(path, key)); err != nil {
			return err
		}
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func mismatch(path, want string, got any) error {
	return fmt.Errorf("toml: %s: expected %s, got %T", path, want, got)
}
