package config

import (
	"github.com/spf13/cast"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// Typed accessors fall back to a zero value or the given default only when
// the stored value has the wrong kind or nothing is stored. Synchronization
// failures and paths that descend through a scalar are returned as errors.

func (s *Section) kindAt(path string, kinds ...value.Kind) (bool, error) {
	v, ok, err := s.Find(path)
	if err != nil || !ok {
		return false, err
	}
	for _, k := range kinds {
		if v.Kind() == k {
			return true, nil
		}
	}
	return false, nil
}

// fallback returns def after noting that path holds a value of another kind.
func fallback[T any](s *Section, path string, v value.Value, want string, def T) T {
	if !v.IsNull() {
		s.cfg.log.Debug("configuration value has another type, using default",
			"path", s.cfg.abs(s.id, path), "kind", v.Kind(), "want", want)
	}
	return def
}

// IsBool reports whether path holds a boolean.
func (s *Section) IsBool(path string) (bool, error) { return s.kindAt(path, value.KindBool) }

// GetBool returns the value at path converted to a boolean: numbers are true
// when non-zero and strings parse as booleans. Anything else is false.
func (s *Section) GetBool(path string) (bool, error) {
	v, _, err := s.Find(path)
	if err != nil {
		return false, err
	}
	return cast.ToBool(v.Interface()), nil
}

// GetBoolOr returns the boolean at path, or def if path holds no boolean.
func (s *Section) GetBoolOr(path string, def bool) (bool, error) {
	v, _, err := s.Find(path)
	if err != nil {
		return def, err
	}
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	return fallback(s, path, v, "bool", def), nil
}

// IsInt reports whether path holds an integral number.
func (s *Section) IsInt(path string) (bool, error) { return s.kindAt(path, value.KindInt) }

// GetInt returns the value at path converted to an int. Numeric strings are
// parsed; anything else is 0.
func (s *Section) GetInt(path string) (int, error) {
	v, _, err := s.Find(path)
	return value.ToInt(v), err
}

// GetIntOr returns the number at path as an int, or def if path holds no
// number.
func (s *Section) GetIntOr(path string, def int) (int, error) {
	v, ok, err := s.number(path)
	if err != nil || !ok {
		return fallback(s, path, v, "number", def), err
	}
	return value.ToInt(v), nil
}

// IsInt64 reports whether path holds an integral number.
func (s *Section) IsInt64(path string) (bool, error) { return s.IsInt(path) }

func (s *Section) GetInt64(path string) (int64, error) {
	v, _, err := s.Find(path)
	return value.ToInt64(v), err
}

func (s *Section) GetInt64Or(path string, def int64) (int64, error) {
	v, ok, err := s.number(path)
	if err != nil || !ok {
		return fallback(s, path, v, "number", def), err
	}
	return value.ToInt64(v), nil
}

// IsFloat reports whether path holds a floating point number.
func (s *Section) IsFloat(path string) (bool, error) { return s.kindAt(path, value.KindFloat) }

func (s *Section) GetFloat(path string) (float64, error) {
	v, _, err := s.Find(path)
	return value.ToFloat64(v), err
}

func (s *Section) GetFloatOr(path string, def float64) (float64, error) {
	v, ok, err := s.number(path)
	if err != nil || !ok {
		return fallback(s, path, v, "number", def), err
	}
	return value.ToFloat64(v), nil
}

// number looks up path and reports whether it holds a number. On error the
// returned value is null.
func (s *Section) number(path string) (value.Value, bool, error) {
	v, _, err := s.Find(path)
	if err != nil {
		return value.Null(), false, err
	}
	return v, v.IsNumber(), nil
}

// IsChar reports whether path holds a character.
func (s *Section) IsChar(path string) (bool, error) { return s.kindAt(path, value.KindChar) }

// GetChar returns the character at path, or 0.
func (s *Section) GetChar(path string) (rune, error) { return s.GetCharOr(path, 0) }

func (s *Section) GetCharOr(path string, def rune) (rune, error) {
	v, _, err := s.Find(path)
	if err != nil {
		return def, err
	}
	if r, ok := v.AsChar(); ok {
		return r, nil
	}
	return fallback(s, path, v, "char", def), nil
}

// IsString reports whether path holds a string.
func (s *Section) IsString(path string) (bool, error) { return s.kindAt(path, value.KindString) }

// GetString returns the value at path rendered as a string. Absent values
// render as the empty string.
func (s *Section) GetString(path string) (string, error) {
	v, _, err := s.Find(path)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// GetStringOr returns the string at path, or def if path holds no string.
func (s *Section) GetStringOr(path string, def string) (string, error) {
	v, _, err := s.Find(path)
	if err != nil {
		return def, err
	}
	if str, ok := v.AsString(); ok {
		return str, nil
	}
	return fallback(s, path, v, "string", def), nil
}

// IsList reports whether path holds a list.
func (s *Section) IsList(path string) (bool, error) { return s.kindAt(path, value.KindList) }

// GetList returns the list at path, or nil.
func (s *Section) GetList(path string) ([]value.Value, error) { return s.GetListOr(path, nil) }

func (s *Section) GetListOr(path string, def []value.Value) ([]value.Value, error) {
	v, _, err := s.Find(path)
	if err != nil {
		return def, err
	}
	if items, ok := v.AsList(); ok {
		return items, nil
	}
	return fallback(s, path, v, "list", def), nil
}

// listOf projects the list at path through conv, dropping the items conv
// rejects. It returns an empty, non-nil slice when path holds no list.
func listOf[T any](s *Section, path string, conv func(value.Value) (T, bool)) ([]T, error) {
	items, err := s.GetList(path)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if x, ok := conv(item); ok {
			out = append(out, x)
		}
	}
	return out, nil
}

// GetStringList returns every item of the list at path rendered as a string.
func (s *Section) GetStringList(path string) ([]string, error) {
	return listOf(s, path, func(v value.Value) (string, bool) { return v.String(), true })
}

// GetIntList returns the numeric items of the list at path as ints.
func (s *Section) GetIntList(path string) ([]int, error) {
	return listOf(s, path, func(v value.Value) (int, bool) { return value.ToInt(v), v.IsNumber() })
}

// GetInt64List returns the numeric items of the list at path as int64s.
func (s *Section) GetInt64List(path string) ([]int64, error) {
	return listOf(s, path, func(v value.Value) (int64, bool) { return value.ToInt64(v), v.IsNumber() })
}

// GetFloatList returns the numeric items of the list at path as float64s.
func (s *Section) GetFloatList(path string) ([]float64, error) {
	return listOf(s, path, func(v value.Value) (float64, bool) { return value.ToFloat64(v), v.IsNumber() })
}

// GetBoolList returns the boolean items of the list at path.
func (s *Section) GetBoolList(path string) ([]bool, error) {
	return listOf(s, path, value.Value.AsBool)
}

// GetCharList returns the character items of the list at path.
func (s *Section) GetCharList(path string) ([]rune, error) {
	return listOf(s, path, value.Value.AsChar)
}
