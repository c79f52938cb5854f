package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
)

// MaxConditions is the maximum number of conditions in one filter.
const MaxConditions = 32

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_:-]+$`)

// Kind is the scalar type of a condition value.
type Kind int

// Condition value kinds.
const (
	KindString Kind = iota
	KindNumber
	KindBool
)

// Expression is a conjunction of payload equality conditions.
// All conditions must hold for a point to match.
type Expression struct {
	conditions []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(conditions ...Condition) (Expression, error) {
	if len(conditions) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{conditions: conditions}, nil
}

// FromMap builds an expression from a field → scalar value mapping.
// Conditions are ordered by key. Nested objects, arrays and null are rejected.
func FromMap(m map[string]any) (Expression, error) {
	if len(m) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]Condition, 0, len(keys))
	for _, k := range keys {
		c, err := newCondition(k, m[k])
		if err != nil {
			return Expression{}, err
		}
		conds = append(conds, c)
	}
	return Expression{conditions: conds}, nil
}

// Conditions returns the equality conditions.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Condition requires a payload field to equal a scalar value.
type Condition struct {
	key  string
	kind Kind
	str  string
	num  float64
	b    bool
}

// NewString creates a string equality condition.
func NewString(key, value string) (Condition, error) {
	if err := validateKey(key); err != nil {
		return Condition{}, err
	}
	return Condition{key: key, kind: KindString, str: value}, nil
}

// NewNumber creates a numeric equality condition.
func NewNumber(key string, value float64) (Condition, error) {
	if err := validateKey(key); err != nil {
		return Condition{}, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Condition{}, fmt.Errorf("filter value for %q must be finite", key)
	}
	return Condition{key: key, kind: KindNumber, num: value}, nil
}

// NewBool creates a boolean equality condition.
func NewBool(key string, value bool) (Condition, error) {
	if err := validateKey(key); err != nil {
		return Condition{}, err
	}
	return Condition{key: key, kind: KindBool, b: value}, nil
}

// Key returns the payload field name.
func (c Condition) Key() string { return c.key }

// Kind returns the value kind.
func (c Condition) Kind() Kind { return c.kind }

// StringValue returns the string value.
func (c Condition) StringValue() string { return c.str }

// NumberValue returns the numeric value.
func (c Condition) NumberValue() float64 { return c.num }

// BoolValue returns the boolean value.
func (c Condition) BoolValue() bool { return c.b }

// Matches reports whether a stored payload value satisfies the condition.
// Payload values are compared in their textual form, as the store keeps them.
func (c Condition) Matches(stored string) bool {
	switch c.kind {
	case KindString:
		return stored == c.str
	case KindNumber:
		f, err := strconv.ParseFloat(stored, 64)
		return err == nil && f == c.num
	case KindBool:
		return stored == strconv.FormatBool(c.b)
	}
	return false
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("filter key is required")
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid filter key %q", key)
	}
	return nil
}

func newCondition(key string, v any) (Condition, error) {
	switch val := v.(type) {
	case string:
		return NewString(key, val)
	case bool:
		return NewBool(key, val)
	case float64:
		return NewNumber(key, val)
	case float32:
		return NewNumber(key, float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Condition{}, fmt.Errorf("filter value for %q: %w", key, err)
		}
		return NewNumber(key, f)
	case nil:
		return Condition{}, fmt.Errorf("filter value for %q must not be null", key)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only integer kinds are scalar here
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewNumber(key, float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewNumber(key, float64(rv.Uint()))
	}
	return Condition{}, fmt.Errorf("filter value for %q must be a string, number or bool, got %T", key, v)
}
