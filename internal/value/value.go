// Package value implements the property-graph Value type: a tagged sum
// covering booleans, integers, floats, strings, date/time variants, lists,
// sets, maps, vertices, edges and paths (spec §3 "Value"). Values carry no
// external lifetime; they are always copied by value.
//
// The source language expresses Value as an enum with payload per variant.
// Go has no sum types, so Value is a tagged-variant struct: a Kind
// discriminant plus the union of possible payload fields, with dispatch
// helpers (Equal, Compare) switching on Kind. Only one payload field is
// meaningful for a given Kind; the constructors show which.
package value

import (
	"fmt"
	"sort"
	"time"
)

// Kind discriminates which payload field of a Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindDate
	KindTime
	KindDateTime
	KindList
	KindSet
	KindMap
	KindVertex
	KindEdge
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindString:
		return "STRING"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	case KindList:
		return "LIST"
	case KindSet:
		return "SET"
	case KindMap:
		return "MAP"
	case KindVertex:
		return "VERTEX"
	case KindEdge:
		return "EDGE"
	case KindPath:
		return "PATH"
	default:
		return "UNKNOWN"
	}
}

// Date is a calendar date with day precision (no time-of-day).
type Date struct {
	Year  int32
	Month uint8
	Day   uint8
}

// TimeOfDay is a microsecond-precision wall-clock time with no date.
type TimeOfDay struct {
	Hour   uint8
	Minute uint8
	Second uint8
	Micros uint32
}

// Value is the tagged sum type described in spec §3. Equality and hashing
// are structural; ordering is partial — Compare only returns a meaningful
// result when both operands share a comparable Kind.
type Value struct {
	Kind Kind

	boolVal   bool
	intVal    int64
	floatVal  float64
	strVal    string
	dateVal   Date
	timeVal   TimeOfDay
	dtVal     time.Time // DateTime, truncated to microsecond precision
	listVal   []Value   // List and Path steps reuse this slice
	mapVal    map[string]Value

	// Vertex/Edge/Path payloads are kept as opaque references (any) to
	// avoid an import cycle with package graph; graph.Vertex/Edge/Path
	// satisfy these by construction (see graph.AsValue helpers).
	graphVal any
}

func Null() Value                 { return Value{Kind: KindNull} }
func Bool(b bool) Value           { return Value{Kind: KindBool, boolVal: b} }
func Int(i int64) Value           { return Value{Kind: KindInt, intVal: i} }
func Float(f float64) Value       { return Value{Kind: KindFloat, floatVal: f} }
func String(s string) Value       { return Value{Kind: KindString, strVal: s} }
func DateVal(d Date) Value        { return Value{Kind: KindDate, dateVal: d} }
func TimeVal(t TimeOfDay) Value   { return Value{Kind: KindTime, timeVal: t} }
func DateTimeVal(t time.Time) Value {
	return Value{Kind: KindDateTime, dtVal: t.Truncate(time.Microsecond)}
}
func List(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{Kind: KindList, listVal: cp}
}
func Set(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{Kind: KindSet, listVal: cp}
}
func Map(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{Kind: KindMap, mapVal: cp}
}

// Graph wraps an opaque vertex/edge/path payload under the given Kind.
// graph.Vertex/Edge/Path construct Values this way to avoid a storage<->value
// import cycle.
func Graph(k Kind, payload any) Value {
	return Value{Kind: k, graphVal: payload}
}

func (v Value) IsNull() bool { return v.Kind == KindNull }
func (v Value) Bool() bool   { return v.boolVal }
func (v Value) Int() int64   { return v.intVal }
func (v Value) Float() float64 { return v.floatVal }
func (v Value) Str() string  { return v.strVal }
func (v Value) Date() Date   { return v.dateVal }
func (v Value) Time() TimeOfDay { return v.timeVal }
func (v Value) DateTime() time.Time { return v.dtVal }
func (v Value) List() []Value { return v.listVal }
func (v Value) Map() map[string]Value { return v.mapVal }
func (v Value) GraphPayload() any { return v.graphVal }

// Equal implements structural equality across all variants.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		// NebulaGraph-style numeric coercion: INT and FLOAT compare by value.
		if (v.Kind == KindInt && o.Kind == KindFloat) {
			return float64(v.intVal) == o.floatVal
		}
		if v.Kind == KindFloat && o.Kind == KindInt {
			return v.floatVal == float64(o.intVal)
		}
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == o.boolVal
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat:
		return v.floatVal == o.floatVal
	case KindString:
		return v.strVal == o.strVal
	case KindDate:
		return v.dateVal == o.dateVal
	case KindTime:
		return v.timeVal == o.timeVal
	case KindDateTime:
		return v.dtVal.Equal(o.dtVal)
	case KindList, KindSet:
		if len(v.listVal) != len(o.listVal) {
			return false
		}
		for i := range v.listVal {
			if !v.listVal[i].Equal(o.listVal[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.mapVal) != len(o.mapVal) {
			return false
		}
		for k, vv := range v.mapVal {
			ov, ok := o.mapVal[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return fmt.Sprintf("%v", v.graphVal) == fmt.Sprintf("%v", o.graphVal)
	}
}

// Compare returns -1/0/1 and true when v and o are both of a comparable
// kind (bool, int, float, string, date, time, datetime, and int/float
// cross-comparison); otherwise it returns (0, false) — ordering over
// lists/sets/maps/vertices/edges/paths is undefined per spec §3.
func (v Value) Compare(o Value) (int, bool) {
	switch {
	case v.Kind == KindInt && o.Kind == KindInt:
		return cmpInt64(v.intVal, o.intVal), true
	case v.Kind == KindFloat && o.Kind == KindFloat:
		return cmpFloat64(v.floatVal, o.floatVal), true
	case v.Kind == KindInt && o.Kind == KindFloat:
		return cmpFloat64(float64(v.intVal), o.floatVal), true
	case v.Kind == KindFloat && o.Kind == KindInt:
		return cmpFloat64(v.floatVal, float64(o.intVal)), true
	case v.Kind == KindString && o.Kind == KindString:
		return cmpString(v.strVal, o.strVal), true
	case v.Kind == KindBool && o.Kind == KindBool:
		return cmpBool(v.boolVal, o.boolVal), true
	case v.Kind == KindDate && o.Kind == KindDate:
		return cmpDate(v.dateVal, o.dateVal), true
	case v.Kind == KindTime && o.Kind == KindTime:
		return cmpTime(v.timeVal, o.timeVal), true
	case v.Kind == KindDateTime && o.Kind == KindDateTime:
		if v.dtVal.Before(o.dtVal) {
			return -1, true
		}
		if v.dtVal.After(o.dtVal) {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func cmpDate(a, b Date) int {
	if a.Year != b.Year {
		return cmpInt64(int64(a.Year), int64(b.Year))
	}
	if a.Month != b.Month {
		return cmpInt64(int64(a.Month), int64(b.Month))
	}
	return cmpInt64(int64(a.Day), int64(b.Day))
}

func cmpTime(a, b TimeOfDay) int {
	av := int64(a.Hour)*3600e6 + int64(a.Minute)*60e6 + int64(a.Second)*1e6 + int64(a.Micros)
	bv := int64(b.Hour)*3600e6 + int64(b.Minute)*60e6 + int64(b.Second)*1e6 + int64(b.Micros)
	return cmpInt64(av, bv)
}

// SortedMapKeys returns the keys of a map Value in sorted order, useful for
// deterministic codec/plan-fingerprint output.
func SortedMapKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
