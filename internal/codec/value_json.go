package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kkkqkx123/graphdb/internal/value"
)

// jsonValue is the wire representation of a value.Value, following the
// teacher's storage serialization idiom (straga-Mimir_lite
// pkg/storage/badger_serialization.go: plain JSON marshal/unmarshal of the
// domain struct) generalized to a tagged payload so every scalar and
// collection Value variant round-trips; vertex, edge and path values are
// rejected here and encoded by their owning record instead.
type jsonValue struct {
	K string          `json:"k"`
	V json.RawMessage `json:"v,omitempty"`
}

// EncodeValueJSON marshals a value.Value to its JSON wire form.
func EncodeValueJSON(v value.Value) ([]byte, error) {
	jv, err := toJSONValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jv)
}

// DecodeValueJSON unmarshals a value.Value from its JSON wire form.
func DecodeValueJSON(data []byte) (value.Value, error) {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return value.Value{}, err
	}
	return fromJSONValue(jv)
}

func toJSONValue(v value.Value) (jsonValue, error) {
	enc := func(x any) (jsonValue, error) {
		raw, err := json.Marshal(x)
		if err != nil {
			return jsonValue{}, err
		}
		return jsonValue{K: v.Kind.String(), V: raw}, nil
	}
	switch v.Kind {
	case value.KindNull:
		return jsonValue{K: "NULL"}, nil
	case value.KindBool:
		return enc(v.Bool())
	case value.KindInt:
		return enc(v.Int())
	case value.KindFloat:
		return enc(v.Float())
	case value.KindString:
		return enc(v.Str())
	case value.KindDate:
		return enc(v.Date())
	case value.KindTime:
		return enc(v.Time())
	case value.KindDateTime:
		return enc(v.DateTime().Format(time.RFC3339Nano))
	case value.KindList, value.KindSet:
		items := v.List()
		wire := make([]jsonValue, len(items))
		for i, it := range items {
			jv, err := toJSONValue(it)
			if err != nil {
				return jsonValue{}, err
			}
			wire[i] = jv
		}
		return enc(wire)
	case value.KindMap:
		m := v.Map()
		wire := make(map[string]jsonValue, len(m))
		for k, vv := range m {
			jv, err := toJSONValue(vv)
			if err != nil {
				return jsonValue{}, err
			}
			wire[k] = jv
		}
		return enc(wire)
	default:
		return jsonValue{}, fmt.Errorf("codec: cannot JSON-encode value kind %s directly (vertex/edge/path are encoded by their owning record)", v.Kind)
	}
}

func fromJSONValue(jv jsonValue) (value.Value, error) {
	switch jv.K {
	case "NULL":
		return value.Null(), nil
	case "BOOL":
		var b bool
		if err := json.Unmarshal(jv.V, &b); err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case "INT":
		var i int64
		if err := json.Unmarshal(jv.V, &i); err != nil {
			return value.Value{}, err
		}
		return value.Int(i), nil
	case "FLOAT":
		var f float64
		if err := json.Unmarshal(jv.V, &f); err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	case "STRING":
		var s string
		if err := json.Unmarshal(jv.V, &s); err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	case "DATE":
		var d value.Date
		if err := json.Unmarshal(jv.V, &d); err != nil {
			return value.Value{}, err
		}
		return value.DateVal(d), nil
	case "TIME":
		var t value.TimeOfDay
		if err := json.Unmarshal(jv.V, &t); err != nil {
			return value.Value{}, err
		}
		return value.TimeVal(t), nil
	case "DATETIME":
		var s string
		if err := json.Unmarshal(jv.V, &s); err != nil {
			return value.Value{}, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return value.Value{}, err
		}
		return value.DateTimeVal(t), nil
	case "LIST", "SET":
		var wire []jsonValue
		if err := json.Unmarshal(jv.V, &wire); err != nil {
			return value.Value{}, err
		}
		items := make([]value.Value, len(wire))
		for i, w := range wire {
			vv, err := fromJSONValue(w)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = vv
		}
		if jv.K == "SET" {
			return value.Set(items), nil
		}
		return value.List(items), nil
	case "MAP":
		var wire map[string]jsonValue
		if err := json.Unmarshal(jv.V, &wire); err != nil {
			return value.Value{}, err
		}
		m := make(map[string]value.Value, len(wire))
		for k, w := range wire {
			vv, err := fromJSONValue(w)
			if err != nil {
				return value.Value{}, err
			}
			m[k] = vv
		}
		return value.Map(m), nil
	default:
		return value.Value{}, fmt.Errorf("codec: unknown value kind %q", jv.K)
	}
}

// PropertyMapJSON / wire helpers for vertex/edge property maps.
func EncodePropertyMap(m map[string]value.Value) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		raw, err := EncodeValueJSON(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return out, nil
}

func DecodePropertyMap(m map[string]json.RawMessage) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(m))
	for k, raw := range m {
		v, err := DecodeValueJSON(raw)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
