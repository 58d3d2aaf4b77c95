package codec

import (
	"encoding/json"
	"fmt"

	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// wireTagInstance / wireVertex / wireEdge are the on-disk JSON shapes,
// following the teacher's serializeNode/serializeEdge idiom
// (straga-Mimir_lite pkg/storage/badger_serialization.go) but shaped for
// the multi-tag vertex model of spec §3.
type wireTagInstance struct {
	Tag        int32                      `json:"tag"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type wireVertex struct {
	ID         int64                      `json:"id"`
	Tags       []wireTagInstance          `json:"tags"`
	Properties map[string]json.RawMessage `json:"properties,omitempty"`
}

type wireEdge struct {
	Src        int64                      `json:"src"`
	Dst        int64                      `json:"dst"`
	Type       int32                      `json:"type"`
	Ranking    int64                      `json:"ranking"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// EncodeVertex serializes a vertex record for storage.
func EncodeVertex(v *graph.Vertex) ([]byte, error) {
	wv := wireVertex{ID: int64(v.ID)}
	for _, ti := range v.Tags {
		props, err := EncodePropertyMap(ti.Properties)
		if err != nil {
			return nil, fmt.Errorf("codec: encoding tag %d properties: %w", ti.Tag, err)
		}
		wv.Tags = append(wv.Tags, wireTagInstance{Tag: int32(ti.Tag), Properties: props})
	}
	if len(v.Properties) > 0 {
		props, err := EncodePropertyMap(v.Properties)
		if err != nil {
			return nil, fmt.Errorf("codec: encoding vertex properties: %w", err)
		}
		wv.Properties = props
	}
	return json.Marshal(wv)
}

// DecodeVertex deserializes a vertex record.
func DecodeVertex(data []byte) (*graph.Vertex, error) {
	var wv wireVertex
	if err := json.Unmarshal(data, &wv); err != nil {
		return nil, fmt.Errorf("codec: decoding vertex: %w", err)
	}
	v := &graph.Vertex{ID: ids.VertexId(wv.ID)}
	for _, wt := range wv.Tags {
		props, err := DecodePropertyMap(wt.Properties)
		if err != nil {
			return nil, fmt.Errorf("codec: decoding tag %d properties: %w", wt.Tag, err)
		}
		v.Tags = append(v.Tags, graph.TagInstance{Tag: ids.TagId(wt.Tag), Properties: props})
	}
	if len(wv.Properties) > 0 {
		props, err := DecodePropertyMap(wv.Properties)
		if err != nil {
			return nil, fmt.Errorf("codec: decoding vertex properties: %w", err)
		}
		v.Properties = props
	}
	return v, nil
}

// EncodeEdge serializes an edge record for storage.
func EncodeEdge(e *graph.Edge) ([]byte, error) {
	props, err := EncodePropertyMap(e.Properties)
	if err != nil {
		return nil, fmt.Errorf("codec: encoding edge properties: %w", err)
	}
	we := wireEdge{
		Src:        int64(e.Src),
		Dst:        int64(e.Dst),
		Type:       int32(e.Type),
		Ranking:    e.Ranking,
		Properties: props,
	}
	return json.Marshal(we)
}

// DecodeEdge deserializes an edge record.
func DecodeEdge(data []byte) (*graph.Edge, error) {
	var we wireEdge
	if err := json.Unmarshal(data, &we); err != nil {
		return nil, fmt.Errorf("codec: decoding edge: %w", err)
	}
	props, err := DecodePropertyMap(we.Properties)
	if err != nil {
		return nil, fmt.Errorf("codec: decoding edge properties: %w", err)
	}
	return &graph.Edge{
		Src:        ids.VertexId(we.Src),
		Dst:        ids.VertexId(we.Dst),
		Type:       ids.EdgeType(we.Type),
		Ranking:    we.Ranking,
		Properties: props,
	}, nil
}

// EncodeIndexColumns order-preserving-encodes the values of the indexed
// columns, in column order, concatenated — the `col-bytes` component of
// spec §4.1's TI/EI keys.
func EncodeIndexColumns(vals []value.Value) []byte {
	var buf []byte
	for _, v := range vals {
		switch v.Kind {
		case value.KindInt:
			buf = append(buf, EncodeOrderedInt64(v.Int())...)
		case value.KindFloat:
			buf = append(buf, EncodeOrderedFloat64(v.Float())...)
		case value.KindString:
			buf = append(buf, EncodeOrderedString(v.Str())...)
		case value.KindBool:
			buf = append(buf, EncodeOrderedBool(v.Bool())...)
		case value.KindDate:
			buf = append(buf, EncodeOrderedInt64(dateToDaysForIndex(v))...)
		default:
			// Unsupported index column types fall back to their
			// nul-terminated JSON encoding so column lists remain
			// comparable rather than panicking.
			raw, _ := EncodeValueJSON(v)
			buf = append(buf, EncodeOrderedString(string(raw))...)
		}
	}
	return buf
}

func dateToDaysForIndex(v value.Value) int64 {
	d := v.Date()
	return int64(d.Year)*10000 + int64(d.Month)*100 + int64(d.Day)
}
