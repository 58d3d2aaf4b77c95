package service

import (
	"fmt"

	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// Row is one output row of a Query result: the bound column names (shared
// across every row of one result set, spec §6 "{columns, rows, stats}")
// paired with this row's values already lowered to JSON-native Go types,
// so internal/httpapi can json.Marshal a Result directly.
type Row map[string]any

// Result is the outcome of a successful Query, matching spec §6's
// `{columns, rows, stats}` response shape exactly.
type Result struct {
	Columns []string
	Rows    []Row
	Stats   Stats
}

// Stats surfaces the counters spec §6 groups under a query result's
// "stats" field.
type Stats struct {
	RowsScanned    int64
	RowsReturned   int64
	ElapsedSeconds float64
}

// toJSON lowers a value.Value to the interface{} shape encoding/json knows
// how to marshal natively (bool/int64/float64/string/[]any/map[string]any),
// the conversion internal/value deliberately leaves to its callers (spec §3
// Value has no dependency on encoding/json). Vertex/Edge/Path payloads are
// flattened to plain maps since the wire contract (spec §6) is JSON, not a
// typed graph-object format like Bolt's.
func toJSON(v value.Value) any {
	switch v.Kind {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.Bool()
	case value.KindInt:
		return v.Int()
	case value.KindFloat:
		return v.Float()
	case value.KindString:
		return v.Str()
	case value.KindDate:
		d := v.Date()
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	case value.KindTime:
		t := v.Time()
		return fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour, t.Minute, t.Second, t.Micros)
	case value.KindDateTime:
		return v.DateTime().Format("2006-01-02T15:04:05.000000Z07:00")
	case value.KindList, value.KindSet:
		items := v.List()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toJSON(item)
		}
		return out
	case value.KindMap:
		m := v.Map()
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = toJSON(val)
		}
		return out
	case value.KindVertex:
		vertex, _ := v.GraphPayload().(*graph.Vertex)
		return vertexJSON(vertex)
	case value.KindEdge:
		edge, _ := v.GraphPayload().(*graph.Edge)
		return edgeJSON(edge)
	case value.KindPath:
		path, _ := v.GraphPayload().(*graph.Path)
		return pathJSON(path)
	default:
		return nil
	}
}

func vertexJSON(vertex *graph.Vertex) map[string]any {
	if vertex == nil {
		return nil
	}
	tags := make([]any, len(vertex.Tags))
	for i, ti := range vertex.Tags {
		tags[i] = map[string]any{
			"tag":        int64(ti.Tag),
			"properties": propsJSON(ti.Properties),
		}
	}
	return map[string]any{
		"id":         int64(vertex.ID),
		"tags":       tags,
		"properties": propsJSON(vertex.Properties),
	}
}

func edgeJSON(edge *graph.Edge) map[string]any {
	if edge == nil {
		return nil
	}
	return map[string]any{
		"src":        int64(edge.Src),
		"dst":        int64(edge.Dst),
		"type":       int64(edge.Type),
		"ranking":    edge.Ranking,
		"properties": propsJSON(edge.Properties),
	}
}

func pathJSON(path *graph.Path) map[string]any {
	if path == nil {
		return nil
	}
	steps := make([]any, len(path.Steps))
	for i, step := range path.Steps {
		steps[i] = map[string]any{
			"edge": edgeJSON(&step.Edge),
			"dst":  vertexJSON(step.Dst),
		}
	}
	return map[string]any{
		"src":   vertexJSON(path.Src),
		"steps": steps,
	}
}

func propsJSON(props map[string]value.Value) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = toJSON(v)
	}
	return out
}
