package graphalgo

import "github.com/kkkqkx123/graphdb/internal/ids"

// StronglyConnectedComponents finds every strongly connected component of
// the subgraph reachable from roots, via Kosaraju's two-pass algorithm —
// grounded on original_source's strongly_connected_components.rs
// StronglyConnectedComponents::find: a first DFS pass recording finish
// order, then a second DFS pass over the reverse graph in reverse finish
// order, each run collecting one component. reverseNeighbors must walk
// in-edges the same way neighbors walks out-edges.
func StronglyConnectedComponents(neighbors, reverseNeighbors Neighbors, roots []ids.VertexId) ([][]ids.VertexId, error) {
	visited := map[ids.VertexId]bool{}
	var finishStack []ids.VertexId

	var finishDFS func(v ids.VertexId) error
	finishDFS = func(v ids.VertexId) error {
		visited[v] = true
		ns, err := neighbors(v)
		if err != nil {
			return err
		}
		for _, n := range ns {
			if !visited[n.Vertex] {
				if err := finishDFS(n.Vertex); err != nil {
					return err
				}
			}
		}
		finishStack = append(finishStack, v)
		return nil
	}
	for _, r := range roots {
		if !visited[r] {
			if err := finishDFS(r); err != nil {
				return nil, err
			}
		}
	}

	visited = map[ids.VertexId]bool{}
	var collectDFS func(v ids.VertexId, component *[]ids.VertexId) error
	collectDFS = func(v ids.VertexId, component *[]ids.VertexId) error {
		visited[v] = true
		*component = append(*component, v)
		ns, err := reverseNeighbors(v)
		if err != nil {
			return err
		}
		for _, n := range ns {
			if !visited[n.Vertex] {
				if err := collectDFS(n.Vertex, component); err != nil {
					return err
				}
			}
		}
		return nil
	}

	var sccs [][]ids.VertexId
	for i := len(finishStack) - 1; i >= 0; i-- {
		v := finishStack[i]
		if !visited[v] {
			var component []ids.VertexId
			if err := collectDFS(v, &component); err != nil {
				return nil, err
			}
			sccs = append(sccs, component)
		}
	}
	return sccs, nil
}
