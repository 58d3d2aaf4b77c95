package graphalgo

import "github.com/kkkqkx123/graphdb/internal/ids"

// DFSReachable returns every vertex reachable from start (including
// start), following original_source's dfs.rs depth-first traversal shape
// — an explicit stack rather than recursion so traversal depth isn't
// bounded by the Go call stack.
func DFSReachable(neighbors Neighbors, start ids.VertexId) ([]ids.VertexId, error) {
	visited := map[ids.VertexId]bool{start: true}
	stack := []ids.VertexId{start}
	var order []ids.VertexId

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, cur)

		ns, err := neighbors(cur)
		if err != nil {
			return nil, err
		}
		for _, n := range ns {
			if !visited[n.Vertex] {
				visited[n.Vertex] = true
				stack = append(stack, n.Vertex)
			}
		}
	}
	return order, nil
}

// AllSimplePaths enumerates every loop-free path from start to target with
// at most maxDepth hops (0, or any value above defaultMaxDepth, is replaced
// by defaultMaxDepth to bound the exponential search), via depth-first backtracking — the "AllPaths"
// operator of spec §4.6's Path family. rowLimit (0 = unbounded) stops the
// search once that many paths have been found.
func AllSimplePaths(neighbors Neighbors, start, target ids.VertexId, maxDepth int, rowLimit int64) ([][]ids.VertexId, error) {
	if maxDepth <= 0 || maxDepth > defaultMaxDepth {
		maxDepth = defaultMaxDepth
	}
	var paths [][]ids.VertexId
	visited := map[ids.VertexId]bool{start: true}
	path := []ids.VertexId{start}

	var walk func(cur ids.VertexId) error
	walk = func(cur ids.VertexId) error {
		if rowLimit > 0 && int64(len(paths)) >= rowLimit {
			return nil
		}
		if cur == target {
			paths = append(paths, append([]ids.VertexId{}, path...))
			return nil
		}
		if len(path)-1 >= maxDepth {
			return nil
		}
		ns, err := neighbors(cur)
		if err != nil {
			return err
		}
		for _, n := range ns {
			if visited[n.Vertex] {
				continue
			}
			visited[n.Vertex] = true
			path = append(path, n.Vertex)
			if err := walk(n.Vertex); err != nil {
				return err
			}
			path = path[:len(path)-1]
			visited[n.Vertex] = false
			if rowLimit > 0 && int64(len(paths)) >= rowLimit {
				return nil
			}
		}
		return nil
	}
	if err := walk(start); err != nil {
		return nil, err
	}
	return paths, nil
}

// defaultMaxDepth bounds AllSimplePaths' search when the caller leaves
// PathAttrs.MaxDepth unset or sets it higher than this, since an unbounded simple-path enumeration is
// exponential in graph size.
const defaultMaxDepth = 15
