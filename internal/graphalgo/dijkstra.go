package graphalgo

import (
	"container/heap"

	"github.com/kkkqkx123/graphdb/internal/ids"
)

// nodeDistance is one entry of the priority queue, mirroring
// original_source's dijkstra.rs NodeDistance/BinaryHeap pairing (ordered so
// the heap is a min-heap on Distance, the opposite of Rust's std
// BinaryHeap which is a max-heap and so reverses the Ord comparison).
type nodeDistance struct {
	node     ids.VertexId
	distance float64
}

type distanceHeap []nodeDistance

func (h distanceHeap) Len() int            { return len(h) }
func (h distanceHeap) Less(i, j int) bool  { return h[i].distance < h[j].distance }
func (h distanceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distanceHeap) Push(x interface{}) { *h = append(*h, x.(nodeDistance)) }
func (h *distanceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// DijkstraShortestPath finds the minimum-weight path from start to target,
// following original_source's dijkstra.rs Dijkstra::shortest_path: a
// binary-heap relaxation loop tracking predecessors for path
// reconstruction. Returns (nil, 0, false, nil) when target is unreachable.
func DijkstraShortestPath(neighbors Neighbors, start, target ids.VertexId) ([]ids.VertexId, float64, bool, error) {
	distances := map[ids.VertexId]float64{start: 0}
	predecessors := map[ids.VertexId]ids.VertexId{}
	visited := map[ids.VertexId]bool{}

	pq := &distanceHeap{{node: start, distance: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(nodeDistance)
		if cur.node == target {
			path := []ids.VertexId{target}
			node := target
			for {
				pred, ok := predecessors[node]
				if !ok {
					break
				}
				path = append(path, pred)
				node = pred
			}
			reverse(path)
			return path, cur.distance, true, nil
		}
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		ns, err := neighbors(cur.node)
		if err != nil {
			return nil, 0, false, err
		}
		for _, n := range ns {
			newDist := cur.distance + n.Weight
			if best, ok := distances[n.Vertex]; !ok || newDist < best {
				distances[n.Vertex] = newDist
				predecessors[n.Vertex] = cur.node
				heap.Push(pq, nodeDistance{node: n.Vertex, distance: newDist})
			}
		}
	}
	return nil, 0, false, nil
}

// DijkstraDistances computes, per dijkstra.rs Dijkstra::shortest_distances,
// the minimum-weight distance from start to every reachable vertex.
func DijkstraDistances(neighbors Neighbors, start ids.VertexId) (map[ids.VertexId]float64, error) {
	distances := map[ids.VertexId]float64{start: 0}
	visited := map[ids.VertexId]bool{}

	pq := &distanceHeap{{node: start, distance: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(nodeDistance)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		ns, err := neighbors(cur.node)
		if err != nil {
			return nil, err
		}
		for _, n := range ns {
			newDist := cur.distance + n.Weight
			if best, ok := distances[n.Vertex]; !ok || newDist < best {
				distances[n.Vertex] = newDist
				heap.Push(pq, nodeDistance{node: n.Vertex, distance: newDist})
			}
		}
	}
	return distances, nil
}

func reverse(path []ids.VertexId) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}
