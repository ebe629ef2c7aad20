package ai

import "github.com/kasuganosora/tilecombat/game/geom"

// Passability answers whether a single step is allowed.
type Passability interface {
	CanPass(from, to geom.Tile) bool
}

// PassFunc adapts a function to Passability.
type PassFunc func(from, to geom.Tile) bool

func (f PassFunc) CanPass(from, to geom.Tile) bool { return f(from, to) }

// DefaultMaxNodes bounds the number of tiles AStar expands.
const DefaultMaxNodes = 4096

// AStar finds the shortest 4-connected path from `from` to `to`.
// Returns the path excluding the start and including the end, an empty
// slice when from == to, and nil if no path exists within DefaultMaxNodes
// expansions.
func AStar(pass Passability, from, to geom.Tile) []geom.Tile {
	if pass == nil {
		return nil
	}
	if from == to {
		return []geom.Tile{}
	}

	type node struct {
		pt     geom.Tile
		g, f   int
		parent *node
	}

	// Hand-rolled binary heap keyed on f.
	var pq []*node
	push := func(n *node) {
		pq = append(pq, n)
		i := len(pq) - 1
		for i > 0 {
			parent := (i - 1) / 2
			if pq[parent].f <= pq[i].f {
				break
			}
			pq[parent], pq[i] = pq[i], pq[parent]
			i = parent
		}
	}
	pop := func() *node {
		n := pq[0]
		last := len(pq) - 1
		pq[0] = pq[last]
		pq = pq[:last]
		i := 0
		for {
			left, right := 2*i+1, 2*i+2
			smallest := i
			if left < len(pq) && pq[left].f < pq[smallest].f {
				smallest = left
			}
			if right < len(pq) && pq[right].f < pq[smallest].f {
				smallest = right
			}
			if smallest == i {
				break
			}
			pq[i], pq[smallest] = pq[smallest], pq[i]
			i = smallest
		}
		return n
	}

	closed := make(map[geom.Tile]bool)
	gScore := map[geom.Tile]int{from: 0}
	push(&node{pt: from, f: from.Manhattan(to)})

	dirs := []geom.Tile{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 0}, {X: -1, Y: 0}}
	expanded := 0

	for len(pq) > 0 && expanded < DefaultMaxNodes {
		cur := pop()
		if closed[cur.pt] {
			continue
		}
		closed[cur.pt] = true
		expanded++

		if cur.pt == to {
			var path []geom.Tile
			for n := cur; n.parent != nil; n = n.parent {
				path = append(path, n.pt)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}

		for _, d := range dirs {
			np := geom.T(cur.pt.X+d.X, cur.pt.Y+d.Y)
			if closed[np] || !pass.CanPass(cur.pt, np) {
				continue
			}
			ng := cur.g + 1
			if prev, ok := gScore[np]; !ok || ng < prev {
				gScore[np] = ng
				push(&node{pt: np, g: ng, f: ng + np.Manhattan(to), parent: cur})
			}
		}
	}
	return nil
}
