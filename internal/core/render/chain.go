package render

import (
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/portal"
)

// BuildRecursionChain returns the virtual camera poses used to render the
// view seen through q from cam, deepest first. Each level maps the previous
// camera through the pair once more. The chain stops early when the previous
// virtual camera cannot see q's screen through p's, or when it sits behind q.
func BuildRecursionChain(cam *Camera, p, q *portal.Portal, limit int, overlap OverlapFunc) []geom.Pose {
	if limit <= 0 {
		return nil
	}
	if overlap == nil {
		overlap = BoundsOverlap
	}

	m := geom.PortalMatrix(q.Pose(), p.Pose())
	current := cam.Pose.Matrix()
	chain := make([]geom.Pose, 0, limit)

	for i := 0; i < limit; i++ {
		if i > 0 {
			prev := cam.WithPose(chain[i-1])
			near := p.Screen().Corners(p.Pose())
			far := q.Screen().Corners(q.Pose())
			if !overlap(near[:], far[:], prev) {
				break
			}
			if geom.SideOfPortal(q.Pose(), prev.Pose.Position) <= 0 {
				break
			}
		}
		current = m.Mul4(current)
		chain = append(chain, geom.PoseFromMatrix(current))
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
