package geom

import "github.com/go-gl/mathgl/mgl64"

// Frustum holds the six clip planes of a view volume with inward normals, in
// the order left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum pulls the planes out of a view-projection matrix using the
// Gribb/Hartmann row combinations.
func ExtractFrustum(m mgl64.Mat4) Frustum {
	r0, r1, r2, r3 := m.Rows()
	raw := [6]mgl64.Vec4{
		r3.Add(r0),
		r3.Sub(r0),
		r3.Add(r1),
		r3.Sub(r1),
		r3.Add(r2),
		r3.Sub(r2),
	}
	var f Frustum
	for i, v := range raw {
		n := v.Vec3()
		l := n.Len()
		if l == 0 {
			f.Planes[i] = Plane{Normal: n, D: v.W()}
			continue
		}
		f.Planes[i] = Plane{Normal: n.Mul(1 / l), D: v.W() / l}
	}
	return f
}

// IntersectsAABB reports whether any part of b is inside the frustum. For each
// plane it tests the box corner furthest along the plane normal.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, pl := range f.Planes {
		var p mgl64.Vec3
		for i := 0; i < 3; i++ {
			if pl.Normal[i] >= 0 {
				p[i] = b.Max[i]
			} else {
				p[i] = b.Min[i]
			}
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is on the inner side of every plane.
func (f Frustum) ContainsPoint(p mgl64.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
