package ctm

import "math"

const pi32 = float32(math.Pi)

func sqrt32(x float32) float32 { return float32(math.Sqrt(float64(x))) }

// smoothNormals averages the unit face normals around every vertex.
// MG2 predicts normals from these, so encoder and decoder must feed it the
// same (restored) vertices and the same triangle order.
func smoothNormals(vertices []float32, indices []uint32) []float32 {
	out := make([]float32, len(vertices))
	for t := 0; t < len(indices)/3; t++ {
		a, b, c := indices[t*3]*3, indices[t*3+1]*3, indices[t*3+2]*3
		var v1, v2 [3]float32
		for j := 0; j < 3; j++ {
			v1[j] = vertices[b+uint32(j)] - vertices[a+uint32(j)]
			v2[j] = vertices[c+uint32(j)] - vertices[a+uint32(j)]
		}
		n := [3]float32{
			float32(v1[1]*v2[2]) - float32(v1[2]*v2[1]),
			float32(v1[2]*v2[0]) - float32(v1[0]*v2[2]),
			float32(v1[0]*v2[1]) - float32(v1[1]*v2[0]),
		}
		scaleUnit(&n)
		for _, k := range [3]uint32{a, b, c} {
			out[k] += n[0]
			out[k+1] += n[1]
			out[k+2] += n[2]
		}
	}
	for i := 0; i < len(out); i += 3 {
		n := [3]float32{out[i], out[i+1], out[i+2]}
		scaleUnit(&n)
		copy(out[i:], n[:])
	}
	return out
}

func scaleUnit(n *[3]float32) {
	l := sqrt32(float32(n[0]*n[0]) + float32(n[1]*n[1]) + float32(n[2]*n[2]))
	if l > 1e-10 {
		l = 1 / l
	} else {
		l = 1
	}
	for j := range n {
		n[j] *= l
	}
}

// normalBasis builds an orthonormal basis whose Z axis is the unit normal n.
// X is (0,0,1)×n + (1,0,0)×n, which never vanishes and varies continuously
// with n. The exact arithmetic is part of the MG2 format.
func normalBasis(n [3]float32) (x, y, z [3]float32) {
	z = n
	if dot3(n, n) < 1e-20 {
		// Vertices touched only by degenerate triangles have no smooth
		// normal; fall back to +Z so the basis stays orthonormal.
		z = [3]float32{0, 0, 1}
		n = z
	}
	x = [3]float32{-n[1], n[0] - n[2], n[1]}
	l := float32(math.Sqrt(2*float64(x[0])*float64(x[0]) + float64(x[1])*float64(x[1])))
	if l > 1e-20 {
		l = 1 / l
		x[0] *= l
		x[1] *= l
		x[2] *= l
	}
	y = [3]float32{
		float32(z[1]*x[2]) - float32(z[2]*x[1]),
		float32(z[2]*x[0]) - float32(z[0]*x[2]),
		float32(z[0]*x[1]) - float32(z[1]*x[0]),
	}
	return x, y, z
}

func dot3(a, b [3]float32) float32 {
	return float32(a[0]*b[0]) + float32(a[1]*b[1]) + float32(a[2]*b[2])
}

// thetaScale is the theta resolution for a given quantized phi. Near the
// pole the circle of possible directions is small, so fewer steps are used.
func thetaScale(intPhi int32) float32 {
	switch {
	case intPhi == 0:
		return 0
	case intPhi <= 4:
		return 2 / pi32
	default:
		return float32(intPhi) / (2 * pi32)
	}
}

func thetaInverseScale(intPhi int32) float32 {
	switch {
	case intPhi == 0:
		return 0
	case intPhi <= 4:
		return pi32 / 2
	default:
		return (2 * pi32) / float32(intPhi)
	}
}

// makeNormalDeltas encodes each normal as (magnitude, phi, theta) relative
// to the smooth normal of the sorted, restored geometry.
func makeNormalDeltas(normals, restored []float32, sortedIndices []uint32, sv []sortVertex, precision float32) ([]int32, bool) {
	smooth := smoothNormals(restored, sortedIndices)
	scale := 1 / precision
	out := make([]int32, len(sv)*3)

	for i, v := range sv {
		o := v.original * 3
		n := [3]float32{normals[o], normals[o+1], normals[o+2]}
		sn := [3]float32{smooth[i*3], smooth[i*3+1], smooth[i*3+2]}

		magn := sqrt32(dot3(n, n))
		if magn < 1e-10 {
			magn = 1
		}
		if dot3(sn, n) < 0 {
			magn = -magn
		}
		q, ok := quantize(magn, scale)
		if !ok {
			return nil, false
		}
		out[i*3] = q

		inv := 1 / magn
		for j := range n {
			n[j] *= inv
		}

		bx, by, bz := normalBasis(sn)
		n2 := [3]float32{dot3(bx, n), dot3(by, n), dot3(bz, n)}
		var phi float32
		switch {
		case n2[2] >= 1:
			phi = 0
		case n2[2] <= -1:
			phi = pi32
		default:
			phi = float32(math.Acos(float64(n2[2])))
		}
		theta := float32(math.Atan2(float64(n2[1]), float64(n2[0])))

		intPhi, ok := quantize(phi, scale/(0.5*pi32))
		if !ok {
			return nil, false
		}
		intTheta, ok := quantize(theta+pi32, thetaScale(intPhi))
		if !ok {
			return nil, false
		}
		out[i*3+1] = intPhi
		out[i*3+2] = intTheta
	}
	return out, true
}

// restoreNormals is the inverse of makeNormalDeltas.
func restoreNormals(ints []int32, vertices []float32, indices []uint32, precision float32) []float32 {
	smooth := smoothNormals(vertices, indices)
	out := make([]float32, len(vertices))

	for i := 0; i < len(vertices)/3; i++ {
		magn := float32(ints[i*3]) * precision
		intPhi := ints[i*3+1]
		phi := float32(float32(intPhi)*(0.5*pi32)) * precision
		theta := float32(float32(ints[i*3+2])*thetaInverseScale(intPhi)) - pi32

		sp, cp := math.Sincos(float64(phi))
		st, ct := math.Sincos(float64(theta))
		n2 := [3]float32{float32(sp * ct), float32(sp * st), float32(cp)}

		bx, by, bz := normalBasis([3]float32{smooth[i*3], smooth[i*3+1], smooth[i*3+2]})
		for j := 0; j < 3; j++ {
			v := float32(bx[j]*n2[0]) + float32(by[j]*n2[1]) + float32(bz[j]*n2[2])
			out[i*3+j] = v * magn
		}
	}
	return out
}
