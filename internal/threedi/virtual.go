package threedi

import (
	"math"

	"foldcode/internal/asset"
	"foldcode/internal/geom"
)

// cbBondLength is the C-alpha to C-beta bond length in Angstrom used
// for the tetrahedral offset.
const cbBondLength = 1.5336

// VirtualCenter synthesises a pseudo C-beta from the backbone atoms of
// one residue. The construction is a frozen convention shared with the
// trained model: the tetrahedral directions are built in the (u1, u2)
// frame, rotated about the second tetrahedral direction by Alpha and
// about u2 by Beta, then scaled by the bond length times Params.D.
// Algebraically equivalent rewrites are not acceptable here; they
// drift in the last float bits and stop matching the centroids.
func VirtualCenter(ca, n, c geom.Vec3, p asset.Params) (geom.Vec3, error) {
	u1, err := ca.Sub(n).Unit()
	if err != nil {
		return geom.Vec3{}, err
	}
	u2, err := c.Sub(n).Unit()
	if err != nil {
		return geom.Vec3{}, err
	}

	halfSqrt3 := math.Sqrt(3) / 2
	spread := math.Sqrt(8) / 3

	w3 := u1.Scale(-0.5).Sub(u2.Scale(halfSqrt3))
	v3 := u1.Scale(-1.0 / 3.0).Sub(w3.Scale(spread))
	w4 := u1.Scale(-0.5).Add(u2.Scale(halfSqrt3))
	v4 := u1.Scale(-1.0 / 3.0).Sub(w4.Scale(spread))

	axis, err := v4.Unit()
	if err != nil {
		return geom.Vec3{}, err
	}

	vb := geom.Rotate(v3, axis, p.Alpha*math.Pi/180)
	vb = geom.Rotate(vb, u2, p.Beta*math.Pi/180)
	return ca.Add(vb.Scale(cbBondLength * p.D)), nil
}
