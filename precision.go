package spatial

import "math"

// Resolution returns the gap between neighbouring ordinary precision values
// at distance from the origin.
func Resolution(distance float64) float64 {
	d := float32(math.Abs(distance))
	if math.IsInf(float64(d), 0) {
		return math.Inf(1)
	}
	return float64(math.Nextafter32(d, float32(math.Inf(1))) - d)
}

// AdvisePrecision lists Transform entities whose world position is far enough
// from the origin that ordinary precision is coarser than tolerance. It reads
// the world matrices of the most recent pass.
func AdvisePrecision(sto Storage, tolerance float64) []PrecisionAdvisory {
	q := newQuery()
	q.And(TransformComponent, globalComponent)
	cursor := newCursor(q, sto)

	var advisories []PrecisionAdvisory
	for range cursor.Entities() {
		g := globalComponent.GetFromCursor(cursor)
		distance := widen(g.matrix.Col(3).Vec3()).Len()
		if res := Resolution(distance); res > tolerance {
			advisories = append(advisories, PrecisionAdvisory{
				Entity:     cursor.Entity(),
				Distance:   distance,
				Resolution: res,
				Tolerance:  tolerance,
			})
		}
	}
	return advisories
}
