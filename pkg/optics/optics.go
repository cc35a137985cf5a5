// Package optics holds the closed-form optics used by the tracer: Fresnel
// reflectance, Snell refraction, Beer-Lambert absorption and the plane helpers
// the rectangular area light is built on.
package optics

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Reflect mirrors incident about normal: r = v - 2*dot(v,n)*n
func Reflect(incident, normal core.Vec3) core.Vec3 {
	return incident.Subtract(normal.Multiply(2 * incident.Dot(normal)))
}

// Fresnel returns the unpolarized reflectance kr for a ray crossing a
// dielectric boundary with index ior on the far side of normal. Both vectors
// must be unit length. When the ray starts inside the denser medium
// (cosi > 0) the index pair is swapped. Total internal reflection yields 1.
func Fresnel(incident, normal core.Vec3, ior float64) float64 {
	cosi := clamp(incident.Dot(normal), -1, 1)
	etai, etat := 1.0, ior
	if cosi > 0 {
		etai, etat = etat, etai
	}

	sint := etai / etat * math.Sqrt(math.Max(0, 1-cosi*cosi))
	if sint >= 1 {
		return 1
	}

	cost := math.Sqrt(math.Max(0, 1-sint*sint))
	cosi = math.Abs(cosi)
	rs := (etat*cosi - etai*cost) / (etat*cosi + etai*cost)
	rp := (etai*cosi - etat*cost) / (etai*cosi + etat*cost)
	return (rs*rs + rp*rp) / 2
}

// NormalIncidenceReflectance is ((n1-n2)/(n1+n2))^2
func NormalIncidenceReflectance(n1, n2 float64) float64 {
	r := (n1 - n2) / (n1 + n2)
	return r * r
}

// Refract returns the normalized transmitted direction by Snell's law, or the
// zero vector when the discriminant is negative (total internal reflection).
func Refract(incident, normal core.Vec3, ior float64) core.Vec3 {
	cosi := clamp(incident.Dot(normal), -1, 1)
	etai, etat := 1.0, ior
	n := normal
	if cosi < 0 {
		cosi = -cosi
	} else {
		etai, etat = etat, etai
		n = normal.Negate()
	}

	eta := etai / etat
	k := SnellDiscriminant(eta, cosi)
	if k < 0 {
		return core.Vec3{}
	}
	return incident.Multiply(eta).Add(n.Multiply(eta*cosi - math.Sqrt(k))).Normalize()
}

// SnellDiscriminant is k = 1 - eta^2 (1 - cosi^2)
func SnellDiscriminant(eta, cosi float64) float64 {
	return 1 - eta*eta*(1-cosi*cosi)
}

// BeerLambert returns the per-channel transmittance exp(-absorption*distance).
// Alpha is always 1 so the result can scale a color without touching coverage.
func BeerLambert(absorption core.Vec3, distance float64) core.Color {
	return core.Color{
		R: math.Exp(-absorption.X * distance),
		G: math.Exp(-absorption.Y * distance),
		B: math.Exp(-absorption.Z * distance),
		A: 1,
	}
}

// ProjectOnPlane drops p onto the plane through center with unit normal
func ProjectOnPlane(p, center, normal core.Vec3) core.Vec3 {
	distance := normal.Dot(p.Subtract(center))
	return p.Subtract(normal.Multiply(distance))
}

// OnFrontSide reports whether p lies on the side of the plane the normal
// points to. Points on the plane count as front.
func OnFrontSide(p, center, normal core.Vec3) bool {
	return p.Subtract(center).Dot(normal) >= 0
}

// LinePlaneIntersect returns where the line p + t*dir crosses the plane.
// The caller guarantees dir is not parallel to the plane.
func LinePlaneIntersect(p, dir, center, normal core.Vec3) core.Vec3 {
	t := normal.Dot(center.Subtract(p)) / normal.Dot(dir)
	return p.Add(dir.Multiply(t))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
