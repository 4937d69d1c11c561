package geometry

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Epsilon is the tolerance used by Eq for float64 comparisons.
	Epsilon = 1e-9
	// NormalizeEpsilon is the magnitude below which a vector has no usable direction.
	NormalizeEpsilon = 1e-6
)

var (
	// Zero is the origin.
	Zero = Vector3D{}
	// UnitX is the safe default direction returned when a degenerate vector is normalized.
	UnitX = Vector3D{X: 1}
	// UnitZ points straight up.
	UnitZ = Vector3D{Z: 1}
)

// ErrDivideByZero is returned by Div when the divisor is zero.
var ErrDivideByZero = errors.New("vector cannot be divided by zero")

// Vector3D represents a 3D vector or point in cartesian space (Z is up).
// Fields are public because they are plain data, and every method uses a value
// receiver so vectors behave as immutable values.
type Vector3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewVector3D creates a new Vector3D.
func NewVector3D(x, y, z float64) Vector3D {
	return Vector3D{X: x, Y: y, Z: z}
}

// String implements the fmt.Stringer interface.
func (v Vector3D) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts the other vector from the current vector.
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return Vector3D{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul scales the vector by a scalar value.
func (v Vector3D) Mul(scalar float64) Vector3D {
	return Vector3D{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Div scales the vector by 1/scalar.
// A zero scalar yields an Inf vector together with ErrDivideByZero.
func (v Vector3D) Div(scalar float64) (Vector3D, error) {
	if scalar == 0 {
		return Vector3D{math.Inf(1), math.Inf(1), math.Inf(1)}, ErrDivideByZero
	}
	return Vector3D{v.X / scalar, v.Y / scalar, v.Z / scalar}, nil
}

// ---------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector3D) Dot(other Vector3D) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross calculates the right-handed cross product v × other.
func (v Vector3D) Cross(other Vector3D) Vector3D {
	return Vector3D{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector. Use it for comparisons.
func (v Vector3D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len calculates the magnitude (length) of the vector.
func (v Vector3D) Len() float64 {
	return math.Sqrt(v.LenSqr())
}

// Normalize returns a unit vector in the same direction.
// Vectors shorter than NormalizeEpsilon have no direction and yield UnitX.
func (v Vector3D) Normalize() Vector3D {
	l := v.Len()
	if l < NormalizeEpsilon {
		return UnitX
	}
	return v.Mul(1 / l)
}

// ClampLen scales v down so that its length does not exceed max. Direction is kept.
func (v Vector3D) ClampLen(max float64) Vector3D {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}

// RejectFrom returns the component of v perpendicular to the unit vector axis.
func (v Vector3D) RejectFrom(axis Vector3D) Vector3D {
	return v.Sub(axis.Mul(v.Dot(axis)))
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector3D) DistanceTo(other Vector3D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector3D) DistanceSquaredTo(other Vector3D) float64 {
	return v.Sub(other).LenSqr()
}

// Lerp linearly interpolates between v and target with t in [0, 1].
func (v Vector3D) Lerp(target Vector3D, t float64) Vector3D {
	return v.Add(target.Sub(v).Mul(t))
}

// IsFinite reports whether every component is neither NaN nor Inf.
func (v Vector3D) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector3D) Eq(other Vector3D) bool {
	return v.EqWithin(other, Epsilon)
}

// EqWithin checks if two vectors are equal component-wise within tol.
func (v Vector3D) EqWithin(other Vector3D, tol float64) bool {
	return math.Abs(v.X-other.X) <= tol &&
		math.Abs(v.Y-other.Y) <= tol &&
		math.Abs(v.Z-other.Z) <= tol
}
