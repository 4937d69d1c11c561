// Package control holds the feedback controllers used by the flight controller.
package control

// Default anti-windup limits for the integral term.
const (
	DefaultIntegralMin = -100.0
	DefaultIntegralMax = 100.0
)

// PID is a single-axis proportional-integral-derivative controller with
// integral anti-windup. It is not safe for concurrent use: one owner drives it.
type PID struct {
	Kp, Ki, Kd float64

	IntegralMin float64
	IntegralMax float64

	integral  float64
	prevError float64
}

// NewPID creates a controller with the given gains and the default integral limits.
func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:          kp,
		Ki:          ki,
		Kd:          kd,
		IntegralMin: DefaultIntegralMin,
		IntegralMax: DefaultIntegralMax,
	}
}

// Update returns the control output for one step of dt seconds.
// The accumulated integral is always clamped to [IntegralMin, IntegralMax].
func (p *PID) Update(setpoint, measured, dt float64) float64 {
	err := setpoint - measured

	p.integral += err * dt
	p.integral = clamp(p.integral, p.IntegralMin, p.IntegralMax)

	derivative := 0.0
	if dt > 0 {
		derivative = (err - p.prevError) / dt
	}
	p.prevError = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset clears the accumulated integral and the remembered error.
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
}

// SetGains replaces the three gains without touching the accumulated state.
func (p *PID) SetGains(kp, ki, kd float64) {
	p.Kp, p.Ki, p.Kd = kp, ki, kd
}

// SetIntegralLimits sets the anti-windup bounds and re-clamps the current integral.
func (p *PID) SetIntegralLimits(min, max float64) {
	if min > max {
		min, max = max, min
	}
	p.IntegralMin, p.IntegralMax = min, max
	p.integral = clamp(p.integral, min, max)
}

// Integral returns the accumulated integral term.
func (p *PID) Integral() float64 {
	return p.integral
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return clamp(x, lo, hi)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
