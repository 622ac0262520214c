package encoder

// Status is a snapshot of an encoder for diagnostics.
type Status struct {
	Active              bool    `json:"active"`
	Simulated           bool    `json:"simulated"`
	PinA                string  `json:"pin_a"`
	PinB                string  `json:"pin_b"`
	Decoding            string  `json:"decoding"`
	PulsesPerRevolution int     `json:"ppr"`
	WheelDiameterIn     float64 `json:"wheel_diameter"`
	GearRatio           float64 `json:"gear_ratio"`
	Count               int64   `json:"current_count"`
	DistanceIn          float64 `json:"distance_inches"`
	VelocityInPerSec    float64 `json:"velocity_ips"`
	HardwareAvailable   bool    `json:"hardware_available"`

	// Median of the velocities at the most recent edges; steadier than VelocityInPerSec.
	VelocityMedianInPerSec float64 `json:"velocity_median_ips"`
}
