package spatial

import "math"

// EnhancedDepthRatio is the far/near ratio past which DepthCoefficient
// switches to the enhanced form.
const EnhancedDepthRatio = 1e12

// LogDepthCoefficient returns 2 / ln(far/near).
func LogDepthCoefficient(near, far float64) (float64, error) {
	if err := validatePlanes(near, far); err != nil {
		return 0, err
	}
	return 2 / math.Log(far/near), nil
}

// EnhancedLogDepthCoefficient scales the standard coefficient by 1 + near/far,
// which reduces precision loss for extreme ratios.
func EnhancedLogDepthCoefficient(near, far float64) (float64, error) {
	c, err := LogDepthCoefficient(near, far)
	if err != nil {
		return 0, err
	}
	return c * (1 + near/far), nil
}

func DepthCoefficient(near, far float64) (float64, error) {
	if err := validatePlanes(near, far); err != nil {
		return 0, err
	}
	if far/near > EnhancedDepthRatio {
		return EnhancedLogDepthCoefficient(near, far)
	}
	return LogDepthCoefficient(near, far)
}

// LogDepth maps a view-space distance to [0, 1] for a coefficient derived
// from the same near plane: near maps to 0 and far to 1.
func LogDepth(distance, near, coefficient float64) float64 {
	return math.Log(distance/near) * coefficient / 2
}

func validatePlanes(near, far float64) error {
	if err := validatePositive("near plane", near); err != nil {
		return err
	}
	if err := validatePositive("far plane", far); err != nil {
		return err
	}
	if far <= near {
		return ConfigurationError{Field: "far plane", Value: far, Reason: "must exceed the near plane"}
	}
	return nil
}
