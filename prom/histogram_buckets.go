package prom

// DefaultBuckets mirrors the Prometheus client convention. It is
// materialized lazily on first use rather than at package init, matching
// the source's "null until first use" behavior.
var defaultBuckets []float64

// DefaultBuckets returns the process-wide default histogram buckets:
// {0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}.
func DefaultBuckets() []float64 {
	if defaultBuckets == nil {
		defaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	}
	out := make([]float64, len(defaultBuckets))
	copy(out, defaultBuckets)
	return out
}

// ExplicitBuckets uses the given finite, strictly ascending bounds as-is.
func ExplicitBuckets(bounds ...float64) ([]float64, error) {
	if len(bounds) < 1 {
		return nil, errInvalidInput("explicit buckets: need at least one bound")
	}
	if err := requireAscending(bounds); err != nil {
		return nil, err
	}
	return append([]float64(nil), bounds...), nil
}

// LinearBuckets builds count buckets of bounds[i] = start + i*width.
// Following the source (not its comment) this requires count >= 1.
func LinearBuckets(start, width float64, count int) ([]float64, error) {
	if count < 1 {
		return nil, errInvalidInput("linear buckets: count must be >= 1, got %d", count)
	}
	bounds := make([]float64, count)
	for i := 0; i < count; i++ {
		bounds[i] = start + float64(i)*width
	}
	if err := requireAscending(bounds); err != nil {
		return nil, err
	}
	return bounds, nil
}

// ExponentialBuckets builds count buckets of bounds[i] = start * factor^i.
func ExponentialBuckets(start, factor float64, count int) ([]float64, error) {
	if start <= 0 {
		return nil, errInvalidInput("exponential buckets: start must be > 0, got %v", start)
	}
	if factor <= 1 {
		return nil, errInvalidInput("exponential buckets: factor must be > 1, got %v", factor)
	}
	if count < 1 {
		return nil, errInvalidInput("exponential buckets: count must be >= 1, got %d", count)
	}
	bounds := make([]float64, count)
	bound := start
	for i := 0; i < count; i++ {
		bounds[i] = bound
		bound *= factor
	}
	return bounds, nil
}

func requireAscending(bounds []float64) error {
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return errInvalidInput("bucket bounds must be strictly ascending, got %v", bounds)
		}
	}
	return nil
}
