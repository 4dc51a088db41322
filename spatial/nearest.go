package spatial

import (
	"errors"
	"fmt"
)

// Errors returned by the selector.
var (
	ErrEmptyDataset    = errors.New("spatial: empty dataset")
	ErrInvalidPosition = errors.New("spatial: non-finite position")
)

// Nearest returns the index of the position closest to target once the
// listener origin has been subtracted from every position. target must
// already be listener-relative. Ties resolve to the lowest index.
func Nearest(target Vec3, positions []Vec3, listener Vec3) (int, error) {
	if len(positions) == 0 {
		return -1, ErrEmptyDataset
	}
	if !target.IsFinite() {
		return -1, fmt.Errorf("target %+v: %w", target, ErrInvalidPosition)
	}
	if !listener.IsFinite() {
		return -1, fmt.Errorf("listener %+v: %w", listener, ErrInvalidPosition)
	}

	best := -1
	bestDist := 0.0
	for i, p := range positions {
		if !p.IsFinite() {
			return -1, fmt.Errorf("position %d %+v: %w", i, p, ErrInvalidPosition)
		}
		d := target.Dist2(p.Sub(listener))
		// Strict comparison keeps the first index on ties.
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, nil
}

// NearestSpherical converts target and positions with ToCartesian and
// delegates to Nearest.
func NearestSpherical(target Spherical, positions []Spherical, listener Vec3) (int, error) {
	cart := make([]Vec3, len(positions))
	for i, p := range positions {
		cart[i] = ToCartesian(p)
	}
	return Nearest(ToCartesian(target), cart, listener)
}
