package api

import "strconv"

// Fixed1 renders a float64 as a JSON number with exactly one decimal
// digit, the wire precision spec.md §6 requires for positions and
// speeds. No library in the corpus formats JSON numbers to a fixed
// precision, so this is a small stdlib Marshaler rather than a pulled
// dependency.
type Fixed1 float64

// MarshalJSON implements json.Marshaler.
func (f Fixed1) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(f), 'f', 1, 64), nil
}
