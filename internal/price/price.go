// Package price handles price and size values from prediction market APIs
// without losing precision.
package price

import (
	"encoding/json"
)

const Scale int64 = 1_000_000

// Price is a fixed-point value in micro-units (Scale per whole unit).
type Price int64

// Size is an order size in the same fixed-point representation.
type Size int64

var (
	_ json.Unmarshaler = (*Price)(nil)
	_ json.Unmarshaler = (*Size)(nil)
)

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price(parseFixed(data))
	return nil
}

func (s *Size) UnmarshalJSON(data []byte) error {
	*s = Size(parseFixed(data))
	return nil
}

func (p Price) Float() float64 {
	return float64(p) / float64(Scale)
}

func (s Size) Float() float64 {
	return float64(s) / float64(Scale)
}

func parseFixed(data []byte) int64 {
	if len(data) > 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	// Else we assume that it is a raw number.

	var res int64
	i := 0

	for i < len(data) && data[i] != '.' {
		res = res*10 + int64(data[i]-'0')*Scale
		i++
	}

	if i < len(data) && data[i] == '.' {
		i++
		mult := Scale
		for i < len(data) {
			mult /= 10
			res += int64(data[i]-'0') * mult
			i++
		}
	}

	return res
}
