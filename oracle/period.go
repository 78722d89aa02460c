package oracle

import "github.com/canopy-network/omniroute/lib"

// Period is the smoothing window of an oracle entry, measured in blocks
type Period uint8

const (
	LastBlock Period = iota
	Short
	TenMinutes
	Hour
	Day
	Week
)

// Periods lists every period tracked for each entry
var Periods = []Period{LastBlock, Short, TenMinutes, Hour, Day, Week}

var periodNames = map[Period]string{
	LastBlock:  "lastBlock",
	Short:      "short",
	TenMinutes: "tenMinutes",
	Hour:       "hour",
	Day:        "day",
	Week:       "week",
}

// Blocks() returns the length of the window assuming 6 second blocks
func (p Period) Blocks() uint64 {
	switch p {
	case Short:
		return 10
	case TenMinutes:
		return 100
	case Hour:
		return 600
	case Day:
		return 14_400
	case Week:
		return 100_800
	default:
		return 1
	}
}

func (p Period) String() string { return periodNames[p] }

// ParsePeriod() is the inverse of String()
func ParsePeriod(s string) (Period, lib.ErrorI) {
	for p, name := range periodNames {
		if name == s {
			return p, nil
		}
	}
	return 0, ErrInvalidPeriod(s)
}
