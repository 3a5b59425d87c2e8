// Package pretty formats payloads for log and error output.
package pretty

import (
	"fmt"
	"unicode/utf8"
)

// Abbrev returns s abbreviated for display. Optional ranges are MaxLen and
// CutTo: strings longer than MaxLen are cut to CutTo runes.
func Abbrev(s string, ranges ...int) Abbreviated {
	MaxLen := 64
	CutTo := 60
	if len(ranges) >= 2 {
		MaxLen, CutTo = ranges[0], ranges[1]
	} else if len(ranges) == 1 {
		MaxLen, CutTo = ranges[0], ranges[0]
	}
	return Abbreviated{
		Original: s,
		MaxLen:   MaxLen,
		CutTo:    CutTo,
	}
}

type Abbreviated struct {
	Original string
	MaxLen   int
	CutTo    int
}

func (s Abbreviated) String() string {
	if utf8.RuneCountInString(s.Original) <= s.MaxLen {
		return s.Original
	}
	runes := []rune(s.Original)
	return fmt.Sprintf("%s… (%d bytes)", string(runes[:s.CutTo]), len(s.Original))
}

// Bytes abbreviates a raw payload.
func Bytes(b []byte, ranges ...int) Abbreviated {
	return Abbrev(string(b), ranges...)
}
