package barrier

import (
	"strconv"
	"strings"
	"unicode"
)

// WidthAttr is the output attribute carrying the barrier width in meters.
const WidthAttr = "Width"

// ClassValue is a classification drawn from a closed domain, with an
// explicit missing variant. Raw source attributes (numeric codes, lane-count
// strings, flags) are normalized into one of these before any width lookup,
// so the lookup itself is a pure total function.
type ClassValue struct {
	Missing bool
	Key     string
}

// MissingClass is the value for an absent or null classification attribute.
func MissingClass() ClassValue {
	return ClassValue{Missing: true}
}

// ClassOf wraps a present classification key.
func ClassOf(key string) ClassValue {
	return ClassValue{Key: key}
}

// WidthTable maps classification values to barrier widths in meters.
// Default applies to the missing variant, Fallback to present values outside
// the table. Both are finite and non-negative, so Width is total: every
// ClassValue maps to exactly one finite non-negative width.
type WidthTable struct {
	Widths   map[string]float64
	Default  float64
	Fallback float64
}

// Width resolves a classification value against the table.
func (t WidthTable) Width(v ClassValue) float64 {
	if v.Missing {
		return t.Default
	}
	if w, ok := t.Widths[v.Key]; ok {
		return w
	}
	return t.Fallback
}

// known reports whether the value resolves without the fallback. Used only
// to count classification misses for the informational log.
func (t WidthTable) known(v ClassValue) bool {
	if v.Missing {
		return true
	}
	_, ok := t.Widths[v.Key]
	return ok
}

// SurveyRoadWidths is the width table for the survey road functional class
// code. The 1000 m fallback is the original tool's sentinel for unexpected
// codes; it effectively excludes the segment as a barrier.
func SurveyRoadWidths() WidthTable {
	return WidthTable{
		Widths: map[string]float64{
			"1": 25,
			"2": 20,
			"3": 15,
			"4": 5,
			"5": 25,
			"6": 3,
			"9": 2,
		},
		Default:  5,
		Fallback: 1000,
	}
}

// AgencyRoadWidths is the width table for the agency road lane count (first
// digit of the lane-count string).
func AgencyRoadWidths() WidthTable {
	return WidthTable{
		Widths: map[string]float64{
			"1": 5,
			"2": 8,
			"3": 10,
			"4": 15,
			"5": 25,
		},
		Default:  5,
		Fallback: 1000,
	}
}

// RailWidths assigns the constant rail corridor width.
func RailWidths() WidthTable {
	return WidthTable{Default: 8, Fallback: 8}
}

// TrailWidths is the width table for the trail vehicle-capability flag:
// trails passable by vehicles over 50 inches wide rate 1.5 m, all others
// 0.5 m.
func TrailWidths() WidthTable {
	return WidthTable{
		Widths:   map[string]float64{"Y": 1.5},
		Default:  0.5,
		Fallback: 0.5,
	}
}

// ClassFromCode reads a numeric classification attribute. Integral values
// are canonicalized ("2.0" and 2 both become "2"); string-typed codes that
// parse as numbers are canonicalized the same way. Absent or null maps to
// the missing variant.
func ClassFromCode(f *Feature, field string) ClassValue {
	if n, ok := f.NumberProp(field); ok {
		return ClassOf(strconv.FormatInt(int64(n), 10))
	}
	if s, ok := f.StringProp(field); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return MissingClass()
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return ClassOf(strconv.FormatInt(int64(n), 10))
		}
		return ClassOf(s)
	}
	return MissingClass()
}

// ClassFromLaneCount extracts the first digit of a lane-count attribute
// ("2 LANES", "2-3", 2.0 all yield "2"). A value with no digit, or an
// absent value, maps to the missing variant.
func ClassFromLaneCount(f *Feature, field string) ClassValue {
	var s string
	if n, ok := f.NumberProp(field); ok {
		s = strconv.FormatInt(int64(n), 10)
	} else if str, sok := f.StringProp(field); sok {
		s = str
	} else {
		return MissingClass()
	}
	for _, r := range s {
		if unicode.IsDigit(r) {
			return ClassOf(string(r))
		}
	}
	return MissingClass()
}

// ClassFromFlag reads a text flag attribute verbatim. Absent, null, or
// empty maps to the missing variant.
func ClassFromFlag(f *Feature, field string) ClassValue {
	s, ok := f.StringProp(field)
	if !ok || s == "" {
		return MissingClass()
	}
	return ClassOf(s)
}

// ClassifyWidths returns a copy of the collection with the Width attribute
// populated on every feature from the given table. The classify function
// extracts each feature's classification value. The returned count is the
// number of features resolved via the fallback (classification misses),
// which callers report as informational, never as an error.
func ClassifyWidths(fc *FeatureCollection, classify func(*Feature) ClassValue, table WidthTable) (*FeatureCollection, int) {
	out := NewFeatureCollection()
	misses := 0
	for _, f := range fc.Features {
		v := classify(f)
		if !table.known(v) {
			misses++
		}
		nf := f.Clone()
		nf.Properties[WidthAttr] = table.Width(v)
		out.AddFeature(nf)
	}
	return out, misses
}
