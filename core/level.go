package core

import "strings"

// Level is the difficulty shared by patterns and courses.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelImprover     Level = "improver"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

var Levels = []Level{LevelBeginner, LevelImprover, LevelIntermediate, LevelAdvanced}

// ParseLevel maps s to one of Levels, ignoring case and surrounding whitespace.
func ParseLevel(s string) (Level, bool) {
	lvl := Level(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range Levels {
		if l == lvl {
			return lvl, true
		}
	}
	return lvl, false
}

// NonNilStrings returns an empty slice in place of nil.
func NonNilStrings(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
