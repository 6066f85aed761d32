// Package hwdetect classifies Intel GPU devices into architecture
// generations and persists the result so hardware probing runs at most
// once per deployment.
package hwdetect

import "strings"

// Level is one GPU architecture generation. Ranks form a dense
// ascending sequence, oldest (0) to newest.
type Level struct {
	// Target is the short device-target code used to select kernel
	// binary variants, e.g. "bmg-g21".
	Target string
	// Family is the architecture family label, e.g. "Xe2-HPG".
	Family string
	// Label is the marketing name of the generation.
	Label string
	// Rank orders generations oldest to newest.
	Rank int
	// Patterns are lowercase substrings matched against device names.
	Patterns []string
}

// levels is ordered by ascending rank. Matching walks it newest-first
// so a newer device whose marketing name happens to contain an older
// generation's substring still classifies as the newer level.
var levels = []Level{
	{
		Target:   "tgllp",
		Family:   "Gen12",
		Label:    "Tiger Lake",
		Rank:     0,
		Patterns: []string{"tiger lake", "tgl", "iris xe", "uhd graphics"},
	},
	{
		Target:   "rkl",
		Family:   "Gen12",
		Label:    "Rocket Lake",
		Rank:     1,
		Patterns: []string{"rocket lake", "rkl"},
	},
	{
		Target:   "adl",
		Family:   "Gen12",
		Label:    "Alder Lake",
		Rank:     2,
		Patterns: []string{"alder lake", "adl"},
	},
	{
		Target:   "dg1",
		Family:   "Xe-LP",
		Label:    "DG1",
		Rank:     3,
		Patterns: []string{"dg1", "iris xe max"},
	},
	{
		Target:   "acm-g10",
		Family:   "Xe-HPG",
		Label:    "Alchemist ACM-G10",
		Rank:     4,
		Patterns: []string{"acm-g10", "a770", "a750", "a580", "arc(tm) a7"},
	},
	{
		Target:   "acm-g11",
		Family:   "Xe-HPG",
		Label:    "Alchemist ACM-G11",
		Rank:     5,
		Patterns: []string{"acm-g11", "a380", "a310"},
	},
	{
		Target:   "mtl-m",
		Family:   "Xe-LPG",
		Label:    "Meteor Lake",
		Rank:     6,
		Patterns: []string{"meteor lake", "mtl", "arc(tm) graphics"},
	},
	{
		Target:   "lnl-m",
		Family:   "Xe2-LPG",
		Label:    "Lunar Lake",
		Rank:     7,
		Patterns: []string{"lunar lake", "lnl", "130v", "140v"},
	},
	{
		Target:   "bmg-g21",
		Family:   "Xe2-HPG",
		Label:    "Battlemage",
		Rank:     8,
		Patterns: []string{"battlemage", "bmg", "b580", "b570", "arc(tm) b"},
	},
}

// Levels returns the architecture table ordered oldest to newest.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// Fallback returns the oldest level. Kernel binaries are guaranteed to
// exist for it, so it is safe to assume when nothing else matches.
func Fallback() Level { return levels[0] }

// MatchDevice classifies a free-text device name. It scans the table
// newest-first and returns the first level with a case-insensitive
// substring match; an unrecognized name returns Fallback().
func MatchDevice(name string) Level {
	lower := strings.ToLower(name)
	for i := len(levels) - 1; i >= 0; i-- {
		for _, pat := range levels[i].Patterns {
			if strings.Contains(lower, pat) {
				return levels[i]
			}
		}
	}
	return Fallback()
}
