package domain

import (
	"regexp"
	"strings"
)

// The upstream datasets spell addresses a dozen ways. These rules fold the
// common Baltimore variants into the form the provider resolves best.
var (
	directionNorth = regexp.MustCompile(`^(\d*) N\.? (.*)`)
	directionSouth = regexp.MustCompile(`^(\d*) S\.? (.*)`)
	directionEast  = regexp.MustCompile(`^(\d*) E\.? (.*)`)
	directionWest  = regexp.MustCompile(`^(\d*) W\.? (.*)`)
)

var addressReplacer = strings.NewReplacer(
	" BLK ", " ",
	" BLOCK ", " ",
	"JONES FALLS EXPRESSWAY", "I-83",
	"JONES FALLS EXPWY", "I-83",
	"JONES FALLS", "I-83",
)

// NormalizeAddress uppercases a street address and standardizes block
// markers, highway names and leading directionals. Normalized addresses are
// also the forward cache keys, so two spellings of one address share a
// single provider lookup. Every Jones Falls variant collapses to plain
// "I-83" ("JONES FALLS EXPWY" included, with no trailing "EXPWY"), so cache
// keys differ from systems that substitute "JONES FALLS" alone.
func NormalizeAddress(address string) string {
	addr := strings.ToUpper(strings.TrimSpace(address))
	addr = addressReplacer.Replace(addr)
	if strings.HasSuffix(addr, " HW") {
		addr += "Y"
	}
	addr = directionNorth.ReplaceAllString(addr, "$1 NORTH $2")
	addr = directionSouth.ReplaceAllString(addr, "$1 SOUTH $2")
	addr = directionEast.ReplaceAllString(addr, "$1 EAST $2")
	addr = directionWest.ReplaceAllString(addr, "$1 WEST $2")
	return addr
}
