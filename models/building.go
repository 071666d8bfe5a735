package models

import "strings"

// ValidBuildings is the closed set of building codes, in menu order.
var ValidBuildings = []string{"FD1", "FD2", "FD3", "LTC", "NAB"}

// NormalizeBuilding uppercases a building code and reports whether it is known.
func NormalizeBuilding(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, b := range ValidBuildings {
		if b == code {
			return code, true
		}
	}
	return code, false
}

// BuildingList renders the valid codes the way prompts show them.
func BuildingList() string {
	return "[" + strings.Join(ValidBuildings, ", ") + "]"
}
