package utils

import (
	"sort"
	"strconv"
	"strings"

	"classroom-booking/models"
)

const (
	FirstHour = models.FirstHour
	LastHour  = models.LastHour
)

// ValidHour reports whether h is a slot of the 24-hour clock.
func ValidHour(h int) bool {
	return h >= FirstHour && h <= LastHour
}

// ParseHours turns input like "8-10,14" into the ascending set of valid hours.
// Bad tokens and hours outside 0-23 are skipped; a range with start > end yields nothing.
func ParseHours(spec string) []int {
	seen := map[int]bool{}
	for _, part := range strings.Split(spec, ",") {
		for _, h := range hoursInToken(strings.TrimSpace(part)) {
			if ValidHour(h) {
				seen[h] = true
			}
		}
	}

	hours := make([]int, 0, len(seen))
	for h := range seen {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

func hoursInToken(token string) []int {
	if token == "" {
		return nil
	}
	if !strings.Contains(token, "-") {
		h, err := strconv.Atoi(token)
		if err != nil {
			return nil
		}
		return []int{h}
	}

	bounds := strings.Split(token, "-")
	if len(bounds) != 2 {
		return nil
	}
	start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return nil
	}
	// clamp so a huge range like 0-99999999 does not allocate
	if start < FirstHour {
		start = FirstHour
	}
	if end > LastHour {
		end = LastHour
	}

	var out []int
	for h := start; h <= end; h++ {
		out = append(out, h)
	}
	return out
}

// FormatHours joins hours in ascending order with sep.
func FormatHours(hours []int, sep string) string {
	sorted := append([]int{}, hours...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, h := range sorted {
		parts[i] = strconv.Itoa(h)
	}
	return strings.Join(parts, sep)
}
