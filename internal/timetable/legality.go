package timetable

import "strings"

const (
	firstYearLunch = 3
	upperYearLunch = 4
)

type yearGroup int

const (
	upperYear yearGroup = iota
	firstYear
)

// legalStartTable holds the precomputed lab starts for block sizes 2 to 4 per year group.
// It is exactly lunchSafeStarts for those sizes; other sizes are computed on demand.
var legalStartTable = map[yearGroup]map[int][]int{
	firstYear: buildStarts(firstYearLunch, 2, 4),
	upperYear: buildStarts(upperYearLunch, 2, 4),
}

func buildStarts(lunch, minSize, maxSize int) map[int][]int {
	table := make(map[int][]int, maxSize-minSize+1)
	for size := minSize; size <= maxSize; size++ {
		table[size] = lunchSafeStarts(lunch, size)
	}
	return table
}

// IsFirstYear reports whether the free-text year level describes a first-year section.
func IsFirstYear(year string) bool {
	y := strings.ToLower(year)
	return strings.Contains(y, "1st") || strings.Contains(y, "first") || strings.Contains(y, "1")
}

func groupOf(year string) yearGroup {
	if IsFirstYear(year) {
		return firstYear
	}
	return upperYear
}

// LunchPosition returns the zero-based period index before which the morning ends.
func LunchPosition(year string) int {
	if IsFirstYear(year) {
		return firstYearLunch
	}
	return upperYearLunch
}

// LegalStarts returns the start periods where a lab block of blockSize fits without crossing lunch.
// The result is a fresh slice and identical for identical inputs.
func LegalStarts(year string, blockSize int) []int {
	if blockSize == 1 {
		return allStarts(1)
	}
	if starts, ok := legalStartTable[groupOf(year)][blockSize]; ok {
		return append([]int(nil), starts...)
	}
	return lunchSafeStarts(LunchPosition(year), blockSize)
}

// SpansLunch reports whether the interval [start, start+size) contains the lunch boundary.
func SpansLunch(start, size, lunch int) bool {
	return start < lunch && start+size > lunch
}

func lunchSafeStarts(lunch, size int) []int {
	if size < 1 {
		return []int{}
	}
	starts := []int{}
	for start := 0; start+size <= PeriodsPerDay; start++ {
		if !SpansLunch(start, size, lunch) {
			starts = append(starts, start)
		}
	}
	return starts
}

func allStarts(size int) []int {
	starts := []int{}
	for start := 0; start+size <= PeriodsPerDay; start++ {
		starts = append(starts, start)
	}
	return starts
}
