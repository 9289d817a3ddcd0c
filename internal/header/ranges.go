package header

import (
	"sort"
	"strconv"
	"strings"
)

// RangesToString compresses dialogue numbers into an ascending range list:
// {1,2,3,5,7,8,9} -> "1-3, 5, 7-9". Duplicates are ignored.
func RangesToString(numbers []int) string {
	nums := unique(numbers)
	if len(nums) == 0 {
		return ""
	}

	var parts []string
	start, end := nums[0], nums[0]
	flush := func() {
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, strconv.Itoa(start)+"-"+strconv.Itoa(end))
		}
	}
	for _, n := range nums[1:] {
		if n == end+1 {
			end = n
			continue
		}
		flush()
		start, end = n, n
	}
	flush()

	return strings.Join(parts, ", ")
}

func unique(numbers []int) []int {
	seen := make(map[int]struct{}, len(numbers))
	out := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
