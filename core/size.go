package core

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize formats n with binary prefixes and one decimal place, e.g.
// 2411724 -> "2.3MB".
func HumanSize(n int64) string {
	f := float64(n)
	for _, unit := range sizeUnits {
		if f < 1024 {
			return fmt.Sprintf("%.1f%s", f, unit)
		}
		f /= 1024
	}
	return fmt.Sprintf("%.1fPB", f)
}
