package mediainfo

import "fmt"

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d Bytes", size)
	}
	div := float64(size)
	exp := -1
	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	for div >= unit && exp < len(units)-1 {
		div /= unit
		exp++
	}
	if div >= 100 {
		return fmt.Sprintf("%.0f %s", div, units[exp])
	}
	return fmt.Sprintf("%.1f %s", div, units[exp])
}
