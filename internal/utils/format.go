package utils

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"
)

// FormatFileSize renders a byte count as "512 B", "1.5 KB" or "3.2 MB".
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return strconv.FormatInt(bytes, 10) + " B"
	case bytes < 1048576:
		return fixed1(float64(bytes)/1024) + " KB"
	default:
		return fixed1(float64(bytes)/1048576) + " MB"
	}
}

// Percent renders a 0..1 ratio as a percentage with one decimal, "42.0%".
func Percent(ratio float64) string {
	return fixed1(ratio*100) + "%"
}

// fixed1 formats x with one decimal the way JavaScript's toFixed(1) does: the
// exact binary value is rounded and ties go away from zero.
func fixed1(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', 1, 64)
	}
	sign := ""
	if x < 0 {
		sign, x = "-", -x
	}
	t := new(big.Float).SetPrec(128).SetFloat64(x)
	t.Mul(t, big.NewFloat(10))
	n, _ := t.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(t, new(big.Float).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	whole, tenth := new(big.Int).QuoRem(n, big.NewInt(10), new(big.Int))
	return sign + whole.String() + "." + tenth.String()
}

// FormatDuration renders whole seconds as "45s" or "2m 5s".
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	mins, secs := total/60, total%60
	if mins > 0 {
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatDate renders a timestamp as a short month/day/year date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("1/2/2006")
}
