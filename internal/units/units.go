// Package units provides pure display conversions for resource values:
// byte counts to binary-prefix strings, mebibyte limits to byte counts, and
// percentages to fixed-precision strings. Inputs are expected to be
// non-negative and finite; callers own that contract.
package units

import "fmt"

const binaryUnit = 1024

// MebibytesToBytes converts a mebibyte-denominated limit to bytes using the
// binary convention, matching FormatBytes so a 512 MiB limit renders as
// "512.00 MiB".
func MebibytesToBytes(mib uint64) uint64 {
	return mib * binaryUnit * binaryUnit
}

// FormatBytes renders a byte count with binary-prefix units and two decimals,
// e.g. 1048576 -> "1.00 MiB". Values below 1 KiB are rendered as whole bytes.
func FormatBytes(b uint64) string {
	if b < binaryUnit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(binaryUnit), 0
	for n := b / binaryUnit; n >= binaryUnit; n /= binaryUnit {
		div *= binaryUnit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatPercent renders a percentage with two decimals and a trailing "%",
// e.g. 12.345 -> "12.35%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}
