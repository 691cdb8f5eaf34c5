package format

import (
	"fmt"
	"strconv"
	"time"
)

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Minutes formats a duration as decimal minutes with one digit, e.g. "12.5 minutes".
func Minutes(d time.Duration) string {
	return fmt.Sprintf("%.1f minutes", d.Minutes())
}

// Gain formats a level in decibels, e.g. "-20 dB" or "-6.5 dB".
func Gain(db float64) string {
	return strconv.FormatFloat(db, 'f', -1, 64) + " dB"
}

// Size formats a size in bytes for human display.
// Uses MB for sizes >= 1MB, KB otherwise.
func Size(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%d MB", bytes/mb)
	case bytes >= kb:
		return fmt.Sprintf("%d KB", bytes/kb)
	case bytes == 1:
		return "1 byte"
	}
	return fmt.Sprintf("%d bytes", bytes)
}
