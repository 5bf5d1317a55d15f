package formatter

import "fmt"

// FormatDuration renders a number of seconds as zero-padded hours and minutes, e.g. "01ч 02мин".
//
// Leftover seconds are truncated. Negative input renders as zero.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02dч %02dмин", seconds/3600, (seconds%3600)/60)
}

// FormatClock renders seconds as m:ss or h:mm:ss for track listings.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
