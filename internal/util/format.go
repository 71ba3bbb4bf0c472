package util

import (
	"fmt"
	"strings"

	"campuseats/internal/model"
)

// FormatYesNo formats a boolean attribute for cards and detail views.
func FormatYesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// FormatDistance formats a kilometer distance. Nil means not computed.
// Distances under one kilometer are shown in meters.
func FormatDistance(km *float64) string {
	if km == nil {
		return "—"
	}
	if *km < 1 {
		return fmt.Sprintf("%d m", int(*km*1000+0.5))
	}
	return fmt.Sprintf("%.1f km", *km)
}

// FormatDiscount formats a discount tier, showing "None" for missing tiers.
func FormatDiscount(d model.DiscountTier) string {
	return string(model.ParseDiscountTier(string(d)))
}

// FormatHours returns the opening hours or a placeholder.
func FormatHours(hours string) string {
	hours = strings.TrimSpace(hours)
	if hours == "" {
		return "Hours unavailable"
	}
	return hours
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
