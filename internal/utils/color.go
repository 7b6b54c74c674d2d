package utils

import "strings"

// highlightPalette holds the hex value and Obsidian callout type of every
// reader highlight color.
var highlightPalette = map[string]struct {
	hex     string
	callout string
}{
	"yellow": {hex: "#FDE68A", callout: "quote"},
	"blue":   {hex: "#BFDBFE", callout: "info"},
	"red":    {hex: "#FECACA", callout: "warning"},
	"purple": {hex: "#DDD6FE", callout: "tip"},
}

// ColorToHex returns the hex value of a highlight color name. Unknown
// names map to the yellow swatch.
func ColorToHex(color string) string {
	if p, ok := highlightPalette[strings.ToLower(color)]; ok {
		return p.hex
	}
	return highlightPalette["yellow"].hex
}

// ColorToCalloutType maps highlight color names to Obsidian callout types.
// Default return is "quote" for unknown colors.
func ColorToCalloutType(color string) string {
	if p, ok := highlightPalette[strings.ToLower(color)]; ok {
		return p.callout
	}
	return "quote"
}
