package theme

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses #rgb or #rrggbb (the leading # is optional).
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the color as lowercase #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var (
	lengthRe     = regexp.MustCompile(`^\d+(\.\d+)?(px|rem|em|%|vh|vw)$`)
	weightRe     = regexp.MustCompile(`^([1-9]00|normal|bold|lighter|bolder)$`)
	lineHeightRe = regexp.MustCompile(`^\d+(\.\d+)?(px|rem|em|%)?$`)
	fontFamilyRe = regexp.MustCompile(`^[A-Za-z0-9 ,'"\-]+$`)
)

func isLength(s string) bool     { return lengthRe.MatchString(s) }
func isWeight(s string) bool     { return weightRe.MatchString(s) }
func isLineHeight(s string) bool { return lineHeightRe.MatchString(s) }

func isFontFamily(s string) bool {
	return len(s) <= 120 && fontFamilyRe.MatchString(s) && strings.TrimSpace(s) != ""
}

func isColor(s string) bool {
	if !strings.HasPrefix(strings.TrimSpace(s), "#") {
		return false
	}
	_, err := ParseHex(s)
	return err == nil
}
