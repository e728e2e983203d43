package color

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dpatterbee/hue/src/store"
	"github.com/pkg/errors"
)

// Color is an RGB colour.
type Color struct {
	R, G, B uint8
}

// Parse reads a hex RGB colour such as "ff8800" or "#FF8800".
func Parse(s string) (Color, error) {
	h := strings.TrimPrefix(strings.ToLower(s), "#")
	if len(h) != 6 {
		return Color{}, store.Msg(store.MalformedInput, fmt.Sprintf("%q is not a RGB hex color", s))
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return Color{}, store.Msg(store.MalformedInput, fmt.Sprintf("%q is not a RGB hex color", s))
		}
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, store.E(store.MalformedInput, "color parsing", "", errors.WithStack(err))
	}
	return FromInt(int(v)), nil
}

// FromInt splits 0xRRGGBB into a Color.
func FromInt(v int) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// Int returns the colour as 0xRRGGBB, the form Discord uses for role colours.
func (c Color) Int() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// String returns six lowercase hex digits without a leading '#'.
func (c Color) String() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// RoleName is the name given to the role created for c.
func (c Color) RoleName() string {
	return RolePrefix + c.String()
}

// RolePrefix starts the name of every colour role the bot creates.
const RolePrefix = "hue#"
