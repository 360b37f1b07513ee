package userview

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// AvatarPalette holds the eight avatar background colors.
var AvatarPalette = [8]string{
	"#6366F1",
	"#EC4899",
	"#F59E0B",
	"#10B981",
	"#3B82F6",
	"#8B5CF6",
	"#EF4444",
	"#14B8A6",
}

// AvatarColor picks a palette color from the lowercased email. Two emails may
// share a color.
func AvatarColor(email string) string {
	h := xxhash.Sum64String(strings.ToLower(strings.TrimSpace(email)))
	return AvatarPalette[h%uint64(len(AvatarPalette))]
}

// Initial is the uppercased first letter of the email, "?" when empty.
func Initial(email string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(email))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
