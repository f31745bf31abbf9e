package escape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Sentinel starts every token. It is taken from Unicode's private use area.
const Sentinel = '\uE000'

// TokenPattern matches a single token or a pair of tokens encoding a
// surrogate pair. Group 'hex' holds the code unit of a single token, groups
// 'hi' and 'lo' those of a pair.
const TokenPattern = `\x{E000}(?P<hi>[dD][89abAB][0-9a-fA-F]{2})\x{E000}(?P<lo>[dD][c-fC-F][0-9a-fA-F]{2})` +
	`|\x{E000}(?P<hex>[0-9a-fA-F]{4})`

// TokenLen is the length of a single token in bytes.
const TokenLen = 3 + 4

var tokenRE = regexp.MustCompile(TokenPattern)

// Encode returns the token(s) for a single character. Characters outside the
// basic multilingual plane are encoded as a surrogate pair of tokens.
func Encode(r rune) string {
	if r > 0xFFFF {
		hi, lo := utf16.EncodeRune(r)
		return fmt.Sprintf("%c%04X%c%04X", Sentinel, hi, Sentinel, lo)
	}
	return fmt.Sprintf("%c%04X", Sentinel, r)
}

// EncodeString encodes every character of s.
func EncodeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) * TokenLen)
	for _, r := range s {
		b.WriteString(Encode(r))
	}
	return b.String()
}

// protectText encodes every character of s which is not already part of a
// token.
func protectText(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range tokenRE.FindAllStringIndex(s, -1) {
		b.WriteString(EncodeString(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(EncodeString(s[last:]))
	return b.String()
}

// Decode replaces every token in s by the character it encodes. Text without
// tokens is returned unchanged.
func Decode(s string) string {
	if strings.IndexRune(s, Sentinel) < 0 {
		return s
	}
	return tokenRE.ReplaceAllStringFunc(s, decodeToken)
}

// decodeToken decodes a single token or a token pair.
func decodeToken(tok string) string {
	var units []uint16
	for _, part := range strings.Split(tok, string(Sentinel))[1:] {
		u, err := strconv.ParseUint(part, 16, 16)
		if err != nil {
			return tok
		}
		units = append(units, uint16(u))
	}
	return string(utf16.Decode(units))
}
