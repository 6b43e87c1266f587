// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package builtin provides functions, that can be used as globals, and
// custom directives for the templates.
//
// For example, to use all the functions and directives of this package
//
//	engine, err := enjoy.New(enjoy.Config{
//		Globals:    builtin.Globals(),
//		Directives: builtin.Directives(),
//	})
//
// and to use them in a template
//
//	#(capitalize(title)) #(abbreviate(text, 50))
//	#number(price, "it")
//	#markdown{
//	# #(title)
//	}
//
// Or choose the most appropriate
//
//	Globals: map[string]interface{}{
//		"min": builtin.Min,
//		"max": builtin.Max,
//	}
package builtin

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/open2b/enjoy/runtime"

	"github.com/shopspring/decimal"
)

// Globals returns the functions of this package with the names used in the
// templates.
func Globals() map[string]interface{} {
	return map[string]interface{}{
		"abbreviate":    Abbreviate,
		"abs":           Abs,
		"base64":        Base64,
		"capitalize":    Capitalize,
		"capitalizeAll": CapitalizeAll,
		"hex":           Hex,
		"hmacSHA1":      HmacSHA1,
		"hmacSHA256":    HmacSHA256,
		"marshalJSON":   MarshalJSON,
		"max":           Max,
		"md5":           Md5,
		"min":           Min,
		"queryEscape":   QueryEscape,
		"round":         Round,
		"sha1":          Sha1,
		"sha256":        Sha256,
		"toKebab":       ToKebab,
		"unmarshalJSON": UnmarshalJSON,
	}
}

// Directives returns the custom directives of this package.
func Directives() map[string]runtime.Directive {
	return map[string]runtime.Directive{
		"markdown": NewMarkdown(),
		"number":   Number,
		"percent":  Percent,
		"currency": Currency,
	}
}

// Abbreviate abbreviates s to almost n runes. If s is longer than n runes,
// the abbreviated string terminates with "...".
func Abbreviate(s string, n int) string {
	const spaces = " \n\r\t\f" // https://infra.spec.whatwg.org/#ascii-whitespace
	s = strings.TrimRight(s, spaces)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n < 3 {
		return ""
	}
	// n2 is the byte index of the rune n-2.
	p, n2 := 0, 0
	for i := range s {
		if p == n-2 {
			n2 = i
			break
		}
		p++
	}
	if p = strings.LastIndexAny(s[:n2], spaces); p > 0 {
		s = strings.TrimRight(s[:p], spaces)
	} else {
		s = ""
	}
	if l := len(s) - 1; l >= 0 && (s[l] == '.' || s[l] == ',') {
		s = s[:l]
	}
	return s + "..."
}

// Abs returns the absolute value of x.
func Abs(x decimal.Decimal) decimal.Decimal {
	return x.Abs()
}

// Base64 returns the base64 encoding of s.
func Base64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Capitalize returns a copy of the string src with the first non-separator in
// upper case.
func Capitalize(src string) string {
	for i, r := range src {
		if isSeparator(r) {
			continue
		}
		if unicode.IsUpper(r) {
			return src
		}
		b := strings.Builder{}
		b.Grow(len(src))
		b.WriteString(src[:i])
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(src[i+utf8.RuneLen(r):])
		return b.String()
	}
	return src
}

// CapitalizeAll returns a copy of the string src with the first letter of
// each word in upper case.
func CapitalizeAll(src string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		if isSeparator(prev) {
			prev = r
			return unicode.ToUpper(r)
		}
		prev = r
		return r
	}, src)
}

// Hex returns the hexadecimal encoding of src.
func Hex(src string) string {
	return hex.EncodeToString([]byte(src))
}

// HmacSHA1 returns the HMAC-SHA1 tag for the given message and key, as a
// base64 encoded string.
func HmacSHA1(message, key string) string {
	mac := hmac.New(sha1.New, []byte(key))
	_, _ = io.WriteString(mac, message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// HmacSHA256 returns the HMAC-SHA256 tag for the given message and key, as a
// base64 encoded string.
func HmacSHA256(message, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	_, _ = io.WriteString(mac, message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Max returns the larger of x or y.
func Max(x, y decimal.Decimal) decimal.Decimal {
	if x.LessThan(y) {
		return y
	}
	return x
}

// Md5 returns the MD5 checksum of src as an hexadecimal encoded string.
func Md5(src string) string {
	h := md5.Sum([]byte(src))
	return hex.EncodeToString(h[:])
}

// Min returns the smaller of x or y.
func Min(x, y decimal.Decimal) decimal.Decimal {
	if y.LessThan(x) {
		return y
	}
	return x
}

// QueryEscape escapes the string so it can be safely placed
// inside a URL query.
func QueryEscape(s string) string {
	const hexchars = "0123456789abcdef"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' ||
			c == '-' || c == '.' || c == '_' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexchars[c>>4])
		b.WriteByte(hexchars[c&0xF])
	}
	return b.String()
}

// Round returns x rounded to places decimal places, rounding half away
// from zero.
func Round(x decimal.Decimal, places int) decimal.Decimal {
	return x.Round(int32(places))
}

// Sha1 returns the SHA1 checksum of src as an hexadecimal encoded string.
func Sha1(src string) string {
	h := sha1.Sum([]byte(src))
	return hex.EncodeToString(h[:])
}

// Sha256 returns the SHA256 checksum of src as an hexadecimal encoded string.
func Sha256(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// ToKebab returns a copy of the string s in kebab case form.
func ToKebab(s string) string {
	b := strings.Builder{}
	b.Grow(len(s) + 2)
	noDash := false // true if the last written rune is not a dash.
	runes := []rune(s)
	n := len(runes)
	for i := 0; i < n; i++ {
		r := runes[i]
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			noDash = true
		case unicode.IsUpper(r):
			if noDash && (unicode.IsLower(runes[i-1]) || i+1 < n && unicode.IsLower(runes[i+1])) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			noDash = true
		default:
			if noDash && i+1 < n {
				b.WriteByte('-')
				noDash = false
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// isSeparator reports whether the rune could mark a word boundary.
func isSeparator(r rune) bool {
	if r <= 0x7F {
		switch {
		case '0' <= r && r <= '9':
			return false
		case 'a' <= r && r <= 'z':
			return false
		case 'A' <= r && r <= 'Z':
			return false
		case r == '_':
			return false
		}
		return true
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	return unicode.IsSpace(r)
}
