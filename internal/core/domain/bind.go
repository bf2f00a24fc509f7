package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderStyle is the positional parameter syntax of an engine.
type PlaceholderStyle int

const (
	// Dollar numbers parameters ($1, $2, ...). A repeated name reuses its index.
	Dollar PlaceholderStyle = iota
	// Question emits ? per occurrence, repeating the argument.
	Question
)

// Bind rewrites the :name placeholders in text to style and returns the
// positional arguments. Casts (::type) and text inside quotes are left
// untouched. A placeholder with no entry in params is an error.
func Bind(text string, params Params, style PlaceholderStyle) (string, []any, error) {
	var (
		out     strings.Builder
		args    []any
		indexOf = make(map[string]int)
		quote   byte
	)
	out.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			out.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"':
			quote = c
			out.WriteByte(c)
		case c == ':' && i+1 < len(text) && text[i+1] == ':':
			out.WriteString("::")
			i++
		case c == ':' && i+1 < len(text) && isIdentStart(text[i+1]):
			j := i + 1
			for j < len(text) && isIdentPart(text[j]) {
				j++
			}
			name := text[i+1 : j]
			val, ok := params[name]
			if !ok {
				return "", nil, fmt.Errorf("%w: %q", ErrMissingParam, name)
			}

			switch style {
			case Dollar:
				n, seen := indexOf[name]
				if !seen {
					args = append(args, val)
					n = len(args)
					indexOf[name] = n
				}
				out.WriteByte('$')
				out.WriteString(strconv.Itoa(n))
			default:
				args = append(args, val)
				out.WriteByte('?')
			}
			i = j - 1
		default:
			out.WriteByte(c)
		}
	}

	return out.String(), args, nil
}

// Placeholders returns the distinct placeholder names in text, in order of
// first appearance.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"':
			quote = c
		case c == ':' && i+1 < len(text) && text[i+1] == ':':
			i++
		case c == ':' && i+1 < len(text) && isIdentStart(text[i+1]):
			j := i + 1
			for j < len(text) && isIdentPart(text[j]) {
				j++
			}
			if name := text[i+1 : j]; !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i = j - 1
		}
	}
	return names
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
