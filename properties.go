package huffman

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrMalformedProperties is returned by ReadProperties for a line it cannot
// parse.
var ErrMalformedProperties = errors.New("huffman: malformed properties")

const propertiesHeader = "# Huffman symbol frequencies\n"

// WriteProperties writes a symbol table as "key=count" lines, one per symbol,
// in the given order.  toString converts each value to its key.  Counts are
// written with "," as the grouping separator.
func WriteProperties[T comparable](w io.Writer, freqs []Frequency[T], toString func(T) string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(propertiesHeader)
	for _, f := range freqs {
		bw.WriteString(escapeKey(toString(f.Value)))
		bw.WriteByte('=')
		bw.WriteString(formatCount(f.Count))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadProperties reads a symbol table written by WriteProperties, or by hand.
// Blank lines and lines starting with '#' or '!' are skipped.  The key ends
// at the first unescaped '=' or ':'.  The count may contain ',' or '_'
// grouping separators.  fromString converts each key back to its value.
func ReadProperties[T comparable](r io.Reader, fromString func(string) (T, error)) ([]Frequency[T], error) {
	var out []Frequency[T]
	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimLeft(sc.Text(), " \t\f")
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}

		sep := findSeparator(line)
		if sep < 0 {
			return nil, fmt.Errorf("%w: line %d: missing '=' in %q", ErrMalformedProperties, lineNum, line)
		}
		key, err := unescapeKey(trimKey(line[:sep]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedProperties, lineNum, err)
		}
		count, err := parseCount(line[sep+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedProperties, lineNum, err)
		}
		value, err := fromString(key)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: key %q: %v", ErrMalformedProperties, lineNum, key, err)
		}
		out = append(out, Frequency[T]{Value: value, Count: count})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func findSeparator(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '=', ':':
			return i
		}
	}
	return -1
}

// trimKey drops trailing whitespace that is not escaped.
func trimKey(raw string) string {
	for len(raw) > 0 {
		ch := raw[len(raw)-1]
		if ch != ' ' && ch != '\t' && ch != '\f' {
			break
		}
		n := 0
		for j := len(raw) - 2; j >= 0 && raw[j] == '\\'; j-- {
			n++
		}
		if n%2 == 1 {
			break
		}
		raw = raw[:len(raw)-1]
	}
	return raw
}

// escapeKey works byte by byte, so keys need not be valid UTF-8.
func escapeKey(key string) string {
	var sb strings.Builder
	for i := 0; i < len(key); i++ {
		ch := key[i]
		switch ch {
		case '\\', '=', ':', '#', '!':
			sb.WriteByte('\\')
			sb.WriteByte(ch)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\f':
			sb.WriteString(`\f`)
		case ' ':
			if i == 0 || i == len(key)-1 {
				sb.WriteByte('\\')
			}
			sb.WriteByte(' ')
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

func unescapeKey(raw string) (string, error) {
	if !strings.Contains(raw, `\`) {
		return raw, nil
	}
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(raw) {
			return "", fmt.Errorf("dangling '\\' in key %q", raw)
		}
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'f':
			sb.WriteByte('\f')
		case 'u':
			if i+5 > len(raw) {
				return "", fmt.Errorf("short \\u escape in key %q", raw)
			}
			r, err := parseUnicodeEscape(raw[i+1 : i+5])
			if err != nil {
				return "", fmt.Errorf("bad \\u escape in key %q: %v", raw, err)
			}
			i += 4
			if utf16.IsSurrogate(r) && strings.HasPrefix(raw[i+1:], `\u`) && i+7 <= len(raw) {
				if r2, err := parseUnicodeEscape(raw[i+3 : i+7]); err == nil {
					if pair := utf16.DecodeRune(r, r2); pair != utf8.RuneError {
						r = pair
						i += 6
					}
				}
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String(), nil
}

func parseUnicodeEscape(hex string) (rune, error) {
	u, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, err
	}
	return rune(u), nil
}

func formatCount(n uint64) string {
	digits := strconv.FormatUint(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	sb.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		sb.WriteByte(',')
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

func parseCount(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.NewReplacer(",", "", "_", "").Replace(raw)
	return strconv.ParseUint(raw, 10, 64)
}
