package engine

// kwPrefix marks string literals that were :keywords in the source.
const kwPrefix = "__kw_"

// preprocessSource rewrites kerf script source into something zygomys
// reads:
//
//   - :name becomes the string "__kw_name"; builtins look keywords up
//     with parseArgs. := is left alone.
//   - hyphenated names (sphere-surface) become underscored
//     (sphere_surface); a hyphen is only rewritten between a name
//     character and a letter, so (- a 1) and -1 survive.
//   - ; and ;; comments become // comments.
//
// String literals in either quote style are copied verbatim.
func preprocessSource(source string) string {
	src := []byte(source)
	out := make([]byte, 0, len(src)+len(src)/4)
	for i := 0; i < len(src); {
		switch c := src[i]; {
		case c == '"':
			end := scanQuoted(src, i, '"', true)
			out = append(out, src[i:end]...)
			i = end
		case c == '`':
			end := scanQuoted(src, i, '`', false)
			out = append(out, src[i:end]...)
			i = end
		case c == ';':
			out = append(out, '/', '/')
			for i < len(src) && src[i] == ';' {
				i++
			}
			for i < len(src) && src[i] != '\n' {
				out = append(out, src[i])
				i++
			}
		case c == ':' && i+1 < len(src) && src[i+1] == '=':
			out = append(out, ':', '=')
			i += 2
		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isKWChar(src[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, src[i+1:j]...)
			out = append(out, '"')
			i = j
		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isLetter(src[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// scanQuoted returns the index just past the literal opened at src[start].
// An unterminated literal runs to the end of input.
func scanQuoted(src []byte, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(src) && src[i] != quote {
		if escapes && src[i] == '\\' && i+1 < len(src) {
			i += 2
			continue
		}
		i++
	}
	if i < len(src) {
		i++
	}
	if i > len(src) {
		i = len(src)
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
