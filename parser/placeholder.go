/*
 * RTM - The transaction manifest language and resource engine
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package parser

import (
	"bytes"

	"github.com/ledgerworks/rtm/ast"
)

// Placeholders have the form {name}, where name is an identifier.
// They are substituted in the whole source, including string literals,
// but not in comments. {{ is a literal {.

type substitution struct {
	offset         int
	length         int
	originalOffset int
	originalLength int
}

// sourceMap maps offsets in the substituted source back to the original source.
type sourceMap struct {
	original      []byte
	substitutions []substitution
}

func (m sourceMap) originalOffset(offset int) int {
	original := offset
	for _, s := range m.substitutions {
		if offset < s.offset {
			break
		}
		if offset < s.offset+s.length {
			return s.originalOffset
		}
		original = offset - (s.offset + s.length) + s.originalOffset + s.originalLength
	}
	return original
}

func (m sourceMap) originalPosition(pos ast.Position) ast.Position {
	if len(m.substitutions) == 0 {
		return pos
	}
	return positionAt(m.original, m.originalOffset(pos.Offset))
}

// positionAt returns the line and column of the byte offset in the input.
func positionAt(input []byte, offset int) ast.Position {
	pos := ast.Position{Line: 1}
	for i := 0; i < offset && i < len(input); i++ {
		if input[i] == '\n' {
			pos.Line++
			pos.Column = 0
		} else {
			pos.Column++
		}
	}
	pos.Offset = offset
	return pos
}

func isPlaceholderStart(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

func isPlaceholderPart(b byte) bool {
	return isPlaceholderStart(b) || (b >= '0' && b <= '9')
}

// substitutePlaceholders replaces all placeholders in the code
// with the values of the table.
func substitutePlaceholders(code []byte, placeholders map[string]string) ([]byte, sourceMap, error) {
	sources := sourceMap{original: code}

	if bytes.IndexByte(code, '{') < 0 {
		return code, sources, nil
	}

	result := make([]byte, 0, len(code))

	inString := false
	i := 0
	for i < len(code) {
		c := code[i]

		switch {
		case inString && c == '\\' && i+1 < len(code):
			result = append(result, c, code[i+1])
			i += 2
			continue

		case c == '"':
			inString = !inString

		case !inString && c == '#':
			end := bytes.IndexByte(code[i:], '\n')
			if end < 0 {
				end = len(code) - i
			}
			result = append(result, code[i:i+end]...)
			i += end
			continue

		case c == '{':
			if i+1 < len(code) && code[i+1] == '{' {
				sources.substitutions = append(sources.substitutions, substitution{
					offset:         len(result),
					length:         1,
					originalOffset: i,
					originalLength: 2,
				})
				result = append(result, '{')
				i += 2
				continue
			}

			end := i + 1
			if end < len(code) && isPlaceholderStart(code[end]) {
				end++
				for end < len(code) && isPlaceholderPart(code[end]) {
					end++
				}
			}
			if end == i+1 || end >= len(code) || code[end] != '}' {
				return nil, sources, &SyntaxError{
					Pos:      positionAt(code, i),
					Expected: "placeholder of the form {name}",
					Found:    "`{`",
				}
			}

			name := string(code[i+1 : end])
			value, ok := placeholders[name]
			if !ok {
				return nil, sources, &SyntaxError{
					Pos: positionAt(code, i),
					Err: UnresolvedPlaceholderError{Name: name},
				}
			}

			sources.substitutions = append(sources.substitutions, substitution{
				offset:         len(result),
				length:         len(value),
				originalOffset: i,
				originalLength: end + 1 - i,
			})
			result = append(result, value...)
			i = end + 1
			continue
		}

		result = append(result, c)
		i++
	}

	return result, sources, nil
}
