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

package lexer

import (
	"fmt"
)

// stateFn uses the input lexer to read runes and emit tokens.
//
// It either returns nil when reaching end of file,
// or returns another stateFn for more scanning work.
type stateFn func(*lexer) stateFn

// rootState returns a stateFn that scans the file and emits tokens until
// reaching the end of the file.
func rootState(l *lexer) stateFn {

	for {
		var ty TokenType

		r := l.next()
		switch r {
		case EOF:
			return nil
		case '(':
			ty = TokenParenOpen
		case ')':
			ty = TokenParenClose
		case ',':
			ty = TokenComma
		case ';':
			ty = TokenSemicolon
		case '<':
			ty = TokenLess
		case '>':
			ty = TokenGreater
		case ' ', '\t', '\r', '\n':
			return spaceState
		case '#':
			return commentState
		case '"':
			return stringState
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return numberState
		default:
			if isIdentifierStart(r) {
				return identifierState
			}
			return l.error(fmt.Errorf("unrecognized character: %#U", r))
		}

		l.emitType(ty)
	}
}

func (l *lexer) error(err error) stateFn {
	l.emitError(err)
	return nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func isIdentifierStart(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}

func spaceState(l *lexer) stateFn {
	l.acceptWhile(isSpace)
	return l.emitTokenAndReturnRootState(TokenSpace)
}

// commentState scans the rest of the line, excluding the line break
func commentState(l *lexer) stateFn {
	l.acceptWhile(func(r rune) bool {
		return r != '\n'
	})
	return l.emitTokenAndReturnRootState(TokenComment)
}

func identifierState(l *lexer) stateFn {
	l.acceptWhile(isIdentifierPart)
	return l.emitTokenAndReturnRootState(TokenIdentifier)
}

// numberState scans an optionally negative integer with its type suffix, e.g. -5i32.
// The suffix is validated by the parser.
func numberState(l *lexer) stateFn {
	if l.current == '-' {
		r := l.next()
		if !isDigit(r) {
			if r != EOF {
				l.backupOne()
			}
			return l.error(fmt.Errorf("expected digit after '-'"))
		}
	}

	// digits and suffix
	l.acceptWhile(isIdentifierPart)

	return l.emitTokenAndReturnRootState(TokenNumber)
}

// stringState scans a string literal, including its quotes.
// Escape sequences are validated by the parser.
func stringState(l *lexer) stateFn {
	for {
		r := l.next()
		switch r {
		case EOF, '\n':
			if r == '\n' {
				l.backupOne()
			}
			return l.error(fmt.Errorf("unterminated string literal"))
		case '\\':
			if l.next() == EOF {
				return l.error(fmt.Errorf("unterminated string literal"))
			}
		case '"':
			return l.emitTokenAndReturnRootState(TokenString)
		}
	}
}

func (l *lexer) emitTokenAndReturnRootState(token TokenType) stateFn {
	l.emitType(token)
	return rootState
}
