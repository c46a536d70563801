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
	"unicode/utf8"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/errors"
)

// TokenStream is the sequence of tokens of a manifest.
// The last token is always an EOF token.
type TokenStream interface {
	// Next consumes and returns the next token.
	// After the end of the input it keeps returning the EOF token.
	Next() Token
	// Cursor returns the index of the next token
	Cursor() int
	// Revert moves back to the token at the given cursor
	Revert(cursor int)
	Input() []byte
}

type lexer struct {
	input  []byte
	tokens []Token
	cursor int
	// startPos is the position of the first rune of the current token
	startPos ast.Position
	// endPos is the position of the next rune to read
	endPos ast.Position
	// lastPos is the position of the last rune read
	lastPos ast.Position
	// prevEndPos and prevLastPos are restored by backupOne
	prevEndPos  ast.Position
	prevLastPos ast.Position
	canBackup   bool
	current     rune
}

var _ TokenStream = &lexer{}

// Lex tokenizes the whole input.
// Lexing stops at the first error, which is emitted as an error token.
func Lex(input []byte) TokenStream {
	start := ast.Position{Line: 1}
	l := &lexer{
		input:    input,
		startPos: start,
		endPos:   start,
		lastPos:  start,
	}
	l.run(rootState)
	return l
}

func (l *lexer) Next() Token {
	if l.cursor >= len(l.tokens) {
		// the last token is always EOF
		return l.tokens[len(l.tokens)-1]
	}
	token := l.tokens[l.cursor]
	l.cursor++
	return token
}

func (l *lexer) Cursor() int {
	return l.cursor
}

func (l *lexer) Revert(cursor int) {
	l.cursor = cursor
}

func (l *lexer) Input() []byte {
	return l.input
}

func (l *lexer) run(state stateFn) {
	for state != nil {
		state = state(l)
	}

	l.tokens = append(l.tokens, Token{
		Type:  TokenEOF,
		Range: ast.NewRange(l.endPos, l.endPos),
	})
}

// next decodes the next rune and advances the position.
// It returns EOF at the end of the input.
func (l *lexer) next() rune {
	l.prevEndPos = l.endPos
	l.prevLastPos = l.lastPos
	l.canBackup = true

	offset := l.endPos.Offset
	if offset >= len(l.input) {
		l.current = EOF
		return EOF
	}

	r, width := utf8.DecodeRune(l.input[offset:])

	l.lastPos = l.endPos
	if r == '\n' {
		l.endPos = ast.Position{
			Offset: offset + width,
			Line:   l.endPos.Line + 1,
			Column: 0,
		}
	} else {
		l.endPos = l.endPos.Shifted(width)
	}

	l.current = r
	return r
}

// backupOne moves back to the position before the last call of next.
// Only one rune can be backed up.
func (l *lexer) backupOne() {
	if !l.canBackup {
		panic(errors.NewUnexpectedError("second backup"))
	}
	l.canBackup = false

	l.endPos = l.prevEndPos
	l.lastPos = l.prevLastPos
}

// acceptOne reads the next rune if it is the expected one.
func (l *lexer) acceptOne(r rune) bool {
	if l.next() == r {
		return true
	}
	l.backupOne()
	return false
}

// acceptWhile reads runes as long as they satisfy the predicate.
func (l *lexer) acceptWhile(f func(rune) bool) {
	for {
		r := l.next()
		if r == EOF {
			return
		}
		if !f(r) {
			l.backupOne()
			return
		}
	}
}

// word returns the source of the current token.
func (l *lexer) word() []byte {
	return l.input[l.startPos.Offset:l.endPos.Offset]
}

func (l *lexer) tokenRange() ast.Range {
	endPos := l.lastPos
	if l.endPos.Offset == l.startPos.Offset {
		endPos = l.startPos
	}
	return ast.NewRange(l.startPos, endPos)
}

func (l *lexer) emit(token Token) {
	l.tokens = append(l.tokens, token)

	l.startPos = l.endPos
	l.canBackup = false
}

func (l *lexer) emitType(ty TokenType) {
	l.emit(Token{
		Type:  ty,
		Range: l.tokenRange(),
	})
}

func (l *lexer) emitError(err error) {
	l.emit(Token{
		Type:  TokenError,
		Error: err,
		Range: l.tokenRange(),
	})
}
