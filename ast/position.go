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

package ast

import (
	"fmt"
)

// Position defines a row/column within a manifest.
type Position struct {
	// Offset is the byte offset, starting at 0
	Offset int
	// Line is the line number, starting at 1
	Line int
	// Column is the column number, starting at 0 (relative to Line)
	Column int
}

func (position Position) String() string {
	return fmt.Sprintf("%d:%d", position.Line, position.Column)
}

// Shifted returns the position moved forward by the given number of bytes on the same line.
func (position Position) Shifted(length int) Position {
	return Position{
		Line:   position.Line,
		Column: position.Column + length,
		Offset: position.Offset + length,
	}
}

func (position Position) Compare(other Position) int {
	switch {
	case position.Offset < other.Offset:
		return -1
	case position.Offset > other.Offset:
		return 1
	default:
		return 0
	}
}

type HasPosition interface {
	StartPosition() Position
	EndPosition() Position
}

// Range is the source range of a token or instruction.
// The end position is inclusive.
type Range struct {
	StartPos Position
	EndPos   Position
}

var EmptyRange = Range{}

func NewRange(startPos, endPos Position) Range {
	return Range{
		StartPos: startPos,
		EndPos:   endPos,
	}
}

func NewRangeFromPositioned(hasPosition HasPosition) Range {
	return Range{
		StartPos: hasPosition.StartPosition(),
		EndPos:   hasPosition.EndPosition(),
	}
}

func (r Range) StartPosition() Position {
	return r.StartPos
}

func (r Range) EndPosition() Position {
	return r.EndPos
}

// Source returns the part of the input covered by the range.
func (r Range) Source(input []byte) []byte {
	startOffset := r.StartPos.Offset
	if startOffset < 0 || startOffset >= len(input) {
		return nil
	}
	endOffset := r.EndPos.Offset + 1
	if endOffset > len(input) {
		endOffset = len(input)
	}
	if endOffset < startOffset {
		return nil
	}
	return input[startOffset:endOffset]
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.StartPos, r.EndPos)
}
