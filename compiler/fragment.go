package compiler

import (
	"fmt"
	"strings"
)

type PointerAndIndex struct {
	Pointer string
	Index   int
}

// GoFIR is the flat token buffer every unit is printed into. Markers are
// recorded in pointerAndIndexVec and point at the token position they were
// pushed at, so a suffix of the buffer can be cut off and reused.
type GoFIR struct {
	tokenSlice         []Token
	pointerAndIndexVec []PointerAndIndex
}

func (gir *GoFIR) emitToken(token Token, pointer string) {
	gir.pointerAndIndexVec = append(gir.pointerAndIndexVec, PointerAndIndex{
		Pointer: pointer,
		Index:   len(gir.tokenSlice),
	})
	if token.Content != "" {
		gir.tokenSlice = append(gir.tokenSlice, token)
	}
}

// FragmentStack provides a Push/Reduce API on top of GoFIR's storage.
type FragmentStack struct {
	gir *GoFIR
}

func NewFragmentStack(gir *GoFIR) *FragmentStack {
	return &FragmentStack{gir: gir}
}

func markerString(marker int) string {
	return fmt.Sprintf("__J2C_M_%d", marker)
}

// PushMarker records a marker without adding a token.
func (fs *FragmentStack) PushMarker(marker int) {
	fs.gir.emitToken(Token{}, markerString(marker))
}

func (fs *FragmentStack) Push(code string) {
	fs.gir.emitToken(Token{Content: code}, "__J2C_PUSH")
}

// Reduce finds the last occurrence of marker, cuts every token pushed after
// it out of the buffer and returns them.
func (fs *FragmentStack) Reduce(marker int) []Token {
	target := markerString(marker)
	pivIdx := -1
	for i := len(fs.gir.pointerAndIndexVec) - 1; i >= 0; i-- {
		if fs.gir.pointerAndIndexVec[i].Pointer == target {
			pivIdx = i
			break
		}
	}
	if pivIdx < 0 {
		return nil
	}
	tokenIdx := fs.gir.pointerAndIndexVec[pivIdx].Index
	var result []Token
	if tokenIdx < len(fs.gir.tokenSlice) {
		result = make([]Token, len(fs.gir.tokenSlice)-tokenIdx)
		copy(result, fs.gir.tokenSlice[tokenIdx:])
	}
	fs.gir.tokenSlice = fs.gir.tokenSlice[:tokenIdx]
	fs.gir.pointerAndIndexVec = fs.gir.pointerAndIndexVec[:pivIdx]
	return result
}

func (fs *FragmentStack) ReduceToCode(marker int) string {
	return joinTokens(fs.Reduce(marker))
}

// Code returns the whole buffer as text.
func (fs *FragmentStack) Code() string {
	return joinTokens(fs.gir.tokenSlice)
}

func joinTokens(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Content)
	}
	return sb.String()
}

// printer writes indented lines into a FragmentStack.
type printer struct {
	fs     *FragmentStack
	indent int
}

func newPrinter() *printer {
	return &printer{fs: NewFragmentStack(&GoFIR{})}
}

func (p *printer) print(parts ...string) {
	for _, s := range parts {
		p.fs.Push(s)
	}
}

func (p *printer) println(parts ...string) {
	p.print(parts...)
	p.fs.Push("\n")
}

// printi prints the current indentation followed by parts.
func (p *printer) printi(parts ...string) {
	if p.indent > 0 {
		p.fs.Push(strings.Repeat("    ", p.indent))
	}
	p.print(parts...)
}

func (p *printer) printlni(parts ...string) {
	p.printi(parts...)
	p.fs.Push("\n")
}

// capture runs fn and returns what it printed instead of keeping it in the
// buffer.
func (p *printer) capture(marker int, fn func()) string {
	p.fs.PushMarker(marker)
	fn()
	return p.fs.ReduceToCode(marker)
}

func (p *printer) String() string {
	return p.fs.Code()
}
