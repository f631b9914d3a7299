package compiler

// Token is one piece of generated text.
type Token struct {
	Content string
}

// Markers name the construct a captured fragment belongs to.
const (
	MarkerInit   int = 3
	MarkerClinit int = 4
	MarkerHeader int = 8
)

func (t Token) String() string { return t.Content }
