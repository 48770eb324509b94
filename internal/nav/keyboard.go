package nav

// KeyKind tags an on-screen keyboard cell
type KeyKind int

const (
	KeyChar KeyKind = iota
	KeyDelete
	KeySubmit
	KeyCancel
)

// Key is one cell of the on-screen keyboard
type Key struct {
	Kind KeyKind
	Char rune // set only for KeyChar
}

// Label returns the text drawn on the key
func (k Key) Label() string {
	switch k.Kind {
	case KeyDelete:
		return "DEL"
	case KeySubmit:
		return "SEARCH"
	case KeyCancel:
		return "CANCEL"
	default:
		if k.Char == ' ' {
			return "SPACE"
		}
		return string(k.Char)
	}
}

const (
	KeyboardRows = 4
	KeyboardCols = 10
)

func ch(r rune) Key { return Key{Kind: KeyChar, Char: r} }

// Layout is the fixed on-screen keyboard grid
var Layout = [KeyboardRows][KeyboardCols]Key{
	{ch('a'), ch('b'), ch('c'), ch('d'), ch('e'), ch('f'), ch('g'), ch('h'), ch('i'), ch('j')},
	{ch('k'), ch('l'), ch('m'), ch('n'), ch('o'), ch('p'), ch('q'), ch('r'), ch('s'), ch('t')},
	{ch('u'), ch('v'), ch('w'), ch('x'), ch('y'), ch('z'), ch('1'), ch('2'), ch('3'), ch('4')},
	{ch('5'), ch('6'), ch('7'), ch('8'), ch('9'), ch('0'), ch(' '), {Kind: KeyDelete}, {Kind: KeySubmit}, {Kind: KeyCancel}},
}

// KeyboardState is the query being typed and the cursor over Layout
type KeyboardState struct {
	Query string
	Row   int
	Col   int
}

// Current returns the key under the cursor
func (k KeyboardState) Current() Key {
	return Layout[k.Row][k.Col]
}

// move shifts the cursor, clamping to the grid edges
func (k *KeyboardState) move(dRow, dCol int) {
	k.Row = clamp(k.Row+dRow, 0, KeyboardRows-1)
	k.Col = clamp(k.Col+dCol, 0, len(Layout[k.Row])-1)
}

func (k *KeyboardState) reset() {
	*k = KeyboardState{}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
