package buttons

type tokenKind int

const (
	tokText tokenKind = iota
	tokPipe
	tokComma
	tokOpen
	tokClose
	tokColon
)

// token spans src[start:end].
type token struct {
	kind  tokenKind
	start int
	end   int
}

// lex splits src into delimiter tokens and the text between them. Text
// tokens keep their whitespace; the parser decides what to trim.
func lex(src string) []token {
	var tokens []token
	textStart := -1
	flush := func(at int) {
		if textStart >= 0 {
			tokens = append(tokens, token{kind: tokText, start: textStart, end: at})
			textStart = -1
		}
	}
	for i := 0; i < len(src); i++ {
		kind, ok := delimiter(src[i])
		if !ok {
			if textStart < 0 {
				textStart = i
			}
			continue
		}
		flush(i)
		tokens = append(tokens, token{kind: kind, start: i, end: i + 1})
	}
	flush(len(src))
	return tokens
}

func delimiter(c byte) (tokenKind, bool) {
	switch c {
	case '|':
		return tokPipe, true
	case ',':
		return tokComma, true
	case '<':
		return tokOpen, true
	case '>':
		return tokClose, true
	case ':':
		return tokColon, true
	}
	return tokText, false
}
