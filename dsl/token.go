package dsl

import "unicode"

// Token is one lexical unit of a command line: a header word or a key=value
// segment. Quotes and escapes inside a quoted span are preserved verbatim in
// Text; Quoted records whether the token contained a quoted span at all.
type Token struct {
	Text   string
	Quoted bool
}

// Tokenize splits one command line into whitespace-separated tokens while
// keeping quoted spans intact. Inside a quoted span, \" and \\ are literal
// escapes and an unescaped quote closes the span.
func Tokenize(line string) ([]Token, error) {
	var (
		tokens  []Token
		current []rune
		quoted  bool
		inQuote bool
		escape  bool
	)

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, Token{Text: string(current), Quoted: quoted})
			current = current[:0]
			quoted = false
		}
	}

	for _, ch := range line {
		if inQuote {
			current = append(current, ch)
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inQuote = false
			}
			continue
		}

		if unicode.IsSpace(ch) {
			flush()
			continue
		}

		current = append(current, ch)
		if ch == '"' {
			inQuote = true
			quoted = true
		}
	}

	if inQuote {
		return nil, parseErrorf(ErrUnterminatedQuote, `missing closing '"'`)
	}
	flush()

	if len(tokens) == 0 {
		return nil, parseErrorf(ErrInvalidHeader, "empty input")
	}
	return tokens, nil
}

// stripTrailingPunctuation drops a single trailing standalone '.', ',' or ';'
// token. This tolerates a common kind of model output noise and is only
// applied in lenient mode.
func stripTrailingPunctuation(tokens []Token) []Token {
	if len(tokens) == 0 {
		return tokens
	}
	switch tokens[len(tokens)-1].Text {
	case ".", ",", ";":
		return tokens[:len(tokens)-1]
	}
	return tokens
}
