package formats

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// tokenizer reads whitespace separated tokens on demand. A token starting
// with '#' drops the remainder of its line.
type tokenizer struct {
	r    *bufio.Reader
	line int

	// One token of lookahead filled by peek.
	peeked    string
	hasPeeked bool
	peekLine  int
}

func newTokenizer(r io.Reader) *tokenizer {
	return &tokenizer{r: bufio.NewReader(r), line: 1}
}

// next returns the next token, or io.EOF when the input is exhausted.
func (t *tokenizer) next() (string, error) {
	if t.hasPeeked {
		t.hasPeeked = false
		return t.peeked, nil
	}
	for {
		tok, err := t.scan()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(tok, "#") {
			if err := t.skipLine(); err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
			continue
		}
		return tok, nil
	}
}

// peek returns the next token without consuming it.
func (t *tokenizer) peek() (string, error) {
	if t.hasPeeked {
		return t.peeked, nil
	}
	tok, err := t.next()
	if err != nil {
		return "", err
	}
	t.peeked, t.hasPeeked, t.peekLine = tok, true, t.line
	return tok, nil
}

// scan reads one raw token, skipping leading whitespace.
func (t *tokenizer) scan() (string, error) {
	var sb strings.Builder
	for {
		r, _, err := t.r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		if unicode.IsSpace(r) {
			if sb.Len() > 0 {
				// Leave the separator for the next scan so line counting
				// and comment skipping see it.
				_ = t.r.UnreadRune()
				return sb.String(), nil
			}
			if r == '\n' {
				t.line++
			}
			continue
		}
		sb.WriteRune(r)
	}
}

// skipLine discards input up to and including the next newline.
func (t *tokenizer) skipLine() error {
	_, err := t.r.ReadString('\n')
	if err == nil {
		t.line++
	}
	return err
}

// lineNumber reports the line of the most recently returned token.
func (t *tokenizer) lineNumber() int {
	if t.hasPeeked {
		return t.peekLine
	}
	return t.line
}

// parseFloat decodes a numeric token.
func parseFloat(tok string) (float32, error) {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

// unquote strips one pair of surrounding double quotes.
func unquote(tok string) string {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return tok[1 : len(tok)-1]
	}
	return tok
}
