package ast

import "github.com/basecode-lang/basecode-sub003/token"

// cursor is a lookahead-buffered view over a lexed token stream that
// filters out whitespace, folding comments into a pending-comment queue
// so the parser can reattach them to the next real token's node (spec.md
// §3's side-table "comments" field).
type cursor struct {
	pool *token.Pool
	ids  []token.ID
	pos  int

	pending []string // comment text queued since the last real token.
}

func newCursor(pool *token.Pool, ids []token.ID) *cursor {
	c := &cursor{pool: pool, ids: ids}
	c.skipTrivia()
	return c
}

func (c *cursor) skipTrivia() {
	for c.pos < len(c.ids) {
		tok := c.pool.At(c.ids[c.pos])
		switch tok.Kind() {
		case token.Space:
			c.pos++
		case token.Comment:
			c.pending = append(c.pending, tok.Lexeme())
			c.pos++
		default:
			return
		}
	}
}

// peek returns the current non-trivia token without consuming it.
func (c *cursor) peek() token.Token {
	if c.pos >= len(c.ids) {
		return token.Token{}
	}
	return c.pool.At(c.ids[c.pos])
}

// peekAt returns the non-trivia token n positions ahead of current (0 ==
// peek()), scanning forward transparently over trivia.
func (c *cursor) peekAt(n int) token.Token {
	save := c.pos
	defer func() { c.pos = save }()
	for ; n > 0; n-- {
		c.advanceRaw()
		for c.pos < len(c.ids) {
			tok := c.pool.At(c.ids[c.pos])
			if tok.Kind() != token.Space && tok.Kind() != token.Comment {
				break
			}
			c.pos++
		}
	}
	if c.pos >= len(c.ids) {
		return token.Token{}
	}
	return c.pool.At(c.ids[c.pos])
}

func (c *cursor) advanceRaw() {
	if c.pos < len(c.ids) {
		c.pos++
	}
}

// next consumes and returns the current token, then skips the trivia after
// it, queueing any comments it passes for takeComments.
func (c *cursor) next() token.Token {
	tok := c.peek()
	c.advanceRaw()
	c.skipTrivia()
	return tok
}

// takeComments drains and returns the comments queued since the last
// drain, i.e. those skipped before the current token.
func (c *cursor) takeComments() []string {
	if len(c.pending) == 0 {
		return nil
	}
	out := c.pending
	c.pending = nil
	return out
}

func (c *cursor) atEOF() bool { return c.peek().Kind() == token.EOF || c.peek().Nil() }
