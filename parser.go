package sigma

import "fmt"

type parser struct {
	// lexer that tokenizes input string
	lex *lexer

	tokens []Item
	// memorize last token to validate proper sequence
	// for example, two identifiers have to be joined via logical AND or OR, otherwise the sequence is invalid
	previous Item

	// parsed searches from detection map, referenced by condition identifiers
	searches searchIndex

	// for debug
	condition string

	// resulting condition tree that can be collected later
	result Branch
}

func (p *parser) run() error {
	if p.lex == nil {
		return fmt.Errorf("cannot run condition parser, lexer not initialized")
	}
	// Pass 1: collect tokens, do basic sequence validation
	if err := p.collect(); err != nil {
		return err
	}
	// Pass 2: build tree from groups
	b, err := newBranch(p.searches, p.tokens, 0)
	if err != nil {
		return err
	}
	p.result = b
	return nil
}

// collect gathers all items from lexer and does preliminary sequence validation
func (p *parser) collect() error {
	// early return would otherwise leave lexer goroutine blocked on send
	defer p.lex.drain()

	p.previous = Item{T: TokBegin}
	var balance int
	for item := range p.lex.items {
		switch item.T {
		case TokUnsupp:
			return ErrUnsupportedToken{Msg: item.Val}
		case TokKeywordAgg:
			return ErrUnsupportedToken{Msg: fmt.Sprintf("aggregation keyword %s", item.Val)}
		case TokSepLpar:
			balance++
		case TokSepRpar:
			balance--
		}
		if !validTokenSequence(p.previous.T, item.T) || balance < 0 {
			return ErrInvalidTokenSeq{
				Prev:      p.previous,
				Next:      item,
				Collected: p.tokens,
			}
		}
		if item.T != TokLitEof {
			p.tokens = append(p.tokens, item)
		}
		p.previous = item
	}
	if p.previous.T != TokLitEof || balance != 0 {
		return ErrIncompleteTokenSeq{
			Expression: p.condition,
			Items:      p.tokens,
			Last:       p.previous,
		}
	}
	return nil
}
