package sigma

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	input    string    // condition expression being scanned
	start    int       // start position of current token
	position int       // current position of the scan
	width    int       // width of last rune read
	items    chan Item // tokens are sent to parser over this channel
}

// lex creates a lexer and starts scanning the provided input.
func lex(input string) *lexer {
	l := &lexer{
		input: input,
		items: make(chan Item),
	}
	go l.scan()
	return l
}

// drain consumes remaining tokens so that scanning goroutine can exit
func (l *lexer) drain() {
	for range l.items {
	}
}

func (l *lexer) ignore() {
	l.start = l.position
}

// next advances the lexer state to the next rune.
func (l *lexer) next() (r rune) {
	if l.position >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.todo())
	l.position += l.width
	return r
}

// backup steps back one rune
// can only be called once per call of next
func (l *lexer) backup() {
	l.position -= l.width
}

// scan runs state functions until one returns nil
func (l *lexer) scan() {
	for fn := lexCondition; fn != nil; {
		fn = fn(l)
	}
	close(l.items)
}

func (l *lexer) unsuppf(format string, args ...interface{}) stateFn {
	msg := fmt.Sprintf(format, args...)
	l.items <- Item{T: TokUnsupp, Val: msg}
	return nil
}

// emit sends current segment to parser and moves start past it
func (l *lexer) emit(k Token) {
	l.items <- Item{T: k, Val: l.input[l.start:l.position]}
	l.ignore()
}

func (l lexer) collected() string { return l.input[l.start:l.position] }
func (l lexer) todo() string      { return l.input[l.position:] }

type stateFn func(*lexer) stateFn

func hasStatementPrefix(in string, t Token) bool {
	lit := t.Literal()
	if len(in) < len(lit) || !strings.EqualFold(in[:len(lit)], lit) {
		return false
	}
	rest := in[len(lit):]
	return rest == "" || unicode.IsSpace(rune(rest[0]))
}

func lexCondition(l *lexer) stateFn {
	for {
		if l.position == l.start {
			if hasStatementPrefix(l.todo(), TokStOne) {
				return lexOneOf
			}
			if hasStatementPrefix(l.todo(), TokStAll) {
				return lexAllOf
			}
		}
		switch r := l.next(); {
		case r == eof:
			return lexEOF
		case r == TokSepRpar.Rune():
			return lexRparWithTokens
		case r == TokSepLpar.Rune():
			return lexLpar
		case r == TokSepPipe.Rune():
			return lexPipe
		case unicode.IsSpace(r):
			return lexAccumulateBeforeWhitespace
		}
	}
}

func lexOneOf(l *lexer) stateFn {
	l.position += len(TokStOne.Literal())
	l.emit(TokStOne)
	return lexWhitespace
}

func lexAllOf(l *lexer) stateFn {
	l.position += len(TokStAll.Literal())
	l.emit(TokStAll)
	return lexWhitespace
}

func lexAggs(l *lexer) stateFn {
	return l.unsuppf("aggregation not supported [%s]", l.input)
}

func lexEOF(l *lexer) stateFn {
	if l.position > l.start {
		l.emit(checkKeyWord(l.collected()))
	}
	l.emit(TokLitEof)
	return nil
}

func lexPipe(l *lexer) stateFn {
	l.backup()
	if l.position > l.start {
		if t := checkKeyWord(strings.TrimSpace(l.collected())); t != TokNil {
			l.emit(t)
		}
	}
	l.next()
	l.emit(TokSepPipe)
	return lexAggs
}

func lexLpar(l *lexer) stateFn {
	l.backup()
	if l.position > l.start {
		l.emit(checkKeyWord(l.collected()))
	}
	l.next()
	l.emit(TokSepLpar)
	return lexCondition
}

func lexRparWithTokens(l *lexer) stateFn {
	l.backup()
	if l.position > l.start {
		if t := checkKeyWord(l.collected()); t != TokNil {
			l.emit(t)
		}
	}
	l.next()
	return lexRpar
}

func lexRpar(l *lexer) stateFn {
	l.emit(TokSepRpar)
	return lexCondition
}

func lexAccumulateBeforeWhitespace(l *lexer) stateFn {
	l.backup()
	if l.position > l.start {
		l.emit(checkKeyWord(l.collected()))
	}
	return lexWhitespace
}

// lexWhitespace skips whitespace between tokens
func lexWhitespace(l *lexer) stateFn {
	for {
		switch r := l.next(); {
		case r == eof:
			l.ignore()
			return lexEOF
		case !unicode.IsSpace(r):
			l.backup()
			l.ignore()
			return lexCondition
		}
	}
}
