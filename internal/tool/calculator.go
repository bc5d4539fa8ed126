package tool

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Calculate 计算一个受限算术表达式，结果格式为 "expr = result"。
//
// 只接受数字、+ - * / ( ) . 与空白；其它字符一律拒绝。
// 解析器是手写的递归下降文法，刻意不依赖任何通用表达式求值器：
//
//	expr   := term (('+'|'-') term)*
//	term   := factor (('*'|'/') factor)*
//	factor := number | '(' expr ')' | ('+'|'-') factor
func Calculate(expression string) string {
	for _, ch := range expression {
		if !strings.ContainsRune("0123456789+-*/(). ", ch) && !unicode.IsSpace(ch) {
			return "Error: Invalid characters. Only use numbers and operators (+, -, *, /, parentheses)."
		}
	}

	p := &exprParser{input: []rune(expression)}
	result, err := p.parseExpr()
	if err != nil {
		return fmt.Sprintf("Calculation error: %v", err)
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return fmt.Sprintf("Calculation error: unexpected character %q at position %d", p.input[p.pos], p.pos)
	}

	return fmt.Sprintf("%s = %s", expression, strconv.FormatFloat(result, 'f', -1, 64))
}

type exprParser struct {
	input []rune
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *exprParser) peek() (rune, bool) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		ch, ok := p.peek()
		if !ok || (ch != '+' && ch != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if ch == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		ch, ok := p.peek()
		if !ok || (ch != '*' && ch != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if ch == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	ch, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch {
	case ch == '+':
		p.pos++
		return p.parseFactor()
	case ch == '-':
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case ch == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		next, ok := p.peek()
		if !ok || next != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	default:
		return p.parseNumber()
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && (unicode.IsDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected a number at position %d", p.pos)
	}
	v, err := strconv.ParseFloat(string(p.input[start:p.pos]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", string(p.input[start:p.pos]))
	}
	return v, nil
}
