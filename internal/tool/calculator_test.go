package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		name       string
		expression string
		want       string
	}{
		{"multiplication", "15 * 3", "15 * 3 = 45"},
		{"addition", "5 + 3", "5 + 3 = 8"},
		{"parentheses", "(100 + 50) / 2", "(100 + 50) / 2 = 75"},
		{"decimal result", "10 / 4", "10 / 4 = 2.5"},
		{"decimal operands", "2.5 * 4", "2.5 * 4 = 10"},
		{"unary minus", "-5 + 3", "-5 + 3 = -2"},
		{"nested parens", "((2 + 3) * (4 - 1))", "((2 + 3) * (4 - 1)) = 15"},
		{"precedence", "2 + 3 * 4", "2 + 3 * 4 = 14"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Calculate(tc.expression))
		})
	}
}

func TestCalculateRejectsInvalidCharacters(t *testing.T) {
	for _, expr := range []string{"2^3", "sqrt(4)", "1 + a", "__import__('os')"} {
		result := Calculate(expr)
		assert.Equal(t, "Error: Invalid characters. Only use numbers and operators (+, -, *, /, parentheses).", result, "expression: %s", expr)
	}
}

func TestCalculateDivisionByZero(t *testing.T) {
	assert.Equal(t, "Calculation error: division by zero", Calculate("5 / 0"))
	assert.Equal(t, "Calculation error: division by zero", Calculate("1 / (2 - 2)"))
}

func TestCalculateMalformedExpressions(t *testing.T) {
	assert.Contains(t, Calculate("2 +"), "Calculation error:")
	assert.Contains(t, Calculate("(1 + 2"), "Calculation error:")
	assert.Contains(t, Calculate("1 2"), "Calculation error:")
	assert.Contains(t, Calculate(""), "Calculation error:")
}
