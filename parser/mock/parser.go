// Package mock provides a scripted candidate parser for tests and local
// development runs that should not touch Bedrock.
package mock

import (
	"context"

	"pantryfinder/parser"
)

// Parser replays a fixed sequence of outputs, one per Parse call. Once the
// script is exhausted it keeps returning empty outputs, which drives a
// convergence loop into its exhausted state.
type Parser struct {
	outputs   []parser.Output
	err       error
	callCount int

	// LastInput records the most recent Parse input for assertions.
	LastInput parser.Input
	// Inputs records every Parse input in call order.
	Inputs []parser.Input
}

func NewParser(outputs ...parser.Output) *Parser {
	return &Parser{outputs: outputs}
}

func NewParserWithError(err error) *Parser {
	return &Parser{err: err}
}

func (m *Parser) Parse(ctx context.Context, in parser.Input) (parser.Output, error) {
	m.LastInput = in
	m.Inputs = append(m.Inputs, in)

	if m.err != nil {
		return parser.Output{}, m.err
	}

	if m.callCount >= len(m.outputs) {
		return parser.Output{}, nil
	}

	out := m.outputs[m.callCount]
	m.callCount++
	return parser.Normalize(out), nil
}

// CallCount reports how many times Parse ran.
func (m *Parser) CallCount() int {
	return len(m.Inputs)
}
