package excel

import (
	"context"
)

// ParsingStrategy turns uploaded file bytes into parsed project rows.
type ParsingStrategy interface {
	Parse(ctx context.Context, data []byte) (*ParseResult, error)
}

var _ ParsingStrategy = (*Parser)(nil)
