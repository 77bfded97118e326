package ai

import (
	"context"
	"errors"
)

// Fallback tries Primary and, when it fails, Secondary. A nil Secondary
// returns the primary error as is.
type Fallback struct {
	Primary   Generator
	Secondary Generator
}

func (f Fallback) Generate(ctx context.Context, req Request) (string, error) {
	text, err := f.Primary.Generate(ctx, req)
	if err == nil {
		return text, nil
	}
	if f.Secondary == nil || ctx.Err() != nil {
		return "", err
	}
	text, err2 := f.Secondary.Generate(ctx, req)
	if err2 == nil {
		return text, nil
	}
	return "", backendErr("fallback", errors.Join(err, err2))
}
