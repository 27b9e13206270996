//go:build !cgo

package grammar

import (
	"context"
	"fmt"
)

// stubProvider is compiled when cgo is unavailable. It supports no language,
// so every file takes the universal tiers.
type stubProvider struct{}

// NewProvider returns the no-support stub provider.
func NewProvider() Provider {
	return stubProvider{}
}

func (stubProvider) Supports(string) bool {
	return false
}

func (stubProvider) Parse(_ context.Context, _ []byte, language string) (*Tree, error) {
	return nil, fmt.Errorf("grammar support not compiled in (language %s)", language)
}
