package backend

import (
	"context"

	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
)

// StorageTokens reads the token of the browser session attached to the request context.
type StorageTokens struct {
	Storage ports.ClientStorage
}

func (s StorageTokens) Token(ctx context.Context) (string, error) {
	sid := domain.SessionID(ctx)
	if sid == "" || s.Storage == nil {
		return "", nil
	}
	token, _, err := s.Storage.Get(ctx, sid, domain.StorageKeyToken)
	return token, err
}
