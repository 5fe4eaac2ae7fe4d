package account

import (
	"context"
	"strings"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/logging"
)

// NewStore creates a postgres-backed store when a database URL is configured,
// otherwise the flat-file store.
func NewStore(ctx context.Context, databaseURL, filePath string, hash HashFunc, historyLimit int, log logging.Logger) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewFileStore(filePath, hash, historyLimit, log), nil
	}
	return NewPostgresStore(ctx, databaseURL, hash, historyLimit, log)
}
