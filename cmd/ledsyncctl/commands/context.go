package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/ledsyncd/pkg/client"
)

// ClientContextKey is the context key under which main (and tests) store
// the client.ClientInterface every command talks through.
var ClientContextKey = &struct{}{}

type loggerContextKey struct{}

// clientFromCmd returns the API client stored in the command context.
func clientFromCmd(cmd *cobra.Command) (client.ClientInterface, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(ClientContextKey).(client.ClientInterface); ok {
			return c, nil
		}
	}
	return nil, errors.New("no ledsyncd client configured")
}

// loggerFromCmd returns the logger NewRootCommand stored, or slog.Default.
func loggerFromCmd(cmd *cobra.Command) *slog.Logger {
	if ctx := cmd.Root().Context(); ctx != nil {
		if l, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
