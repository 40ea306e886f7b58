package export

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/mapper"
	"github.com/sells-group/address-mapper/internal/platform"
)

// StatusMessage summarizes a run for the final status message.
func StatusMessage(stats mapper.Stats, records int) string {
	return fmt.Sprintf("Found %d addresses in %d documents; %d mapped.", records, stats.Documents, stats.Geocoded)
}

// Notify logs msg and posts it through m when m is non-nil.
func Notify(ctx context.Context, m platform.Messenger, msg string) error {
	zap.L().Info("export: run status", zap.String("message", msg))
	if m == nil {
		return nil
	}
	if err := m.SetMessage(ctx, msg); err != nil {
		return eris.Wrap(err, "export: post status message")
	}
	return nil
}
