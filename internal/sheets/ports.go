package sheets

import (
	"context"

	"nutritrack/internal/core"
)

// DiaryWriter is the outbound port for the diary export: it appends one
// logged meal to the external spreadsheet (or an in-memory stand-in).
type DiaryWriter interface {
	AppendEntry(ctx context.Context, e core.FoodLogEntry) (rowRef string, err error)
}
