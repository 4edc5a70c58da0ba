package ports

import (
	"context"

	"github.com/AchilleasB/membership-console/internal/core/viewstate"
	"github.com/AchilleasB/membership-console/internal/core/views"
)

// ConsoleService owns the console state. Dispatch applies one action and
// returns the resulting view, which is valid even when err is non-nil.
type ConsoleService interface {
	Dispatch(ctx context.Context, action viewstate.Action) (views.Console, error)
	Current() views.Console
}
