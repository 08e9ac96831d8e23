package commands

import (
	"errors"

	"kiosk/internal/pkg/guard"
)

var ErrSweepOrdersCommandIsNotConstructed = errors.New(
	"SweepOrdersCommand must be created via NewSweepOrdersCommand constructor",
)

// SweepOrdersCommand triggers one reclamation sweep. Issued by the reclamation job.
type SweepOrdersCommand struct {
	guard guard.ConstructorGuard
}

func NewSweepOrdersCommand() SweepOrdersCommand {
	return SweepOrdersCommand{guard: guard.NewConstructorGuard()}
}

func (c SweepOrdersCommand) Validate() error {
	return c.guard.Validate(ErrSweepOrdersCommandIsNotConstructed)
}
