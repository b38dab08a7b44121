package translate

import (
	"context"
	"os"
)

// DryRunOutput is the body returned by the dry-run backend.
const DryRunOutput = "DRY_RUN"

// DryRun translates nothing: paths map to the null device and bodies to a
// placeholder, so a run exercises every step without touching content.
type DryRun struct{}

func (DryRun) Generator() string { return DryRunOutput }

func (DryRun) TranslatePath(context.Context, string, string, string) (string, error) {
	return os.DevNull, nil
}

func (DryRun) TranslateContent(context.Context, string, string, string, string) (string, error) {
	return DryRunOutput, nil
}
