package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/healthart/internal/art"
	"github.com/desertthunder/healthart/internal/models"
	"github.com/desertthunder/healthart/internal/shared"
	"github.com/urfave/cli/v3"
)

// Prompt prints the prompt that the given metrics would produce.
//
// Optional metrics are only included when their flag is set, so 0 is a valid value.
func (r *Runner) Prompt(ctx context.Context, cmd *cli.Command) error {
	snap := models.MetricSnapshot{RecoveryScore: cmd.Float("score")}
	if cmd.IsSet("sleep") {
		snap.SleepQuality = models.Float(cmd.Float("sleep"))
	}
	if cmd.IsSet("strain") {
		snap.Strain = models.Float(cmd.Float("strain"))
	}
	if cmd.IsSet("hrv") {
		snap.HRV = models.Float(cmd.Float("hrv"))
	}

	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	prompt := art.BuildPrompt(snap)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"snapshot": snap, "prompt": prompt.String()}, true)
	}
	return r.writePlain("%s\n", prompt)
}
