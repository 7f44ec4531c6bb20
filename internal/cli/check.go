package cli

import (
	"context"
	"fmt"
	"os"

	commands "github.com/urfave/cli/v3"

	"github.com/st3v3nmw/hiscore/internal/attest"
	_ "github.com/st3v3nmw/hiscore/internal/conformance"
	"github.com/st3v3nmw/hiscore/internal/registry"
)

func Check(ctx context.Context, cmd *commands.Command) error {
	out := cmd.Root().Writer

	checklist, err := registry.GetChecklist(cmd.String("checklist"))
	if err != nil {
		return fmt.Errorf("%w\nAvailable checklists: %v", err, registry.Keys())
	}

	if cmd.Bool("list") {
		fmt.Fprint(out, checklist.Describe())
		return nil
	}

	keys := checklist.StageOrder
	if cmd.NArg() > 0 {
		keys = cmd.Args().Slice()
	}

	stages := make([]*registry.Stage, 0, len(keys))
	for _, key := range keys {
		stage, err := checklist.GetStage(key)
		if err != nil {
			return err
		}
		stages = append(stages, stage)
	}

	cfg, err := harnessConfig(cmd, checklist)
	if err != nil {
		return err
	}

	failed := 0
	for i, stage := range stages {
		fmt.Fprintf(out, "%s %s\n\n", bold(fmt.Sprintf("[%d/%d] %s", i+1, len(stages), keys[i])), stage.Name)

		if !stage.Fn().WithConfig(cfg).Run(ctx) {
			failed++
			if !cmd.Bool("keep-going") {
				break
			}
		}

		fmt.Fprintln(out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d stages failed", failed, len(stages))
	}

	return nil
}

// harnessConfig points the harness at the server command, defaulting to
// this binary's serve command.
func harnessConfig(cmd *commands.Command, checklist *registry.Checklist) (*attest.Config, error) {
	cfg := &attest.Config{
		Command:    cmd.String("command"),
		Attach:     cmd.String("addr"),
		WorkingDir: cmd.String("working-dir"),
		Output:     cmd.Root().Writer,
	}

	if cfg.Command == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate hiscore binary: %w", err)
		}

		cfg.Command = exe
		cfg.Args = []string{"serve"}
	}

	cfg.Args = append(cfg.Args, checklist.ServerArgs...)

	return cfg, nil
}
