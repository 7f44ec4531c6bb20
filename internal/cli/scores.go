package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	commands "github.com/urfave/cli/v3"

	"github.com/st3v3nmw/hiscore/internal/client"
	"github.com/st3v3nmw/hiscore/internal/scores"
)

var (
	green     = color.New(color.FgGreen).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	bold      = color.New(color.Bold).SprintFunc()
	checkMark = green("✓")
	crossMark = red("✗")
)

func Get(ctx context.Context, cmd *commands.Command) error {
	version, level := cmd.String("version"), cmd.String("level")

	list, err := client.New(cmd.String("addr")).Get(ctx, version, level)
	if err != nil {
		return err
	}

	printList(cmd.Root().Writer, version, level, list)
	return nil
}

func Submit(ctx context.Context, cmd *commands.Command) error {
	version, level := cmd.String("version"), cmd.String("level")

	// The server enforces its own name limit.
	rec, err := scores.NewRecord(cmd.String("name"), cmd.String("score"), 0)
	if err != nil {
		return err
	}

	placed, err := client.New(cmd.String("addr")).Submit(ctx, version, level, rec)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if placed {
		fmt.Fprintf(out, "%s %s scored %s, a new high score!\n", checkMark, rec.Name, formatScore(rec.Score))
	} else {
		fmt.Fprintf(out, "%s %s scored %s, not enough to place.\n", crossMark, rec.Name, formatScore(rec.Score))
	}

	return nil
}

func printList(out io.Writer, version, level string, list scores.List) {
	fmt.Fprintln(out, bold(fmt.Sprintf("High scores: version %s, level %s", version, level)))
	fmt.Fprintln(out)

	for i, rec := range list {
		fmt.Fprintf(out, "%2d. %-20s %12s\n", i+1, rec.Name, formatScore(rec.Score))
	}
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
