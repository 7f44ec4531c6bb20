package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	commands "github.com/urfave/cli/v3"

	"github.com/st3v3nmw/hiscore/internal/config"
)

func Init(ctx context.Context, cmd *commands.Command) error {
	path := config.DefaultPath
	if cmd.NArg() > 0 {
		path = cmd.Args().First()
	}

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite it", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.SaveTo(config.Default(), path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "%s Wrote %s\n", checkMark, path)
	fmt.Fprintln(cmd.Root().Writer, "Run 'hiscore serve' to start the server.")

	return nil
}
