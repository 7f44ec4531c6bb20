package main

import (
	"context"
	"log"
	"os"

	"github.com/st3v3nmw/hiscore/internal/cli"
)

func main() {
	log.SetFlags(0)

	if err := cli.NewCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
