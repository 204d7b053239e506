package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	imageframer "github.com/menta2k/image-framer"
)

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(imageframer.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
