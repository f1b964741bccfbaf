package main

import (
	"os"

	"post-dedup/cmd"
	"post-dedup/pkg/logger"
)

func main() {
	l, err := logger.Init(nil)
	if err != nil {
		os.Exit(1)
	}
	defer l.Sync()

	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
