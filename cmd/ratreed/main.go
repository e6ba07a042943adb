package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/ratree/internal/config"
	"github.com/danmuck/ratree/internal/logging"
	"github.com/danmuck/ratree/internal/ratreed"
)

func main() {
	path := flag.String("config", "ratreed.toml", "path to the server's TOML config file")
	flag.Parse()

	logging.ConfigureRuntime()

	if _, err := os.Stat(*path); os.IsNotExist(err) {
		if err := config.WriteTemplate(*path, false); err != nil {
			fmt.Fprintf(os.Stderr, "ratreed: writing default config: %v\n", err)
			os.Exit(1)
		}
		logging.Infof("ratreed: wrote default config to %q", *path)
	}

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ratreed: %v\n", err)
		os.Exit(1)
	}

	srv := ratreed.New(cfg, nil)
	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ratreed: %v\n", err)
		os.Exit(1)
	}
}
