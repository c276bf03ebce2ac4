// Lantern renders a point-lit scene with omnidirectional shadow
// mapping. Configuration comes from lantern.toml next to the binary,
// or from the file named on the command line.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/softglow/lantern/engine"
	"github.com/softglow/lantern/engine/core"
)

func main() {
	configPath := "lantern.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	config, err := engine.LoadConfig(configPath)
	if err != nil {
		core.LogFatal("%v", err)
	}

	e, err := engine.New(config)
	if err != nil {
		core.LogFatal("%v", err)
	}

	if err := e.Startup(); err != nil {
		core.LogError("startup failed: %v", err)
		e.Shutdown()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		core.LogInfo("received %s, shutting down", sig)
		e.Stop()
	}()

	runErr := e.Run()
	e.Shutdown()
	if runErr != nil {
		core.LogError("%v", runErr)
		os.Exit(1)
	}
}
