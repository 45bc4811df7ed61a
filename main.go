// main is the entry point for the peerscore CLI.
package main

import (
	"github.com/huangsam/peerscore/cmd"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/internal/iocache"
	"go.uber.org/zap"
)

func main() {
	// Replaced once the config is loaded
	if err := contract.InitLogger("warn", contract.ConsoleLogFormat); err != nil {
		panic(err)
	}
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()
	_ = zap.L().Sync()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
