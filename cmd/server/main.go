package main

import (
	"github.com/carelens-health/carelens/backend/internal/server"
	"github.com/carelens-health/carelens/backend/internal/util"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
