package main

import (
	"github.com/zhiwen/backend/internal/server"
	"github.com/zhiwen/backend/internal/util"
	"github.com/zhiwen/backend/pkg/logger"
	"github.com/zhiwen/backend/pkg/logger/console"
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
