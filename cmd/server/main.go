package main

import (
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/server"
	"github.com/Shen-Yuuu/MindFlow-Reader/internal/util"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger/console"

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
