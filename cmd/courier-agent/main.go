package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fleetworks/courier-agent/internal/agent"
	"github.com/fleetworks/courier-agent/internal/agent/config"
	"github.com/fleetworks/courier-agent/pkg/log"
)

func main() {
	command := NewAgentCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

type agentCmd struct {
	config     *config.Config
	configFile string
}

func NewAgentCommand() *agentCmd {
	logger := log.InitLog(zap.NewAtomicLevelAt(zapcore.InfoLevel))
	defer func() { _ = logger.Sync() }()

	undo := zap.ReplaceGlobals(logger)
	defer undo()

	a := &agentCmd{
		config: config.NewDefault(),
	}

	flag.StringVar(&a.configFile, "config", config.DefaultConfigFile, "Path to the agent's configuration file.")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		fmt.Println("This program starts the courier agent with the specified configuration. Below are the available flags:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if err := a.config.ParseConfigFile(a.configFile); err != nil {
		zap.S().Fatalf("Error parsing config: %v", err)
	}
	if err := a.config.CreateDataDir(); err != nil {
		zap.S().Fatalf("Error creating data dir: %v", err)
	}
	if err := a.config.Validate(); err != nil {
		zap.S().Fatalf("Error validating config: %v", err)
	}

	return a
}

func (a *agentCmd) Execute() error {
	logger := log.InitLog(log.AtomicLevel(a.config.LogLevel))
	defer func() { _ = logger.Sync() }()

	undo := zap.ReplaceGlobals(logger)
	defer undo()

	agentInstance := agent.New(a.config)
	if err := agentInstance.Run(context.Background()); err != nil {
		zap.S().Fatalf("running courier agent: %v", err)
	}
	return nil
}
