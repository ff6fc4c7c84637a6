package core

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	utilexec "k8s.io/utils/exec"

	"github.com/projecteru2/blkinfo/config"
	"github.com/projecteru2/blkinfo/executor"
	"github.com/projecteru2/blkinfo/lsblk"
)

// BaseHandler provides shared config access for all command handlers.
type BaseHandler struct {
	ConfProvider func() *config.Config
	// Exec runs external commands; nil means the host.
	Exec utilexec.Interface
}

// Init returns the command context and validated config in one call.
func (h BaseHandler) Init(cmd *cobra.Command) (context.Context, *config.Config, error) {
	conf, err := h.Conf()
	if err != nil {
		return nil, nil, err
	}
	return CommandContext(cmd), conf, nil
}

// Conf validates and returns the config. All handlers call this first.
func (h BaseHandler) Conf() (*config.Config, error) {
	if h.ConfProvider == nil {
		return nil, fmt.Errorf("config provider is nil")
	}
	conf := h.ConfProvider()
	if conf == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	return conf, nil
}

// InitLsblk builds the device locator for the configured command.
func (h BaseHandler) InitLsblk(conf *config.Config) lsblk.Interface {
	exec := h.Exec
	if exec == nil {
		exec = utilexec.New()
	}
	return lsblk.New(executor.New(exec), conf.Command)
}

// CommandContext returns command context, falling back to Background.
func CommandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
