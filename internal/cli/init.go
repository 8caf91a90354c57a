package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/paths"
	"github.com/mesh-intelligence/todos/pkg/types"
)

// storeIdentifier is implemented by backends that persist a store id.
type storeIdentifier interface {
	StoreID() string
}

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize todos storage",
		Long: `Init pins the resolved backend and data directory in config.yaml, then
creates the data directory and its files. Values given by --backend,
--data-dir, TODOS_BACKEND or TODOS_DATA_DIR are saved; the sync settings
already in config.yaml are kept as they are.`,
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	if a.store != nil {
		return userError(errors.New("init is not available inside the shell"))
	}

	cfgPath := paths.ConfigFile(a.configDir)
	fc, err := readConfigFile(cfgPath)
	if err != nil {
		return sysError(err)
	}
	fc.Backend = a.cfg.Backend
	fc.DataDir = a.cfg.DataDir
	if err := writeConfig(cfgPath, fc); err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	var storeID string
	err = a.withStore(func(s types.Store) error {
		if ider, ok := s.(storeIdentifier); ok {
			storeID = ider.StoreID()
		}
		return nil
	})
	if err != nil {
		return err
	}

	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"config":   cfgPath,
			"data_dir": a.cfg.DataDir,
			"store_id": storeID,
		})
	}
	msg := "Store initialized in " + a.cfg.DataDir
	if storeID != "" {
		msg += " (store " + storeID + ")"
	}
	printSuccess(cmd.OutOrStdout(), msg)
	return nil
}
