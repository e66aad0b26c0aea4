package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"foldcode/internal/config"
	"foldcode/pkg/foldcode"
)

var encodeFlags struct {
	configPath string
	assetPath  string
	store      string
	dbPath     string
	workers    int
	batchID    string
}

var encodeCmd = &cobra.Command{
	Use:   "encode [files...]",
	Short: "Encode coordinate files into state strings and store them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		if cfg.AssetPath == "" {
			return errors.New("an asset is required: --asset, config asset_path, or FOLDCODE_ASSET")
		}

		client, err := foldcode.New(foldcode.Options{
			StoreKind: cfg.Store,
			DBPath:    cfg.DBPath,
			AssetPath: cfg.AssetPath,
			LockPath:  cfg.LockPath,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		summary, err := client.Encode(cmd.Context(), foldcode.EncodeRequest{
			Paths:   args,
			Workers: cfg.Workers,
			BatchID: encodeFlags.batchID,
		})
		if err != nil {
			return err
		}

		fmt.Printf("batch %s\n", summary.BatchID)
		fmt.Printf("  files    %d (%d failed)\n", summary.Files, summary.FailedFiles)
		fmt.Printf("  chains   %d\n", summary.Chains)
		fmt.Printf("  residues %d (%d invalid)\n", summary.Residues, summary.InvalidResidues)
		fmt.Printf("  states   %s\n", humanize.Bytes(uint64(summary.StateBytes)))
		return nil
	},
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeFlags.configPath, "config", "c", "", "YAML config file")
	encodeCmd.Flags().StringVar(&encodeFlags.assetPath, "asset", "", "model asset file")
	encodeCmd.Flags().StringVar(&encodeFlags.store, "store", "", "store backend: memory|sqlite|leveldb")
	encodeCmd.Flags().StringVar(&encodeFlags.dbPath, "db-path", "", "store path for sqlite/leveldb backends")
	encodeCmd.Flags().IntVar(&encodeFlags.workers, "workers", 0, "worker count (one encoder per worker)")
	encodeCmd.Flags().StringVar(&encodeFlags.batchID, "batch-id", "", "explicit batch id (default: random uuid)")
	rootCmd.AddCommand(encodeCmd)
}

// resolveConfig layers flags over the config file over .env defaults.
func resolveConfig() (*config.Config, error) {
	cfg := config.Default()
	if encodeFlags.configPath != "" {
		loaded, err := config.Load(encodeFlags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg.AssetPath == "" {
		cfg.AssetPath = os.Getenv("FOLDCODE_ASSET")
	}
	if env := os.Getenv("FOLDCODE_DB"); env != "" && encodeFlags.dbPath == "" && cfg.DBPath == config.Default().DBPath {
		cfg.DBPath = env
	}
	if encodeFlags.assetPath != "" {
		cfg.AssetPath = encodeFlags.assetPath
	}
	if encodeFlags.store != "" {
		cfg.Store = encodeFlags.store
	}
	if encodeFlags.dbPath != "" {
		cfg.DBPath = encodeFlags.dbPath
	}
	if encodeFlags.workers > 0 {
		cfg.Workers = encodeFlags.workers
	}
	expanded, err := config.ExpandPath(cfg.AssetPath)
	if err != nil {
		return nil, err
	}
	cfg.AssetPath = expanded
	return cfg, nil
}
