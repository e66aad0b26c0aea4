package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"foldcode/pkg/foldcode"
)

var showFlags struct {
	assetPath string
	store     string
	dbPath    string
	batchID   string
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the encoded entries of a batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := storeClient(showFlags.assetPath, showFlags.store, showFlags.dbPath)
		if err != nil {
			return err
		}
		defer client.Close()

		entries, err := client.Entries(cmd.Context(), showFlags.batchID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Printf(">%s\n%s\n", entry.Name, entry.States)
		}
		return nil
	},
}

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List encode batches in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := storeClient(showFlags.assetPath, showFlags.store, showFlags.dbPath)
		if err != nil {
			return err
		}
		defer client.Close()

		batches, err := client.Batches(cmd.Context())
		if err != nil {
			return err
		}
		for _, b := range batches {
			fmt.Printf("%s  %s  files=%d chains=%d residues=%d invalid=%d\n",
				b.ID, b.CreatedAtUTC, b.Files, b.Chains, b.Residues, b.InvalidResidues)
		}
		return nil
	},
}

func storeClient(assetPath, store, dbPath string) (*foldcode.Client, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, err
	}
	if assetPath != "" {
		cfg.AssetPath = assetPath
	}
	if store != "" {
		cfg.Store = store
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if cfg.AssetPath == "" {
		return nil, errors.New("an asset is required: --asset, config asset_path, or FOLDCODE_ASSET")
	}
	return foldcode.New(foldcode.Options{
		StoreKind: cfg.Store,
		DBPath:    cfg.DBPath,
		AssetPath: cfg.AssetPath,
		LockPath:  cfg.LockPath,
	})
}

func init() {
	for _, cmd := range []*cobra.Command{showCmd, batchesCmd} {
		cmd.Flags().StringVar(&showFlags.assetPath, "asset", "", "model asset file")
		cmd.Flags().StringVar(&showFlags.store, "store", "", "store backend: memory|sqlite|leveldb")
		cmd.Flags().StringVar(&showFlags.dbPath, "db-path", "", "store path for sqlite/leveldb backends")
	}
	showCmd.Flags().StringVar(&showFlags.batchID, "batch", "", "batch id to show")
	_ = showCmd.MarkFlagRequired("batch")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(batchesCmd)
}
