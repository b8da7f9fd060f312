package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/questvars/engine"
	"github.com/nathoo/questvars/engine/migrate"
	"github.com/nathoo/questvars/engine/save"
	"github.com/nathoo/questvars/engine/state"
	"github.com/nathoo/questvars/loader"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert legacy data to the variable tree",
	}
	cmd.AddCommand(newMigrateSaveCmd(), newMigrateAssetsCmd())
	return cmd
}

func newMigrateSaveCmd() *cobra.Command {
	var dryRun bool
	var contentDir string

	cmd := &cobra.Command{
		Use:   "save [slot]",
		Short: "Copy a save's flat variables and quests into its variable tree",
		Long: `Loads a save slot, copies every flat int, bool, string and quest into the
variable tree (Flags/<key> and Quests/<name>), and writes the slot back.
With --content the tree is first seeded from that content directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			slot := save.DefaultSlot
			if len(args) == 1 {
				slot = args[0]
			}

			store, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			data, err := store.Load(ctx, slot)
			if err != nil {
				return fmt.Errorf("loading %s: %w", slot, err)
			}
			sd, err := save.Decode(data)
			if err != nil {
				return err
			}

			s := state.New()
			defs := &engine.Defs{}
			if contentDir != "" {
				if defs, err = loader.Load(contentDir); err != nil {
					return fmt.Errorf("loading content: %w", err)
				}
			}
			if err := save.Apply(s, sd); err != nil {
				return err
			}
			engine.Seed(s, defs)

			report := migrate.FlatToTree(s)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", slot, report)
			if dryRun {
				return nil
			}

			game := defs.Game
			if game.Title == "" {
				game.Title, game.Version = sd.Game, sd.Version
			}
			out, err := save.Encode(s, game)
			if err != nil {
				return err
			}
			return store.Save(ctx, slot, out)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without writing the slot back")
	cmd.Flags().StringVar(&contentDir, "content", "", "content directory to seed the tree from")
	return cmd
}

func newMigrateAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assets <file.yaml>",
		Short: "Convert legacy condition and consequence assets to operations",
		Long: `Reads a YAML list of legacy assets (kind: QuestCondition, CheckIntCondition,
CheckBoolCondition or QuestConsequence) and prints the equivalent operations
as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening assets: %w", err)
			}
			defer f.Close()

			ops, err := migrate.LoadAssets(f)
			if err != nil {
				return err
			}
			for _, op := range ops {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", op)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ops)
		},
	}
}
