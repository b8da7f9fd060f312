package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/questvars/loader"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [content_dir]",
		Short: "Check content for broken references",
		Long: `Loads the content like play does and reports every validation error and
warning: unknown quests in operations, missing dialogue nodes, objective
indices out of range, duplicate ids and malformed variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := cfg.ContentDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no content directory given")
			}

			defs, ve, err := loader.Check(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range ve.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range ve.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			if len(ve.Errors) > 0 {
				return fmt.Errorf("%s: %d error(s), %d warning(s)", dir, len(ve.Errors), len(ve.Warnings))
			}
			fmt.Fprintf(out, "%s: ok (%d dialogue(s), %d quest(s), %d variable(s), %d warning(s))\n",
				dir, len(defs.Dialogues), len(defs.Quests), len(defs.Vars), len(ve.Warnings))
			return nil
		},
	}
}
