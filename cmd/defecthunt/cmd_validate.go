package main

import (
	"fmt"
	"os"
	"path/filepath"

	"digital.vasic.defecthunt/pkg/bank"
	"digital.vasic.defecthunt/pkg/registry"

	"github.com/spf13/cobra"
)

func newValidateCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path...]",
		Short: "Check bank files and report every problem found",
		Long: `Validates each bank file (JSON or YAML). Directories are scanned
for bank files. Without arguments the configured bank is checked.
Exits non-zero if any file has problems.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{current().settings.BankPath}
			}

			files, err := expandBankPaths(paths)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range files {
				problems := bank.ValidateFile(path)
				if len(problems) == 0 {
					fmt.Fprintf(out, "ok    %s\n", path)
					continue
				}
				failed++
				fmt.Fprintf(out, "FAIL  %s\n", path)
				for _, p := range problems {
					fmt.Fprintf(out, "      %s\n", p.Error())
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d bank files invalid", failed, len(files))
			}
			return nil
		},
	}
}

func expandBankPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && registry.IsBankFile(e.Name()) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return files, nil
}
