package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kkkqkx123/code-search-helper/internal/language"
)

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List recognized languages and their chunking support",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, lang := range language.All() {
				support := "text"
				if language.ASTCapable(lang) {
					support = "ast"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", lang, support)
			}
			return nil
		},
	}
}
