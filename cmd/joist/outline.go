package main

import (
	"fmt"

	"github.com/aretw0/joist/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [document-id]",
	Short: "Render the node tree as a nested list",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		editor, name, err := openDocument(cmd, args)
		if err != nil {
			return err
		}

		root, _ := cmd.Flags().GetString("root")
		outline, err := editor.Outline(root)
		if err != nil {
			return err
		}

		md := tui.OutlineMarkdown(name, outline)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Print(md)
			return nil
		}
		out, err := tui.NewRenderer()(md)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	addSourceFlags(outlineCmd)
	outlineCmd.Flags().Bool("raw", false, "Print markdown without rendering")
}
