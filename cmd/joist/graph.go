package main

import (
	"fmt"

	"github.com/aretw0/joist/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [document-id]",
	Short: "Export the node tree visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of a document's node tree. Linked canvases are drawn as dotted edges labelled by slot.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		editor, _, err := openDocument(cmd, args)
		if err != nil {
			return err
		}

		root, _ := cmd.Flags().GetString("root")
		outline, err := editor.Outline(root)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if selected, _ := cmd.Flags().GetStringSlice("select"); len(selected) > 0 {
			overlay = &graph.GraphOverlay{Selected: selected}
		}
		fmt.Print(graph.GenerateMermaid(outline, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addSourceFlags(graphCmd)
	graphCmd.Flags().StringSlice("select", nil, "Node ids to highlight")
}
