package main

import (
	"fmt"

	"github.com/aretw0/joist"
	"github.com/aretw0/joist/internal/cli"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/spf13/cobra"
)

func readDocument(path string) (domain.SerializedNodes, error) {
	return cli.ReadDocument(path)
}

// openDocument loads the editor for commands that accept either a stored
// document id or --file.
func openDocument(cmd *cobra.Command, args []string) (*joist.Editor, string, error) {
	app, err := loadApp(cmd)
	if err != nil {
		return nil, "", err
	}
	defer app.Close()

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		doc, err := cli.CheckDocument(path, app.Resolver)
		if err != nil {
			return nil, "", err
		}
		editor := joist.New(joist.WithResolver(app.Resolver), joist.WithLogger(app.Logger))
		if err := editor.Deserialize(doc); err != nil {
			return nil, "", err
		}
		return editor, path, nil
	}

	if len(args) == 0 {
		return nil, "", fmt.Errorf("a document id or --file is required")
	}
	editor, err := app.Manager.Open(cmd.Context(), args[0])
	if err != nil {
		return nil, "", err
	}
	return editor, args[0], nil
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read the document from a JSON file instead of the store")
	cmd.Flags().String("root", domain.RootNodeID, "Node to start from")
}
