package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage stored documents",
	Long:  `Create, list, inspect and remove documents in the configured store.`,
}

var docLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Manager.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing documents: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("No documents found.")
			return nil
		}

		fmt.Println("Documents:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
		return nil
	},
}

var docCreateCmd = &cobra.Command{
	Use:   "create <document-id>",
	Short: "Create a document from the configured template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		doc, err := app.Manager.Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created document '%s' with %d nodes\n", args[0], len(doc))
		return nil
	},
}

var docInspectCmd = &cobra.Command{
	Use:   "inspect <document-id>",
	Short: "Print the serialized nodes of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		doc, err := app.Manager.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading document '%s': %w", args[0], err)
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling document: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var docImportCmd = &cobra.Command{
	Use:   "import <document-id> <file.json>",
	Short: "Validate a JSON document and store it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		doc, err := readDocument(args[1])
		if err != nil {
			return err
		}
		if err := app.Manager.Save(cmd.Context(), args[0], doc); err != nil {
			return err
		}
		fmt.Printf("Imported '%s' into '%s'\n", args[1], args[0])
		return nil
	},
}

var docRmCmd = &cobra.Command{
	Use:   "rm <document-id>...",
	Short: "Remove one or more documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		hasError := false
		for _, id := range args {
			if err := app.Manager.Delete(cmd.Context(), id); err != nil {
				fmt.Printf("Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed document '%s'\n", id)
			}
		}
		if hasError {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.AddCommand(docLsCmd)
	docCmd.AddCommand(docCreateCmd)
	docCmd.AddCommand(docInspectCmd)
	docCmd.AddCommand(docImportCmd)
	docCmd.AddCommand(docRmCmd)
}
