// Relationship commands for the lepidoptera CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	linkProjectID string
	linkType      string
	linksType     string
)

var itemLinkCmd = &cobra.Command{
	Use:   "link <source-id> <target-id>",
	Short: "Link two work items",
	Long: `Link creates a relationship between two work items. Recognized
kinds: blocks, blocked_by, relates_to, duplicates, parent_of, child_of.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "item link:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		rel, err := s.CreateRelationship(cmd.Context(), linkProjectID, args[0], args[1], linkType)
		if err != nil {
			return fmt.Errorf("link items: %w", err)
		}

		if flagJSON {
			return printJSON(rel)
		}
		fmt.Printf("Linked %s %s %s\n", shortID(rel.SourceWorkItemID), rel.RelationshipType, shortID(rel.TargetWorkItemID))
		return nil
	},
}

var itemLinksCmd = &cobra.Command{
	Use:   "links <id>",
	Short: "List a work item's relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "item links:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		rels, err := s.ListRelationships(cmd.Context(), args[0], linksType)
		if err != nil {
			return fmt.Errorf("list links: %w", err)
		}

		if flagJSON {
			return printJSON(rels)
		}
		if len(rels) == 0 {
			fmt.Println("No relationships found.")
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"ID", "Source", "Type", "Target", "Created"})
		for _, rel := range rels {
			tw.AppendRow(table.Row{
				shortID(rel.ID),
				shortID(rel.SourceWorkItemID),
				rel.RelationshipType,
				shortID(rel.TargetWorkItemID),
				rel.CreatedAt.Format("2006-01-02"),
			})
		}
		tw.Render()
		return nil
	},
}

func init() {
	itemLinkCmd.Flags().StringVar(&linkProjectID, "project", "", "project ID (required)")
	itemLinkCmd.Flags().StringVar(&linkType, "type", "relates_to", "relationship kind")
	itemLinkCmd.MarkFlagRequired("project")

	itemLinksCmd.Flags().StringVar(&linksType, "type", "", "filter by relationship kind")
}
