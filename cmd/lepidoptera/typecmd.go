// Work item type commands for the lepidoptera CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pburrows/lepidoptera/pkg/types"
)

var (
	typeProjectID    string
	typeTemplateFile string
)

var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Manage work item types",
}

var typeApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a type template to a project",
	Long: `Apply reads a YAML template declaring work item types and creates
them in the project. Child types are referenced by name and resolved to
IDs during application.

Example template:

  - name: epic
    display_name: Epic
    allowed_children_type_names: [task]
    allowed_statuses:
      - {id: to-do, label: To Do}
      - {id: done, label: Done}
    allowed_priorities:
      - {id: high, label: High, value: 1}
  - name: task
    display_name: Task
    allowed_statuses:
      - {id: to-do, label: To Do}
      - {id: in-progress, label: In Progress}
      - {id: done, label: Done}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(typeTemplateFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "type apply:", err)
			os.Exit(exitUserError)
		}
		var templates []types.TypeTemplate
		if err := yaml.Unmarshal(data, &templates); err != nil {
			return fmt.Errorf("parse template: %w", err)
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "type apply:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		configs, err := s.ApplyTemplate(cmd.Context(), typeProjectID, templates)
		if err != nil {
			return fmt.Errorf("apply template: %w", err)
		}

		if flagJSON {
			return printJSON(configs)
		}
		fmt.Printf("Created %d type(s):\n", len(configs))
		for _, cfg := range configs {
			fmt.Printf("  %s (%s)\n", cfg.Name, cfg.ID)
		}
		return nil
	},
}

var typeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's work item types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "type list:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		configs, err := s.ListTypes(cmd.Context(), typeProjectID)
		if err != nil {
			return fmt.Errorf("list types: %w", err)
		}

		if flagJSON {
			return printJSON(configs)
		}
		if len(configs) == 0 {
			fmt.Println("No types found.")
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"ID", "Name", "Display Name", "Statuses", "Fields"})
		for _, cfg := range configs {
			statuses := make([]string, len(cfg.AllowedStatuses))
			for i, st := range cfg.AllowedStatuses {
				statuses[i] = st.ID
			}
			tw.AppendRow(table.Row{
				shortID(cfg.ID),
				cfg.Name,
				cfg.DisplayName,
				truncate(strings.Join(statuses, ","), 40),
				len(cfg.Fields),
			})
		}
		tw.Render()
		return nil
	},
}

func init() {
	typeApplyCmd.Flags().StringVar(&typeProjectID, "project", "", "project ID (required)")
	typeApplyCmd.Flags().StringVar(&typeTemplateFile, "file", "", "YAML template file (required)")
	typeApplyCmd.MarkFlagRequired("project")
	typeApplyCmd.MarkFlagRequired("file")

	typeListCmd.Flags().StringVar(&typeProjectID, "project", "", "project ID (required)")
	typeListCmd.MarkFlagRequired("project")

	typeCmd.AddCommand(typeApplyCmd)
	typeCmd.AddCommand(typeListCmd)
}
