// Project commands for the lepidoptera CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	projectName        string
	projectDescription string
	projectPrefix      string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "project create:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		p, err := s.CreateProject(cmd.Context(), projectName, projectDescription, projectPrefix)
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		if flagJSON {
			return printJSON(p)
		}
		fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
		if projectPrefix != "" {
			fmt.Printf("  sequence prefix: %s\n", projectPrefix)
		}
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "project list:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		projects, err := s.ListProjects(cmd.Context())
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}

		if flagJSON {
			return printJSON(projects)
		}
		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"ID", "Name", "Description", "Created"})
		for _, p := range projects {
			tw.AppendRow(table.Row{
				shortID(p.ID),
				p.Name,
				truncate(p.Description, 40),
				p.CreatedAt.Format("2006-01-02"),
			})
		}
		tw.Render()
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectName, "name", "", "project name (required)")
	projectCreateCmd.Flags().StringVar(&projectDescription, "description", "", "project description")
	projectCreateCmd.Flags().StringVar(&projectPrefix, "prefix", "", "sequence prefix for work item numbers (e.g. M)")
	projectCreateCmd.MarkFlagRequired("name")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
}
