// Work item commands for the lepidoptera CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pburrows/lepidoptera/pkg/types"
)

var (
	itemProjectID   string
	itemTypeID      string
	itemTitle       string
	itemDescription string
	itemStatus      string
	itemPriority    int
	itemAssignee    string
	itemFields      []string

	listStatuses  []string
	listTypeID    string
	listAssignee  string
	listTitleLike string
	listPage      int
	listPageSize  int
	listSortBy    string
	listSortDir   string
	listFields    []string

	getFields []string
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage work items",
}

var itemCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a work item",
	Long: `Create a work item of the given type. Custom field values are
passed as repeated --field flags:

  lepidoptera item create --project <id> --type <id> --title "Fix login" \
      --status to-do --field story_points=3 --field due_date=2026-09-15`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fieldValues, err := parseFieldFlags(itemFields)
		if err != nil {
			fmt.Fprintln(os.Stderr, "item create:", err)
			os.Exit(exitUserError)
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "item create:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		item, err := s.CreateWorkItem(cmd.Context(), &types.CreateWorkItemRequest{
			ProjectID:   itemProjectID,
			TypeID:      itemTypeID,
			Title:       itemTitle,
			Description: itemDescription,
			Status:      itemStatus,
			Priority:    itemPriority,
			AssignedTo:  itemAssignee,
			FieldValues: fieldValues,
		})
		if err != nil {
			return fmt.Errorf("create item: %w", err)
		}

		if flagJSON {
			return printJSON(item)
		}
		fmt.Printf("Created %s: %s\n", item.SequentialNumber, item.Title)
		return nil
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List work items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "item list:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		query := types.WorkItemQuery{
			ProjectID:     itemProjectID,
			Statuses:      listStatuses,
			TypeID:        listTypeID,
			AssignedTo:    listAssignee,
			TitleContains: listTitleLike,
			SortBy:        types.SortField(listSortBy),
			SortDirection: types.SortDirection(listSortDir),
		}
		if listPage > 0 {
			query.Page = &listPage
			query.PageSize = &listPageSize
		}

		resp, err := s.ListWorkItems(cmd.Context(), &types.ListRequest{
			Query:         query,
			IncludeFields: listFields,
		})
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}

		if flagJSON {
			return printJSON(resp)
		}
		if len(resp.Items) == 0 {
			fmt.Println("No work items found.")
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"Number", "Title", "Status", "Priority", "Assignee", "Created"})
		for _, item := range resp.Items {
			status := item.Status
			if item.StatusDetail != nil {
				status = item.StatusDetail.Label
			}
			priority := fmt.Sprintf("%d", item.Priority)
			if item.PriorityDetail != nil {
				priority = item.PriorityDetail.Label
			}
			tw.AppendRow(table.Row{
				item.SequentialNumber,
				truncate(item.Title, 40),
				status,
				priority,
				item.AssignedTo,
				item.CreatedAt.Format("2006-01-02"),
			})
		}
		tw.Render()

		if resp.TotalPages != nil {
			fmt.Printf("Page %d of %d (%d item(s) total)\n", *resp.Page, *resp.TotalPages, resp.Total)
		} else {
			fmt.Printf("Total: %d item(s)\n", resp.Total)
		}
		return nil
	},
}

var itemGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "item get:", err)
			os.Exit(exitSysError)
		}
		defer s.Close()

		item, err := s.GetWorkItem(cmd.Context(), args[0], getFields)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}

		if flagJSON {
			return printJSON(item)
		}

		fmt.Printf("%s  %s\n", item.SequentialNumber, item.Title)
		if item.Description != "" {
			fmt.Println(item.Description)
		}
		status := item.Status
		if item.StatusDetail != nil {
			status = item.StatusDetail.Label
		}
		fmt.Println("  status:  ", status)
		fmt.Println("  priority:", item.Priority)
		if item.AssignedTo != "" {
			fmt.Println("  assignee:", item.AssignedTo)
		}
		fmt.Println("  created: ", item.CreatedAt.Format("2006-01-02 15:04"), "by", item.CreatedBy)
		for _, fv := range item.FieldValues {
			label := fv.FieldID
			switch {
			case fv.Field != nil:
				label = fv.Field.Label
			case fv.AssignmentField != nil:
				label = fv.AssignmentField.Label
			}
			fmt.Printf("  %s: %s\n", label, fv.Value)
		}
		return nil
	},
}

// parseFieldFlags splits repeated --field key=value flags into inputs.
// An "assign:" prefix on the key marks an assignment field.
func parseFieldFlags(flags []string) ([]types.FieldValueInput, error) {
	inputs := make([]types.FieldValueInput, 0, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("--field %q is not key=value", f)
		}
		in := types.FieldValueInput{FieldID: key, Value: value}
		if rest, found := strings.CutPrefix(key, "assign:"); found {
			in.FieldID = rest
			in.IsAssignmentField = true
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func init() {
	itemCreateCmd.Flags().StringVar(&itemProjectID, "project", "", "project ID (required)")
	itemCreateCmd.Flags().StringVar(&itemTypeID, "type", "", "work item type ID (required)")
	itemCreateCmd.Flags().StringVar(&itemTitle, "title", "", "item title (required)")
	itemCreateCmd.Flags().StringVar(&itemDescription, "description", "", "item description")
	itemCreateCmd.Flags().StringVar(&itemStatus, "status", "", "status ID from the type's allowed statuses")
	itemCreateCmd.Flags().IntVar(&itemPriority, "priority", 0, "priority value")
	itemCreateCmd.Flags().StringVar(&itemAssignee, "assignee", "", "assignee")
	itemCreateCmd.Flags().StringArrayVar(&itemFields, "field", nil, "custom field value as key=value (repeatable)")
	itemCreateCmd.MarkFlagRequired("project")
	itemCreateCmd.MarkFlagRequired("type")
	itemCreateCmd.MarkFlagRequired("title")

	itemListCmd.Flags().StringVar(&itemProjectID, "project", "", "project ID (required)")
	itemListCmd.Flags().StringSliceVar(&listStatuses, "status", nil, "filter by status (repeatable)")
	itemListCmd.Flags().StringVar(&listTypeID, "type", "", "filter by type ID")
	itemListCmd.Flags().StringVar(&listAssignee, "assignee", "", "filter by assignee")
	itemListCmd.Flags().StringVar(&listTitleLike, "title", "", "filter by title substring")
	itemListCmd.Flags().IntVar(&listPage, "page", 0, "page number (1-indexed; 0 = no pagination)")
	itemListCmd.Flags().IntVar(&listPageSize, "page-size", 20, "page size")
	itemListCmd.Flags().StringVar(&listSortBy, "sort", "", "sort field (created_at, updated_at, title, status, priority)")
	itemListCmd.Flags().StringVar(&listSortDir, "dir", "", "sort direction (asc, desc)")
	itemListCmd.Flags().StringSliceVar(&listFields, "fields", nil, "custom field IDs to include (repeatable)")
	itemListCmd.MarkFlagRequired("project")

	itemGetCmd.Flags().StringSliceVar(&getFields, "fields", nil, "custom field IDs to include (repeatable)")

	itemCmd.AddCommand(itemCreateCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemGetCmd)
	itemCmd.AddCommand(itemLinkCmd)
	itemCmd.AddCommand(itemLinksCmd)
}
