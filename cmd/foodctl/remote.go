package main

import (
	"github.com/spf13/cobra"

	"foodflow/pkg/client"
)

var getCmd = &cobra.Command{
	Use:   "get <id> <foodGroup>",
	Short: "Print one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}
		rec, err := c.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, rec)
	},
}

var listSize int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the first records of the collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}
		recs, err := c.List(cmd.Context(), listSize)
		if err != nil {
			return err
		}
		return printJSON(cmd, recs)
	},
}

var queryCmd = &cobra.Command{
	Use:     "query <query>",
	Short:   "Run a read-only query",
	Example: `  foodctl query "SELECT c.id, c.description FROM c WHERE c.foodGroup = 'Spices'"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}
		recs, err := c.Query(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, recs)
	},
}

var pageOpts client.PageOptions

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Print one page of records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}
		res, err := c.Page(cmd.Context(), pageOpts)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id> <foodGroup>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}
		return c.Delete(cmd.Context(), args[0], args[1])
	},
}

func init() {
	listCmd.Flags().IntVar(&listSize, "size", 10, "Number of records")

	pageCmd.Flags().IntVar(&pageOpts.Page, "page", 1, "Page number, from 1")
	pageCmd.Flags().IntVar(&pageOpts.RowsPerPage, "rows", 10, "Rows per page")
	pageCmd.Flags().StringVar(&pageOpts.PartitionKey, "group", "", "Restrict to one food group")
	pageCmd.Flags().StringVar(&pageOpts.Continuation, "token", "", "Continuation token from a previous page")
	pageCmd.Flags().BoolVar(&pageOpts.Offset, "offset", false, "Use OFFSET/LIMIT paging")

	rootCmd.AddCommand(getCmd, listCmd, queryCmd, pageCmd, deleteCmd)
}
