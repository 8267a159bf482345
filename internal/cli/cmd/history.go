package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"forge/internal/cli/client"
)

func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show pipeline execution history",
		RunE:  runHistory,
	}

	cmd.Flags().StringP("id", "i", "", "Specific execution ID to show details for")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	executionID, _ := cmd.Flags().GetString("id")

	path := "/history"
	if executionID != "" {
		path = fmt.Sprintf("/history/%s", executionID)
	}

	resp, err := client.SendRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	body, err := client.ReadResponseBody(resp)
	if err != nil {
		return err
	}
	return printResponse(body)
}
