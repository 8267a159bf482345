package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"forge/internal/cli/client"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pipelines or get specific pipeline details",
		RunE:  runList,
	}

	cmd.Flags().StringP("id", "i", "", "Specific pipeline ID to list")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	listPipelineID, _ := cmd.Flags().GetString("id")

	path := "/pipeline"
	if listPipelineID != "" {
		path = fmt.Sprintf("/pipeline/%s", listPipelineID)
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
