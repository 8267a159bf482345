package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"forge/internal/cli/client"
)

func NewUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Store a new version of an existing pipeline",
		RunE:  runUpdate,
	}

	cmd.Flags().StringP("name", "n", "", "Pipeline name to update (required)")
	cmd.Flags().StringP("file", "f", "", "YAML definition file (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	file, _ := cmd.Flags().GetString("file")

	yamlContent, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/update/%s", name)
	resp, err := client.SendRequest(http.MethodPost, path, bytes.NewBuffer(yamlContent))
	if err != nil {
		return err
	}
	body, err := client.ReadResponseBody(resp)
	if err != nil {
		return err
	}
	return printResponse(body)
}
