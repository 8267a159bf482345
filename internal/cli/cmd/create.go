package cmd

import (
	"bytes"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"forge/internal/cli/client"
)

func NewCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pipeline from a YAML definition file",
		RunE:  runCreate,
	}

	cmd.Flags().StringP("file", "f", "", "YAML definition file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	yamlContent, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	resp, err := client.SendRequest(http.MethodPost, "/create", bytes.NewBuffer(yamlContent))
	if err != nil {
		return err
	}
	body, err := client.ReadResponseBody(resp)
	if err != nil {
		return err
	}
	return printResponse(body)
}
