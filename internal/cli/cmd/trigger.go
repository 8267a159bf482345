package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"forge/internal/cli/client"
	"forge/pkg/api"
)

func NewTriggerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Trigger a pipeline execution",
		RunE:  runTrigger,
	}

	cmd.Flags().IntP("id", "i", 0, "Pipeline ID to trigger (required)")
	cmd.MarkFlagRequired("id")

	return cmd
}

func runTrigger(cmd *cobra.Command, args []string) error {
	pipelineID, _ := cmd.Flags().GetInt("id")

	req := api.TriggerRequest{
		PipelineID: pipelineID,
	}
	jsonData, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := client.SendRequest(http.MethodPost, "/trigger", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	body, err := client.ReadResponseBody(resp)
	if err != nil {
		return err
	}
	return printResponse(body)
}
