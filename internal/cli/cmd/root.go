package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"forge/internal/common"
)

// RegisterCommands adds all available commands to the root command.
func RegisterCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewTriggerCommand())
	rootCmd.AddCommand(NewHistoryCommand())
	rootCmd.AddCommand(NewCreateCommand())
	rootCmd.AddCommand(NewUpdateCommand())
	rootCmd.AddCommand(NewMatrixCommand())
}

// printResponse decodes the server envelope and pretty-prints the data,
// returning an error when the server reports a non-zero code.
func printResponse(body []byte) error {
	var resp common.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	if resp.Code != common.SuccessCode {
		return fmt.Errorf("server error: %s", resp.Message)
	}
	if resp.Data == nil {
		fmt.Println(resp.Message)
		return nil
	}
	formatted, err := json.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %v", err)
	}
	fmt.Println(string(formatted))
	return nil
}
