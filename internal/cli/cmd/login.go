package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"forge/internal/cli/client"
	"forge/internal/common"
	"forge/pkg/api"
)

func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the pipeline server",
		RunE:  runLogin,
	}

	cmd.Flags().StringP("username", "u", "", "Username for login (required)")
	cmd.Flags().StringP("password", "p", "", "Password for login (required)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	data := api.LoginRequest{
		Username: username,
		Password: password,
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	resp, err := client.SendRequest(http.MethodPost, "/login", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	token, tokenErr := common.GetAuthorizationToken(resp.Header.Get("Authorization"))

	body, err := client.ReadResponseBody(resp)
	if err != nil {
		return err
	}
	var loginResp common.Response
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	if loginResp.Code != common.SuccessCode {
		return fmt.Errorf("login failed: %s", loginResp.Message)
	}
	if tokenErr != nil {
		return fmt.Errorf("login succeeded but no token returned")
	}

	if err := client.SaveToken(token); err != nil {
		return err
	}
	fmt.Println("Login successful")
	return nil
}
