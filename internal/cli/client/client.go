package client

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"forge/internal/common"
)

func baseURL() string {
	if url := os.Getenv("FORGE_SERVER"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".forge", "token"), nil
}

func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func LoadToken() string {
	path, err := tokenPath()
	if err != nil {
		return ""
	}
	token, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(token)
}

// SendRequest performs one API call, attaching the saved token. A token
// refreshed by the server is saved back transparently.
func SendRequest(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, baseURL()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := LoadToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}

	if refreshed, err := common.GetAuthorizationToken(resp.Header.Get("Authorization")); err == nil {
		if saveErr := SaveToken(refreshed); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save token: %v\n", saveErr)
		}
	}
	return resp, nil
}

func ReadResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
