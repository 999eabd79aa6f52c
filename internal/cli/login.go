package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rigforge/rigforge/pkg/api"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the catalog server",
		Long: `Login to the catalog server and store the admin token in your
configuration file. The password is taken from --passwd, from the config
file, or prompted for interactively.

Example:
  rigctl login
  rigctl login --passwd=mypassword`,
		RunE: runLogin,
	}

	cmd.Flags().String("passwd", "", "Admin password")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	passwd, _ := cmd.Flags().GetString("passwd")
	fromFlag := passwd != ""
	if passwd == "" {
		passwd = cfg.Password
	}
	if passwd == "" {
		var err error
		passwd, err = promptPassword()
		if err != nil {
			return err
		}
	}
	if passwd == "" {
		return fmt.Errorf("no password provided")
	}

	reqBody, err := json.Marshal(api.LoginRequest{Password: passwd})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	client := newClient()
	body, _, err := client.Post("auth/login", reqBody, nil)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}

	var loginRsp api.LoginResponse
	if err := json.Unmarshal(body, &loginRsp); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	cfg.Token = loginRsp.Token
	cfg.TokenExpiry = loginRsp.ExpiresAt.Format(time.RFC3339)
	if fromFlag {
		cfg.Password = passwd
	}

	configPath := configFile
	if configPath == "" {
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}
	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if jsonOutput {
		kv := map[string]interface{}{
			"status":     "success",
			"message":    "Login successful",
			"expires_at": loginRsp.ExpiresAt.Format(time.RFC3339),
		}
		printJSON(kv)
	} else {
		okLabel.Println("✓ Login successful")
		fmt.Printf("Token expires at: %s\n", loginRsp.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}

// promptPassword reads the password from stdin, with echo suppressed when
// stdin is a terminal.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
