// Command srpcli is a reference client for the srp6a authentication service.
// It exercises the full SRP-6a client role against the HTTP transport
// exposed by cmd/srpsrv.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nullreceiver/srp6a/internal/cli/client"
	"github.com/nullreceiver/srp6a/internal/cli/clicontext"
	"github.com/nullreceiver/srp6a/internal/cli/config"
	"github.com/nullreceiver/srp6a/internal/cli/output"
	"github.com/nullreceiver/srp6a/internal/cli/session"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("srpcli version %s\n", version)
		os.Exit(0)
	}

	var err error
	switch command {
	case "register":
		err = runRegister(args)
	case "login":
		err = runLogin(args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	host := fs.String("host", "", "srp6a service host")
	port := fs.Int("port", 0, "srp6a service port")
	username := fs.String("username", "", "username to register")
	password := fs.String("password", "", "password to register")
	format := fs.String("format", "yaml", "output format (yaml or json)")
	assumeYes := fs.Bool("yes", false, "skip the registration confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *assumeYes {
		clicontext.SetAssumeYes(true)
	}

	cfg, c, err := newClient(*host, *port)
	if err != nil {
		return err
	}

	if *username == "" || *password == "" {
		return fmt.Errorf("--username and --password are required")
	}

	if !clicontext.AssumeYes() && !confirm(fmt.Sprintf("Register user %q at %s?", *username, cfg.Address())) {
		return fmt.Errorf("registration cancelled")
	}

	if err := c.RegisterUser(*username, *password); err != nil {
		return err
	}

	return printResult(map[string]any{
		"username": *username,
		"host":     cfg.Address(),
		"status":   "registered",
	}, *format)
}

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	host := fs.String("host", "", "srp6a service host")
	port := fs.Int("port", 0, "srp6a service port")
	username := fs.String("username", "", "username to authenticate as")
	password := fs.String("password", "", "password to authenticate with")
	format := fs.String("format", "yaml", "output format (yaml or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, c, err := newClient(*host, *port)
	if err != nil {
		return err
	}

	if *username == "" || *password == "" {
		return fmt.Errorf("--username and --password are required")
	}

	if err := c.Login(*username, *password); err != nil {
		return err
	}

	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	if err := store.Save(cfg.Host, cfg.Port, c.SessionToken()); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}

	return printResult(map[string]any{
		"username": *username,
		"host":     cfg.Address(),
		"status":   "authenticated",
	}, *format)
}

// newClient loads CLI configuration, applies flag overrides, restores a
// cached session token if one exists, and builds an HTTP client against the
// resulting host/port.
func newClient(host string, port int) (*config.Config, *client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.ApplyFlags(host, port)

	if err := cfg.RequireHost(); err != nil {
		return nil, nil, err
	}

	c, err := client.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	store, err := session.NewStore()
	if err == nil {
		if token, loadErr := store.Load(cfg.Host, cfg.Port); loadErr == nil && token != "" {
			c.SetSessionToken(token)
		}
	}

	return cfg, c, nil
}

// confirm prompts the user with a yes/no question and returns true if they
// answered affirmatively.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printResult(data any, format string) error {
	outputFormat, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	formatted, err := output.FormatData(data, outputFormat)
	if err != nil {
		return err
	}

	fmt.Print(formatted)
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `srpcli - reference client for the srp6a authentication service

Usage:
  srpcli <command> [flags]

Available Commands:
  register     Register a new username/password with the service
  login        Authenticate and cache the resulting session token

Global Flags:
  --help, -h        Show help information
  --version, -v     Show version information

Examples:
  srpcli register --host srp6a.local --port 8443 --username alice --password secret
  srpcli register --yes --host srp6a.local --port 8443 --username alice --password secret
  srpcli login --host srp6a.local --port 8443 --username alice --password secret

`)
}
