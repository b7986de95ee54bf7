package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/averbeke/mopctl/internal/config"
	"github.com/averbeke/mopctl/internal/discovery"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing mopctl configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  mopidy.host            Server host
  mopidy.port            Server HTTP port
  defaults.volume        Default volume (0-100)
  defaults.enqueue_mode  Default enqueue mode (replace/add/next/play)
  defaults.repeat        Default repeat mode (off/all/one)
  log.level              Log level (debug/info/warn/error)

Examples:
  mopctl config set mopidy.host 192.168.1.40
  mopctl config set defaults.enqueue_mode play`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration interactively",
	Long: `Creates a configuration file, discovering Mopidy servers on the local
network and letting you pick one.`,
	RunE: runInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'mopctl init' first", configPath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".mopctlrc"
	}

	return filepath.Join(home, ".mopctlrc")
}

func writeConfigFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# Mopctl Configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'mopctl init' first", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var rawConfig map[string]interface{}
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., mopidy.host)")
	}

	section, field := parts[0], parts[1]

	sectionMap, ok := rawConfig[section].(map[string]interface{})
	if !ok {
		sectionMap = make(map[string]interface{})
		rawConfig[section] = sectionMap
	}

	var typedValue interface{}
	switch key {
	case "mopidy.port", "defaults.volume", "discovery.timeout", "tail.interval", "tui.refresh_interval":
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("value must be an integer for %s", key)
		}
		typedValue = i
	case "defaults.shuffle":
		typedValue = value == "true" || value == "1" || value == "yes"
	default:
		typedValue = value
	}

	sectionMap[field] = typedValue

	if err := writeConfigFile(configPath, rawConfig); err != nil {
		return err
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	} else {
		fmt.Printf("Set %s = %s\n", key, value)
	}

	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	newCfg := config.Default()

	// Offer discovered servers first, with a manual escape hatch.
	fmt.Println("Searching for Mopidy servers...")
	timeout := time.Duration(cfg.Discovery.Timeout) * time.Second
	servers, err := discovery.Browse(context.Background(), timeout)
	if err != nil && Verbose() {
		fmt.Fprintf(os.Stderr, "discovery failed: %v\n", err)
	}

	const manual = "manual"
	choice := manual
	if len(servers) > 0 {
		options := make([]huh.Option[string], 0, len(servers)+1)
		for i, s := range servers {
			label := fmt.Sprintf("%s (%s:%d)", s.Name, s.Host, s.Port)
			options = append(options, huh.NewOption(label, strconv.Itoa(i)))
		}
		options = append(options, huh.NewOption("Enter host manually", manual))

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Select a Mopidy server").
					Options(options...).
					Value(&choice),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("selection cancelled: %w", err)
		}
	}

	if choice == manual {
		host := newCfg.Mopidy.Host
		portStr := strconv.Itoa(newCfg.Mopidy.Port)
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Server host").
					Value(&host),
				huh.NewInput().
					Title("HTTP port").
					Validate(func(s string) error {
						if _, err := strconv.Atoi(s); err != nil {
							return fmt.Errorf("port must be a number")
						}
						return nil
					}).
					Value(&portStr),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("input cancelled: %w", err)
		}
		newCfg.Mopidy.Host = host
		newCfg.Mopidy.Port, _ = strconv.Atoi(portStr)
	} else {
		idx, _ := strconv.Atoi(choice)
		newCfg.Mopidy.Host = servers[idx].Host
		newCfg.Mopidy.Port = servers[idx].Port
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := writeConfigFile(configPath, newCfg); err != nil {
		return err
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	} else {
		fmt.Printf("Created config file: %s\n", configPath)
		fmt.Println("\nTry 'mopctl status' to verify the connection.")
	}

	return nil
}
