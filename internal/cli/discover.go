package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/averbeke/mopctl/internal/discovery"
)

var discoverTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find Mopidy servers on the local network",
	Long:  `Browses mDNS for Mopidy servers announcing their HTTP frontend.`,
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().DurationVarP(&discoverTimeout, "timeout", "t", 0, "browse timeout (default from config)")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	timeout := discoverTimeout
	if timeout == 0 {
		timeout = time.Duration(cfg.Discovery.Timeout) * time.Second
	}

	servers, err := discovery.Browse(context.Background(), timeout)
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(servers)
	}

	if len(servers) == 0 {
		fmt.Println("No Mopidy servers found")
		return nil
	}

	table := NewTable("NAME", "HOST", "PORT")
	for _, s := range servers {
		table.Row(s.Name, s.Host, fmt.Sprintf("%d", s.Port))
	}
	table.Flush()
	return nil
}
