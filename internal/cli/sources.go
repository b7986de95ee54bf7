package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	mopctlerrors "github.com/averbeke/mopctl/internal/errors"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List selectable sources",
	Long:  `Lists the server playlists that can be selected as a source.`,
	RunE:  runSources,
}

var selectCmd = &cobra.Command{
	Use:   "select <source>",
	Short: "Play a source",
	Long:  `Replaces the queue with the named source and starts playing it.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSelect,
}

var browseCmd = &cobra.Command{
	Use:   "browse [uri]",
	Short: "Browse the media library",
	Long:  `Lists the children of a library URI, or the backend roots without one.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

var searchExact bool

var searchCmd = &cobra.Command{
	Use:   "search <terms>...",
	Short: "Search the library for tracks",
	RunE:  runSearch,
	Args:  cobra.MinimumNArgs(1),
}

func init() {
	searchCmd.Flags().BoolVar(&searchExact, "exact", false, "match terms exactly")
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s := newSpeaker()
	s.Refresh(ctx)
	if !s.Available() {
		return mopctlerrors.ErrNotAvailable
	}

	sources := s.Sources()
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(sources)
	}

	if len(sources) == 0 {
		fmt.Println("No sources available")
		return nil
	}
	for _, name := range sources {
		fmt.Println(name)
	}
	return nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := strings.Join(args, " ")

	s := newSpeaker()
	if err := s.SelectSource(ctx, name); err != nil {
		return err
	}

	reportAction("playing", fmt.Sprintf("▶ Playing %s", name))
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	uri := ""
	if len(args) > 0 {
		uri = args[0]
	}

	refs, err := newSpeaker().Library().Browse(ctx, uri)
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(refs)
	}

	table := NewTable("TYPE", "NAME", "URI")
	for _, r := range refs {
		table.Row(r.Type, TruncateString(r.Name, 40), r.URI)
	}
	table.Flush()
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	query := map[string][]string{"any": args}
	tracks, err := newSpeaker().Library().SearchTracks(ctx, query, "", searchExact)
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(tracks)
	}

	if len(tracks) == 0 {
		fmt.Println("No matches")
		return nil
	}

	table := NewTable("TITLE", "ARTIST", "ALBUM", "URI")
	for _, t := range tracks {
		artist := ""
		if len(t.Artists) > 0 {
			artist = t.Artists[0].Name
		}
		album := ""
		if t.Album != nil {
			album = t.Album.Name
		}
		table.Row(
			TruncateString(t.Name, 35),
			TruncateString(artist, 25),
			TruncateString(album, 25),
			t.URI)
	}
	table.Flush()
	return nil
}
