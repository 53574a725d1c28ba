package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	tg2notion "github.com/ruihexianling/tg2notion"
	"github.com/ruihexianling/tg2notion/pkg/configuration"
	"github.com/ruihexianling/tg2notion/pkg/logging"
	"github.com/ruihexianling/tg2notion/pkg/pages"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var config configuration.Configuration
	var logger zerolog.Logger
	var client *tg2notion.Client

	rootCmd := &cobra.Command{
		Use:           "tg2notion",
		Short:         "Push files and pages into a Notion database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := configuration.LoadDotEnv(".env"); err != nil {
				return err
			}
			config = configuration.New()
			if err := config.AddFlagSet(cmd.Root().PersistentFlags()); err != nil {
				return err
			}

			console := zerolog.ConsoleWriter{Out: os.Stderr}
			scrubbed := logging.NewScrubbingWriter(console, logging.ScrubDictFromConfig(config))
			logger = zerolog.New(scrubbed).With().Timestamp().Logger()
			if config.GetBool(configuration.DEBUG) {
				logger = logger.Level(zerolog.DebugLevel)
			} else {
				logger = logger.Level(zerolog.InfoLevel)
			}

			client = tg2notion.NewClient(config, tg2notion.WithLogger(&logger))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if client != nil {
				client.Close()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(configuration.AUTHENTICATION_TOKEN, "", "Notion integration token")
	flags.String(configuration.PARENT_DATABASE_ID, "", "default parent database ID")
	flags.String(configuration.API_URL, configuration.DefaultAPIURL, "API base URL")
	flags.Bool(configuration.DEBUG, false, "enable debug logging")

	var contentType string
	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and print its upload ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			completed, err := client.UploadFile(cmd.Context(), args[0], contentType)
			if err != nil {
				logger.Error().Err(err).Msg("upload failed")
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), completed.ID)
			return nil
		},
	}
	uploadCmd.Flags().StringVar(&contentType, "content-type", "", "MIME type (inferred from the extension when empty)")

	var content, source, link string
	var tags []string
	var pinned bool
	createCmd := &cobra.Command{
		Use:   "create-page <title>",
		Short: "Create a page and print its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props := pages.Properties{}
			if source != "" {
				props["Source"] = pages.Select(source)
			}
			if len(tags) > 0 {
				props["Tags"] = pages.MultiSelect(tags)
			}
			if link != "" {
				props["Link"] = pages.URL(link)
			}
			if pinned {
				props["Pinned"] = pages.Checkbox(true)
			}

			pageID, err := client.CreatePage(cmd.Context(), args[0], content, props, "")
			if err != nil {
				logger.Error().Err(err).Msg("create page failed")
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pageID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&content, "content", "", "page body text")
	createCmd.Flags().StringVar(&source, "source", "", "Source select value")
	createCmd.Flags().StringSliceVar(&tags, "tag", nil, "Tags multi-select values")
	createCmd.Flags().StringVar(&link, "link", "", "Link URL value")
	createCmd.Flags().BoolVar(&pinned, "pin", false, "set the Pinned checkbox")

	var sets []string
	updateCmd := &cobra.Command{
		Use:   "update-page <page-id>",
		Short: "Update rich text properties on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]any{}
			for _, pair := range sets {
				key, value, found := strings.Cut(pair, "=")
				if !found {
					return fmt.Errorf("invalid --set value %q, expected key=value", pair)
				}
				values[key] = value
			}

			if err := client.UpdatePage(cmd.Context(), args[0], pages.BuildUpdateProperties(values)); err != nil {
				logger.Error().Err(err).Msg("update page failed")
				return err
			}
			return nil
		},
	}
	updateCmd.Flags().StringArrayVar(&sets, "set", nil, "property to set, as key=value")

	var attachContentType string
	attachCmd := &cobra.Command{
		Use:   "attach <page-id> <file>",
		Short: "Upload a file and append it to a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.AttachFile(cmd.Context(), args[0], args[1], attachContentType); err != nil {
				logger.Error().Err(err).Msg("attach failed")
				return err
			}
			return nil
		},
	}
	attachCmd.Flags().StringVar(&attachContentType, "content-type", "", "MIME type (inferred from the extension when empty)")

	rootCmd.AddCommand(uploadCmd, createCmd, updateCmd, attachCmd)
	return rootCmd
}
