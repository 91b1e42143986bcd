package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"shortener-backend/internal/repository"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the links and clicks tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, log, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			if err := a.Migrate(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var rawURL string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Shorten a URL",
		Example: `  shortener create --url="https://www.google.com/search?q=go+lang"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, log, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			link, created, err := a.Shortener.Shorten(cmd.Context(), rawURL)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !created {
				fmt.Fprintln(out, "URL already shortened")
			}
			fmt.Fprintf(out, "ID: %d\n", link.ID)
			fmt.Fprintf(out, "Code: %s\n", link.Code())
			fmt.Fprintf(out, "Short URL: %s/s/%s\n", strings.TrimRight(a.Config().URLShortener.BaseURL, "/"), link.Code())
			return nil
		},
	}
	cmd.Flags().StringVarP(&rawURL, "url", "u", "", "URL to shorten (required)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List links with their click counts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, log, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			links, err := a.Analytics.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tCLICKS\tCREATED\tURL")
			for _, l := range links {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					l.ID, l.Code(), l.ClickCount, l.CreatedAt.Format("2006-01-02 15:04:05"), l.OriginalURL)
			}
			return w.Flush()
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show click analytics for a link",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, log, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			report, err := a.Analytics.For(cmd.Context(), id)
			if errors.Is(err, repository.ErrLinkNotFound) {
				return fmt.Errorf("no link with id %d", id)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Code: %s\n", report.Link.Code())
			fmt.Fprintf(out, "URL: %s\n", report.Link.OriginalURL)
			fmt.Fprintf(out, "Total clicks: %d\n", report.TotalClicks)
			for device, n := range report.ByDevice {
				fmt.Fprintf(out, "  %s: %d\n", device, n)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "link id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a link and its clicks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, log, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			code, err := a.Analytics.Delete(cmd.Context(), id)
			if errors.Is(err, repository.ErrLinkNotFound) {
				return fmt.Errorf("no link with id %d", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "URL %s deleted successfully\n", code)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "link id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newTokenCmd(opts *options) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the management API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, log, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			token, err := a.JWT.Issue(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	return cmd
}
