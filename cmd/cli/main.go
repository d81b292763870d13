package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"hcpdash/adapters/console"
	"hcpdash/adapters/postgres"
	"hcpdash/internal/dashboard"
	"hcpdash/internal/hub"
	"hcpdash/internal/panel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hcpdash",
		Short:         "HCP-YA data explorer from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newSummaryCmd(),
		newSchemaCmd(),
		newUploadsCmd(),
	)
	return rootCmd
}

func newSummaryCmd() *cobra.Command {
	var schemaFile string
	var policy string
	var sets []string

	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Publish a CSV or XLSX file to every panel and print the figures as tables",
		Long: `Publish a dataset to the behavior, tract and demographics panels and print each
figure as a table.

Example: hcpdash summary hcp.csv --set behavior.x=Flanker_AgeAdj --set tract.trend=true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseSets(sets)
			if err != nil {
				return err
			}

			schemas, err := panel.LoadSchemas(schemaFile)
			if err != nil {
				return err
			}
			p, err := hub.ParsePolicy(policy)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			surface := console.NewTableSurface(out)
			dash := dashboard.New(hub.New(hub.WithPolicy(p)), panel.NewDefaultPanels(surface, schemas))

			result, err := dash.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if result.Dataset != nil {
				fmt.Fprintf(out, "\nLoaded %s: %s rows, %d columns (%s)\n",
					result.Dataset.Source, humanize.Comma(int64(result.Dataset.Rows)),
					len(result.Dataset.Columns), humanize.Bytes(uint64(result.Upload.SizeBytes)))
			}
			for _, pe := range result.PanelErrors {
				fmt.Fprintf(out, "panel %s failed [%s]: %s\n", pe.PanelID, pe.Code, pe.Message)
			}

			for _, id := range sortedKeys(updates) {
				if _, err := dash.Control(id, updates[id]); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaFile, "schema", "", "YAML file overriding panel columns")
	cmd.Flags().StringVar(&policy, "policy", "isolate", "Panel failure policy: isolate|failfast")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Control value as panel.control=value (repeatable)")
	return cmd
}

// parseSets groups panel.control=value flags by panel
func parseSets(sets []string) (map[string]map[string]string, error) {
	updates := make(map[string]map[string]string)
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: expected panel.control=value", s)
		}
		panelID, control, ok := strings.Cut(key, ".")
		if !ok || panelID == "" || control == "" {
			return nil, fmt.Errorf("--set %q: expected panel.control=value", s)
		}
		if updates[panelID] == nil {
			updates[panelID] = make(map[string]string)
		}
		updates[panelID][control] = value
	}
	return updates, nil
}

func sortedKeys(m map[string]map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newSchemaCmd() *cobra.Command {
	var schemaFile string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the columns each panel requires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := panel.LoadSchemas(schemaFile)
			if err != nil {
				return err
			}
			writeSchemas(cmd.OutOrStdout(), schemas)
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaFile, "schema", "", "YAML file overriding panel columns")
	return cmd
}

func writeSchemas(w io.Writer, schemas map[string]panel.Schema) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Panel", "Column", "Role", "Label"})

	for _, id := range []string{panel.BehaviorID, panel.TractID, panel.DemographicsID} {
		s, ok := schemas[id]
		if !ok {
			continue
		}
		for _, c := range s.Required {
			t.AppendRow(table.Row{id, c, "required", ""})
		}
		for _, m := range s.Measures {
			t.AppendRow(table.Row{id, m.Column, "measure", m.Label})
		}
		t.AppendSeparator()
	}
	t.Render()
}

func newUploadsCmd() *cobra.Command {
	var databaseURL string
	var limit int

	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "List the upload history stored in Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			records, err := postgres.NewUploadRepository(db).List(ctx, limit)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"When", "File", "Size", "Rows", "Status", "Panel errors", "Error"})
			for _, r := range records {
				t.AppendRow(table.Row{
					humanize.Time(r.CreatedAt), r.Filename, humanize.Bytes(uint64(r.SizeBytes)),
					humanize.Comma(int64(r.Rows)), r.Status, r.PanelErrors, r.Error,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show (0 for all)")
	return cmd
}
