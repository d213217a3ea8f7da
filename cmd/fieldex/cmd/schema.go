package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/fieldex/internal/schema"
	"github.com/spf13/cobra"
)

// schemaCmd represents the schema command.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the field schema for a language",
	Long: `Print the canonical fields, synonyms and kinds of the schema used for
field extraction.

Examples:
  fieldex schema
  fieldex schema --language hi
  fieldex schema --schema custom.yaml --format json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()

		var (
			sch *schema.Schema
			err error
		)
		if cfg.Pipeline.SchemaFile != "" {
			sch, err = schema.LoadFile(cfg.Pipeline.SchemaFile)
		} else {
			sch, err = schema.Load(cfg.Pipeline.Language)
		}
		if err != nil {
			return fmt.Errorf("failed to load schema: %w", err)
		}

		format, _ := cmd.Flags().GetString("format")
		if format == outputFormatJSON {
			type fieldOut struct {
				Key      string   `json:"key"`
				Kind     string   `json:"kind"`
				Synonyms []string `json:"synonyms,omitempty"`
			}
			out := struct {
				Language string     `json:"language"`
				Fields   []fieldOut `json:"fields"`
			}{Language: sch.Language()}
			for _, f := range sch.Fields() {
				out.Fields = append(out.Fields, fieldOut{Key: f.Key, Kind: string(f.Kind), Synonyms: f.Synonyms})
			}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema %q (%d fields)\n", sch.Language(), len(sch.Fields()))
		for _, f := range sch.Fields() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %-8s %v\n", f.Key, f.Kind, f.Synonyms)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}
