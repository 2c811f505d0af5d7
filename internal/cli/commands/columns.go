package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/rekap/engine"
	"github.com/spektr-org/rekap/schema"
)

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Show headers, resolved roles and detected field types",
		Long: `Read the recap file and show how each header was interpreted:
the semantic role it resolved to, the detected field type and sample values.`,
		Example: `  rekap columns -f "RECAP PENAWARAN 2025.csv"
  rekap columns -f recap.xlsx --sheet "Jan" -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			ds, err := cc.LoadDataset(cmd)
			if err != nil {
				return err
			}

			if cc.Renderer.IsJSON() {
				return cc.Renderer.JSON(map[string]any{
					"source":   ds.Source,
					"roles":    ds.Roles,
					"profiles": ds.Profiles,
				})
			}

			if err := cc.Renderer.Table(columnsTable(ds.Profiles)); err != nil {
				return err
			}
			if missing := ds.Roles.Unresolved(); len(missing) > 0 {
				names := make([]string, len(missing))
				for i, r := range missing {
					names[i] = string(r)
				}
				cc.Renderer.Note("Unresolved roles: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func columnsTable(profiles []schema.ColumnProfile) *engine.TableData {
	td := &engine.TableData{
		Title: "Columns",
		Columns: []engine.Column{
			{Key: "index", Label: "#", Type: "number", Align: "right"},
			{Key: "header", Label: "Header", Type: "text", Align: "left"},
			{Key: "role", Label: "Role", Type: "text", Align: "left"},
			{Key: "type", Label: "Type", Type: "text", Align: "left"},
			{Key: "nonEmpty", Label: "Filled", Type: "number", Align: "right"},
			{Key: "unique", Label: "Unique", Type: "number", Align: "right"},
			{Key: "samples", Label: "Samples", Type: "text", Align: "left"},
		},
	}
	for _, p := range profiles {
		roles := make([]string, len(p.Roles))
		for i, r := range p.Roles {
			roles[i] = string(r)
		}
		td.Rows = append(td.Rows, []string{
			strconv.Itoa(p.Index + 1),
			p.Header,
			strings.Join(roles, ", "),
			string(p.Type),
			strconv.Itoa(p.NonEmpty),
			strconv.Itoa(p.Unique),
			strings.Join(p.Samples, " | "),
		})
	}
	return td
}
