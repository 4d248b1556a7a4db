package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/spf13/cobra"
)

func newSchemaCmd(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect registered document schemas",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered schemas and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := root.registry()
			if err != nil {
				return err
			}
			return listSchemas(cmd.OutOrStdout(), reg)
		},
	})
	return cmd
}

func listSchemas(w io.Writer, reg *schema.Registry) error {
	for _, name := range reg.Names() {
		s, ok := reg.Resolve(name)
		if !ok {
			continue
		}
		fields := make([]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			desc := f.Name + ":" + f.Kind.String()
			if f.Ref != "" {
				desc += "(" + f.Ref + ")"
			}
			if f.Required {
				desc += "!"
			}
			fields = append(fields, desc)
		}
		open := ""
		if s.Open {
			open = " open"
		}
		if _, err := fmt.Fprintf(w, "%s%s [%s]\n", s.Name, open, strings.Join(fields, ", ")); err != nil {
			return err
		}
	}
	return nil
}
