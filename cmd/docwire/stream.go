package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/docwire/internal/docproto"
	"github.com/danmuck/docwire/internal/document"
	"github.com/danmuck/docwire/internal/protocol/frame"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSampleCmd(root *rootOpts) *cobra.Command {
	var docs int
	var force bool
	cmd := &cobra.Command{
		Use:   "sample FILE",
		Short: "Write a framed stream of sample documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if !force {
				flags |= os.O_EXCL
			}
			f, err := os.OpenFile(args[0], flags, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := writeSamples(f, docs, root.cfg.FrameLimits(), root.cfg.CodecOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&docs, "docs", 3, "sample documents to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// writeSamples writes docs single-document frames followed by one array frame
// holding all of them.
func writeSamples(w io.Writer, docs int, limits frame.Limits, opts ...docproto.Option) (int, error) {
	arr, err := benchArray(benchOptions{docs: docs, textLen: 16, shape: []int{2, 2}})
	if err != nil {
		return 0, err
	}
	out := docproto.NewWriter(w, limits, opts...)
	for _, d := range arr.Docs() {
		if err := out.WriteDocument(d); err != nil {
			return 0, err
		}
	}
	if err := out.WriteArray(arr); err != nil {
		return 0, err
	}
	return arr.Len() + 1, nil
}

type inspectOptions struct {
	schemaName string
	asJSON     bool
}

func newInspectCmd(root *rootOpts) *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Decode a framed document stream and print each item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := root.registry()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return inspectStream(cmd.OutOrStdout(), f, reg, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.schemaName, "schema", "", "decode every frame as this schema")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print documents as JSON")
	return cmd
}

func inspectStream(w io.Writer, r io.Reader, reg *schema.Registry, root *rootOpts, opts inspectOptions) error {
	reader := docproto.NewReader(r, reg, root.cfg.FrameLimits(), root.cfg.CodecOptions()...)
	if opts.schemaName != "" {
		s, ok := reg.Resolve(opts.schemaName)
		if !ok {
			return fmt.Errorf("%w: %s", docproto.ErrUnknownSchema, opts.schemaName)
		}
		reader.WithSchema(s)
	}

	count := 0
	for {
		item, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		count++
		if err := printItem(w, item, opts.asJSON); err != nil {
			return err
		}
	}
	log.Debug().Int("frames", count).Msg("inspect complete")
	return nil
}

func printItem(w io.Writer, item docproto.Item, asJSON bool) error {
	if asJSON {
		var (
			b   []byte
			err error
		)
		if item.Array != nil {
			b, err = docproto.MarshalArrayJSON(item.Array, true)
		} else {
			b, err = docproto.MarshalJSON(item.Document, true)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}

	if item.Array != nil {
		_, err := fmt.Fprintf(w, "#%d array %s: %d docs\n", item.ID, item.Schema.Name, item.Array.Len())
		return err
	}
	_, err := fmt.Fprintf(w, "#%d %s %s\n", item.ID, item.Schema.Name, summarize(item.Document))
	return err
}

func summarize(d *document.Document) string {
	parts := make([]string, 0, d.Len())
	for _, f := range d.Fields() {
		if f.Value.IsNull() {
			continue
		}
		parts = append(parts, f.Name+"="+f.Value.String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}
