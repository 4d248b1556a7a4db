package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/docwire/internal/docproto"
	"github.com/danmuck/docwire/internal/document"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/danmuck/docwire/internal/tensor"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	docs       int
	iterations int
	textLen    int
	shape      []int
}

type benchResult struct {
	Iterations int
	Docs       int
	WireBytes  int
	Total      time.Duration
}

func (r benchResult) PerIteration() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Iterations)
}

func newBenchCmd(root *rootOpts) *cobra.Command {
	opts := benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time array round trips over documents with text and tensor chunks",
		Long: `Builds an array of documents, each with two chunks: one holding a text of
--text-len characters and one holding a zero float64 tensor of --shape. Every
iteration encodes the array to bytes and decodes it back.

The historical workload is --docs 1000 --iterations 100 with the default shape.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runBench(opts, root.cfg.CodecOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d iterations over %d docs in %s: %s/it (%d wire bytes)\n",
				res.Iterations, res.Docs, res.Total, res.PerIteration(), res.WireBytes)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.docs, "docs", 100, "documents in the array")
	cmd.Flags().IntVar(&opts.iterations, "iterations", 10, "round trips to time")
	cmd.Flags().IntVar(&opts.textLen, "text-len", 1000, "characters in the text chunk")
	cmd.Flags().IntSliceVar(&opts.shape, "shape", []int{3, 224, 224}, "tensor chunk shape")
	return cmd
}

func runBench(opts benchOptions, codec ...docproto.Option) (benchResult, error) {
	if opts.docs < 0 || opts.iterations < 1 {
		return benchResult{}, fmt.Errorf("bench needs docs >= 0 and iterations >= 1")
	}
	arr, err := benchArray(opts)
	if err != nil {
		return benchResult{}, err
	}

	res := benchResult{Iterations: opts.iterations, Docs: opts.docs}
	start := time.Now()
	for i := 0; i < opts.iterations; i++ {
		b, err := docproto.MarshalArray(arr, codec...)
		if err != nil {
			return benchResult{}, fmt.Errorf("iteration %d: %w", i, err)
		}
		out, err := docproto.UnmarshalArray(b, arr.Schema(), codec...)
		if err != nil {
			return benchResult{}, fmt.Errorf("iteration %d: %w", i, err)
		}
		if out.Len() != arr.Len() {
			return benchResult{}, fmt.Errorf("iteration %d: decoded %d docs, want %d", i, out.Len(), arr.Len())
		}
		res.WireBytes = len(b)
	}
	res.Total = time.Since(start)
	log.Debug().
		Int("iterations", res.Iterations).
		Int("docs", res.Docs).
		Dur("total", res.Total).
		Msg("bench complete")
	return res, nil
}

func benchArray(opts benchOptions) (*document.Array, error) {
	def, ok := schema.Builtin().Resolve(schema.DefaultName)
	if !ok {
		return nil, fmt.Errorf("builtin schema %s missing", schema.DefaultName)
	}
	text := strings.Repeat("a", opts.textLen)
	arr := document.NewArray(def)
	for i := 0; i < opts.docs; i++ {
		z, err := tensor.Zeros(tensor.Float64, opts.shape...)
		if err != nil {
			return nil, err
		}
		textChunk, err := document.New(def, document.Field{Name: "text", Value: document.Text(text)})
		if err != nil {
			return nil, err
		}
		tensorChunk, err := document.New(def, document.Field{Name: "tensor", Value: document.TensorValue(z)})
		if err != nil {
			return nil, err
		}
		doc, err := document.New(def, document.Field{
			Name:  "chunks",
			Value: document.Chunks(document.NewArray(def, textChunk, tensorChunk)),
		})
		if err != nil {
			return nil, err
		}
		if err := arr.Append(doc); err != nil {
			return nil, err
		}
	}
	return arr, nil
}
