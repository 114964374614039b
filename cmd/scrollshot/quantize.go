package main

import (
	"flag"
	"fmt"

	"github.com/example/scrollshot/internal/gfx"
	"github.com/example/scrollshot/internal/imageio"
)

type quantizeCmd struct {
	*root
	fs     *flag.FlagSet
	input  inputFlags
	output outputFlags
}

func (q *quantizeCmd) FlagSet() *flag.FlagSet {
	return q.fs
}

func parseQuantizeCmd(args []string, r *root) (*quantizeCmd, error) {
	cfg := r.cfg()
	q := &quantizeCmd{root: r.subcommand("quantize")}
	fs := flag.NewFlagSet("quantize", flag.ExitOnError)
	fs.Usage = usageFunc(q)
	q.fs = fs
	q.input.register(fs)
	q.output.register(fs, cfg, "quantized", string(imageio.GIF))
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 || !q.input.valid() {
		return nil, &UsageError{of: q}
	}
	if err := q.output.resolve(cfg.SaveDir, "quantized"); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *quantizeCmd) Run() error {
	img, err := q.input.load()
	if err != nil {
		return err
	}
	pal, err := gfx.Quantize(img, q.output.colors)
	if err != nil {
		return fmt.Errorf("quantize: %w", err)
	}
	detail := fmt.Sprintf("%s, %d colors", q.input.describe(), len(pal.Palette))
	return q.output.write(q.root, pal, detail)
}
