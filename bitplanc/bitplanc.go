// bitplanc compiles a layout descriptor and prints the access plans, as text, as JSON
// constants or as Go source.
//
// Usage:
//
//	bitplanc [flags] <descriptor.json>
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bearlytools/bitlayout/backend"
	"github.com/bearlytools/bitlayout/backend/generate"
	"github.com/bearlytools/bitlayout/desc"
	"github.com/bearlytools/bitlayout/layout"
	"github.com/bearlytools/bitlayout/plan"
	osfs "github.com/gopherfs/fs/io/os"
	"github.com/gostdlib/base/context"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	root     = flag.String("root", "", "The layout to compile. Defaults to the descriptor's root layout.")
	storage  = flag.String("storage", "", "Bind the layout to this storage instead of the one it declares: buffer, multiword or word8/16/32/64/128.")
	validate = flag.Bool("validate", false, "Only validate the layout.")
	format   = flag.String("format", "text", "Output format: text, json or go.")
	pkg      = flag.String("pkg", "layouts", "The Go package name for -format=go.")
	out      = flag.String("out", "", "Write the output to this file instead of stdout.")
	verbose  = flag.Bool("v", false, "Log the compile at debug level.")
)

// logger is synced by exit and exitf, os.Exit skips deferred calls.
var logger = zap.NewNop()

type config struct {
	root     string
	storage  string
	validate bool
	format   string
	pkg      string
}

func main() {
	ctx := context.Background()

	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		exitf("usage: bitplanc [flags] <descriptor.json>")
	}

	l, err := newLogger(*verbose)
	if err != nil {
		exitf("could not create logger: %s", err)
	}
	logger = l
	defer logger.Sync()
	plan.SetLogger(logger)

	path, err := filepath.Abs(args[0])
	if err != nil {
		exitf("failed to get absolute path for %s: %s", args[0], err)
	}

	// Mount our filesystem for reading.
	fsys, err := osfs.New()
	if err != nil {
		panic(err)
	}

	c := config{root: *root, storage: *storage, validate: *validate, format: *format, pkg: *pkg}
	b, err := run(ctx, fsys, c, path)
	if err != nil {
		exit(err)
	}

	if err := write(os.Stdout, fsys, *out, b); err != nil {
		exit(err)
	}
}

type writeFileFS interface {
	WriteFile(name string, content []byte, perm fs.FileMode) error
}

// write sends b to path in fsys, or to w when path is empty.
func write(w io.Writer, fsys writeFileFS, path string, b []byte) error {
	if path == "" {
		if _, err := w.Write(b); err != nil {
			return errors.Wrap(err, "problem writing output")
		}
		return nil
	}
	if err := fsys.WriteFile(path, b, 0644); err != nil {
		return errors.Wrapf(err, "problem writing %s", path)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// run loads the descriptor at path and renders the layout c asks for.
func run(ctx context.Context, fsys fs.ReadFileFS, c config, path string) ([]byte, error) {
	d, err := desc.Load(ctx, fsys, path)
	if err != nil {
		return nil, err
	}
	l, err := d.Layout(c.root)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	var opts []plan.Option
	st := l.Storage
	if c.storage != "" {
		st, err = desc.ParseStorage(c.storage)
		if err != nil {
			return nil, err
		}
		opts = append(opts, plan.WithStorage(st))
	}

	if c.validate {
		errs := layout.ValidateFor(l, st, layout.Default)
		if len(errs) == 0 {
			return []byte(fmt.Sprintf("layout %s is valid for %s storage\n", l.Name, st)), nil
		}
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, errors.Errorf("layout %s is not valid:\n\t%s", l.Name, strings.Join(msgs, "\n\t"))
	}

	s, err := plan.Compile(ctx, l, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "could not compile layout %s", l.Name)
	}

	switch c.format {
	case "text":
		var sb strings.Builder
		fmt.Fprintf(&sb, "layout %s: %d bits, %s storage, %s\n", s.Name(), s.Bits, s.Storage, s.Order)
		for _, line := range s.Describe() {
			fmt.Fprintf(&sb, "\t%s\n", line)
		}
		return []byte(sb.String()), nil
	case "json":
		b, err := backend.MarshalConstants(backend.NewConstants(s))
		if err != nil {
			return nil, errors.Wrap(err, "could not marshal constants")
		}
		return append(b, '\n'), nil
	case "go":
		b, err := generate.Render(c.pkg, backend.NewConstants(s))
		if err != nil {
			return nil, errors.Wrap(err, "could not render Go constants")
		}
		return b, nil
	}
	return nil, errors.Errorf("unknown format %q", c.format)
}

func exit(i ...any) {
	fmt.Fprintln(os.Stderr, i...)
	logger.Sync()
	os.Exit(1)
}

func exitf(s string, i ...any) {
	fmt.Fprintf(os.Stderr, s+"\n", i...)
	logger.Sync()
	os.Exit(1)
}
