// Command watrix builds wavelet matrices from text files of integers
// and answers queries against saved matrices.
//
//	watrix build -in symbols.txt -out matrix.wm [-alphabet N] [-compress zstd|lz4|none]
//	watrix query -wm matrix.wm -op access|rank|select|quantile [-val V] [-pos P] [-k K]
//	watrix stats -wm matrix.wm
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	watrix "github.com/AlexWan0/go-succinct"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:], os.Stdout)
	case "stats":
		err = runStats(os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "watrix:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: watrix build|query|stats [flags]")
}

func newLogger(verbose bool) *watrix.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return watrix.NewTextLogger(level)
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	in := fs.String("in", "", "input file of whitespace separated integers (- for stdin)")
	out := fs.String("out", "", "output file")
	alphabet := fs.Uint64("alphabet", 0, "alphabet size, 0 derives max+1")
	maxDepth := fs.Uint64("max-depth", watrix.MaxDepth, "maximum number of levels")
	comp := fs.String("compress", "zstd", "payload compression: zstd, lz4 or none")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("build: -in and -out are required")
	}
	c, err := watrix.ParseCompression(*comp)
	if err != nil {
		return err
	}
	logger := newLogger(*verbose)

	r := io.Reader(os.Stdin)
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	vals, err := readValues(r)
	if err != nil {
		return err
	}
	wm, err := watrix.New(vals,
		watrix.WithAlphabetSize(*alphabet),
		watrix.WithMaxDepth(*maxDepth),
		watrix.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	return wm.SaveTo(*out, &watrix.SaveOptions{Compression: c, Logger: logger})
}

func runQuery(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("wm", "", "saved matrix")
	op := fs.String("op", "access", "access, rank, select or quantile")
	val := fs.Uint64("val", 0, "symbol for rank and select")
	pos := fs.Uint64("pos", 0, "position for access and rank")
	k := fs.Uint64("k", 1, "1-based order for select and quantile")
	from := fs.Uint64("from", 0, "range start for quantile")
	to := fs.Int64("to", -1, "range end for quantile, -1 for Num()")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to < -1 {
		return fmt.Errorf("query: invalid -to %d", *to)
	}
	wm, err := watrix.LoadFrom(*path, newLogger(*verbose))
	if err != nil {
		return err
	}

	var res uint64
	switch *op {
	case "access":
		res, err = wm.Access(*pos)
	case "rank":
		res, err = wm.Rank(*val, *pos)
	case "select":
		res, err = wm.Select(*val, *k)
	case "quantile":
		end := wm.Num()
		if *to >= 0 {
			end = uint64(*to)
		}
		res, err = wm.Quantile(watrix.Range{Bpos: *from, Epos: end}, *k)
	default:
		return fmt.Errorf("query: unknown op %q", *op)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, res)
	return err
}

func runStats(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	path := fs.String("wm", "", "saved matrix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	wm, err := watrix.LoadFrom(*path, nil)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "num\t%d\ndim\t%d\ndepth\t%d\nbytes\t%d\n", wm.Num(), wm.Dim(), wm.Depth(), wm.AllocSize())
	if err != nil {
		return err
	}
	for d := uint64(0); d < wm.Depth(); d++ {
		z, err := wm.ZeroCount(d)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "level %d zeros\t%d\n", d, z); err != nil {
			return err
		}
	}
	return nil
}

func readValues(r io.Reader) ([]uint64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	var vals []uint64
	for sc.Scan() {
		v, err := strconv.ParseUint(sc.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", len(vals), err)
		}
		vals = append(vals, v)
	}
	return vals, sc.Err()
}
