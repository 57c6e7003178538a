package main

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"pkg.jsn.cam/wordstream/cmd/testdata/generator"
)

// Generates input files for wordstream.

var (
	Kind       = flag.StringP("kind", "k", "prose", "generator: "+strings.Join(generator.List(), ", "))
	Files      = flag.IntP("files", "n", 1, "number of files to write")
	Lines      = flag.Int64P("lines", "l", 0, "lines per file (0 = generator default)")
	Seed       = flag.Uint64("seed", 1, "random seed")
	OutputPath = flag.StringP("output", "o", "var/testdata", "output directory")
)

func writeFile(path string, g generator.Generator, lines int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := int64(0); i < lines; i++ {
		if err := g.WriteLine(w); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func main() {
	flag.Parse()

	if err := os.MkdirAll(*OutputPath, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for i := range *Files {
		g, err := generator.Get(*Kind)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		g.Init(rand.New(rand.NewPCG(*Seed, uint64(i))))

		lines := *Lines
		if lines == 0 {
			lines = g.DefaultCount()
		}

		path := filepath.Join(*OutputPath, fmt.Sprintf("%s-%03d.txt", *Kind, i))
		if err := writeFile(path, g, lines); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(path)
	}
}
