// Command minimcount counts start and empty tags in an XML-like
// document, optionally lifting namespace declarations first. It is the
// Go rendition of the count_tags_minim.py / count_tags_minim_ns.py
// scale scripts this package's scanner was exercised against: open a
// file (transparently gunzipping it if its name ends in .gz), drive a
// Scanner (or a NamespaceScanner wrapping one) over it, and report how
// many StartOrEmptyTagOpen tokens went by.
package main

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jongiddy/minim"
)

var (
	namespaces bool
	chunkSize  int
	verbose    bool
	log        = logrus.New()
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minimcount <file>...",
		Short: "count start and empty tags in XML-like documents",
		Long: "minimcount drives minim.Scanner over one or more files, " +
			"optionally gunzipping them, and reports how many start or " +
			"empty tags each one contains.",
		Args: cobra.MinimumNArgs(1),
		RunE: runCount,
	}
	cmd.Flags().BoolVar(&namespaces, "namespaces", false,
		"wrap the scanner in a NamespaceScanner and also report namespace bindings")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 4096,
		"byte chunk size to read the input in")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log progress")
	return cmd
}

func runCount(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	for _, path := range args {
		count, bindings, err := countFile(path)
		if err != nil {
			log.WithField("file", path).WithError(err).Error("scan failed")
			return err
		}
		log.WithFields(logrus.Fields{
			"file":  path,
			"tags":  count,
			"nsdef": bindings,
		}).Info("scanned")
		if namespaces {
			cmd.Printf("%s: %d tags, %d namespace bindings\n", path, count, bindings)
		} else {
			cmd.Printf("%s: %d tags\n", path, count)
		}
	}
	return nil
}

func countFile(path string) (tags int, bindings int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, 0, err
		}
		defer gz.Close()
		r = gz
	}

	source := minim.NewReaderChunkSource(r, chunkSize)
	var src minim.TokenSource = minim.NewScanner(source)
	if namespaces {
		src = minim.NewNamespaceScanner(src)
	}

	for {
		kind, ok, err := src.Next()
		if err != nil {
			return tags, bindings, err
		}
		if !ok {
			return tags, bindings, nil
		}
		switch kind {
		case minim.KindStartOrEmptyTagOpen:
			tags++
		case minim.KindNamespaceDefault, minim.KindNamespacePrefix:
			bindings++
		}
	}
}
