// Command manifest prints the build manifest for a prediction artifact:
// the registry key and the environment a packaged image should set. With
// -dockerfile it also writes the Dockerfile that builds that image.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"fair-model-service/internal/manifest"
)

type options struct {
	class      string
	image      string
	out        string
	dockerfile string
	base       string
}

func main() {
	var opts options
	flag.StringVar(&opts.class, "class", "", "class (registry type) of a custom model; defaults to the file stem")
	flag.StringVar(&opts.image, "image", "", "name of the image to build")
	flag.StringVar(&opts.out, "o", "", "write the manifest to this file instead of stdout")
	flag.StringVar(&opts.dockerfile, "dockerfile", "", "also write a Dockerfile to this path")
	flag.StringVar(&opts.base, "base", manifest.DefaultBaseImage, "base image for -dockerfile")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-class C] [-image NAME] [-o FILE] [-dockerfile PATH] <prediction-artifact>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Arg(0), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "manifest: %v\n", err)
		os.Exit(1)
	}
}

func run(artifact string, opts options, stdout io.Writer) error {
	m, err := manifest.Derive(artifact, opts.class, opts.image)
	if err != nil {
		return err
	}
	if err := writeTo(opts.out, stdout, func(w io.Writer) error { return manifest.Write(w, m) }); err != nil {
		return err
	}
	if opts.dockerfile == "" {
		return nil
	}
	return writeTo(opts.dockerfile, nil, func(w io.Writer) error { return manifest.WriteDockerfile(w, m, opts.base) })
}

// writeTo sends fn's output to path, or to fallback when path is empty.
func writeTo(path string, fallback io.Writer, fn func(io.Writer) error) error {
	if path == "" {
		return fn(fallback)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
