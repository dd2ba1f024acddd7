// Command predict evaluates a model once on the given input without starting
// the server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
	"fair-model-service/internal/manifest"
	"fair-model-service/internal/model/registry"

	_ "fair-model-service/internal/model/custom/threshold"
)

func main() {
	params := flag.String("parameters", "", "declarative parameters artifact (.json)")
	module := flag.String("module", "", "registry module of a custom model")
	typ := flag.String("type", "", "registry type of a custom model")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s (-parameters FILE.json | -module M -type T) '<json input>'\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*params, *module, *typ, flag.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "predict: %v\n", err)
		if errors.Is(err, domain.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(params, module, typ, input string, stdout io.Writer) error {
	if params != "" && !strings.EqualFold(filepath.Ext(params), ".json") {
		return fmt.Errorf("%w: -parameters expects a .json artifact, got %q; select a custom model with -module and -type",
			domain.ErrConfiguration, params)
	}
	if params != "" && module == "" && typ == "" {
		m, err := manifest.Derive(params, "", "")
		if err != nil {
			return err
		}
		module, typ = m.Module, m.Class
	}
	h, err := registry.Resolve(module, typ, registry.Options{ParametersPath: params})
	if err != nil {
		return err
	}
	in, err := model.ParsePayload([]byte(input))
	if err != nil {
		return err
	}
	res, err := h.Predict(context.Background(), in)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(res, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
