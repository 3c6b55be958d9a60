// Command ledsync-openapi prints the ledsyncd OpenAPI document. Routes are
// registered with stub handlers, so nothing is served and no devices are
// contacted.
//
//	ledsync-openapi > openapi.json
//	ledsync-openapi --format yaml --output openapi.yaml
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/ledsyncd/internal/http/routes"
)

var version = "dev"

func main() {
	output := pflag.StringP("output", "o", "", "Output file path (default: stdout)")
	format := pflag.StringP("format", "f", "json", "Output format (json, yaml)")
	baseURL := pflag.String("base-url", "", "Server URL to advertise in the document")
	showVersion := pflag.Bool("version", false, "Print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating %s: %v\n", *output, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := generate(w, *format, *baseURL); err != nil {
		fmt.Fprintf(os.Stderr, "error generating OpenAPI document: %v\n", err)
		os.Exit(1)
	}
	if *output != "" {
		fmt.Fprintf(os.Stderr, "OpenAPI document written to %s\n", *output)
	}
}

// generate renders the OpenAPI document for every registered route.
func generate(w io.Writer, format, baseURL string) error {
	api := humachi.New(chi.NewRouter(), routes.NewHumaConfig(version, baseURL))
	routes.Register(api, routes.StubHandlers())
	doc := api.OpenAPI()

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
