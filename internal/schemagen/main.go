// Command schemagen writes the JSON schema for the rules file.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/macropower/patsub/pkg/config"
)

var outFile = flag.String("o", "config.v1beta1.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	jsData, err := config.Schema()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	jsData = append(jsData, '\n')

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
