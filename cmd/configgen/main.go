package main

import (
	"flag"
	"log"

	"github.com/danmuck/evlctl/internal/config"
)

func main() {
	output := flag.String("output", "evlctl.toml", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "evlctl.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s (panel %s, %d notifiers)", *input, cfg.Address(), len(cfg.Notifiers))
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote config template to %s", *output)
}
