package main

import (
	"flag"

	"github.com/danmuck/drivelink/internal/config"
	"github.com/danmuck/drivelink/internal/logging"
	"github.com/rs/zerolog/log"
)

const defaultConfigPath = "cmd/drivectl/config.toml"

func main() {
	log.Logger = logging.InitLogger("configgen")

	output := flag.String("output", defaultConfigPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", defaultConfigPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.LoadDriveConfig(*input)
		if err != nil {
			log.Fatal().Err(err).Msg("validate failed")
		}
		log.Info().Str("path", *input).Str("vehicle", cfg.Vehicle).Msg("validated drivectl config")
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal().Err(err).Msg("write template failed")
	}
	log.Info().Str("path", *output).Msg("wrote drivectl config template")
}
