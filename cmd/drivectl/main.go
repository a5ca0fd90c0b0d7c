package main

import (
	"fmt"
	"io"
	"os"

	"github.com/danmuck/drivelink/internal/config"
	"github.com/danmuck/drivelink/internal/logging"
	"github.com/danmuck/drivelink/internal/vehicle"
	"github.com/rs/zerolog/log"
)

const usage = `usage: drivectl <command> [flags]

commands:
  encode  -cmd <name> [flags]   print the hex frame for one command
  decode  <hex>...              decode frames and print JSON
  replay  -file <path>          decode a capture, one hex frame per line
  info                          print link identifiers and vehicle models
`

func main() {
	log.Logger = logging.InitLogger("drivectl")
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		log.Error().Err(err).Str("cmd", os.Args[1]).Msg("drivectl failed")
		os.Exit(1)
	}
}

func run(sub string, args []string, out io.Writer) error {
	switch sub {
	case "encode":
		return runEncode(args, out)
	case "decode":
		return runDecode(args, out)
	case "replay":
		return runReplay(args, out)
	case "info":
		return runInfo(out)
	case "help", "-h", "--help":
		_, err := fmt.Fprint(out, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q", sub)
	}
}

// loadConfig returns defaults when path is empty. A loaded config sets the
// log level of both loggers.
func loadConfig(path string) (config.DriveConfig, error) {
	cfg := config.DefaultDriveConfig()
	if path != "" {
		loaded, err := config.LoadDriveConfig(path)
		if err != nil {
			return config.DriveConfig{}, err
		}
		cfg = loaded
		if level, ok := logging.ParseLevel(cfg.LogLevel); ok {
			logging.SetLevel(level)
		}
		log.Debug().Str("path", path).Str("vehicle", cfg.Vehicle).Msg("config loaded")
	}
	return cfg, nil
}

func runInfo(out io.Writer) error {
	fmt.Fprintf(out, "service      %s\n", vehicle.ServiceUUID)
	fmt.Fprintf(out, "read char    %s\n", vehicle.ReadCharacteristicUUID)
	fmt.Fprintf(out, "write char   %s\n", vehicle.WriteCharacteristicUUID)
	fmt.Fprintln(out, "models:")
	for _, m := range vehicle.Models() {
		if _, err := fmt.Fprintf(out, "  0x%02x  %s\n", uint8(m), m.Name()); err != nil {
			return err
		}
	}
	return nil
}
