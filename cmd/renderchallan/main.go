// Command renderchallan renders a challan PDF from a JSON file without
// touching the database. The input has the same shape as the body of
// POST /api/generate-pdf.
//
//	renderchallan -in challan.json [-out CH-1.pdf]
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"voicechallan/internal/config"
	"voicechallan/internal/dto"
	"voicechallan/internal/infra"
	"voicechallan/internal/receipt"
	"voicechallan/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	in := flag.String("in", "-", "challan JSON file, - for stdin")
	out := flag.String("out", "", "output PDF path (default: challan_<no>.pdf)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	renderer, err := infra.NewChallanRenderer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure challan renderer")
	}

	req, err := readRequest(*in)
	if err != nil {
		log.Fatal().Err(err).Str("in", *in).Msg("failed to read challan")
	}

	pdf, err := renderer.Render(service.RecordFromRequest(req, time.Now()))
	if err != nil {
		var verr *receipt.ValidationError
		if errors.As(err, &verr) {
			log.Fatal().Str("field", verr.Field).Str("reason", verr.Reason).Msg("invalid challan")
		}
		log.Fatal().Err(err).Msg("render failed")
	}

	path := *out
	if path == "" {
		path = receipt.Filename(req.ChallanNo)
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		log.Fatal().Err(err).Str("out", path).Msg("failed to write pdf")
	}
	log.Info().Str("out", path).Int("bytes", len(pdf)).Msg("challan rendered")
}

func readRequest(path string) (dto.CreateChallanRequest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return dto.CreateChallanRequest{}, err
		}
		defer f.Close()
		r = f
	}
	var req dto.CreateChallanRequest
	err := json.NewDecoder(r).Decode(&req)
	return req, err
}
