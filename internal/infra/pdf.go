package infra

// pdf.go builds the shared challan renderer from configuration:
//   - organization name, currency symbol and thank-you note
//   - table column order (PDF_TABLE_VARIANT)
//   - optional TrueType font (PDF_FONT_PATH) for text outside Windows-1252
//   - zone of the printed dates (APP_TIMEZONE)

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve on hosts without zoneinfo

	"voicechallan/internal/config"
	"voicechallan/internal/receipt"

	"github.com/rs/zerolog/log"
)

const (
	TableQuantityFirst = "quantity-first"
	TableItemFirst     = "item-first"
)

// NewChallanRenderer returns the renderer used by the API, the workers and
// the offline CLI. The returned Renderer is safe for concurrent use.
func NewChallanRenderer(cfg *config.Config) (*receipt.Renderer, error) {
	opts := receipt.Options{
		OrganizationName: cfg.OrganizationName,
		CurrencySymbol:   cfg.CurrencySymbol,
		ThankYouNote:     cfg.ThankYouNote,
	}

	switch cfg.TableVariant {
	case "", TableQuantityFirst:
		opts.Columns = receipt.DefaultColumns()
	case TableItemFirst:
		opts.Columns = receipt.ItemColumns()
	default:
		return nil, fmt.Errorf("pdf: unknown table variant %q (want %s or %s)", cfg.TableVariant, TableQuantityFirst, TableItemFirst)
	}

	if cfg.PDFFontPath != "" {
		font, err := os.ReadFile(cfg.PDFFontPath)
		if err != nil {
			return nil, fmt.Errorf("pdf: read font: %w", err)
		}
		opts.UTF8Font = font
		log.Info().Str("font", cfg.PDFFontPath).Msg("pdf: using UTF-8 font")
	}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("pdf: load timezone: %w", err)
		}
		opts.Location = loc
	}

	return receipt.NewRenderer(opts), nil
}
