package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicechallan/internal/dto"
	"voicechallan/internal/infra"
	"voicechallan/internal/metrics"
	"voicechallan/internal/model"
	"voicechallan/internal/receipt"
	"voicechallan/internal/repository"
	"voicechallan/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrChallanNotFound    = errors.New("challan not found")
	ErrDuplicateChallanNo = errors.New("challan number already exists")
	ErrShareDisabled      = errors.New("share links are not enabled")
	ErrShareInvalid       = errors.New("share link is invalid")
	ErrShareExpired       = errors.New("share link has expired")
)

const createdMessage = "PDF generated successfully"

// PDFCache is the read-through cache in front of challans.pdf_data.
type PDFCache interface {
	Get(ctx context.Context, id uuid.UUID) ([]byte, bool)
	Set(ctx context.Context, id uuid.UUID, pdf []byte) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EmailEnqueuer hands a challan email to the background workers.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

type ChallanService interface {
	Create(ctx context.Context, req dto.CreateChallanRequest) (*dto.CreateChallanResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ChallanResponse, error)
	List(ctx context.Context, filter dto.ChallanFilter) (*dto.ChallanListResponse, error)
	PDF(ctx context.Context, id uuid.UUID) (*dto.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Share(ctx context.Context, id uuid.UUID) (*dto.ShareResponse, error)
	SharedPDF(ctx context.Context, token string) (*dto.File, error)
	ExportXLSX(ctx context.Context, filter dto.ChallanFilter) (*dto.File, error)
}

// ChallanServiceConfig carries the tunables read from config.Config.
type ChallanServiceConfig struct {
	MaxItems      int
	PublicBaseURL string
}

type challanService struct {
	repo     repository.ChallanRepository
	renderer *receipt.Renderer
	cache    PDFCache
	emails   EmailEnqueuer
	signer   *infra.ShareSigner
	metrics  *metrics.Registry
	cfg      ChallanServiceConfig
	now      func() time.Time
}

// NewChallanService wires the challan use cases. cache, emails, signer and
// reg may be nil; the matching features are then skipped or disabled.
func NewChallanService(
	repo repository.ChallanRepository,
	renderer *receipt.Renderer,
	cache PDFCache,
	emails EmailEnqueuer,
	signer *infra.ShareSigner,
	reg *metrics.Registry,
	cfg ChallanServiceConfig,
) ChallanService {
	return &challanService{
		repo:     repo,
		renderer: renderer,
		cache:    cache,
		emails:   emails,
		signer:   signer,
		metrics:  reg,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
//   1. validate (item cap, receipt rules)
//   2. reject a reused challan number
//   3. render the PDF; nothing is stored if this fails
//   4. persist record + bytes, prime the cache
//   5. (async) email the PDF when emailTo is set

func (s *challanService) Create(ctx context.Context, req dto.CreateChallanRequest) (*dto.CreateChallanResponse, error) {
	if s.cfg.MaxItems > 0 && len(req.Items) > s.cfg.MaxItems {
		return nil, &receipt.ValidationError{
			Field:  "items",
			Index:  -1,
			Reason: fmt.Sprintf("at most %d items are allowed", s.cfg.MaxItems),
		}
	}

	rec := RecordFromRequest(req, s.now().UTC())
	if err := receipt.Validate(rec); err != nil {
		s.countRender(metrics.OutcomeInvalid)
		return nil, err
	}

	if _, err := s.repo.FindByChallanNo(ctx, rec.ChallanNo); err == nil {
		return nil, ErrDuplicateChallanNo
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup challan number: %w", err)
	}

	pdf, err := s.render(rec)
	if err != nil {
		return nil, err
	}

	totals := receipt.ComputeTotals(rec.Items)
	challan := &model.Challan{
		ID:           uuid.New(),
		CustomerName: rec.CustomerName,
		ChallanNo:    rec.ChallanNo,
		PDFData:      pdf,
		Items:        recordToItems(rec.Items),
		TotalItems:   totals.Items,
		TotalPrice:   totals.Price,
		CreatedAt:    rec.CreatedAt,
	}
	if err := s.repo.Create(ctx, challan); err != nil {
		// lost the race against a concurrent insert of the same number
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateChallanNo
		}
		return nil, fmt.Errorf("save challan: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ChallansCreated.Inc()
	}
	s.cachePDF(ctx, challan.ID, pdf)

	if req.EmailTo != nil && *req.EmailTo != "" && s.emails != nil {
		job := worker.EmailJobPayload{
			ToEmail:   *req.EmailTo,
			ChallanID: challan.ID.String(),
			Subject:   fmt.Sprintf("Challan %s", challan.ChallanNo),
			Body: fmt.Sprintf("Dear %s,\n\nPlease find challan %s attached.\nTotal: %s\n",
				challan.CustomerName, challan.ChallanNo,
				receipt.FormatCurrency(s.renderer.CurrencySymbol(), challan.TotalPrice)),
		}
		if err := s.emails.EnqueueEmail(ctx, job); err != nil {
			log.Warn().Err(err).Str("challan_id", challan.ID.String()).Msg("challan: failed to enqueue email")
		}
	}

	log.Info().
		Str("challan_id", challan.ID.String()).
		Str("challan_no", challan.ChallanNo).
		Int("items", len(challan.Items)).
		Msg("challan created")

	return &dto.CreateChallanResponse{
		Message:    createdMessage,
		ChallanID:  challan.ID.String(),
		ChallanNo:  challan.ChallanNo,
		TotalItems: totals.Items,
		TotalPrice: totals.Price,
	}, nil
}

func (s *challanService) Get(ctx context.Context, id uuid.UUID) (*dto.ChallanResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(c), nil
}

func (s *challanService) List(ctx context.Context, filter dto.ChallanFilter) (*dto.ChallanListResponse, error) {
	challans, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list challans: %w", err)
	}
	out := make([]dto.ChallanSummary, len(challans))
	for i := range challans {
		out[i] = toSummary(&challans[i])
	}
	return &dto.ChallanListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// PDF returns the stored document: cache first, then the stored bytes, then a
// fresh render of the stored record which is written back.
func (s *challanService) PDF(ctx context.Context, id uuid.UUID) (*dto.File, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	file := &dto.File{Filename: receipt.Filename(c.ChallanNo), ContentType: ContentTypePDF}

	if b, ok := s.cachedPDF(ctx, id); ok {
		file.Data = b
		return file, nil
	}
	if len(c.PDFData) > 0 {
		s.cachePDF(ctx, id, c.PDFData)
		file.Data = c.PDFData
		return file, nil
	}

	pdf, err := s.render(challanToRecord(c))
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePDF(ctx, id, pdf); err != nil {
		log.Warn().Err(err).Str("challan_id", id.String()).Msg("challan: pdf backfill failed")
	}
	s.cachePDF(ctx, id, pdf)
	file.Data = pdf
	return file, nil
}

func (s *challanService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallanNotFound
		}
		return fmt.Errorf("delete challan: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("challan_id", id.String()).Msg("challan: cache invalidation failed")
		}
	}
	log.Info().Str("challan_id", id.String()).Msg("challan deleted")
	return nil
}

func (s *challanService) Share(ctx context.Context, id uuid.UUID) (*dto.ShareResponse, error) {
	if !s.signer.Enabled() {
		return nil, ErrShareDisabled
	}
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.signer.Sign(c.ID, c.ChallanNo)
	if err != nil {
		return nil, err
	}
	return &dto.ShareResponse{
		URL:       s.cfg.PublicBaseURL + "/api/shared/" + token,
		ExpiresAt: exp.UTC().Format(time.RFC3339),
	}, nil
}

func (s *challanService) SharedPDF(ctx context.Context, token string) (*dto.File, error) {
	id, err := s.signer.Parse(token)
	switch {
	case errors.Is(err, infra.ErrSharingDisabled):
		return nil, ErrShareDisabled
	case errors.Is(err, infra.ErrShareExpired):
		return nil, ErrShareExpired
	case err != nil:
		return nil, ErrShareInvalid
	}
	return s.PDF(ctx, id)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *challanService) find(ctx context.Context, id uuid.UUID) (*model.Challan, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallanNotFound
		}
		return nil, fmt.Errorf("find challan: %w", err)
	}
	return c, nil
}

func (s *challanService) render(rec receipt.Record) ([]byte, error) {
	start := time.Now()
	pdf, err := s.renderer.Render(rec)
	if s.metrics != nil {
		s.metrics.RenderLatency.Observe(time.Since(start).Seconds())
	}

	var ve *receipt.ValidationError
	switch {
	case errors.As(err, &ve):
		s.countRender(metrics.OutcomeInvalid)
	case err != nil:
		s.countRender(metrics.OutcomeRenderFail)
		log.Error().Err(err).Str("challan_no", rec.ChallanNo).Msg("challan: render failed")
	default:
		s.countRender(metrics.OutcomeOK)
	}
	return pdf, err
}

func (s *challanService) countRender(outcome string) {
	if s.metrics != nil {
		s.metrics.Renders.WithLabelValues(outcome).Inc()
	}
}

func (s *challanService) cachedPDF(ctx context.Context, id uuid.UUID) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, ok := s.cache.Get(ctx, id)
	if s.metrics != nil {
		if ok {
			s.metrics.PDFCacheHits.Inc()
		} else {
			s.metrics.PDFCacheMisses.Inc()
		}
	}
	return b, ok
}

func (s *challanService) cachePDF(ctx context.Context, id uuid.UUID, pdf []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, id, pdf); err != nil {
		log.Warn().Err(err).Str("challan_id", id.String()).Msg("challan: cache write failed")
	}
}

// RecordFromRequest maps an API request onto the renderer input.
func RecordFromRequest(req dto.CreateChallanRequest, createdAt time.Time) receipt.Record {
	items := make([]receipt.LineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = receipt.LineItem{Description: it.Description, Quantity: it.Quantity, Price: it.Price}
	}
	return receipt.Record{
		CustomerName: req.CustomerName,
		ChallanNo:    req.ChallanNo,
		CreatedAt:    createdAt,
		Items:        items,
	}
}

func recordToItems(items []receipt.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	for i, it := range items {
		out[i] = model.LineItem{Description: *it.Description, Quantity: *it.Quantity, Price: it.Price}
	}
	return out
}

func challanToRecord(c *model.Challan) receipt.Record {
	items := make([]receipt.LineItem, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]
		items[i] = receipt.LineItem{Description: &it.Description, Quantity: &it.Quantity, Price: it.Price}
	}
	return receipt.Record{
		CustomerName: c.CustomerName,
		ChallanNo:    c.ChallanNo,
		CreatedAt:    c.CreatedAt,
		Items:        items,
	}
}

func (s *challanService) toResponse(c *model.Challan) *dto.ChallanResponse {
	items := make([]dto.LineItemResponse, len(c.Items))
	for i, it := range c.Items {
		price := decimal.Zero
		if it.Price != nil {
			price = *it.Price
		}
		items[i] = dto.LineItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       price,
			Total:       it.Quantity.Mul(price),
		}
	}
	return &dto.ChallanResponse{
		ID:           c.ID.String(),
		CustomerName: c.CustomerName,
		ChallanNo:    c.ChallanNo,
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
		Items:        items,
		TotalItems:   c.TotalItems,
		TotalPrice:   c.TotalPrice,
		PDFUrl:       s.cfg.PublicBaseURL + "/api/download-pdf/" + c.ID.String(),
	}
}

func toSummary(c *model.Challan) dto.ChallanSummary {
	return dto.ChallanSummary{
		ID:           c.ID.String(),
		CustomerName: c.CustomerName,
		ChallanNo:    c.ChallanNo,
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
		TotalItems:   c.TotalItems,
		TotalPrice:   c.TotalPrice,
	}
}
