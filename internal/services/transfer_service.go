package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
	"shipdesk/internal/repositories/interfaces"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
	"shipdesk/pkg/logger"
	"shipdesk/pkg/metrics"
	"shipdesk/pkg/storage"
)

const (
	archiveKindExport = "exports"
	archiveKindImport = "imports"
)

// TransferService moves a company's rate cards in and out as CSV or XLSX.
type TransferService interface {
	Export(ctx context.Context, companyID string, format models.ExportFormat) (*models.ExportFile, error)
	Import(ctx context.Context, req *ImportRequest) (*models.ImportResult, error)
}

type ImportRequest struct {
	CompanyID string
	Filename  string
	Content   []byte
	Metadata  string
	Actor     models.Actor
}

type TransferOptions struct {
	MaxImportSize  int64
	ArchiveExports bool
	ArchiveImports bool
}

type transferService struct {
	rateCardRepo interfaces.RateCardRepository
	companyRepo  interfaces.CompanyRepository
	archiver     *storage.Archiver
	audit        AuditRecorder
	events       EventPublisher
	metrics      *metrics.Metrics
	logger       *logger.Logger
	options      TransferOptions
	now          func() time.Time
}

func NewTransferService(
	rateCardRepo interfaces.RateCardRepository,
	companyRepo interfaces.CompanyRepository,
	archiver *storage.Archiver,
	audit AuditRecorder,
	events EventPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
	options TransferOptions,
) TransferService {
	if options.MaxImportSize <= 0 {
		options.MaxImportSize = utils.MaxImportFileSize
	}
	return &transferService{
		rateCardRepo: rateCardRepo,
		companyRepo:  companyRepo,
		archiver:     archiver,
		audit:        audit,
		events:       events,
		metrics:      m,
		logger:       log,
		options:      options,
		now:          time.Now,
	}
}

func (s *transferService) Export(ctx context.Context, companyID string, format models.ExportFormat) (file *models.ExportFile, err error) {
	defer func() { s.metrics.RecordOperation("export", err) }()

	if companyID == "" {
		return nil, apperrors.Invalid("companyId", "is required")
	}
	id, err := validators.ParseObjectID("companyId", companyID)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = models.ExportFormatCSV
	}

	cards, err := s.rateCardRepo.ListByCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := BuildExportRows(cards)
	if err != nil {
		return nil, err
	}

	file = &models.ExportFile{Rows: len(rows)}
	base := fmt.Sprintf("ratecards_%s_%s", id.Hex(), s.now().UTC().Format(utils.ExportTimeLayout))

	switch format {
	case models.ExportFormatCSV:
		file.Filename = base + ".csv"
		file.ContentType = utils.GetContentType(file.Filename)
		file.Content = EncodeCSV(rows)
	case models.ExportFormatXLSX:
		file.Filename = base + ".xlsx"
		file.ContentType = utils.GetContentType(file.Filename)
		if file.Content, err = EncodeXLSX(rows); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.Invalid("format", "must be one of [csv xlsx]")
	}

	if s.options.ArchiveExports {
		s.archive(ctx, archiveKindExport, id.Hex(), file.Filename, file.ContentType, file.Content)
	}

	return file, nil
}

// importGroup is every row sharing one card name, in file order.
type importGroup struct {
	name    string
	rows    []*importRow
	pricing models.ZonePricing
}

// Import is partial-success tolerant: bad rows and incomplete groups are
// reported in the result while the rest are written.
func (s *transferService) Import(ctx context.Context, req *ImportRequest) (result *models.ImportResult, err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionImport), err) }()

	companyID, err := s.validateImport(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return nil, err
	}

	result = &models.ImportResult{Errors: []models.ImportRowError{}, Warnings: []string{}}

	meta, warnings := validators.ParseImportMetadata(req.Metadata)
	if len(warnings) > 0 {
		s.logger.WithContext(ctx).WithField("company_id", companyID.Hex()).
			Warnf("Import metadata ignored: %v", warnings)
		result.Warnings = append(result.Warnings, warnings...)
	}

	var records [][]string
	if utils.GetFileExtension(req.Filename) == ".xlsx" {
		records, err = DecodeXLSX(req.Content)
	} else {
		records, err = DecodeCSV(req.Content)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.Invalid("file", "file is empty")
	}

	index, err := indexColumns(records[0])
	if err != nil {
		return nil, err
	}

	groups := s.groupRows(records, index, result)
	for _, group := range groups {
		created, err := s.writeGroup(ctx, companyID, group, meta, req.Actor)
		if err != nil {
			if apperrors.IsConflict(err) || apperrors.IsNotFound(err) {
				result.Errors = append(result.Errors, models.ImportRowError{Row: group.rows[0].Line, Message: err.Error()})
				continue
			}
			if v, ok := apperrors.AsValidation(err); ok {
				result.Errors = append(result.Errors, models.ImportRowError{Row: group.rows[0].Line, Message: v.Error()})
				continue
			}
			return nil, err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	if s.options.ArchiveImports {
		s.archive(ctx, archiveKindImport, companyID.Hex(), req.Filename, utils.GetContentType(req.Filename), req.Content)
	}

	s.metrics.RecordImportRows(result.Created, result.Updated, len(result.Errors))
	details := map[string]interface{}{
		"filename": req.Filename,
		"created":  result.Created,
		"updated":  result.Updated,
		"errors":   len(result.Errors),
	}
	s.audit.Record(ctx, AuditEntry{
		Actor:      req.Actor,
		Action:     models.AuditActionImport,
		CompanyID:  companyID.Hex(),
		ResourceID: companyID.Hex(),
		Details:    details,
	})
	if result.Created+result.Updated > 0 {
		s.events.Publish(ctx, newEvent(models.EventRateCardImported, "", companyID.Hex(), details))
	}

	return result, nil
}

func (s *transferService) validateImport(req *ImportRequest) (primitive.ObjectID, error) {
	var errs validators.ValidationErrors

	var companyID primitive.ObjectID
	if req.CompanyID == "" {
		errs.Add("companyId", "is required")
	} else if id, err := primitive.ObjectIDFromHex(req.CompanyID); err != nil {
		errs.Add("companyId", "must be a valid id")
	} else {
		companyID = id
	}

	switch {
	case len(req.Content) == 0:
		errs.Add("file", "is required")
	case !utils.IsAllowedFileType(req.Filename, []string{".csv", ".xlsx"}):
		errs.Add("file", "must be a .csv or .xlsx file")
	case int64(len(req.Content)) > s.options.MaxImportSize:
		errs.Add("file", fmt.Sprintf("must not exceed %d bytes", s.options.MaxImportSize))
	}

	if err := errs.Err("invalid import"); err != nil {
		return primitive.NilObjectID, err
	}
	return companyID, nil
}

// groupRows parses data rows and groups them by name. Row-level problems and
// groups missing a zone are recorded in result and dropped.
func (s *transferService) groupRows(records [][]string, index columnIndex, result *models.ImportResult) []*importGroup {
	var groups []*importGroup
	byName := make(map[string]*importGroup)

	for i, record := range records[1:] {
		line := i + 2
		if isBlankRecord(record) {
			continue
		}

		row, err := parseImportRow(index, record, line)
		if err != nil {
			result.Errors = append(result.Errors, models.ImportRowError{Row: line, Message: err.Error()})
			continue
		}

		group, ok := byName[row.Name]
		if !ok {
			group = &importGroup{name: row.Name, pricing: models.ZonePricing{}}
			byName[row.Name] = group
			groups = append(groups, group)
		}
		if _, dup := group.pricing[row.Zone]; dup {
			result.Errors = append(result.Errors, models.ImportRowError{
				Row:     line,
				Message: fmt.Sprintf("duplicate zone %s for rate card %q", row.Zone.Letter(), row.Name),
			})
			continue
		}
		group.pricing[row.Zone] = row.Price
		group.rows = append(group.rows, row)
	}

	complete := groups[:0]
	for _, group := range groups {
		if len(group.rows) == 0 {
			continue
		}
		if missing := group.pricing.MissingZones(); len(missing) > 0 {
			result.Errors = append(result.Errors, models.ImportRowError{
				Row:     group.rows[0].Line,
				Message: validators.MissingZonesMessage(group.name, missing),
			})
			continue
		}
		complete = append(complete, group)
	}

	return complete
}

// writeGroup creates the company's card with this name or updates the
// existing one. It reports whether a card was created.
func (s *transferService) writeGroup(ctx context.Context, companyID primitive.ObjectID, group *importGroup, meta *models.ImportMetadata, actor models.Actor) (bool, error) {
	existing, err := s.rateCardRepo.FindByName(ctx, group.name, &companyID)
	if err != nil && !apperrors.IsNotFound(err) {
		return false, err
	}

	card := existing
	if card == nil {
		card = &models.RateCard{
			Name:      group.name,
			Scope:     models.RateCardScopeCompany,
			CompanyID: &companyID,
			Status:    models.RateCardStatusDraft,
			Version:   1,
			CreatedBy: actor.UserID,
			EffectiveDates: models.EffectiveDates{
				StartDate: utils.StartOfDay(s.now().UTC()),
			},
		}
	} else if card.IsLocked {
		return false, apperrors.Conflict("rate card %q is locked", card.Name)
	}

	card.ZonePricing = group.pricing
	if err := applyRowAttributes(card, group.rows[0].Values); err != nil {
		return false, apperrors.NewValidation(err.Error())
	}
	applyMetadata(card, meta)
	card.UpdatedBy = actor.UserID

	if existing == nil {
		if err := s.rateCardRepo.Create(ctx, card); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := s.rateCardRepo.Replace(ctx, card); err != nil {
		return false, err
	}
	return false, nil
}

func applyMetadata(card *models.RateCard, meta *models.ImportMetadata) {
	if meta == nil {
		return
	}
	if meta.FuelSurcharge != nil {
		card.FuelSurcharge = meta.FuelSurcharge
	}
	if meta.FuelSurchargeBase != nil {
		card.FuelSurchargeBase = meta.FuelSurchargeBase
	}
	if meta.Version != nil {
		card.Version = *meta.Version
	}
	if meta.IsLocked != nil {
		card.IsLocked = *meta.IsLocked
	}
}

func (s *transferService) archive(ctx context.Context, kind, companyID, filename, contentType string, data []byte) {
	if !s.archiver.Enabled() {
		return
	}

	key, err := s.archiver.Archive(ctx, kind, companyID, filename, contentType, data)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"kind":       kind,
			"company_id": companyID,
		}).Warn("Failed to archive rate card file")
		return
	}

	s.logger.WithContext(ctx).WithField("key", key).Debug("Archived rate card file")
}
