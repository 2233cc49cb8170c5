package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
	"shipdesk/internal/repositories/interfaces"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
	"shipdesk/pkg/logger"
	"shipdesk/pkg/metrics"
)

type RateCardService interface {
	// Reads
	List(ctx context.Context, filter *models.RateCardFilter, params *utils.PaginationParams) ([]*models.RateCardResponse, int64, error)
	GetByID(ctx context.Context, id string) (*models.RateCardResponse, error)

	// Mutations
	Create(ctx context.Context, req *validators.CreateRateCardRequest, actor models.Actor) (*models.RateCardResponse, error)
	Update(ctx context.Context, id string, req *validators.UpdateRateCardRequest, actor models.Actor) (*models.RateCardResponse, error)
	Delete(ctx context.Context, id string, actor models.Actor) error
	Clone(ctx context.Context, id string, actor models.Actor) (*models.RateCardResponse, error)
	BulkUpdate(ctx context.Context, req *validators.BulkUpdateRequest, actor models.Actor) (*models.BulkUpdateResult, error)
}

type rateCardService struct {
	rateCardRepo interfaces.RateCardRepository
	companyRepo  interfaces.CompanyRepository
	audit        AuditRecorder
	events       EventPublisher
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewRateCardService(
	rateCardRepo interfaces.RateCardRepository,
	companyRepo interfaces.CompanyRepository,
	audit AuditRecorder,
	events EventPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) RateCardService {
	return &rateCardService{
		rateCardRepo: rateCardRepo,
		companyRepo:  companyRepo,
		audit:        audit,
		events:       events,
		metrics:      m,
		logger:       log,
	}
}

func (s *rateCardService) List(ctx context.Context, filter *models.RateCardFilter, params *utils.PaginationParams) ([]*models.RateCardResponse, int64, error) {
	cards, total, err := s.rateCardRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}

	responses, err := s.withCompanies(ctx, cards)
	if err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (s *rateCardService) GetByID(ctx context.Context, id string) (*models.RateCardResponse, error) {
	cardID, err := validators.ParseObjectID("id", id)
	if err != nil {
		return nil, err
	}

	card, err := s.rateCardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	return s.withCompany(ctx, card)
}

func (s *rateCardService) Create(ctx context.Context, req *validators.CreateRateCardRequest, actor models.Actor) (resp *models.RateCardResponse, err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionCreate), err) }()

	if err := validators.ValidateCreateRateCard(req); err != nil {
		return nil, err
	}

	var companyID *primitive.ObjectID
	if req.CompanyID != "" {
		id, err := validators.ParseObjectID("companyId", req.CompanyID)
		if err != nil {
			return nil, err
		}
		companyID = &id
	}

	scope, err := ResolveScope(req.Scope, companyID)
	if err != nil {
		return nil, err
	}

	if companyID != nil {
		if _, err := s.companyRepo.GetByID(ctx, *companyID); err != nil {
			return nil, err
		}
	}

	if err := s.ensureUniqueName(ctx, req.Name, companyID, nil); err != nil {
		return nil, err
	}

	dates, err := req.EffectiveDates.EffectiveDates()
	if err != nil {
		return nil, apperrors.Invalid("effectiveDates", err.Error())
	}

	status := req.Status
	if status == "" {
		status = models.RateCardStatusDraft
	}

	card := &models.RateCard{
		Name:                    req.Name,
		Scope:                   scope,
		CompanyID:               companyID,
		ZonePricing:             req.ZonePricing.Copy(),
		Status:                  status,
		EffectiveDates:          dates,
		Category:                req.Category,
		ShipmentType:            req.ShipmentType,
		GST:                     req.GST,
		MinimumFare:             req.MinimumFare,
		MinimumFareCalculatedOn: req.MinimumFareCalculatedOn,
		ZoneBType:               req.ZoneBType,
		CODPercentage:           req.CODPercentage,
		CODMinimumCharge:        req.CODMinimumCharge,
		FuelSurcharge:           req.FuelSurcharge,
		FuelSurchargeBase:       req.FuelSurchargeBase,
		Version:                 1,
		CreatedBy:               actor.UserID,
		UpdatedBy:               actor.UserID,
	}

	if err := s.rateCardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionCreate,
		CompanyID:  card.CompanyKey(),
		ResourceID: card.ID.Hex(),
		Details:    map[string]interface{}{"name": card.Name, "scope": card.Scope, "status": card.Status},
	})
	s.events.Publish(ctx, newEvent(models.EventRateCardCreated, card.ID.Hex(), card.CompanyKey(), map[string]interface{}{"name": card.Name}))

	return s.withCompany(ctx, card)
}

func (s *rateCardService) Update(ctx context.Context, id string, req *validators.UpdateRateCardRequest, actor models.Actor) (resp *models.RateCardResponse, err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionUpdate), err) }()

	cardID, err := validators.ParseObjectID("id", id)
	if err != nil {
		return nil, err
	}
	if err := validators.ValidateUpdateRateCard(req); err != nil {
		return nil, err
	}

	var patchCompanyID **primitive.ObjectID
	if req.CompanyID != nil {
		var companyID *primitive.ObjectID
		if *req.CompanyID != "" {
			parsed, err := validators.ParseObjectID("companyId", *req.CompanyID)
			if err != nil {
				return nil, err
			}
			companyID = &parsed
		}
		patchCompanyID = &companyID
	}

	card, err := s.rateCardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.IsLocked && (req.IsLocked == nil || *req.IsLocked) {
		return nil, apperrors.Conflict("rate card %q is locked; unlock it with isLocked=false to edit", card.Name)
	}

	scope, companyID, err := resolveUpdatedOwner(card, req.Scope, patchCompanyID)
	if err != nil {
		return nil, err
	}

	ownerChanged := !sameCompany(card.CompanyID, companyID)
	if ownerChanged && companyID != nil {
		if _, err := s.companyRepo.GetByID(ctx, *companyID); err != nil {
			return nil, err
		}
	}

	name := card.Name
	if req.Name != nil {
		name = *req.Name
	}
	if name != card.Name || ownerChanged {
		if err := s.ensureUniqueName(ctx, name, companyID, &card.ID); err != nil {
			return nil, err
		}
	}

	card.Name = name
	card.Scope = scope
	card.CompanyID = companyID
	if err := applyPatch(card, req); err != nil {
		return nil, err
	}
	card.UpdatedBy = actor.UserID

	if err := s.rateCardRepo.Replace(ctx, card); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionUpdate,
		CompanyID:  card.CompanyKey(),
		ResourceID: card.ID.Hex(),
		Details:    patchDetails(req),
	})
	s.events.Publish(ctx, newEvent(models.EventRateCardUpdated, card.ID.Hex(), card.CompanyKey(), map[string]interface{}{"name": card.Name}))

	return s.withCompany(ctx, card)
}

func (s *rateCardService) Delete(ctx context.Context, id string, actor models.Actor) (err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionDelete), err) }()

	cardID, err := validators.ParseObjectID("id", id)
	if err != nil {
		return err
	}

	card, err := s.rateCardRepo.GetByID(ctx, cardID)
	if err != nil {
		return err
	}

	if err := s.rateCardRepo.SoftDelete(ctx, cardID, actor.UserID); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionDelete,
		CompanyID:  card.CompanyKey(),
		ResourceID: card.ID.Hex(),
		Details:    map[string]interface{}{"name": card.Name},
	})
	s.events.Publish(ctx, newEvent(models.EventRateCardDeleted, card.ID.Hex(), card.CompanyKey(), nil))

	return nil
}

func (s *rateCardService) Clone(ctx context.Context, id string, actor models.Actor) (resp *models.RateCardResponse, err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionClone), err) }()

	cardID, err := validators.ParseObjectID("id", id)
	if err != nil {
		return nil, err
	}

	source, err := s.rateCardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	clone := source.CloneAsDraft()
	clone.CreatedBy = actor.UserID
	clone.UpdatedBy = actor.UserID

	if err := s.ensureUniqueName(ctx, clone.Name, clone.CompanyID, nil); err != nil {
		return nil, err
	}
	if err := s.rateCardRepo.Create(ctx, clone); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionClone,
		CompanyID:  source.CompanyKey(),
		ResourceID: clone.ID.Hex(),
		Details:    map[string]interface{}{"sourceId": source.ID.Hex(), "name": clone.Name},
	})
	s.events.Publish(ctx, newEvent(models.EventRateCardCloned, clone.ID.Hex(), source.CompanyKey(), map[string]interface{}{"sourceId": source.ID.Hex()}))

	return s.withCompany(ctx, clone)
}

// BulkUpdate is all-or-nothing up to the write: every id must be a live card
// of the company and, for price adjustments, every card must price all zones
// and stay non-negative.
func (s *rateCardService) BulkUpdate(ctx context.Context, req *validators.BulkUpdateRequest, actor models.Actor) (result *models.BulkUpdateResult, err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionBulkUpdate), err) }()

	if err := validators.ValidateBulkUpdate(req); err != nil {
		return nil, err
	}

	companyID, err := validators.ParseObjectID("companyId", req.CompanyID)
	if err != nil {
		return nil, err
	}
	ids, err := parseObjectIDs("rateCardIds", req.RateCardIDs)
	if err != nil {
		return nil, err
	}

	cards, err := s.rateCardRepo.GetByIDsForCompany(ctx, ids, companyID)
	if err != nil {
		return nil, err
	}
	if len(cards) != len(ids) {
		return nil, apperrors.Invalid("rateCardIds",
			fmt.Sprintf("%d of %d rate cards do not exist or do not belong to company %s", len(ids)-len(cards), len(ids), companyID.Hex()))
	}

	switch req.Operation {
	case models.BulkOperationActivate:
		result, err = s.rateCardRepo.SetStatusMany(ctx, ids, models.RateCardStatusActive, actor.UserID)
	case models.BulkOperationDeactivate:
		result, err = s.rateCardRepo.SetStatusMany(ctx, ids, models.RateCardStatusInactive, actor.UserID)
	case models.BulkOperationAdjustPrice:
		var pricing map[primitive.ObjectID]models.ZonePricing
		pricing, err = adjustedPricing(cards, req.AdjustmentType, *req.AdjustmentValue)
		if err != nil {
			return nil, err
		}
		result, err = s.rateCardRepo.SetZonePricingMany(ctx, pricing, actor.UserID)
	default:
		return nil, apperrors.Invalid("operation", "must be one of [activate deactivate adjust_price]")
	}
	if err != nil {
		return nil, err
	}
	result.Operation = req.Operation

	details := map[string]interface{}{
		"count":       len(ids),
		"operation":   req.Operation,
		"rateCardIds": req.RateCardIDs,
	}
	if req.Operation == models.BulkOperationAdjustPrice {
		details["adjustmentType"] = req.AdjustmentType
		details["adjustmentValue"] = *req.AdjustmentValue
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionBulkUpdate,
		CompanyID:  companyID.Hex(),
		ResourceID: companyID.Hex(),
		Details:    details,
	})
	s.events.Publish(ctx, newEvent(models.EventRateCardBulkUpdated, "", companyID.Hex(), details))

	return result, nil
}

func adjustedPricing(cards []*models.RateCard, adjustment models.AdjustmentType, value float64) (map[primitive.ObjectID]models.ZonePricing, error) {
	var errs validators.ValidationErrors
	pricing := make(map[primitive.ObjectID]models.ZonePricing, len(cards))

	for _, card := range cards {
		if missing := card.ZonePricing.MissingZones(); len(missing) > 0 {
			errs.Add("rateCardIds", validators.MissingZonesMessage(card.Name, missing))
			continue
		}

		adjusted, err := AdjustZonePricing(card.ZonePricing, adjustment, value)
		if err != nil {
			errs.Add("adjustmentValue", fmt.Sprintf("rate card %q: %v", card.Name, err))
			continue
		}
		pricing[card.ID] = adjusted
	}

	if err := errs.Err("invalid price adjustment"); err != nil {
		return nil, err
	}
	return pricing, nil
}

// applyPatch overwrites every field present in the patch. Zone pricing is
// replaced whole.
func applyPatch(card *models.RateCard, req *validators.UpdateRateCardRequest) error {
	if req.ZonePricing != nil {
		card.ZonePricing = req.ZonePricing.Copy()
	}
	if req.Status != nil {
		card.Status = *req.Status
	}
	if req.EffectiveDates != nil {
		dates, err := req.EffectiveDates.EffectiveDates()
		if err != nil {
			return apperrors.Invalid("effectiveDates", err.Error())
		}
		card.EffectiveDates = dates
	}
	if req.Category != nil {
		card.Category = *req.Category
	}
	if req.ShipmentType != nil {
		card.ShipmentType = *req.ShipmentType
	}
	if req.GST != nil {
		card.GST = req.GST
	}
	if req.MinimumFare != nil {
		card.MinimumFare = req.MinimumFare
	}
	if req.MinimumFareCalculatedOn != nil {
		card.MinimumFareCalculatedOn = *req.MinimumFareCalculatedOn
	}
	if req.ZoneBType != nil {
		card.ZoneBType = *req.ZoneBType
	}
	if req.CODPercentage != nil {
		card.CODPercentage = req.CODPercentage
	}
	if req.CODMinimumCharge != nil {
		card.CODMinimumCharge = req.CODMinimumCharge
	}
	if req.FuelSurcharge != nil {
		card.FuelSurcharge = req.FuelSurcharge
	}
	if req.FuelSurchargeBase != nil {
		card.FuelSurchargeBase = req.FuelSurchargeBase
	}
	if req.IsLocked != nil {
		card.IsLocked = *req.IsLocked
	}

	if end := card.EffectiveDates.EndDate; end != nil && end.Before(card.EffectiveDates.StartDate) {
		return apperrors.Invalid("effectiveDates.endDate", "must not be before startDate")
	}
	return nil
}

// patchDetails records the patch as supplied, keeping only present keys.
func patchDetails(req *validators.UpdateRateCardRequest) map[string]interface{} {
	details := map[string]interface{}{}

	raw, err := json.Marshal(req)
	if err != nil {
		return details
	}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]interface{}{}
	}

	for key, value := range details {
		if value == nil {
			delete(details, key)
		}
	}
	return details
}

func (s *rateCardService) ensureUniqueName(ctx context.Context, name string, companyID, excludeID *primitive.ObjectID) error {
	exists, err := s.rateCardRepo.NameExists(ctx, name, companyID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Conflict("rate card with name %q already exists for this company", name)
	}
	return nil
}

func (s *rateCardService) withCompany(ctx context.Context, card *models.RateCard) (*models.RateCardResponse, error) {
	responses, err := s.withCompanies(ctx, []*models.RateCard{card})
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

// withCompanies resolves every owning company with one lookup.
func (s *rateCardService) withCompanies(ctx context.Context, cards []*models.RateCard) ([]*models.RateCardResponse, error) {
	var ids []primitive.ObjectID
	seen := make(map[primitive.ObjectID]bool)
	for _, card := range cards {
		if card.CompanyID != nil && !seen[*card.CompanyID] {
			seen[*card.CompanyID] = true
			ids = append(ids, *card.CompanyID)
		}
	}

	refs := map[primitive.ObjectID]*models.CompanyRef{}
	if len(ids) > 0 {
		var err error
		refs, err = s.companyRepo.GetRefs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	responses := make([]*models.RateCardResponse, len(cards))
	for i, card := range cards {
		resp := &models.RateCardResponse{RateCard: card}
		if card.CompanyID != nil {
			resp.Company = refs[*card.CompanyID]
		}
		responses[i] = resp
	}
	return responses, nil
}

func sameCompany(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// parseObjectIDs parses and de-duplicates ids, reporting every malformed one.
func parseObjectIDs(field string, values []string) ([]primitive.ObjectID, error) {
	var errs validators.ValidationErrors
	ids := make([]primitive.ObjectID, 0, len(values))
	seen := make(map[primitive.ObjectID]bool, len(values))

	for i, value := range values {
		id, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			errs.Add(fmt.Sprintf("%s[%d]", field, i), "must be a valid id")
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if err := errs.Err("invalid ids"); err != nil {
		return nil, err
	}
	return ids, nil
}
