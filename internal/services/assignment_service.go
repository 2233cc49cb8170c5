package services

import (
	"context"
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

// AssignmentService manages each company's default rate card. A company has
// at most one; the last write wins.
type AssignmentService interface {
	Assign(ctx context.Context, req *validators.AssignRequest, actor models.Actor) (*models.Assignment, error)
	Unassign(ctx context.Context, companyID string, actor models.Actor) error
	BulkAssign(ctx context.Context, req *validators.BulkAssignRequest, actor models.Actor) (*models.BulkAssignResult, error)
	ListAssignments(ctx context.Context, rateCardID string, params *utils.PaginationParams) ([]*models.AssignmentView, int64, error)
}

type assignmentService struct {
	rateCardRepo interfaces.RateCardRepository
	companyRepo  interfaces.CompanyRepository
	audit        AuditRecorder
	events       EventPublisher
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewAssignmentService(
	rateCardRepo interfaces.RateCardRepository,
	companyRepo interfaces.CompanyRepository,
	audit AuditRecorder,
	events EventPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) AssignmentService {
	return &assignmentService{
		rateCardRepo: rateCardRepo,
		companyRepo:  companyRepo,
		audit:        audit,
		events:       events,
		metrics:      m,
		logger:       log,
	}
}

func (s *assignmentService) Assign(ctx context.Context, req *validators.AssignRequest, actor models.Actor) (assignment *models.Assignment, err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionAssign), err) }()

	if err := validators.ValidateAssign(req); err != nil {
		return nil, err
	}
	rateCardID, _ := primitive.ObjectIDFromHex(req.RateCardID)
	companyID, _ := primitive.ObjectIDFromHex(req.SellerID)

	card, err := s.rateCardRepo.GetByID(ctx, rateCardID)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if msg := assignConflict(card, companyID); msg != "" {
		return nil, apperrors.Invalid("rateCardId", msg)
	}

	if err := s.companyRepo.SetDefaultRateCard(ctx, companyID, &rateCardID); err != nil {
		return nil, err
	}

	details := map[string]interface{}{"sellerId": companyID.Hex(), "rateCardId": rateCardID.Hex()}
	if previous := company.Settings.DefaultRateCardID; previous != nil {
		details["previousRateCardId"] = previous.Hex()
	}
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionAssign,
		CompanyID:  companyID.Hex(),
		ResourceID: rateCardID.Hex(),
		Details:    details,
	})
	s.events.Publish(ctx, newEvent(models.EventRateCardAssigned, rateCardID.Hex(), companyID.Hex(), details))

	return &models.Assignment{CompanyID: companyID, RateCardID: rateCardID}, nil
}

// Unassign clears the company's default card. A company without one is left
// as is and the call still succeeds.
func (s *assignmentService) Unassign(ctx context.Context, companyID string, actor models.Actor) (err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionUnassign), err) }()

	id, err := validators.ParseObjectID("id", companyID)
	if err != nil {
		return err
	}

	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	previous := company.Settings.DefaultRateCardID
	if previous == nil {
		return nil
	}

	if err := s.companyRepo.SetDefaultRateCard(ctx, id, nil); err != nil {
		return err
	}

	details := map[string]interface{}{"sellerId": id.Hex(), "previousRateCardId": previous.Hex()}
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionUnassign,
		CompanyID:  id.Hex(),
		ResourceID: previous.Hex(),
		Details:    details,
	})
	s.events.Publish(ctx, newEvent(models.EventRateCardUnassigned, previous.Hex(), id.Hex(), details))

	return nil
}

func (s *assignmentService) BulkAssign(ctx context.Context, req *validators.BulkAssignRequest, actor models.Actor) (result *models.BulkAssignResult, err error) {
	defer func() { s.metrics.RecordOperation(string(models.AuditActionBulkAssign), err) }()

	if err := validators.ValidateBulkAssign(req); err != nil {
		return nil, err
	}

	var assignments []models.Assignment
	if len(req.Assignments) > 0 {
		assignments, err = explicitAssignments(req.Assignments)
	} else {
		assignments, err = s.expandAssignments(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	rateCardIDs := make([]primitive.ObjectID, 0, 1)
	seen := make(map[primitive.ObjectID]bool)
	for _, a := range assignments {
		if !seen[a.RateCardID] {
			seen[a.RateCardID] = true
			rateCardIDs = append(rateCardIDs, a.RateCardID)
		}
	}
	cards := make(map[primitive.ObjectID]*models.RateCard, len(rateCardIDs))
	for _, id := range rateCardIDs {
		card, err := s.rateCardRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		cards[id] = card
	}

	var errs validators.ValidationErrors
	for i, a := range assignments {
		if msg := assignConflict(cards[a.RateCardID], a.CompanyID); msg != "" {
			errs.Add(fmt.Sprintf("assignments[%d]", i), msg)
		}
	}
	if err := errs.Err("invalid bulk assignment"); err != nil {
		return nil, err
	}

	result, err = s.companyRepo.BulkSetDefaultRateCard(ctx, assignments)
	if err != nil {
		return nil, err
	}

	resourceID := models.AuditCompanyMultiple
	if len(rateCardIDs) == 1 {
		resourceID = rateCardIDs[0].Hex()
	}
	details := map[string]interface{}{
		"companyCount": result.CompanyCount,
		"matched":      result.Matched,
		"modified":     result.Modified,
		"rateCardIds":  hexIDs(rateCardIDs),
	}
	if len(req.GroupIDs) > 0 {
		details["groupIds"] = req.GroupIDs
	}
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionBulkAssign,
		CompanyID:  models.AuditCompanyMultiple,
		ResourceID: resourceID,
		Details:    details,
	})
	s.events.Publish(ctx, newEvent(models.EventRateCardAssigned, resourceID, models.AuditCompanyMultiple, details))

	return result, nil
}

func (s *assignmentService) ListAssignments(ctx context.Context, rateCardID string, params *utils.PaginationParams) ([]*models.AssignmentView, int64, error) {
	var filter *primitive.ObjectID
	if rateCardID != "" {
		id, err := validators.ParseObjectID("rateCardId", rateCardID)
		if err != nil {
			return nil, 0, err
		}
		filter = &id
	}

	return s.companyRepo.ListAssignments(ctx, filter, params)
}

// expandAssignments unions companyIds with every member of groupIds.
func (s *assignmentService) expandAssignments(ctx context.Context, req *validators.BulkAssignRequest) ([]models.Assignment, error) {
	rateCardID, err := validators.ParseObjectID("rateCardId", req.RateCardID)
	if err != nil {
		return nil, err
	}
	companyIDs, err := parseObjectIDs("companyIds", req.CompanyIDs)
	if err != nil {
		return nil, err
	}
	groupIDs, err := parseObjectIDs("groupIds", req.GroupIDs)
	if err != nil {
		return nil, err
	}

	var members []primitive.ObjectID
	if len(groupIDs) > 0 {
		if members, err = s.companyRepo.GetGroupMemberIDs(ctx, groupIDs); err != nil {
			return nil, err
		}
	}

	targets := make(map[primitive.ObjectID]bool, len(companyIDs)+len(members))
	var assignments []models.Assignment
	for _, id := range append(companyIDs, members...) {
		if targets[id] {
			continue
		}
		targets[id] = true
		assignments = append(assignments, models.Assignment{CompanyID: id, RateCardID: rateCardID})
	}

	if len(assignments) == 0 {
		return nil, apperrors.Invalid("groupIds", "groups have no member companies")
	}
	return assignments, nil
}

// explicitAssignments keeps the last entry for a company listed twice.
func explicitAssignments(entries []validators.AssignmentEntry) ([]models.Assignment, error) {
	var errs validators.ValidationErrors
	position := make(map[primitive.ObjectID]int, len(entries))
	var assignments []models.Assignment

	for i, entry := range entries {
		rateCardID, err1 := primitive.ObjectIDFromHex(entry.RateCardID)
		companyID, err2 := primitive.ObjectIDFromHex(entry.CompanyID)
		if err1 != nil {
			errs.Add(fmt.Sprintf("assignments[%d].rateCardId", i), "must be a valid id")
		}
		if err2 != nil {
			errs.Add(fmt.Sprintf("assignments[%d].companyId", i), "must be a valid id")
		}
		if err1 != nil || err2 != nil {
			continue
		}

		a := models.Assignment{CompanyID: companyID, RateCardID: rateCardID}
		if pos, dup := position[companyID]; dup {
			assignments[pos] = a
			continue
		}
		position[companyID] = len(assignments)
		assignments = append(assignments, a)
	}

	if err := errs.Err("invalid bulk assignment"); err != nil {
		return nil, err
	}
	return assignments, nil
}

// assignConflict explains why card cannot be a default for companyID, or
// returns "". Company-scoped cards only serve their owner.
func assignConflict(card *models.RateCard, companyID primitive.ObjectID) string {
	if card.Scope == models.RateCardScopeCompany && card.CompanyID != nil && *card.CompanyID != companyID {
		return fmt.Sprintf("rate card %q belongs to another company", card.Name)
	}
	return ""
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
