package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
	"shipdesk/pkg/logger"
)

type AssignmentServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	cards     *MockRateCardRepository
	companies *MockCompanyRepository
	audit     *recordingAudit
	events    *recordingEvents
	service   AssignmentService
	actor     models.Actor
}

func (s *AssignmentServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.cards = new(MockRateCardRepository)
	s.companies = new(MockCompanyRepository)
	s.audit = &recordingAudit{}
	s.events = &recordingEvents{}
	s.service = NewAssignmentService(s.cards, s.companies, s.audit, s.events, nil, logger.NewNop())
	userID := primitive.NewObjectID()
	s.actor = models.Actor{UserID: &userID, IPAddress: "10.0.0.1"}
}

func (s *AssignmentServiceTestSuite) TestAssign_RecordsPreviousCard() {
	companyID := primitive.NewObjectID()
	previous := primitive.NewObjectID()
	card := completeCard("Global", nil)

	s.cards.On("GetByID", s.ctx, card.ID).Return(card, nil).Once()
	s.companies.On("GetByID", s.ctx, companyID).Return(&models.Company{
		ID:       companyID,
		Settings: models.CompanySettings{DefaultRateCardID: &previous},
	}, nil).Once()
	s.companies.On("SetDefaultRateCard", s.ctx, companyID, &card.ID).Return(nil).Once()

	assignment, err := s.service.Assign(s.ctx, &validators.AssignRequest{
		RateCardID: card.ID.Hex(),
		SellerID:   companyID.Hex(),
	}, s.actor)

	s.Require().NoError(err)
	s.Equal(companyID, assignment.CompanyID)
	s.Equal(card.ID, assignment.RateCardID)
	s.Require().Len(s.audit.entries, 1)
	entry := s.audit.entries[0]
	s.Equal(models.AuditActionAssign, entry.Action)
	s.Equal(card.ID.Hex(), entry.ResourceID)
	s.Equal(previous.Hex(), entry.Details["previousRateCardId"])
	s.Equal([]models.EventType{models.EventRateCardAssigned}, s.events.types())
}

func (s *AssignmentServiceTestSuite) TestAssign_ForeignCompanyCard() {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	card := completeCard("Owned", &owner)

	s.cards.On("GetByID", s.ctx, card.ID).Return(card, nil).Once()
	s.companies.On("GetByID", s.ctx, other).Return(&models.Company{ID: other}, nil).Once()

	_, err := s.service.Assign(s.ctx, &validators.AssignRequest{RateCardID: card.ID.Hex(), SellerID: other.Hex()}, s.actor)

	verr, ok := apperrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("rateCardId", verr.Fields[0].Field)
	s.companies.AssertNotCalled(s.T(), "SetDefaultRateCard", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AssignmentServiceTestSuite) TestAssign_MissingCardOrCompany() {
	cardID := primitive.NewObjectID()
	companyID := primitive.NewObjectID()
	s.cards.On("GetByID", s.ctx, cardID).Return(nil, apperrors.NotFound("rate card")).Once()

	_, err := s.service.Assign(s.ctx, &validators.AssignRequest{RateCardID: cardID.Hex(), SellerID: companyID.Hex()}, s.actor)
	s.True(apperrors.IsNotFound(err))

	_, err = s.service.Assign(s.ctx, &validators.AssignRequest{RateCardID: "bad", SellerID: companyID.Hex()}, s.actor)
	_, ok := apperrors.AsValidation(err)
	s.True(ok)
}

func (s *AssignmentServiceTestSuite) TestUnassign() {
	companyID := primitive.NewObjectID()
	current := primitive.NewObjectID()
	s.companies.On("GetByID", s.ctx, companyID).Return(&models.Company{
		ID:       companyID,
		Settings: models.CompanySettings{DefaultRateCardID: &current},
	}, nil).Once()
	s.companies.On("SetDefaultRateCard", s.ctx, companyID, (*primitive.ObjectID)(nil)).Return(nil).Once()

	s.Require().NoError(s.service.Unassign(s.ctx, companyID.Hex(), s.actor))

	s.Equal([]models.AuditAction{models.AuditActionUnassign}, s.audit.actions())
	s.Equal(current.Hex(), s.audit.entries[0].ResourceID)
	s.companies.AssertExpectations(s.T())
}

func (s *AssignmentServiceTestSuite) TestUnassign_WithoutDefaultIsNoop() {
	companyID := primitive.NewObjectID()
	s.companies.On("GetByID", s.ctx, companyID).Return(&models.Company{ID: companyID}, nil).Once()

	s.Require().NoError(s.service.Unassign(s.ctx, companyID.Hex(), s.actor))

	s.companies.AssertNotCalled(s.T(), "SetDefaultRateCard", mock.Anything, mock.Anything, mock.Anything)
	s.Empty(s.audit.actions())
	s.Empty(s.events.types())
}

func (s *AssignmentServiceTestSuite) TestBulkAssign_ExplicitLastEntryWins() {
	companyID := primitive.NewObjectID()
	first := completeCard("First", nil)
	second := completeCard("Second", nil)

	s.cards.On("GetByID", s.ctx, second.ID).Return(second, nil).Once()
	s.companies.On("BulkSetDefaultRateCard", s.ctx, []models.Assignment{{CompanyID: companyID, RateCardID: second.ID}}).
		Return(&models.BulkAssignResult{Matched: 1, Modified: 1, CompanyCount: 1}, nil).Once()

	result, err := s.service.BulkAssign(s.ctx, &validators.BulkAssignRequest{
		Assignments: []validators.AssignmentEntry{
			{RateCardID: first.ID.Hex(), CompanyID: companyID.Hex()},
			{RateCardID: second.ID.Hex(), CompanyID: companyID.Hex()},
		},
	}, s.actor)

	s.Require().NoError(err)
	s.Equal(int64(1), result.Modified)
	s.Equal(second.ID.Hex(), s.audit.entries[0].ResourceID)
	s.Equal(models.AuditCompanyMultiple, s.audit.entries[0].CompanyID)
	s.cards.AssertNotCalled(s.T(), "GetByID", s.ctx, first.ID)
}

func (s *AssignmentServiceTestSuite) TestBulkAssign_ExpandsGroupsWithoutDuplicates() {
	card := completeCard("Global", nil)
	direct := primitive.NewObjectID()
	member := primitive.NewObjectID()
	groupID := primitive.NewObjectID()

	s.companies.On("GetGroupMemberIDs", s.ctx, []primitive.ObjectID{groupID}).
		Return([]primitive.ObjectID{direct, member}, nil).Once()
	s.cards.On("GetByID", s.ctx, card.ID).Return(card, nil).Once()
	s.companies.On("BulkSetDefaultRateCard", s.ctx, []models.Assignment{
		{CompanyID: direct, RateCardID: card.ID},
		{CompanyID: member, RateCardID: card.ID},
	}).Return(&models.BulkAssignResult{Matched: 2, Modified: 2, CompanyCount: 2}, nil).Once()

	result, err := s.service.BulkAssign(s.ctx, &validators.BulkAssignRequest{
		RateCardID: card.ID.Hex(),
		CompanyIDs: []string{direct.Hex(), direct.Hex()},
		GroupIDs:   []string{groupID.Hex()},
	}, s.actor)

	s.Require().NoError(err)
	s.Equal(2, result.CompanyCount)
	s.Equal([]string{groupID.Hex()}, s.audit.entries[0].Details["groupIds"])
}

func (s *AssignmentServiceTestSuite) TestBulkAssign_EmptyGroups() {
	card := completeCard("Global", nil)
	groupID := primitive.NewObjectID()
	s.companies.On("GetGroupMemberIDs", s.ctx, []primitive.ObjectID{groupID}).Return([]primitive.ObjectID{}, nil).Once()

	_, err := s.service.BulkAssign(s.ctx, &validators.BulkAssignRequest{
		RateCardID: card.ID.Hex(),
		GroupIDs:   []string{groupID.Hex()},
	}, s.actor)

	verr, ok := apperrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("groupIds", verr.Fields[0].Field)
}

func (s *AssignmentServiceTestSuite) TestBulkAssign_RejectsForeignCards() {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	card := completeCard("Owned", &owner)
	s.cards.On("GetByID", s.ctx, card.ID).Return(card, nil).Once()

	_, err := s.service.BulkAssign(s.ctx, &validators.BulkAssignRequest{
		Assignments: []validators.AssignmentEntry{
			{RateCardID: card.ID.Hex(), CompanyID: owner.Hex()},
			{RateCardID: card.ID.Hex(), CompanyID: other.Hex()},
		},
	}, s.actor)

	verr, ok := apperrors.AsValidation(err)
	s.Require().True(ok)
	s.Require().Len(verr.Fields, 1)
	s.Equal("assignments[1]", verr.Fields[0].Field)
	s.companies.AssertNotCalled(s.T(), "BulkSetDefaultRateCard", mock.Anything, mock.Anything)
}

func (s *AssignmentServiceTestSuite) TestBulkAssign_RequiresOneShape() {
	_, err := s.service.BulkAssign(s.ctx, &validators.BulkAssignRequest{}, s.actor)
	_, ok := apperrors.AsValidation(err)
	s.True(ok)
}

func (s *AssignmentServiceTestSuite) TestListAssignments() {
	cardID := primitive.NewObjectID()
	params := &utils.PaginationParams{Page: 1, Limit: 20}
	views := []*models.AssignmentView{{CompanyID: primitive.NewObjectID(), RateCardID: cardID}}
	s.companies.On("ListAssignments", s.ctx, &cardID, params).Return(views, int64(1), nil).Once()

	items, total, err := s.service.ListAssignments(s.ctx, cardID.Hex(), params)

	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(views, items)

	_, _, err = s.service.ListAssignments(s.ctx, "nope", params)
	_, ok := apperrors.AsValidation(err)
	s.True(ok)
}

func TestAssignmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceTestSuite))
}
