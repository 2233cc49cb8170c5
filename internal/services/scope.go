package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
)

// ResolveScope returns the effective scope for a card owned by companyID.
// An empty requested scope is inferred from whether companyID is set. The
// result always satisfies scope=company <=> companyID != nil.
func ResolveScope(requested models.RateCardScope, companyID *primitive.ObjectID) (models.RateCardScope, error) {
	scope := requested
	if scope == "" {
		scope = models.RateCardScopeGlobal
		if companyID != nil {
			scope = models.RateCardScopeCompany
		}
	}

	switch scope {
	case models.RateCardScopeCompany:
		if companyID == nil {
			return "", apperrors.Invalid("companyId", "is required when scope is company")
		}
	case models.RateCardScopeGlobal:
		if companyID != nil {
			return "", apperrors.Invalid("companyId", "must be empty when scope is global")
		}
	default:
		return "", apperrors.Invalid("scope", "must be one of [global company]")
	}

	return scope, nil
}

// resolveUpdatedOwner merges a patch's scope and company onto an existing
// card. An explicit companyId wins, a switch to global clears the company,
// otherwise the existing company is kept.
func resolveUpdatedOwner(existing *models.RateCard, patchScope *models.RateCardScope, patchCompanyID **primitive.ObjectID) (models.RateCardScope, *primitive.ObjectID, error) {
	companyID := existing.CompanyID
	switch {
	case patchCompanyID != nil:
		companyID = *patchCompanyID
	case patchScope != nil && *patchScope == models.RateCardScopeGlobal:
		companyID = nil
	}

	requested := existing.Scope
	switch {
	case patchScope != nil:
		requested = *patchScope
	case patchCompanyID != nil:
		requested = ""
	}

	scope, err := ResolveScope(requested, companyID)
	if err != nil {
		return "", nil, err
	}
	return scope, companyID, nil
}
