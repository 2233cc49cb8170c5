package validators

type AssignRequest struct {
	RateCardID string `json:"rateCardId" validate:"required,object_id"`
	SellerID   string `json:"sellerId" validate:"required,object_id"`
}

type AssignmentEntry struct {
	RateCardID string `json:"rateCardId" validate:"required,object_id"`
	CompanyID  string `json:"companyId" validate:"required,object_id"`
}

// BulkAssignRequest takes either explicit assignments or one rate card applied
// to companyIds plus every member of groupIds.
type BulkAssignRequest struct {
	Assignments []AssignmentEntry `json:"assignments" validate:"omitempty,max=1000,dive"`
	RateCardID  string            `json:"rateCardId" validate:"omitempty,object_id"`
	CompanyIDs  []string          `json:"companyIds" validate:"omitempty,max=1000,dive,object_id"`
	GroupIDs    []string          `json:"groupIds" validate:"omitempty,max=100,dive,object_id"`
}

func ValidateAssign(req *AssignRequest) error {
	return ValidateStruct(req).Err("invalid assignment")
}

func ValidateBulkAssign(req *BulkAssignRequest) error {
	errs := ValidateStruct(req)

	expansion := req.RateCardID != "" || len(req.CompanyIDs) > 0 || len(req.GroupIDs) > 0
	switch {
	case len(req.Assignments) > 0 && expansion:
		errs.Add("assignments", "provide either assignments or rateCardId with companyIds/groupIds, not both")
	case len(req.Assignments) == 0 && !expansion:
		errs.Add("assignments", "provide assignments or rateCardId with companyIds/groupIds")
	case expansion && req.RateCardID == "":
		errs.Add("rateCardId", "is required")
	case expansion && len(req.CompanyIDs) == 0 && len(req.GroupIDs) == 0:
		errs.Add("companyIds", "provide companyIds or groupIds")
	}

	return errs.Err("invalid bulk assignment")
}
