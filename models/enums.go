package models

// AccountNature is the normal balance side of a ledger account.
type AccountNature string

const (
	AccountNatureDebit  AccountNature = "Debit"
	AccountNatureCredit AccountNature = "Credit"
)

type BudgetCategory string

const (
	BudgetCategoryOperating  BudgetCategory = "Operating"
	BudgetCategoryPersonnel  BudgetCategory = "Personnel"
	BudgetCategoryInvestment BudgetCategory = "Investment"
	BudgetCategoryTransfer   BudgetCategory = "Transfer"
)

func (c BudgetCategory) Valid() bool {
	switch c {
	case BudgetCategoryOperating, BudgetCategoryPersonnel, BudgetCategoryInvestment, BudgetCategoryTransfer:
		return true
	}
	return false
}

// CommitmentPhase follows the mandated expenditure chain:
// engagement, liquidation, ordonnancement, paiement.
type CommitmentPhase string

const (
	CommitmentPhaseCreated    CommitmentPhase = "Created"
	CommitmentPhaseEngaged    CommitmentPhase = "Engaged"
	CommitmentPhaseLiquidated CommitmentPhase = "Liquidated"
	CommitmentPhaseAuthorized CommitmentPhase = "Authorized"
	CommitmentPhasePaid       CommitmentPhase = "Paid"
)

// Rank orders the phases; transitions must advance by exactly one rank.
func (p CommitmentPhase) Rank() int {
	switch p {
	case CommitmentPhaseCreated:
		return 0
	case CommitmentPhaseEngaged:
		return 1
	case CommitmentPhaseLiquidated:
		return 2
	case CommitmentPhaseAuthorized:
		return 3
	case CommitmentPhasePaid:
		return 4
	}
	return -1
}

type ClaimPhase string

const (
	ClaimPhaseRecognized ClaimPhase = "Recognized"
	ClaimPhaseLiquidated ClaimPhase = "Liquidated"
	ClaimPhaseCollected  ClaimPhase = "Collected"
)

func (p ClaimPhase) Rank() int {
	switch p {
	case ClaimPhaseRecognized:
		return 0
	case ClaimPhaseLiquidated:
		return 1
	case ClaimPhaseCollected:
		return 2
	}
	return -1
}

type CertaintyLevel string

const (
	CertaintyLevelCertain   CertaintyLevel = "Certain"
	CertaintyLevelProbable  CertaintyLevel = "Probable"
	CertaintyLevelUncertain CertaintyLevel = "Uncertain"
)

func (l CertaintyLevel) Valid() bool {
	switch l {
	case CertaintyLevelCertain, CertaintyLevelProbable, CertaintyLevelUncertain:
		return true
	}
	return false
}

type RecoveryRisk string

const (
	RecoveryRiskLow    RecoveryRisk = "Low"
	RecoveryRiskMedium RecoveryRisk = "Medium"
	RecoveryRiskHigh   RecoveryRisk = "High"
)

func (r RecoveryRisk) Valid() bool {
	switch r {
	case RecoveryRiskLow, RecoveryRiskMedium, RecoveryRiskHigh:
		return true
	}
	return false
}

type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "Pending"
	TransferStatusApproved TransferStatus = "Approved"
	TransferStatusRejected TransferStatus = "Rejected"
)

type RevisionType string

const (
	RevisionTypeIncrease     RevisionType = "Increase"
	RevisionTypeDecrease     RevisionType = "Decrease"
	RevisionTypeReallocation RevisionType = "Reallocation"
)

func (t RevisionType) Valid() bool {
	switch t {
	case RevisionTypeIncrease, RevisionTypeDecrease, RevisionTypeReallocation:
		return true
	}
	return false
}

type RevisionStatus string

const (
	RevisionStatusDraft     RevisionStatus = "Draft"
	RevisionStatusSubmitted RevisionStatus = "Submitted"
	RevisionStatusApproved  RevisionStatus = "Approved"
	RevisionStatusRejected  RevisionStatus = "Rejected"
)

type PeriodStatus string

const (
	PeriodStatusOpen    PeriodStatus = "Open"
	PeriodStatusClosing PeriodStatus = "Closing"
	PeriodStatusClosed  PeriodStatus = "Closed"
)

type AdjustmentType string

const (
	AdjustmentTypeAsset     AdjustmentType = "Asset"
	AdjustmentTypeLiability AdjustmentType = "Liability"
)

func (t AdjustmentType) Valid() bool {
	return t == AdjustmentTypeAsset || t == AdjustmentTypeLiability
}

type AdjustmentDirection string

const (
	AdjustmentDirectionIncrease AdjustmentDirection = "Increase"
	AdjustmentDirectionDecrease AdjustmentDirection = "Decrease"
)

func (d AdjustmentDirection) Valid() bool {
	return d == AdjustmentDirectionIncrease || d == AdjustmentDirectionDecrease
}

// JournalSourceType tags the operation a journal was emitted from.
type JournalSourceType string

const (
	JournalSourceTypeLiquidation  JournalSourceType = "LQ"
	JournalSourceTypePayment      JournalSourceType = "PY"
	JournalSourceTypeRecognition  JournalSourceType = "RT"
	JournalSourceTypeCollection   JournalSourceType = "RC"
	JournalSourceTypeTransfer     JournalSourceType = "VR"
	JournalSourceTypeRevision     JournalSourceType = "RV"
	JournalSourceTypeManual       JournalSourceType = "JL"
	JournalSourceTypeClosing      JournalSourceType = "CL"
	JournalSourceTypeCarryForward JournalSourceType = "RAN"
)

type IdempotencyStatus string

const (
	IdempotencyStatusStarted   IdempotencyStatus = "STARTED"
	IdempotencyStatusSucceeded IdempotencyStatus = "SUCCEEDED"
	IdempotencyStatusFailed    IdempotencyStatus = "FAILED"
)
