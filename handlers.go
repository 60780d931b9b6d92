package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/models"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/workflow"
)

// respondError maps typed engine failures to HTTP statuses. Anything
// unrecognized is a 500 and the raw error stays server-side.
func respondError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	if utils.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrDuplicateCode),
		errors.Is(err, utils.ErrPhaseOrder),
		errors.Is(err, utils.ErrPeriodClosed),
		errors.Is(err, utils.ErrClosingInProgress),
		errors.Is(err, utils.ErrClosingPrecondition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrInsufficientCredit),
		errors.Is(err, utils.ErrUnbalancedEntries),
		errors.Is(err, utils.ErrRevisionViolatesCommitments):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

/* account registry */

func createAccountHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "createAccount")
	defer span.End()
	var input models.NewAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	account, err := models.CreateAccount(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func getAccountsHandler(c *gin.Context) {
	var class *int
	if v := c.Query("class"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid class"})
			return
		}
		class = &n
	}
	var lettrable *bool
	if v := c.Query("lettrable"); v != "" {
		b := v == "true"
		lettrable = &b
	}
	accounts, err := models.GetAccounts(c.Request.Context(), class, lettrable)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func getAccountHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	account, err := models.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func markAccountActiveHandler(isActive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		account, err := models.MarkAccountActive(c.Request.Context(), id, isActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

/* accounting periods */

func createPeriodHandler(c *gin.Context) {
	var input models.NewAccountingPeriod
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	period, err := models.CreateAccountingPeriod(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, period)
}

func getPeriodHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	period, err := models.GetAccountingPeriod(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

/* budget lines */

func allocateBudgetLineHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "allocateBudgetLine")
	defer span.End()
	var input models.NewBudgetLine
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	line, err := models.AllocateBudgetLine(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func getBudgetLinesHandler(c *gin.Context) {
	var category *models.BudgetCategory
	if v := c.Query("category"); v != "" {
		cat := models.BudgetCategory(v)
		category = &cat
	}
	var code *string
	if v := c.Query("code"); v != "" {
		code = &v
	}
	lines, err := models.GetBudgetLines(c.Request.Context(), category, code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func getBudgetLineHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	line, err := models.GetBudgetLine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func deactivateBudgetLineHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	line, err := models.DeactivateBudgetLine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

/* expenditure chain */

func engageCommitmentHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "engageCommitment")
	defer span.End()
	var input workflow.EngageCommitmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	commitment, err := workflow.EngageCommitment(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, commitment)
}

func commitmentTransitionHandler(
	name string,
	transition func(ctx context.Context, id int, input *workflow.CommitmentTransitionInput) (*models.Commitment, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), name)
		defer span.End()
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input workflow.CommitmentTransitionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		commitment, err := transition(ctx, id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, commitment)
	}
}

func getCommitmentsHandler(c *gin.Context) {
	var budgetLineId *int
	if v := c.Query("budget_line_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget_line_id"})
			return
		}
		budgetLineId = &n
	}
	var phase *models.CommitmentPhase
	if v := c.Query("phase"); v != "" {
		p := models.CommitmentPhase(v)
		phase = &p
	}
	commitments, err := models.GetCommitments(c.Request.Context(), budgetLineId, phase)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commitments)
}

func getCommitmentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	commitment, err := models.GetCommitment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commitment)
}

/* revenue chain */

func recognizeClaimHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "recognizeClaim")
	defer span.End()
	var input workflow.RecognizeClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	claim, err := workflow.RecognizeClaim(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

func liquidateClaimHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "liquidateClaim")
	defer span.End()
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input workflow.ClaimLiquidationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	claim, err := workflow.LiquidateClaim(ctx, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func collectClaimHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "collectClaim")
	defer span.End()
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input workflow.ClaimCollectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	claim, err := workflow.CollectClaim(ctx, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func getClaimsHandler(c *gin.Context) {
	var budgetLineId *int
	if v := c.Query("budget_line_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget_line_id"})
			return
		}
		budgetLineId = &n
	}
	var needsReview *bool
	if v := c.Query("needs_review"); v != "" {
		b := v == "true"
		needsReview = &b
	}
	claims, err := models.GetClaims(c.Request.Context(), budgetLineId, needsReview)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claims)
}

func getClaimHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	claim, err := models.GetClaim(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

/* transfers */

func createTransferHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "createTransfer")
	defer span.End()
	var input workflow.NewTransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	transfer, err := workflow.CreateTransfer(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

func approveTransferHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "approveTransfer")
	defer span.End()
	id, ok := pathId(c)
	if !ok {
		return
	}
	transfer, err := workflow.ApproveTransfer(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

func rejectTransferHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	transfer, err := workflow.RejectTransfer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

func getTransfersHandler(c *gin.Context) {
	var status *models.TransferStatus
	if v := c.Query("status"); v != "" {
		s := models.TransferStatus(v)
		status = &s
	}
	transfers, err := models.GetTransfers(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfers)
}

/* revisions */

func createRevisionHandler(c *gin.Context) {
	var input workflow.NewRevisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	revision, err := workflow.CreateRevision(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, revision)
}

func revisionTransitionHandler(transition func(ctx context.Context, id int) (*models.Revision, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		revision, err := transition(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, revision)
	}
}

func getRevisionsHandler(c *gin.Context) {
	var status *models.RevisionStatus
	if v := c.Query("status"); v != "" {
		s := models.RevisionStatus(v)
		status = &s
	}
	revisions, err := models.GetRevisions(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, revisions)
}

/* lettrage */

func letterEntriesHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "letterEntries")
	defer span.End()
	var input workflow.LetterEntriesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	group, err := workflow.LetterEntries(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func dissolveGroupHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	group, err := workflow.DissolveGroup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func getGroupsHandler(c *gin.Context) {
	var accountId *int
	if v := c.Query("account_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account_id"})
			return
		}
		accountId = &n
	}
	groups, err := models.GetReconciliationGroups(c.Request.Context(), accountId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

/* closing */

func runClosingControlsHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "runClosingControls")
	defer span.End()
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input workflow.ClosingControlsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	period, err := workflow.RunClosingControls(ctx, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func recordAdjustingEntriesHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input workflow.AdjustingEntriesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	period, err := workflow.RecordAdjustingEntries(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func closeDefinitivelyHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "closeDefinitively")
	defer span.End()
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input workflow.DefinitiveClosingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	period, err := workflow.CloseDefinitively(ctx, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

/* balance adjustments */

func recordBalanceAdjustmentHandler(c *gin.Context) {
	var adjustment models.BalanceAdjustment
	if err := c.ShouldBindJSON(&adjustment); err != nil {
		respondError(c, err)
		return
	}
	recorded, gap, err := models.RecordBalanceAdjustment(c.Request.Context(), &adjustment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"adjustment": recorded, "gap": gap})
}

func getBalanceAdjustmentsHandler(c *gin.Context) {
	adjustments, err := models.GetBalanceAdjustments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adjustments)
}

/* journals */

func getJournalsHandler(c *gin.Context) {
	var sourceType *models.JournalSourceType
	if v := c.Query("source_type"); v != "" {
		s := models.JournalSourceType(v)
		sourceType = &s
	}
	var fromDate, toDate *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		fromDate = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		toDate = &t
	}
	journals, err := models.GetJournals(c.Request.Context(), sourceType, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, journals)
}

func getJournalHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	journal, err := models.GetJournal(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, journal)
}
