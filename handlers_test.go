package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
)

func respondedStatus(err error) int {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	respondError(c, err)
	return recorder.Code
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{utils.NewValidationError("fiscal_year", "a period already exists for this fiscal year"), http.StatusBadRequest},
		{utils.ErrorRecordNotFound, http.StatusNotFound},
		{utils.ErrDuplicateCode, http.StatusConflict},
		{utils.ErrPhaseOrder, http.StatusConflict},
		{utils.ErrPeriodClosed, http.StatusConflict},
		{utils.ErrClosingInProgress, http.StatusConflict},
		{utils.ErrClosingPrecondition, http.StatusConflict},
		{utils.ErrInsufficientCredit, http.StatusUnprocessableEntity},
		{utils.ErrUnbalancedEntries, http.StatusUnprocessableEntity},
		{utils.ErrRevisionViolatesCommitments, http.StatusUnprocessableEntity},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := respondedStatus(c.err); got != c.want {
			t.Errorf("respondError(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
