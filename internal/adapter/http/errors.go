package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"arthalend-backend/internal/domain/agreement"
	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/repayment"
	"arthalend-backend/internal/domain/transaction"
	"arthalend-backend/internal/domain/user"
	agreementuc "arthalend-backend/internal/usecase/agreement"
	authuc "arthalend-backend/internal/usecase/auth"
	publicleduc "arthalend-backend/internal/usecase/publicledger"
	repaymentuc "arthalend-backend/internal/usecase/repayment"
)

var notFoundErrs = []error{
	loan.ErrNotFound,
	user.ErrNotFound,
	kyc.ErrNotFound,
	credit.ErrScoreNotFound,
	credit.ErrStatsNotFound,
	transaction.ErrNotFound,
	repayment.ErrNotFound,
	agreement.ErrNotFound,
	publicleduc.ErrUnknownStream,
}

// conflictErrs are race losses: the request was well-formed but another
// request committed first.
var conflictErrs = []error{
	loan.ErrNotAvailable,
	loan.ErrAlreadyFunded,
	user.ErrAlreadyExists,
}

var preconditionErrs = []error{
	loan.ErrOpenLoanExists,
	loan.ErrKYCNotApproved,
	loan.ErrRulesNotAccepted,
	loan.ErrScoreNotInitialized,
	loan.ErrCreditLimitExceeded,
	loan.ErrBorrowingBlocked,
	loan.ErrGuarantorRequired,
	loan.ErrGuarantorIncomplete,
	loan.ErrSelfFunding,
	loan.ErrBorrowerCannotLend,
	loan.ErrLendingLimitExceeded,
	loan.ErrNotActive,
	loan.ErrNotAwaitingSignature,
	loan.ErrNotBorrower,
	loan.ErrNotLender,
	kyc.ErrBasicInfoMissing,
	kyc.ErrIDDocumentMissing,
	kyc.ErrNotFinalized,
	repaymentuc.ErrInvalidAmount,
	repaymentuc.ErrExceedsOutstanding,
	repaymentuc.ErrFullAmountShort,
	agreementuc.ErrIdentityRejected,
	transaction.ErrFailed,
	authuc.ErrInvalidOTP,
	authuc.ErrOTPExpired,
	authuc.ErrNotVerified,
}

var unauthorizedErrs = []error{
	authuc.ErrInvalidCredentials,
	authuc.ErrSessionExpired,
}

func matchAny(err error, list []error) bool {
	for _, e := range list {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// statusFor maps a usecase error to its HTTP status. Unknown errors are
// internal: the handler hides the message and logs it upstream.
func statusFor(err error) int {
	switch {
	case matchAny(err, notFoundErrs):
		return http.StatusNotFound
	case matchAny(err, conflictErrs):
		return http.StatusConflict
	case matchAny(err, unauthorizedErrs):
		return http.StatusUnauthorized
	case matchAny(err, preconditionErrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}
