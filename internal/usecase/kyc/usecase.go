// Package kyc implements the three-stage verification flow: basic info, ID
// document analysis, then finalization with face match. Approval initializes
// the borrower's credit score.
package kyc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/uow"
	"arthalend-backend/internal/ledger"
	"arthalend-backend/internal/verify"
)

// Analyzer runs the black-box government-ID document analysis of stage two.
type Analyzer interface {
	AnalyzeID(ctx context.Context, docs kyc.IDDocuments) (kyc.AnalysisResult, error)
}

// RefAnalyzer approves documents that carry an ID number and both image
// references. The real analysis service replaces it in production wiring.
type RefAnalyzer struct{}

func (RefAnalyzer) AnalyzeID(_ context.Context, docs kyc.IDDocuments) (kyc.AnalysisResult, error) {
	if docs.IDNumber == "" || docs.FrontImageRef == "" || docs.BackImageRef == "" {
		return kyc.AnalysisResult{GovIDVerified: false, Reason: "document images or ID number missing"}, nil
	}
	return kyc.AnalysisResult{GovIDVerified: true}, nil
}

type BasicInfoInput struct {
	UserID           string        `json:"-"`
	BasicInfo        kyc.BasicInfo `json:"basic_info" validate:"required"`
	PermanentAddress kyc.Address   `json:"permanent_address" validate:"required"`
	TemporaryAddress *kyc.Address  `json:"temporary_address,omitempty"`
}

type IDDocumentsInput struct {
	UserID    string          `json:"-"`
	Documents kyc.IDDocuments `json:"id_documents" validate:"required"`
}

type FinalizeInput struct {
	UserID     string `json:"-"`
	SelfieRef  string `json:"selfie_ref" validate:"required"`
	LocationOK bool   `json:"location_ok"`
}

// ErrVerifierUnavailable means finalization ran without a configured face
// verifier and the skip flag is off.
var ErrVerifierUnavailable = errors.New("identity verifier not configured")

type Usecase struct {
	uow           uow.UnitOfWork
	records       kyc.Repository
	analyzer      Analyzer
	verifier      verify.Verifier
	skipFaceCheck bool
	rec           ledger.Recorder
	log           *zap.Logger

	now func() time.Time
}

// NewUsecase wires the flow. verifier may be nil only when skipFaceCheck is
// set; otherwise finalization fails with ErrVerifierUnavailable rather than
// silently approving.
func NewUsecase(
	u uow.UnitOfWork,
	records kyc.Repository,
	analyzer Analyzer,
	verifier verify.Verifier,
	skipFaceCheck bool,
	rec ledger.Recorder,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		uow:           u,
		records:       records,
		analyzer:      analyzer,
		verifier:      verifier,
		skipFaceCheck: skipFaceCheck,
		rec:           rec,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SubmitBasicInfo starts or restarts the flow for a user. Resubmission before
// finalization simply overwrites the pending record.
func (u *Usecase) SubmitBasicInfo(ctx context.Context, in BasicInfoInput) (*kyc.Record, error) {
	record, err := u.records.GetByUserID(ctx, in.UserID)
	if errors.Is(err, kyc.ErrNotFound) {
		record = &kyc.Record{UserID: in.UserID}
	} else if err != nil {
		return nil, err
	}

	info := in.BasicInfo
	perm := in.PermanentAddress
	record.BasicInfo = &info
	record.PermanentAddress = &perm
	record.TemporaryAddress = in.TemporaryAddress
	record.Stage = kyc.StageBasicInfo
	record.Status = kyc.StatusPending

	if err := u.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// SubmitIDDocuments attaches the documents and runs the analysis.
func (u *Usecase) SubmitIDDocuments(ctx context.Context, in IDDocumentsInput) (*kyc.Record, error) {
	record, err := u.records.GetByUserID(ctx, in.UserID)
	if errors.Is(err, kyc.ErrNotFound) {
		return nil, kyc.ErrBasicInfoMissing
	} else if err != nil {
		return nil, err
	}
	if record.BasicInfo == nil {
		return nil, kyc.ErrBasicInfoMissing
	}

	docs := in.Documents
	record.IDDocuments = &docs
	record.Stage = kyc.StageIDAnalysis

	analysis, err := u.analyzer.AnalyzeID(ctx, docs)
	if err != nil {
		return nil, err
	}
	record.Analysis = &analysis

	if err := u.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Finalize runs the face match, merges the verification outcome, and on
// approval initializes the user's credit score. The score write and the
// record write share one transaction; the two proofs publish after commit in
// degraded mode.
func (u *Usecase) Finalize(ctx context.Context, in FinalizeInput) (*kyc.Record, error) {
	record, err := u.records.GetByUserID(ctx, in.UserID)
	if errors.Is(err, kyc.ErrNotFound) {
		return nil, kyc.ErrBasicInfoMissing
	} else if err != nil {
		return nil, err
	}
	if record.IDDocuments == nil || record.Analysis == nil {
		return nil, kyc.ErrIDDocumentMissing
	}

	faceMatch, reason, err := u.faceMatch(ctx, in.SelfieRef, record.IDDocuments.FrontImageRef)
	if err != nil {
		return nil, err
	}

	approved := record.Analysis.GovIDVerified && faceMatch
	status := kyc.StatusRejected
	if approved {
		status = kyc.StatusApproved
	}
	if reason == "" && !record.Analysis.GovIDVerified {
		reason = record.Analysis.Reason
	}

	record.Stage = kyc.StageFinalized
	record.Status = status
	record.FinalResult = &kyc.FinalResult{
		GovIDVerified: record.Analysis.GovIDVerified,
		FaceMatch:     faceMatch,
		FinalStatus:   string(status),
		Reason:        reason,
	}
	record.IdentityProof = &kyc.IdentityProof{
		IDVerified: record.Analysis.GovIDVerified,
		FaceMatch:  faceMatch,
		LocationOK: in.LocationOK,
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.KYC.Save(ctx, record); err != nil {
			return err
		}
		if !approved {
			return nil
		}
		// initialize once; re-finalization keeps an existing score
		if _, err := r.Scores.GetByUserID(ctx, in.UserID); err == nil {
			return nil
		} else if !errors.Is(err, credit.ErrScoreNotFound) {
			return err
		}
		return r.Scores.Save(ctx, &credit.Score{UserID: in.UserID, Value: credit.InitialScore})
	})
	if err != nil {
		return nil, err
	}

	if _, perr := u.rec.RecordKYCResult(ctx, record.ResultPayload(), in.UserID); perr != nil {
		u.log.Warn("ledger publish failed, continuing degraded",
			zap.String("key", in.UserID), zap.Error(perr))
	}
	if _, perr := u.rec.RecordIdentityProof(ctx, record.IdentityPayload(), in.UserID); perr != nil {
		u.log.Warn("ledger publish failed, continuing degraded",
			zap.String("key", in.UserID), zap.Error(perr))
	}
	return record, nil
}

// Status returns the user's current KYC record.
func (u *Usecase) Status(ctx context.Context, userID string) (*kyc.Record, error) {
	return u.records.GetByUserID(ctx, userID)
}

func (u *Usecase) faceMatch(ctx context.Context, selfieRef, referenceRef string) (bool, string, error) {
	if u.verifier == nil {
		if u.skipFaceCheck {
			u.log.Warn("face verification skipped by configuration")
			return true, "", nil
		}
		return false, "", ErrVerifierUnavailable
	}
	res, err := u.verifier.Verify(ctx, selfieRef, referenceRef)
	if err != nil {
		return false, "", err
	}
	return res.Approved, res.Reason, nil
}
