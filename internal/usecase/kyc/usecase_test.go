package kyc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/ledger"
	"arthalend-backend/internal/testutil/ledgermock"
	"arthalend-backend/internal/testutil/memstore"
	"arthalend-backend/internal/verify"
)

const userPhone = "9841000001"

type verifierFunc func(ctx context.Context, inputRef, referenceRef string) (verify.Result, error)

func (f verifierFunc) Verify(ctx context.Context, inputRef, referenceRef string) (verify.Result, error) {
	return f(ctx, inputRef, referenceRef)
}

func approvingVerifier() verify.Verifier {
	return verifierFunc(func(context.Context, string, string) (verify.Result, error) {
		return verify.Result{Approved: true}, nil
	})
}

func newFixture(t *testing.T, v verify.Verifier) (*Usecase, *memstore.Store, *ledgermock.Recorder) {
	t.Helper()

	store := memstore.New()
	rec := ledgermock.New()
	u := NewUsecase(store, store.Repos().KYC, RefAnalyzer{}, v, false, rec, zap.NewNop())
	u.now = func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }
	return u, store, rec
}

func basicInfoInput() BasicInfoInput {
	return BasicInfoInput{
		UserID: userPhone,
		BasicInfo: kyc.BasicInfo{
			FirstName: "Ram", LastName: "Karki", DateOfBirth: "1990-04-12",
		},
		PermanentAddress: kyc.Address{
			District: "Kathmandu", Municipality: "KMC", WardNo: "10",
		},
	}
}

func idDocumentsInput() IDDocumentsInput {
	return IDDocumentsInput{
		UserID: userPhone,
		Documents: kyc.IDDocuments{
			IDNumber:      "12-34-56",
			FrontImageRef: "/uploads/front.jpg",
			BackImageRef:  "/uploads/back.jpg",
		},
	}
}

func finalizeInput() FinalizeInput {
	return FinalizeInput{UserID: userPhone, SelfieRef: "/uploads/selfie.jpg", LocationOK: true}
}

func TestKYC_FullFlowApproves(t *testing.T) {
	u, store, rec := newFixture(t, approvingVerifier())
	ctx := context.Background()

	got, err := u.SubmitBasicInfo(ctx, basicInfoInput())
	require.NoError(t, err)
	assert.Equal(t, kyc.StageBasicInfo, got.Stage)
	assert.Equal(t, kyc.StatusPending, got.Status)

	got, err = u.SubmitIDDocuments(ctx, idDocumentsInput())
	require.NoError(t, err)
	assert.Equal(t, kyc.StageIDAnalysis, got.Stage)
	require.NotNil(t, got.Analysis)
	assert.True(t, got.Analysis.GovIDVerified)

	got, err = u.Finalize(ctx, finalizeInput())
	require.NoError(t, err)
	assert.Equal(t, kyc.StageFinalized, got.Stage)
	assert.Equal(t, kyc.StatusApproved, got.Status)
	require.NotNil(t, got.FinalResult)
	assert.True(t, got.FinalResult.FaceMatch)

	// approval initializes the credit score
	score := store.Score(userPhone)
	require.NotNil(t, score)
	assert.Equal(t, credit.InitialScore, score.Value)

	assert.Len(t, rec.ByStream(ledger.StreamKYCResults), 1)
	assert.Len(t, rec.ByStream(ledger.StreamIdentityProofs), 1)
}

func TestKYC_StageOrderEnforced(t *testing.T) {
	t.Run("documents before basic info", func(t *testing.T) {
		u, _, _ := newFixture(t, approvingVerifier())

		_, err := u.SubmitIDDocuments(context.Background(), idDocumentsInput())
		assert.ErrorIs(t, err, kyc.ErrBasicInfoMissing)
	})

	t.Run("finalize before documents", func(t *testing.T) {
		u, _, _ := newFixture(t, approvingVerifier())
		_, err := u.SubmitBasicInfo(context.Background(), basicInfoInput())
		require.NoError(t, err)

		_, err = u.Finalize(context.Background(), finalizeInput())
		assert.ErrorIs(t, err, kyc.ErrIDDocumentMissing)
	})

	t.Run("finalize with no record at all", func(t *testing.T) {
		u, _, _ := newFixture(t, approvingVerifier())

		_, err := u.Finalize(context.Background(), finalizeInput())
		assert.ErrorIs(t, err, kyc.ErrBasicInfoMissing)
	})
}

func TestKYC_FaceMismatchRejects(t *testing.T) {
	v := verifierFunc(func(context.Context, string, string) (verify.Result, error) {
		return verify.Result{Approved: false, Reason: "face mismatch"}, nil
	})
	u, store, rec := newFixture(t, v)
	ctx := context.Background()

	_, err := u.SubmitBasicInfo(ctx, basicInfoInput())
	require.NoError(t, err)
	_, err = u.SubmitIDDocuments(ctx, idDocumentsInput())
	require.NoError(t, err)

	got, err := u.Finalize(ctx, finalizeInput())
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusRejected, got.Status)
	assert.Equal(t, "face mismatch", got.FinalResult.Reason)

	// no score for rejected users, but the result is still proven
	assert.Nil(t, store.Score(userPhone))
	assert.Len(t, rec.ByStream(ledger.StreamKYCResults), 1)
}

func TestKYC_IncompleteDocumentsReject(t *testing.T) {
	u, _, _ := newFixture(t, approvingVerifier())
	ctx := context.Background()

	_, err := u.SubmitBasicInfo(ctx, basicInfoInput())
	require.NoError(t, err)

	in := idDocumentsInput()
	in.Documents.BackImageRef = ""
	got, err := u.SubmitIDDocuments(ctx, in)
	require.NoError(t, err)
	assert.False(t, got.Analysis.GovIDVerified)

	final, err := u.Finalize(ctx, finalizeInput())
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusRejected, final.Status)
	assert.Equal(t, "document images or ID number missing", final.FinalResult.Reason)
}

func TestKYC_VerifierOutageBlocksFinalize(t *testing.T) {
	v := verifierFunc(func(context.Context, string, string) (verify.Result, error) {
		return verify.Result{}, errors.New("service unavailable")
	})
	u, _, _ := newFixture(t, v)
	ctx := context.Background()

	_, err := u.SubmitBasicInfo(ctx, basicInfoInput())
	require.NoError(t, err)
	_, err = u.SubmitIDDocuments(ctx, idDocumentsInput())
	require.NoError(t, err)

	_, err = u.Finalize(ctx, finalizeInput())
	require.Error(t, err)

	got, err := u.Status(ctx, userPhone)
	require.NoError(t, err)
	assert.Equal(t, kyc.StageIDAnalysis, got.Stage)
}

// Without a configured verifier the face match must not silently pass.
func TestKYC_MissingVerifierBlocksFinalize(t *testing.T) {
	u, _, _ := newFixture(t, nil)
	ctx := context.Background()

	_, err := u.SubmitBasicInfo(ctx, basicInfoInput())
	require.NoError(t, err)
	_, err = u.SubmitIDDocuments(ctx, idDocumentsInput())
	require.NoError(t, err)

	_, err = u.Finalize(ctx, finalizeInput())
	assert.ErrorIs(t, err, ErrVerifierUnavailable)
}

func TestKYC_SkipFaceCheckFlagAllowsFinalize(t *testing.T) {
	store := memstore.New()
	rec := ledgermock.New()
	u := NewUsecase(store, store.Repos().KYC, RefAnalyzer{}, nil, true, rec, zap.NewNop())
	ctx := context.Background()

	_, err := u.SubmitBasicInfo(ctx, basicInfoInput())
	require.NoError(t, err)
	_, err = u.SubmitIDDocuments(ctx, idDocumentsInput())
	require.NoError(t, err)

	final, err := u.Finalize(ctx, finalizeInput())
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusApproved, final.Status)
}

func TestKYC_RefinalizationKeepsExistingScore(t *testing.T) {
	u, store, _ := newFixture(t, approvingVerifier())
	ctx := context.Background()
	store.SeedScore(&credit.Score{UserID: userPhone, Value: 720})

	_, err := u.SubmitBasicInfo(ctx, basicInfoInput())
	require.NoError(t, err)
	_, err = u.SubmitIDDocuments(ctx, idDocumentsInput())
	require.NoError(t, err)
	_, err = u.Finalize(ctx, finalizeInput())
	require.NoError(t, err)

	assert.Equal(t, 720, store.Score(userPhone).Value)
}
