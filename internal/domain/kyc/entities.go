package kyc

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("KYC record not found")
	ErrBasicInfoMissing  = errors.New("basic KYC info not submitted")
	ErrIDDocumentMissing = errors.New("ID documents not submitted")
	ErrNotFinalized      = errors.New("KYC not finalized")
)

type Stage string

const (
	StageBasicInfo  Stage = "BASIC_INFO_SUBMITTED"
	StageIDAnalysis Stage = "ID_ANALYSIS_RUNNING"
	StageFinalized  Stage = "FINALIZED"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type BasicInfo struct {
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

func (b BasicInfo) FullName() string {
	name := b.FirstName
	if b.MiddleName != "" {
		name += " " + b.MiddleName
	}
	if b.LastName != "" {
		name += " " + b.LastName
	}
	return name
}

type Address struct {
	District     string `json:"district"`
	Municipality string `json:"municipality"`
	WardNo       string `json:"ward_no"`
	Tole         string `json:"tole,omitempty"`
}

type IDDocuments struct {
	IDNumber      string `json:"id_number"`
	IssuedAt      string `json:"issued_at,omitempty"`
	FrontImageRef string `json:"front_image_ref"`
	BackImageRef  string `json:"back_image_ref"`
}

// AnalysisResult holds the black-box document analysis outcome from stage 2.
type AnalysisResult struct {
	GovIDVerified bool   `json:"gov_id_verified"`
	Reason        string `json:"reason,omitempty"`
}

// FinalResult is the merged verification outcome assembled at stage 3. Its
// canonical hash is published to the kyc_results stream.
type FinalResult struct {
	GovIDVerified bool   `json:"gov_id_verified"`
	FaceMatch     bool   `json:"face_match"`
	FinalStatus   string `json:"final_status"`
	Reason        string `json:"reason,omitempty"`
}

// IdentityProof is the persisted identity-proof payload. Keeping it in the
// record store makes the identity audit reconcilable against the
// identity_proofs stream.
type IdentityProof struct {
	IDVerified bool `json:"id_verified"`
	FaceMatch  bool `json:"face_match"`
	LocationOK bool `json:"location_ok"`
}

// Record is the per-user staged KYC document, mutated additively across the
// three submission stages.
type Record struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	UserID           string          `gorm:"size:64;uniqueIndex:ux_kyc_user" json:"user_id"`
	BasicInfo        *BasicInfo      `gorm:"serializer:json" json:"basic_info,omitempty"`
	PermanentAddress *Address        `gorm:"serializer:json" json:"permanent_address,omitempty"`
	TemporaryAddress *Address        `gorm:"serializer:json" json:"temporary_address,omitempty"`
	IDDocuments      *IDDocuments    `gorm:"serializer:json" json:"id_documents,omitempty"`
	Analysis         *AnalysisResult `gorm:"serializer:json" json:"analysis,omitempty"`
	FinalResult      *FinalResult    `gorm:"serializer:json" json:"final_result,omitempty"`
	IdentityProof    *IdentityProof  `gorm:"serializer:json" json:"identity_proof,omitempty"`
	Stage            Stage           `gorm:"size:32" json:"stage"`
	Status           Status          `gorm:"size:16;index" json:"status"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (Record) TableName() string { return "kyc_records" }

func (r *Record) Approved() bool { return r != nil && r.Status == StatusApproved }

// ResultPayload is the canonical content published to the kyc_results stream.
func (r *Record) ResultPayload() map[string]any {
	if r.FinalResult == nil {
		return nil
	}
	p := map[string]any{
		"gov_id_verified": r.FinalResult.GovIDVerified,
		"face_match":      r.FinalResult.FaceMatch,
		"final_status":    r.FinalResult.FinalStatus,
	}
	if r.FinalResult.Reason != "" {
		p["reason"] = r.FinalResult.Reason
	}
	return p
}

// IdentityPayload is the canonical content published to the identity_proofs stream.
func (r *Record) IdentityPayload() map[string]any {
	if r.IdentityProof == nil {
		return nil
	}
	return map[string]any{
		"id_verified": r.IdentityProof.IDVerified,
		"face_match":  r.IdentityProof.FaceMatch,
		"location_ok": r.IdentityProof.LocationOK,
	}
}
