package contract

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/goldencrust/interview-agent/internal/model"
)

// Contract is an immutable snapshot of verified candidate facts for one
// interview session. All fields are unexported; the only way to construct a
// Contract is through New, which computes the tamper digest. The contract is
// a read-only projection of the candidate record, never written back.
type Contract struct {
	candidateID string
	interviewID string

	fullName           string
	targetRole         string
	yearsOfExperience  int
	expectedSalary     int
	hasFieldExperience bool

	proximityToBranch   string
	canStartImmediately string
	academicStatus      string

	createdAt time.Time
	digest    string
}

// New builds a Contract from a candidate record and computes its integrity
// digest. Fact values outside their valid ranges are a data problem upstream
// and are rejected here.
func New(interviewID string, c *model.Candidate) (*Contract, error) {
	if c.YearsOfExperience < 0 || c.YearsOfExperience > 50 {
		return nil, eris.Errorf("contract: years of experience %d out of range [0,50]", c.YearsOfExperience)
	}
	if c.ExpectedSalary < 0 {
		return nil, eris.Errorf("contract: negative expected salary %d", c.ExpectedSalary)
	}

	ct := &Contract{
		candidateID:         c.ID,
		interviewID:         interviewID,
		fullName:            c.FullName,
		targetRole:          c.TargetRole,
		yearsOfExperience:   c.YearsOfExperience,
		expectedSalary:      c.ExpectedSalary,
		hasFieldExperience:  c.HasFieldExperience,
		proximityToBranch:   c.ProximityToBranch,
		canStartImmediately: c.CanStartImmediately,
		academicStatus:      c.AcademicStatus,
		createdAt:           time.Now().UTC(),
	}
	ct.digest = computeDigest(ct.candidateID, ct.yearsOfExperience, ct.expectedSalary, ct.hasFieldExperience)
	return ct, nil
}

// computeDigest hashes the numeric/boolean facts the verifier guards. The
// map marshals with sorted keys, so the serialization is deterministic.
func computeDigest(candidateID string, years, salary int, fieldExp bool) string {
	payload, _ := json.Marshal(map[string]any{
		"candidate_id":         candidateID,
		"years_of_experience":  years,
		"expected_salary":      salary,
		"has_field_experience": fieldExp,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:12]
}

// VerifyIntegrity recomputes the digest from the current field values and
// reports whether it matches the digest computed at construction. A mismatch
// means a field was altered after construction.
func (c *Contract) VerifyIntegrity() bool {
	return c.digest == computeDigest(c.candidateID, c.yearsOfExperience, c.expectedSalary, c.hasFieldExperience)
}

func (c *Contract) CandidateID() string         { return c.candidateID }
func (c *Contract) InterviewID() string         { return c.interviewID }
func (c *Contract) FullName() string            { return c.fullName }
func (c *Contract) TargetRole() string          { return c.targetRole }
func (c *Contract) YearsOfExperience() int      { return c.yearsOfExperience }
func (c *Contract) ExpectedSalary() int         { return c.expectedSalary }
func (c *Contract) HasFieldExperience() bool    { return c.hasFieldExperience }
func (c *Contract) ProximityToBranch() string   { return c.proximityToBranch }
func (c *Contract) CanStartImmediately() string { return c.canStartImmediately }
func (c *Contract) AcademicStatus() string      { return c.academicStatus }
func (c *Contract) CreatedAt() time.Time        { return c.createdAt }
func (c *Contract) Digest() string              { return c.digest }

// Snapshot is the serializable projection of a Contract, carrying the digest
// computed at construction. Anything rebuilt from a Snapshot must pass
// VerifyIntegrity before use.
type Snapshot struct {
	CandidateID         string    `json:"candidate_id"`
	InterviewID         string    `json:"interview_id"`
	FullName            string    `json:"full_name"`
	TargetRole          string    `json:"target_role"`
	YearsOfExperience   int       `json:"years_of_experience"`
	ExpectedSalary      int       `json:"expected_salary"`
	HasFieldExperience  bool      `json:"has_field_experience"`
	ProximityToBranch   string    `json:"proximity_to_branch,omitempty"`
	CanStartImmediately string    `json:"can_start_immediately,omitempty"`
	AcademicStatus      string    `json:"academic_status,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	Digest              string    `json:"digest"`
}

// Snapshot exports the contract's current values.
func (c *Contract) Snapshot() Snapshot {
	return Snapshot{
		CandidateID:         c.candidateID,
		InterviewID:         c.interviewID,
		FullName:            c.fullName,
		TargetRole:          c.targetRole,
		YearsOfExperience:   c.yearsOfExperience,
		ExpectedSalary:      c.expectedSalary,
		HasFieldExperience:  c.hasFieldExperience,
		ProximityToBranch:   c.proximityToBranch,
		CanStartImmediately: c.canStartImmediately,
		AcademicStatus:      c.academicStatus,
		CreatedAt:           c.createdAt,
		Digest:              c.digest,
	}
}

// FromSnapshot rebuilds a Contract with the snapshot's stored digest, not a
// recomputed one, so a snapshot altered after export fails VerifyIntegrity.
func FromSnapshot(s Snapshot) *Contract {
	return &Contract{
		candidateID:         s.CandidateID,
		interviewID:         s.InterviewID,
		fullName:            s.FullName,
		targetRole:          s.TargetRole,
		yearsOfExperience:   s.YearsOfExperience,
		expectedSalary:      s.ExpectedSalary,
		hasFieldExperience:  s.HasFieldExperience,
		proximityToBranch:   s.ProximityToBranch,
		canStartImmediately: s.CanStartImmediately,
		academicStatus:      s.AcademicStatus,
		createdAt:           s.CreatedAt,
		digest:              s.Digest,
	}
}

// FactSummary renders the contract facts as the Arabic block embedded in the
// generation prompt. Numbers are exact; the model is told to use them as-is.
func (c *Contract) FactSummary() string {
	fieldExp := "لا"
	if c.hasFieldExperience {
		fieldExp = "نعم"
	}
	proximity := c.proximityToBranch
	if proximity == "" {
		proximity = "غير محدد"
	}
	return fmt.Sprintf(`# حقائق المتقدم (من قاعدة البيانات - لا يمكن تغييرها)

- الاسم: %s
- الوظيفة المطلوبة: %s
- عدد سنوات الخبرة: %d سنة (بالضبط)
- الراتب المتوقع: %d دينار
- خبرة في المجال: %s
- قرب السكن: %s

⚠️ هذه الأرقام دقيقة من قاعدة البيانات. إذا ذكرتها، استخدم الأرقام الدقيقة.
`, c.fullName, c.targetRole, c.yearsOfExperience, c.expectedSalary, fieldExp, proximity)
}
