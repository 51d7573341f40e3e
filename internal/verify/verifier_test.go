package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldencrust/interview-agent/internal/contract"
	"github.com/goldencrust/interview-agent/internal/model"
)

func newTestContract(t *testing.T, years, salary int) *contract.Contract {
	t.Helper()
	ct, err := contract.New("iv-1", &model.Candidate{
		ID:                 "cand-1",
		FullName:           "أحمد خالد",
		TargetRole:         "خباز",
		YearsOfExperience:  years,
		ExpectedSalary:     salary,
		HasFieldExperience: true,
	})
	require.NoError(t, err)
	return ct
}

func TestVerify_ExperienceHallucination(t *testing.T) {
	v := NewVerifier(newTestContract(t, 5, 400))

	res := v.Verify("عندي 8 سنوات خبرة بالمخابز")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "stated 8 years")
	assert.Equal(t, "عندي 5 سنوات خبرة بالمخابز", res.Corrected)
}

func TestVerify_ExperienceHallucination_English(t *testing.T) {
	v := NewVerifier(newTestContract(t, 5, 400))

	res := v.Verify("I have 8 years of experience")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Corrected, "5 years")
	assert.NotContains(t, res.Corrected, "8")
}

func TestVerify_CorrectExperiencePasses(t *testing.T) {
	v := NewVerifier(newTestContract(t, 5, 400))

	res := v.Verify("ذكرت انك عندك 5 سنة خبرة، حدثني أكثر")
	assert.True(t, res.Valid)
	assert.Empty(t, res.Error)
	assert.Empty(t, res.Corrected)
}

func TestVerify_PreservesRestOfUtterance(t *testing.T) {
	v := NewVerifier(newTestContract(t, 3, 400))

	res := v.Verify("شفت بطلبك انك كتبت 7 سنين خبرة، صح؟")
	assert.False(t, res.Valid)
	assert.Equal(t, "شفت بطلبك انك كتبت 3 سنين خبرة، صح؟", res.Corrected)
}

func TestVerify_UnitVariants(t *testing.T) {
	v := NewVerifier(newTestContract(t, 4, 400))

	for _, utterance := range []string{
		"عندك 9 سنة خبرة",
		"عندك 9 سنوات خبرة",
		"عندك 9 سنين خبرة",
	} {
		res := v.Verify(utterance)
		assert.False(t, res.Valid, utterance)
		assert.Contains(t, res.Corrected, "4", utterance)
	}
}

func TestVerify_ImplausibleYearsIgnored(t *testing.T) {
	v := NewVerifier(newTestContract(t, 5, 400))

	// 50+ is outside the plausible experience range; not treated as a claim.
	res := v.Verify("المخبز موجود من 60 سنة")
	assert.True(t, res.Valid)
}

func TestVerify_SalaryHallucination(t *testing.T) {
	v := NewVerifier(newTestContract(t, 5, 400))

	res := v.Verify("انت طلبت راتب 800 دينار بالطلب")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "stated salary 800")
	assert.Equal(t, "انت طلبت راتب 400 دينار بالطلب", res.Corrected)
}

func TestVerify_SalaryWithinTolerance(t *testing.T) {
	v := NewVerifier(newTestContract(t, 5, 400))

	res := v.Verify("الراتب المتوقع 450 دينار تقريباً")
	assert.True(t, res.Valid)
}

func TestVerify_FirstViolationOnly(t *testing.T) {
	v := NewVerifier(newTestContract(t, 5, 400))

	// Experience is scanned before salary; only the first violation corrects.
	res := v.Verify("عندك 8 سنوات خبرة وطلبت 900 دينار")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Corrected, "5 سنوات")
	assert.Contains(t, res.Corrected, "900 دينار")
}

func TestVerify_NumbersWithoutUnitsIgnored(t *testing.T) {
	v := NewVerifier(newTestContract(t, 5, 400))

	res := v.Verify("دوامك راح يبلش الساعة 8 الصبح بفرع رقم 12")
	assert.True(t, res.Valid)
}

func TestFormDetector_ExperienceDenial(t *testing.T) {
	d := NewFormDetector(&model.RegistrationForm{YearsOfExperience: "3 سنوات"})

	inc := d.Detect("بصراحة هاي أول مرة بشتغل بمخبز", 4)
	require.NotNil(t, inc)
	assert.Equal(t, model.InconsistencyExperienceMismatch, inc.Type)
	assert.Equal(t, model.SeverityHigh, inc.Severity)
	assert.Equal(t, "3 سنوات", inc.FormValue)
	assert.Equal(t, 4, inc.Turn)
}

func TestFormDetector_ExperienceDenial_FormHasNoYears(t *testing.T) {
	d := NewFormDetector(&model.RegistrationForm{YearsOfExperience: "بدون خبرة"})

	// Form never claimed experience, so denial is consistent.
	assert.Nil(t, d.Detect("ما عندي خبرة", 1))
}

func TestFormDetector_SalaryJump(t *testing.T) {
	d := NewFormDetector(&model.RegistrationForm{ExpectedSalary: "300 دينار"})

	inc := d.Detect("بدي راتب 500 دينار عالأقل", 2)
	require.NotNil(t, inc)
	assert.Equal(t, model.InconsistencySalaryMismatch, inc.Type)
	assert.Equal(t, model.SeverityMedium, inc.Severity)

	// 50% higher exactly is still within bounds.
	assert.Nil(t, d.Detect("بدي 450 دينار", 3))
}

func TestFormDetector_StartDelay(t *testing.T) {
	d := NewFormDetector(&model.RegistrationForm{CanStartImmediately: "نعم فوراً"})

	inc := d.Detect("محتاج وقت شوي قبل ما أبلش", 5)
	require.NotNil(t, inc)
	assert.Equal(t, model.InconsistencyStartDateMismatch, inc.Type)

	d = NewFormDetector(&model.RegistrationForm{CanStartImmediately: "لا"})
	assert.Nil(t, d.Detect("محتاج وقت شوي", 5))
}

func TestFormDetector_NilForm(t *testing.T) {
	d := NewFormDetector(nil)
	assert.Nil(t, d.Detect("ما عندي خبرة", 1))
}
