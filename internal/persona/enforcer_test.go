package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnforce_CleanJordanianPasses(t *testing.T) {
	e := NewEnforcer()

	res := e.Enforce("شو أكثر شي بتحبه بالشغل؟", false)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Error)
	assert.Equal(t, "شو أكثر شي بتحبه بالشغل؟", res.Text)
}

func TestEnforce_StrictRejectsEnglish(t *testing.T) {
	e := NewEnforcer()

	res := e.Enforce("Tell me about your experience", true)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Error)
	// Strict mode returns the original text uncorrected.
	assert.Equal(t, "Tell me about your experience", res.Text)
}

func TestEnforce_LenientNeverBlocks(t *testing.T) {
	e := NewEnforcer()

	res := e.Enforce("ممتاز! your experience is great", false)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Error)
	// Dialect normalization still applies.
	assert.Contains(t, res.Text, "كتير منيح")
}

func TestEnforce_MSAConversion(t *testing.T) {
	e := NewEnforcer()

	tests := []struct{ in, want string }{
		{"ماذا تعمل؟", "شو تعمل؟"},
		{"لماذا تركت الشغل؟", "ليش تركت الشغل؟"},
		{"أين تسكن؟", "وين تسكن؟"},
		{"كيف حالك اليوم؟", "كيفك اليوم؟"},
		{"سوف نتواصل معك", "راح نتواصل معك"},
		{"هل لديك خبرة؟", "عندك خبرة؟"},
		{"هذا شيء جيد", "هاد شيء منيح"},
	}
	for _, tt := range tests {
		res := e.Enforce(tt.in, false)
		assert.True(t, res.Valid)
		assert.Equal(t, tt.want, res.Text, tt.in)
	}
}

func TestEnforce_LongestMatchFirst(t *testing.T) {
	e := NewEnforcer()

	// "لماذا" must rewrite as a unit, not as "ل"+"ماذا".
	res := e.Enforce("لماذا", false)
	assert.Equal(t, "ليش", res.Text)
}

func TestEnforce_ShortBorrowedTermsTolerated(t *testing.T) {
	e := NewEnforcer()

	// Under 4 Latin letters and no function-word match; the stripped
	// remainder is too short for the statistical detector.
	res := e.Enforce("بدك دوام في KFC؟", true)
	assert.True(t, res.Valid)
}

func TestMonitor_TwoEnglishWordsTrigger(t *testing.T) {
	m := NewMonitor()

	used, redirect := m.Check("I worked in a bakery قبل سنتين")
	assert.True(t, used)
	assert.Equal(t, "خلينا نحكي عربي أحسن 😊", redirect)
}

func TestMonitor_SingleWordTolerated(t *testing.T) {
	m := NewMonitor()

	used, redirect := m.Check("اشتغلت في Starbucks سنتين")
	assert.False(t, used)
	assert.Empty(t, redirect)
}

func TestMonitor_ShortTokensIgnored(t *testing.T) {
	m := NewMonitor()

	// Tokens under 3 letters don't count.
	used, _ := m.Check("ok لا بأس ok")
	assert.False(t, used)
}

func TestMonitor_PureArabic(t *testing.T) {
	m := NewMonitor()

	used, _ := m.Check("عندي خمس سنين خبرة بالمخابز")
	assert.False(t, used)
}
