package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goldencrust/interview-agent/internal/model"
)

// buildScoringPrompt assembles the comparison prompt: what the candidate
// wrote in the application, what they said in the interview, and the
// contradictions flagged live during the session.
func buildScoringPrompt(form *model.RegistrationForm, transcript []model.Turn, detected []model.Inconsistency) string {
	var b strings.Builder

	b.WriteString("أنت خبير في تقييم مصداقية المتقدمين للوظائف.\n\n")
	b.WriteString("# بيانات الطلب الإلكتروني (ما كتبه المتقدم)\n")
	b.WriteString(formatForm(form))
	b.WriteString("\n\n# نص المقابلة الصوتية (ما قاله المتقدم)\n")
	b.WriteString(formatTranscript(transcript))
	b.WriteString("\n\n# التناقضات المكتشفة آلياً\n")
	b.WriteString(formatDetected(detected))

	b.WriteString(`

# مهمتك

قارن بين ما كتبه المتقدم بالطلب وما قاله بالمقابلة. قيّم المصداقية بناءً على:

1. **الاتساق**: هل المعلومات متطابقة؟
2. **التفاصيل**: هل التفاصيل بالمقابلة تدعم ما كُتب بالطلب؟
3. **الواقعية**: هل التوقعات واقعية ومنطقية؟
4. **الصراحة**: هل المتقدم صريح أم يحاول إخفاء شيء؟

أعطِ رد JSON فقط بدون أي نص إضافي:

{
  "credibility_score": 85,
  "credibility_level": "عالية",
  "inconsistencies_found": [
    {
      "area": "سنوات الخبرة",
      "form_answer": "5 سنين",
      "interview_answer": "أول مرة بشتغل",
      "severity": "عالية",
      "explanation": "تناقض واضح بين الخبرة المكتوبة والمذكورة"
    }
  ],
  "consistency_areas": ["الراتب المتوقع", "مكان السكن"],
  "red_flags": ["مبالغة في سنوات الخبرة"],
  "recommendation": "يحتاج تحقق إضافي",
  "bottom_line_summary": "ملخص من جملة واحدة عن مصداقية المتقدم"
}

معايير الدرجة:
- 90-100: مصداقية عالية جداً (موثوق بشكل كامل)
- 75-89: مصداقية عالية (موثوق)
- 60-74: مصداقية متوسطة (مقبول مع متابعة)
- 40-59: مصداقية منخفضة (يحتاج تحقق إضافي)
- 0-39: مصداقية منخفضة جداً (غير موثوق)`)

	return b.String()
}

func formatForm(form *model.RegistrationForm) string {
	if form == nil {
		return "لا توجد بيانات من الطلب الإلكتروني"
	}

	fields := []struct {
		label string
		value string
	}{
		{"عدد سنوات الخبرة", form.YearsOfExperience},
		{"خبرة في نفس المجال", form.HasFieldExperience},
		{"الراتب المتوقع", form.ExpectedSalary},
		{"إمكانية البدء فوراً", form.CanStartImmediately},
		{"قرب السكن من الفرع", form.ProximityToBranch},
		{"المسار الأكاديمي", form.AcademicStatus},
		{"الدوام المفضل", form.PreferredSchedule},
		{"مكان السكن", form.DetailedResidence},
	}

	var lines []string
	for _, f := range fields {
		if f.value != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", f.label, f.value))
		}
	}
	if len(lines) == 0 {
		return "لا توجد بيانات متاحة"
	}
	return strings.Join(lines, "\n")
}

func formatTranscript(transcript []model.Turn) string {
	if len(transcript) == 0 {
		return "لا يوجد نص مقابلة"
	}

	var lines []string
	for _, turn := range transcript {
		if turn.Text == "" {
			continue
		}
		speaker := "المتقدم"
		if turn.Role == model.RoleAgent {
			speaker = "سارة (المحاورة)"
		}
		lines = append(lines, speaker+": "+turn.Text)
	}
	if len(lines) == 0 {
		return "لا يوجد محتوى"
	}
	return strings.Join(lines, "\n")
}

func formatDetected(detected []model.Inconsistency) string {
	if len(detected) == 0 {
		return "[]"
	}
	raw, err := json.MarshalIndent(detected, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(raw)
}
