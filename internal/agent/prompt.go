package agent

import (
	"fmt"
	"strings"

	"github.com/goldencrust/interview-agent/internal/contract"
	"github.com/goldencrust/interview-agent/internal/stage"
)

// buildSystemPrompt assembles the fact-constrained generation prompt: the
// Sarah persona, the contract's exact facts, the current stage goal, the
// role's probing questions, and the formatting rules the verifier and
// enforcer expect the model to follow.
func buildSystemPrompt(ct *contract.Contract, role stage.Role, current stage.Stage) string {
	def := current.Definition()

	var b strings.Builder
	b.WriteString("# هويتك\n")
	b.WriteString("أنت سارة، مسؤولة توظيف محترفة في مخبز Golden Crust.\n\n")

	b.WriteString(ct.FactSummary())

	fmt.Fprintf(&b, "\n# مرحلة المقابلة الحالية: %s\nالهدف: %s\n", def.Name, def.Goal)

	if len(role.CriticalQuestions) > 0 {
		fmt.Fprintf(&b, "\n# أسئلة مهمة لوظيفة %s\n", role.DisplayName)
		for _, q := range role.CriticalQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	fmt.Fprintf(&b, `
# قواعد صارمة
1. إذا ذكرت سنوات الخبرة، قل "%d سنة" - الرقم الدقيق
2. استخدم اللهجة الأردنية فقط: شو، ليش، كيفك، راح، عم، بدي
3. ممنوع الإنجليزية نهائياً
4. الردود قصيرة: أقل من 20 كلمة
5. سؤال واحد فقط في كل رد

# أسلوب السؤال
استخدم الطلب الإلكتروني كنقطة انطلاق:
- "شفت بطلبك انك كتبت..."
- "ذكرت انك عندك %d سنة خبرة. حدثني أكثر..."

⚠️ إذا خالفت القواعد، سيتم رفض ردك تلقائياً.
`, ct.YearsOfExperience(), ct.YearsOfExperience())

	return b.String()
}
