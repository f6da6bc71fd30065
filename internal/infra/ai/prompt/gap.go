package prompt

import (
	"fmt"

	"github.com/bryanwahyu/audit-compliance/internal/domain/controls"
)

// GapAnalysis compares a described implementation against a control.
// description is inserted verbatim; it is not escaped.
func GapAnalysis(c controls.Control, description string) string {
	return fmt.Sprintf(`You are an ISO 27001 auditor performing a gap analysis.

Control: %s - %s
Current Implementation:
%s

Provide a detailed gap analysis including:
1. Compliance Status (Compliant/Partial/Non-Compliant)
2. Strengths in current implementation
3. Identified gaps and weaknesses
4. Specific recommendations for improvement
5. Priority level (High/Medium/Low)

Be specific and actionable.`, c.ID, c.Name, description)
}
