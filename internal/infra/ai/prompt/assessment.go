package prompt

import (
	"fmt"

	"github.com/bryanwahyu/audit-compliance/internal/domain/controls"
)

// Assessment asks for an audit-readiness guide for a single control.
// The model's free-text answer is returned to the caller unparsed.
func Assessment(c controls.Control) string {
	return fmt.Sprintf(`You are an ISO/IEC 27001:2022 audit expert. Provide a detailed assessment guide for:

Control: %s - %s
Category: %s

Please provide:
1. What this control requires (2-3 sentences)
2. Key implementation steps (3-5 bullet points)
3. Common audit evidence needed
4. Typical gaps found during audits

Keep the response concise and practical.`, c.ID, c.Name, c.Category)
}
