package skills

import "fmt"

const systemPrompt = "You are a helpful resume parser."

const extractionPrompt = `
You are a resume parsing assistant.

Extract only technical skills listed under the "Technologies" section of the resume. Focus only on lines under headings like "Proficient", "Familiar", or similar. Do not infer any soft skills or personality traits unless explicitly listed under a skills heading.
Include only:
- Programming languages
- Tools and libraries
- Frameworks and platforms
- Cloud technologies

Ignore:
- Any skills not under 'Technologies', 'Skills', or 'Technical Skills' sections
- Descriptive phrases, soft skills, business terms, or general qualities
- Any duplicate or redundant terms
- Don't include anything from extra sections like "Experience", "Education", or "Projects"
Return the result as a **valid Python list of lowercase strings**.

Resume:
"""
%s
"""
`

// BuildPrompt embeds masked resume text in the extraction instructions.
func BuildPrompt(maskedText string) string {
	return fmt.Sprintf(extractionPrompt, maskedText)
}
