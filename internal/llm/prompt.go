package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/contract-risk/constants"
)

const systemPrompt = "You are a careful legal assistant for Indian consumers.\n" +
	"You read contracts (loan agreements, credit card T&Cs, EMI plans, insurance, rental agreements).\n" +
	"Your job is to identify clauses that may create risk for a normal customer, then explain them in very simple language.\n" +
	"You are NOT giving legal advice, only a simple explanation."

// BuildSystemPrompt returns the reviewer persona shared by every backend.
func BuildSystemPrompt() string {
	return systemPrompt
}

// Truncate keeps at most maxChars runes of text. maxChars <= 0 disables truncation.
func Truncate(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i], true
		}
		n++
	}
	return text, false
}

// BuildUserPrompt embeds the (already truncated) contract text and describes the
// JSON object the model must return. withScore adds the top-level
// risk_score, risk_level and summary fields.
func BuildUserPrompt(text string, lang constants.Language, withScore bool) string {
	langDesc := lang.Describe()

	types := constants.ClauseTypesAsStrings()
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = `"` + t + `"`
	}

	var b strings.Builder
	b.WriteString("Read the following contract text and extract all clauses that look risky for a normal customer\n")
	b.WriteString("in India. Focus especially on:\n\n")
	b.WriteString("1. Lock-in or minimum tenure (hard to exit a plan / agreement).\n")
	b.WriteString("2. Foreclosure / prepayment charges for loans and EMIs.\n")
	b.WriteString("3. Penalties, late fees, or high overdue interest.\n")
	b.WriteString("4. Automatic renewal of services / subscriptions.\n")
	b.WriteString("5. Data sharing / third-party marketing / sharing with partners.\n")
	b.WriteString("6. Hidden fees like processing fees, non-refundable fees, maintenance charges, etc.\n")
	b.WriteString("7. Terms that look unfair or possibly illegal under Indian consumer law.\n\n")

	b.WriteString("The contract text is:\n\n\"\"\"")
	b.WriteString(text)
	b.WriteString("\"\"\"\n\n")

	b.WriteString("Return ONLY valid JSON (no explanation text outside JSON) with this structure:\n\n")
	b.WriteString("{\n")
	if withScore {
		b.WriteString("  \"risk_score\": integer from 0 to 100,\n")
		b.WriteString("  \"risk_level\": \"low\" | \"medium\" | \"high\",\n")
		fmt.Fprintf(&b, "  \"summary\": \"2-4 short sentences about the overall risk in %s\",\n", langDesc)
	}
	b.WriteString("  \"clauses\": [\n")
	b.WriteString("    {\n")
	fmt.Fprintf(&b, "      \"type\": %s,\n", strings.Join(quoted, " | "))
	b.WriteString("      \"title\": \"short human-readable title for the clause\",\n")
	b.WriteString("      \"severity\": \"high\" | \"medium\" | \"low\",\n")
	b.WriteString("      \"original_text\": \"exact sentence or paragraph from the contract that is risky\",\n")
	fmt.Fprintf(&b, "      \"simplified_text\": \"very simple explanation in %s\"\n", langDesc)
	b.WriteString("    }\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Only include clauses that are actually risky or important.\n")
	if withScore {
		b.WriteString("- If nothing is risky, return: { \"risk_score\": 0, \"risk_level\": \"low\", \"summary\": \"...\", \"clauses\": [] }\n")
		b.WriteString("- risk_score: add 25 per high, 15 per medium and 5 per low clause, capped at 100.\n")
		b.WriteString("- risk_level: below 30 is low, 30 to 69 is medium, 70 or more is high.\n")
	} else {
		b.WriteString("- If nothing is risky, return: { \"clauses\": [] }\n")
	}
	b.WriteString("- Keep \"original_text\" short but complete enough to understand the clause.\n")
	fmt.Fprintf(&b, "- Make \"simplified_text\" 1-3 short sentences, extremely simple %s.\n", langDesc)
	b.WriteString("- Do NOT add any extra keys. Do NOT wrap the JSON with ``` or any markdown.")
	return b.String()
}
