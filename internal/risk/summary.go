package risk

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/contract-risk/constants"
)

type summaryText struct {
	openHigh   string
	openMedium string
	openLow    string
	highCount  string // %d
	medCount   string // %d
	closing    string
	noText     string
	degraded   string
	generic    string
}

var summaries = map[constants.Language]summaryText{
	constants.English: {
		openHigh:   "This document has HIGH risk. It contains clauses that can lock you in or cause significant extra costs.",
		openMedium: "This document has MEDIUM risk. It contains some clauses you should review carefully before signing.",
		openLow:    "This document appears to have LOW risk based on our checks, but you should still read it once before signing.",
		highCount:  "We found about %d high-severity clauses (e.g., heavy penalties or long lock-in).",
		medCount:   "We also found %d medium-severity clauses (such as extra charges or data sharing).",
		closing:    "Scroll down to review each risky clause in simple language before you decide to sign.",
		noText:     "We could not read any text from this document. Please upload a text-based or clear PDF.",
		degraded:   "We could not complete the AI review of this document right now. Please try again in a few minutes.",
		generic:    "We reviewed this document for risky clauses. Please read each clause below carefully before signing.",
	},
	constants.Hinglish: {
		openHigh:   "Yeh document HIGH risk wala hai. Isme aise clauses hain jo aapko lock-in kar sakte hain ya extra paise dilaa sakte hain.",
		openMedium: "Yeh document MEDIUM risk ka hai. Isme kuch important clauses hain jo sign karne se pehle dhyaan se padhna chahiye.",
		openLow:    "Humaare checks ke hisaab se yeh document LOW risk lagta hai, lekin sign karne se pehle ek baar zaroor padhna chahiye.",
		highCount:  "Humein lagbhag %d high-risk clauses mile (jaise bada lock-in ya heavy penalty).",
		medCount:   "Humein %d medium-risk clauses bhi mile (jaise extra charges, processing fee, data sharing).",
		closing:    "Neeche har risky clause ko simple Hinglish/English mein explain kiya gaya hai. Sign karne se pehle ek baar zaroor dekh lo.",
		noText:     "Is document se text read nahi ho paaya. Kripya ek clear text-based PDF ya file upload karein.",
		degraded:   "Abhi is document ka AI review complete nahi ho paaya. Kripya thodi der baad dobara try karein.",
		generic:    "Humne is document ke risky clauses check kiye hain. Sign karne se pehle neeche diye gaye har clause ko dhyaan se padho.",
	},
}

func textFor(lang constants.Language) summaryText {
	if t, ok := summaries[lang]; ok {
		return t
	}
	return summaries[constants.English]
}

// Summarize composes the overall summary from the level and the high/medium
// clause counts. Output depends only on its inputs.
func Summarize(level constants.RiskLevel, high, medium int, lang constants.Language) string {
	t := textFor(lang)

	parts := make([]string, 0, 4)
	switch level {
	case constants.RiskHigh:
		parts = append(parts, t.openHigh)
	case constants.RiskMedium:
		parts = append(parts, t.openMedium)
	default:
		parts = append(parts, t.openLow)
	}
	if high > 0 {
		parts = append(parts, fmt.Sprintf(t.highCount, high))
	}
	if medium > 0 {
		parts = append(parts, fmt.Sprintf(t.medCount, medium))
	}
	parts = append(parts, t.closing)
	return strings.Join(parts, " ")
}

// NoTextMessage is the summary for documents with no extractable text.
func NoTextMessage(lang constants.Language) string {
	return textFor(lang).noText
}

// DegradedMessage is the summary when AI-only analysis could not run.
func DegradedMessage(lang constants.Language) string {
	return textFor(lang).degraded
}

// GenericModelSummary replaces a backend summary that is missing or not a string.
func GenericModelSummary(lang constants.Language) string {
	return textFor(lang).generic
}
