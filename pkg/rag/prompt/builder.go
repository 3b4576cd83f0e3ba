package prompt

import (
	"fmt"
	"strings"

	"fidesia-be/internal/constant"
	"fidesia-be/pkg/rag"
)

// Builder assembles the generation prompts for one question: the
// personalized system prompt and the user message carrying the grounded
// corpus context.
type Builder struct {
	question string
	passages []rag.Passage
	profile  rag.Profile
}

func NewBuilder(question string, passages []rag.Passage, profile rag.Profile) *Builder {
	return &Builder{
		question: question,
		passages: passages,
		profile:  profile,
	}
}

// System returns the base theological system prompt extended with the
// personalization instructions of the profile. Empty profile fields add
// nothing.
func (b *Builder) System() string {
	var prompt strings.Builder
	prompt.WriteString(constant.BaseSystemPrompt)

	var extras []string
	if instr, ok := constant.AgeGroupInstructions[b.profile.AgeGroup]; ok {
		extras = append(extras, instr)
	}
	if instr, ok := constant.KnowledgeLevelInstructions[b.profile.KnowledgeLevel]; ok {
		extras = append(extras, instr)
	}
	if instr, ok := constant.ResponseLengthInstructions[b.profile.ResponseLength]; ok {
		extras = append(extras, instr)
	}

	if len(extras) > 0 {
		prompt.WriteString("\n\nADAPTATION AU LECTEUR :\n")
		for _, instr := range extras {
			prompt.WriteString("- ")
			prompt.WriteString(instr)
			prompt.WriteString("\n")
		}
	}

	return prompt.String()
}

// Build returns the user message: the retrieved passages wrapped as
// reference material, then the question. With no passages the question
// is asked ungrounded and the system prompt's honesty rules apply.
func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeReferenceMaterial(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *Builder) writeReferenceMaterial(prompt *strings.Builder) {
	if len(b.passages) == 0 {
		return
	}

	prompt.WriteString("<extraits_du_corpus>\n")
	for i, p := range b.passages {
		title := p.Title
		if title == "" {
			title = p.FileName
		}
		prompt.WriteString(fmt.Sprintf("--- EXTRAIT %d : %s ---\n", i+1, title))
		prompt.WriteString(p.Content)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</extraits_du_corpus>\n\n")
}

func (b *Builder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("<question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</question>\n\n")
	prompt.WriteString("Réponds maintenant à la question en t'appuyant sur les extraits fournis :")
}

// Condense formats the condensation prompt for a follow-up question. Only
// the last few exchanges are kept and past answers are truncated, long
// histories add nothing to retrieval.
func Condense(history []rag.Turn, question string) string {
	maxTurns := constant.CondenseMaxExchanges * 2
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	var transcript strings.Builder
	for _, turn := range history {
		content := turn.Content
		if runes := []rune(content); turn.Role == rag.TurnRoleAssistant && len(runes) > constant.CondenseAnswerTruncate {
			content = string(runes[:constant.CondenseAnswerTruncate]) + "…"
		}
		switch turn.Role {
		case rag.TurnRoleAssistant:
			transcript.WriteString("Assistant : ")
		default:
			transcript.WriteString("Utilisateur : ")
		}
		transcript.WriteString(content)
		transcript.WriteString("\n")
	}

	return fmt.Sprintf(constant.CondenseQuestionPrompt, strings.TrimRight(transcript.String(), "\n"), question)
}
