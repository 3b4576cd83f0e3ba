package rag

// Passage is one retrieved excerpt of corpus text with its relevance score
// and document provenance. Passages are per-request and never persisted;
// only their provenance survives into the citation list.
type Passage struct {
	Content      string
	FileName     string
	RelativePath string
	Title        string
	Score        float64 // cosine similarity in [0,1]
}

// DocumentKey identifies the source document a passage came from.
// FileName is the primary key; RelativePath covers legacy rows where the
// file name was never backfilled.
func (p Passage) DocumentKey() string {
	if p.FileName != "" {
		return p.FileName
	}
	return p.RelativePath
}

// Turn is one prior exchange of the conversation, sent by the client to
// give the retriever context for follow-up questions.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// Profile carries the personalization parameters of one question. Empty
// fields mean "client default"; non-empty fields must be one of the
// enumerated values below (checked at the HTTP boundary, never defaulted
// silently server-side).
type Profile struct {
	AgeGroup       string `json:"age_group"`
	KnowledgeLevel string `json:"knowledge_level"`
	ResponseLength string `json:"response_length"`
}

const (
	AgeEnfant      = "enfant"
	AgeAdo         = "ado"
	AgeJeuneAdulte = "jeune_adulte"
	AgeAdulte      = "adulte"
	AgeSenior      = "senior"

	LevelDecouverte = "decouverte"
	LevelInitie     = "initie"
	LevelConfirme   = "confirme"
	LevelExpert     = "expert"

	LengthBref        = "bref"
	LengthSynthetique = "synthetique"
	LengthDeveloppe   = "developpe"
)

var (
	AgeGroups       = []string{AgeEnfant, AgeAdo, AgeJeuneAdulte, AgeAdulte, AgeSenior}
	KnowledgeLevels = []string{LevelDecouverte, LevelInitie, LevelConfirme, LevelExpert}
	ResponseLengths = []string{LengthBref, LengthSynthetique, LengthDeveloppe}
)

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Valid reports whether every non-empty personalization field is one of
// its enumerated values.
func (p Profile) Valid() bool {
	if p.AgeGroup != "" && !contains(AgeGroups, p.AgeGroup) {
		return false
	}
	if p.KnowledgeLevel != "" && !contains(KnowledgeLevels, p.KnowledgeLevel) {
		return false
	}
	if p.ResponseLength != "" && !contains(ResponseLengths, p.ResponseLength) {
		return false
	}
	return true
}
