package constant

import "fidesia-be/pkg/rag"

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Retrieval tuning
	SimilarityTopK = 8 // passages fetched from the vector store
	ContextTopK    = 5 // passages actually fed to the generator

	// History handling
	MaxChatHistory         = 20  // turns accepted from the client
	CondenseMaxExchanges   = 3   // last exchanges used to condense a follow-up
	CondenseAnswerTruncate = 500 // characters kept per past answer

	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "mistral:7b"
)

// BaseSystemPrompt frames every answer: grounded Catholic theology in
// French, honest about the limits of the provided passages.
const BaseSystemPrompt = `Tu es un assistant théologique catholique francophone.

RÈGLES (À SUIVRE STRICTEMENT) :
1. Réponds UNIQUEMENT à partir des extraits du corpus fournis dans le contexte.
2. Si les extraits ne permettent pas de répondre, dis-le honnêtement et propose de reformuler la question.
3. Ne cite jamais un document qui n'apparaît pas dans le contexte.
4. Reste fidèle à l'enseignement du Magistère ; distingue clairement doctrine, discipline et opinion théologique.
5. Adopte un ton bienveillant et précis, sans jargon inutile.
6. Réponds toujours en français.`

// Personalization instruction blocks, keyed by the profile enums. An
// absent key means the client sent no preference and nothing is added.

var AgeGroupInstructions = map[string]string{
	rag.AgeEnfant:      "Adresse-toi à un enfant : phrases courtes, vocabulaire simple, images concrètes tirées de la vie quotidienne.",
	rag.AgeAdo:         "Adresse-toi à un adolescent : ton direct, exemples actuels, sans infantiliser.",
	rag.AgeJeuneAdulte: "Adresse-toi à un jeune adulte : relie la réponse aux questions de sens, d'engagement et de discernement.",
	rag.AgeAdulte:      "Adresse-toi à un adulte : exposé posé et structuré.",
	rag.AgeSenior:      "Adresse-toi à une personne âgée : ton respectueux, références classiques bienvenues.",
}

var KnowledgeLevelInstructions = map[string]string{
	rag.LevelDecouverte: "Niveau découverte : définis chaque terme technique, pars de zéro.",
	rag.LevelInitie:     "Niveau initié : les notions de base sont acquises, définis seulement les termes rares.",
	rag.LevelConfirme:   "Niveau confirmé : tu peux mobiliser le vocabulaire théologique sans le définir.",
	rag.LevelExpert:     "Niveau expert : entre directement dans la technicité, cite les distinctions scolastiques utiles.",
}

var ResponseLengthInstructions = map[string]string{
	rag.LengthBref:        "Longueur : réponse brève, 2 à 3 phrases maximum.",
	rag.LengthSynthetique: "Longueur : réponse synthétique, un paragraphe structuré.",
	rag.LengthDeveloppe:   "Longueur : réponse développée, avec plan apparent si le sujet s'y prête.",
}

// CondenseQuestionPrompt turns a follow-up into a standalone question so
// the retriever gets something searchable. Filled with the recent
// history then the new question.
const CondenseQuestionPrompt = `Voici les derniers échanges d'une conversation :

%s

Nouvelle question de l'utilisateur : "%s"

Reformule cette nouvelle question en une question autonome et complète, compréhensible sans la conversation. Réponds UNIQUEMENT par la question reformulée, sans guillemets ni commentaire.`
