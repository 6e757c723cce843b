package quiz

// Topics offered by the picker. Free-text topics are accepted too; this list
// only feeds the meta endpoint.
var Topics = []string{
	"Tenses",
	"Subject-Verb Agreement",
	"Articles (a, an, the)",
	"Prepositions",
	"Pronouns",
	"Adjectives and Adverbs",
	"Conditionals",
	"Passive Voice",
	"Reported Speech",
	"Modal Verbs",
	"Phrasal Verbs",
	"Relative Clauses",
	"Conjunctions",
	"Gerunds and Infinitives",
	"Punctuation",
	"Sentence Structure",
	"Common Grammar Mistakes",
	"Mixed Grammar Topics",
}

// TenseSubtopics refine the "Tenses" topic into e.g. "Present Tense".
var TenseSubtopics = []string{"Present", "Past", "Future"}

type QuestionType string

const (
	TypeMCQ                QuestionType = "Multiple Choice (MCQ)"
	TypeFillBlanks         QuestionType = "Fill in the Blanks"
	TypeTrueFalse          QuestionType = "True/False"
	TypeSentenceCorrection QuestionType = "Sentence Correction"
	TypeShortAnswer        QuestionType = "Short Answer"
	TypeEssay              QuestionType = "Essay/Paragraph Writing"
)

var QuestionTypes = []QuestionType{
	TypeMCQ, TypeFillBlanks, TypeTrueFalse, TypeSentenceCorrection, TypeShortAnswer, TypeEssay,
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func ValidQuestionType(t QuestionType) bool {
	for _, v := range QuestionTypes {
		if v == t {
			return true
		}
	}
	return false
}

func ValidDifficulty(d Difficulty) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// Question is one generated item. JSON tags match the model's reply format.
type Question struct {
	Question      string       `json:"question"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"` // MCQ only, exactly 4
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	Difficulty    Difficulty   `json:"difficulty,omitempty"`
}

// Evaluation is the model's verdict on one answer.
type Evaluation struct {
	IsCorrect       bool   `json:"is_correct"`
	Score           int    `json:"score"` // 0-10
	Feedback        string `json:"feedback"`
	ExtractedAnswer string `json:"extracted_answer,omitempty"` // image answers only
}
