package app

import "quizdesk/internal/domain"

// DefaultCategories is the bank installed on first run.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{
			Name: "Go Basics",
			Questions: []domain.Question{
				{Text: "What does len(\"héllo\") return?", Choices: []string{"5", "6", "4", "It does not compile"}, CorrectIndex: 1},
				{Text: "Which keyword declares a function?", Choices: []string{"function", "func", "def", "fn"}, CorrectIndex: 1},
				{Text: "What is the zero value of a map?", Choices: []string{"An empty map", "nil", "map{}", "It has none"}, CorrectIndex: 1},
				{Text: "Which of these types is a reference to an underlying array?", Choices: []string{"array", "struct", "slice", "string"}, CorrectIndex: 2},
				{Text: "How do you export an identifier from a package?", Choices: []string{"Start it with a capital letter", "Use the export keyword", "List it in go.mod", "Prefix it with _"}, CorrectIndex: 0},
			},
		},
		{
			Name: "Go Concurrency",
			Questions: []domain.Question{
				{Text: "Which keyword starts a goroutine?", Choices: []string{"async", "go", "spawn", "thread"}, CorrectIndex: 1},
				{Text: "What happens when you send on a closed channel?", Choices: []string{"The value is dropped", "It panics", "It blocks forever", "It returns false"}, CorrectIndex: 1},
				{Text: "Which package provides WaitGroup?", Choices: []string{"context", "sync", "runtime", "os"}, CorrectIndex: 1},
				{Text: "What does a select with a default case do when no channel is ready?", Choices: []string{"Blocks", "Panics", "Runs default", "Picks a random case"}, CorrectIndex: 2},
				{Text: "What carries deadlines and cancellation across API boundaries?", Choices: []string{"sync.Once", "context.Context", "time.Timer", "chan struct{}"}, CorrectIndex: 1},
			},
		},
	}
}
