package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	// Colors for different types of output
	userInputColor = color.New(color.FgWhite)               // White for user input
	aiOutputColor  = color.New(color.FgCyan)                // Cyan for answers
	aiThoughtColor = color.New(color.FgHiYellow)            // Yellow for reasoning
	titleColor     = color.New(color.FgMagenta, color.Bold) // Bold magenta for titles
	separatorColor = color.New(color.FgHiBlack)             // Dark grey for separators
	infoColor      = color.New(color.FgGreen)               // Green for confirmations
	errorColor     = color.New(color.FgRed)                 // Red for failures
	mutedColor     = color.New(color.FgHiBlack)             // Dark grey for metadata
	promptColor    = color.New(color.FgHiBlue)              // Bright blue for prompts

	width = goterm.Width()
)

// ErrInterrupted is returned when the user aborts a prompt.
var ErrInterrupted = errors.New("interrupted")

// Separator printed to cli.
func Separator() {
	separator := strings.Repeat("-", max(width, 1))
	separatorColor.Println(separator)
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := max((width-len(title))/2, 0)
	separator1 := strings.Repeat("-", leftWidth)
	separator2 := strings.Repeat("-", max(width-len(title)-len(separator1), 0))
	output := fmt.Sprintf("%s%s%s", separator1, title, separator2)
	titleColor.Println(output)
}

// UserInput printed to cli.
func UserInput(text string, args ...any) {
	userInputColor.Printf(text, args...)
}

// AIOutput printed to cli.
func AIOutput(text string) {
	aiOutputColor.Print(text)
}

// AIThought printed to cli.
func AIThought(text string) {
	aiThoughtColor.Print(text)
}

// Info printed to cli.
func Info(text string, args ...any) {
	infoColor.Printf(text, args...)
}

// Error printed to cli.
func Error(text string, args ...any) {
	errorColor.Printf(text, args...)
}

// Muted printed to cli.
func Muted(text string, args ...any) {
	mutedColor.Printf(text, args...)
}

// PromptUser for input. Lines are accumulated until Ctrl+J.
func PromptUser(historyFile string) (string, error) {
	exit := false
	config := &readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		HistoryFile:       historyFile,
		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == '\x0A' { // Ctrl + J
				exit = true
			}
			return r, true
		},
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return "", errors.Wrap(err, "creating readline")
	}
	defer rl.Close()
	var lines []string
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			return "", ErrInterrupted
		}
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		if exit {
			break
		}
		rl.SetPrompt("")
	}
	return strings.Join(lines, "\n"), nil
}

// QueryUser a yes/no question.
func QueryUser(question string) bool {
	surveyQuestion := &survey.Confirm{
		Message: question,
	}
	confirm := false
	survey.AskOne(surveyQuestion, &confirm)
	return confirm
}

// AskInput prompts for a required line of text.
func AskInput(message string) (string, error) {
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message}, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", errors.Wrap(err, "prompting")
	}
	return answer, nil
}

// AskPassword prompts for a required secret without echoing it.
func AskPassword(message string) (string, error) {
	var answer string
	if err := survey.AskOne(&survey.Password{Message: message}, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", errors.Wrap(err, "prompting")
	}
	return answer, nil
}
