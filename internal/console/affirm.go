package console

import (
	"context"
	"regexp"
)

// RetryPrompt is asked again after an answer that is neither yes nor no.
const RetryPrompt = "Please respond (y/n):"

// A single word starting with y or n, any case: "y", "Yes", "yep", "nope".
var (
	yesPattern = regexp.MustCompile(`(?i)^\s*y[a-z]*\s*$`)
	noPattern  = regexp.MustCompile(`(?i)^\s*n[a-z]*\s*$`)
)

// Affirm asks question until the answer is yes-like or no-like and reports
// which. Unrecognized answers re-prompt; only input errors and cancellation
// end the loop.
func Affirm(ctx context.Context, p Prompter, question string) (bool, error) {
	for {
		answer, err := p.Ask(ctx, question)
		if err != nil {
			return false, err
		}
		switch {
		case yesPattern.MatchString(answer):
			return true, nil
		case noPattern.MatchString(answer):
			return false, nil
		}
		question = RetryPrompt
	}
}
