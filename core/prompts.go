package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/legacylens/schema"
)

// metricsPrompt asks the model for a single JSON object keyed by keys.
func metricsPrompt(filename string, tech schema.Technology, keys []string) string {
	return fmt.Sprintf(`You are a static analysis engine for legacy %s code.
Analyze the file %q and respond with exactly one JSON object and nothing else.
The object must contain these keys: %s.
All values are integers except maintainability_index and risk_score, which are numbers
between 0 and 100, and complexity_level, which is one of "low", "medium", "high" or "critical".`,
		tech, filename, strings.Join(keys, ", "))
}

// securityPrompt asks for security findings in "Line N: description" form.
func securityPrompt(tech schema.Technology) string {
	return fmt.Sprintf(`Review the following %s code for security vulnerabilities such as code injection,
hardcoded credentials, unsafe file access and SQL built from user input.
Report one finding per line formatted as "Line N: description". If there are none, reply "None".`, tech)
}

// refactoringPrompt asks for refactoring opportunities in "Line N: description" form.
func refactoringPrompt(tech schema.Technology) string {
	return fmt.Sprintf(`Review the following %s code for refactoring opportunities such as long routines,
duplicated logic, deep nesting and dead code.
Report one finding per line formatted as "Line N: description". If there are none, reply "None".`, tech)
}
