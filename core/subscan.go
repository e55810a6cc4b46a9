package core

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

var (
	findingLineRe = regexp.MustCompile(`(?i)^line\s+(\d+)\s*[:.\-)]\s*(.*)$`)
	bulletRe      = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)
)

// parseFindings turns free-text model output into issues. Lines shaped like
// "Line N: description" carry their line number; anything else gets line 0.
func parseFindings(text string, rule schema.IssueRule, severity schema.Severity) []schema.Issue {
	var issues []schema.Issue
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(raw), ""))
		line = strings.Trim(line, "*` ")
		if line == "" || strings.EqualFold(strings.TrimRight(line, "."), "none") {
			continue
		}

		issue := schema.Issue{Severity: severity, Message: line, Rule: rule}
		if m := findingLineRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				issue.Line = n
			}
			issue.Message = strings.TrimSpace(m[2])
		}
		if issue.Message == "" {
			continue
		}
		if strings.Contains(strings.ToLower(issue.Message), "critical") {
			issue.Severity = schema.CriticalSeverity
		}
		issues = append(issues, issue)
	}
	return issues
}

// runSubScans runs the security and refactoring scans concurrently. A failed
// or panicking scan contributes no issues.
func (o *Orchestrator) runSubScans(ctx context.Context, content string, tech schema.Technology) []schema.Issue {
	var security, refactoring []schema.Issue

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		security = o.subScan(ctx, securityPrompt(tech), content, schema.SecurityRule, schema.HighSeverity)
	})
	wg.Go(func() {
		refactoring = o.subScan(ctx, refactoringPrompt(tech), content, schema.RefactoringRule, schema.MediumSeverity)
	})
	if recovered := wg.WaitAndRecover(); recovered != nil {
		o.log.WithError(recovered.AsError()).Warn("Sub-scan panicked")
	}

	return append(security, refactoring...)
}

func (o *Orchestrator) subScan(ctx context.Context, prompt, content string, rule schema.IssueRule, severity schema.Severity) []schema.Issue {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	text, err := o.client.Generate(callCtx, prompt, content)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"file_id": fileIDFromContext(ctx),
			"rule":    rule,
		}).WithError(&contract.ExternalServiceError{Service: o.client.Name(), Err: err}).Warn("Sub-scan failed")
		return nil
	}
	return parseFindings(text, rule, severity)
}
