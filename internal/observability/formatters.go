// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFitAnalysis outputs a human-readable summary of a classified posting.
func (p *Printer) PrintFitAnalysis(fit *types.FitAnalysis) {
	if fit == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Overall:        %d/10\n", fit.OverallScore))
	sb.WriteString(fmt.Sprintf("Recommendation: %s\n", fit.Recommendation))
	sb.WriteString(fmt.Sprintf("Interview odds: %d%%\n", fit.InterviewProbability))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("ATS:    %d   Human:  %d\n", fit.Analysis.ATSScreening.Score, fit.Analysis.HumanAppeal.Score))
	sb.WriteString(fmt.Sprintf("Domain: %d   Role:   %d\n", fit.Analysis.DomainExpertise.Score, fit.Analysis.RoleFit.Score))

	if len(fit.Analysis.DomainExpertise.TrueGaps) > 0 {
		sb.WriteString("\nTrue gaps:\n")
		count := min(len(fit.Analysis.DomainExpertise.TrueGaps), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", fit.Analysis.DomainExpertise.TrueGaps[i]))
		}
	}

	if len(fit.DealBreakers) > 0 {
		sb.WriteString("\nDeal breakers:\n")
		for _, d := range fit.DealBreakers {
			sb.WriteString(fmt.Sprintf("  • %s\n", d))
		}
	}

	p.printBox("FIT ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAssessments outputs the tiered relevance assessments.
func (p *Printer) PrintAssessments(assessments []types.RelevanceAssessment) {
	if len(assessments) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(assessments), maxItemsToShow)
	for i := 0; i < count; i++ {
		a := assessments[i]
		sb.WriteString(fmt.Sprintf("%-8s %s (%.2f)\n", strings.ToUpper(string(a.Tier)), a.RecordID, a.OverlapScore))
		if len(a.MatchedSkills) > 0 {
			skills := strings.Join(a.MatchedSkills, ", ")
			if len(skills) > 40 {
				skills = skills[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("         %s\n", skills))
		}
	}
	if len(assessments) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more records", len(assessments)-maxItemsToShow))
	}

	p.printBox("RELEVANCE ASSESSMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStrategy outputs the content strategy's record plans and budgets.
func (p *Printer) PrintStrategy(strat *types.ContentStrategy) {
	if strat == nil || len(strat.Records) == 0 {
		return
	}

	var sb strings.Builder
	for _, plan := range strat.Records {
		sb.WriteString(fmt.Sprintf("%s: %s", plan.RecordID, plan.Mode))
		if plan.Keyword != "" {
			sb.WriteString(fmt.Sprintf("  kw=%s", plan.Keyword))
		}
		sb.WriteString("\n")
		if len(plan.Metrics) > 0 {
			sb.WriteString(fmt.Sprintf("  metrics: %s\n", strings.Join(plan.Metrics, ", ")))
		}
	}
	if len(strat.RemainingKeywords) > 0 {
		sb.WriteString(fmt.Sprintf("\nUnallocated keywords: %s", strings.Join(strat.RemainingKeywords, ", ")))
	}

	p.printBox("CONTENT STRATEGY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBundle outputs a summary of the generated content bundle.
func (p *Printer) PrintBundle(bundle *types.GeneratedContentBundle) {
	if bundle == nil || bundle.IsEmpty() {
		return
	}

	var sb strings.Builder
	if bundle.Profile != "" {
		profile := bundle.Profile
		if len(profile) > 50 {
			profile = profile[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("Profile: %s\n", profile))
	}
	sb.WriteString(fmt.Sprintf("Bullet sections: %d\n", len(bundle.Bullets)))
	sb.WriteString(fmt.Sprintf("Skills: %d\n", len(bundle.Skills)))
	sb.WriteString(fmt.Sprintf("Cover letter paragraphs: %d\n", len(bundle.CoverLetter)))
	if len(bundle.MetricsUsed) > 0 {
		sb.WriteString(fmt.Sprintf("Metrics used: %s\n", strings.Join(bundle.MetricsUsed, ", ")))
	}
	if len(bundle.KeywordsUsed) > 0 {
		sb.WriteString(fmt.Sprintf("Keywords used: %s\n", strings.Join(bundle.KeywordsUsed, ", ")))
	}

	p.printBox("GENERATED CONTENT", strings.TrimSuffix(sb.String(), "\n"))
}
