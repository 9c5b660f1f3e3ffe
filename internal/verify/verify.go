package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rog-research/internal/inference"
)

// ErrEmptyContent is returned when there is nothing to verify.
var ErrEmptyContent = errors.New("no content provided")

const (
	analyzePrompt = "Analyze the following content and identify potential disinformation patterns or concerns using only your internal knowledge:\n\n%s"
	reviewPrompt  = "Please verify whether the following content is authentic or contains disinformation. Provide an evidence-based analysis and say which claims can be checked and how:\n\n%s"
	unifyPrompt   = `You have two separate analyses of the following content:
-----------------
%s
-----------------

PATTERN ANALYSIS (based on internal knowledge):
%s

EVIDENCE REVIEW:
%s

Synthesize these analyses into a single, succinct verification report without duplication.
Do not describe which analysis a finding came from.
Resolve any contradictions between the two analyses.
Finish with a clear authenticity assessment.
`
)

// Report holds every stage of an enhanced verification.
type Report struct {
	LocalAnalysis string `json:"local_analysis"`
	Review        string `json:"review"`
	Combined      string `json:"combined_result"`
}

// Verifier runs verification prompts against one model.
type Verifier struct {
	client inference.Client
	model  string
}

func New(client inference.Client, model string) *Verifier {
	return &Verifier{client: client, model: model}
}

// Model returns the model the verifier prompts.
func (v *Verifier) Model() string {
	return v.model
}

// Analyze looks for disinformation patterns from model knowledge alone.
func (v *Verifier) Analyze(ctx context.Context, content string) (string, error) {
	return v.ask(ctx, analyzePrompt, content)
}

// Review asks for an evidence-oriented verification. It is also the whole
// of the legacy verification path.
func (v *Verifier) Review(ctx context.Context, content string) (string, error) {
	return v.ask(ctx, reviewPrompt, content)
}

// Unify merges a local analysis and a review into one report.
func (v *Verifier) Unify(ctx context.Context, content, local, review string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	res, err := v.client.Complete(ctx, v.model, fmt.Sprintf(unifyPrompt, content, local, review))
	if err != nil {
		return "", fmt.Errorf("unify: %w", err)
	}
	return res.Text, nil
}

// Enhanced runs Analyze, Review and Unify in sequence. Any stage failure aborts the run.
func (v *Verifier) Enhanced(ctx context.Context, content string) (Report, error) {
	local, err := v.Analyze(ctx, content)
	if err != nil {
		return Report{}, err
	}
	review, err := v.Review(ctx, content)
	if err != nil {
		return Report{}, err
	}
	combined, err := v.Unify(ctx, content, local, review)
	if err != nil {
		return Report{}, err
	}
	return Report{LocalAnalysis: local, Review: review, Combined: combined}, nil
}

func (v *Verifier) ask(ctx context.Context, format, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	res, err := v.client.Complete(ctx, v.model, fmt.Sprintf(format, content))
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
