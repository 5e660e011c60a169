package services

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		expected string
	}{
		{
			"single part",
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"response": "hi"}`)}}},
				},
			},
			`{"response": "hi"}`,
		},
		{
			"multiple parts concatenated",
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []genai.Part{genai.Text("part one "), genai.Text("part two")}}},
				},
			},
			"part one part two",
		},
		{
			"no candidates",
			&genai.GenerateContentResponse{},
			"",
		},
		{
			"nil content",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			"",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractText(tc.resp); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestReplyText_EmptyBodyIsAnError(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{
			"whitespace only",
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []genai.Part{genai.Text("  \n\t")}}},
				},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := replyText(tc.resp); err == nil {
				t.Error("Expected an error for an empty response body")
			}
		})
	}
}

func TestReplyText_PassesTextThrough(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"response": "hi"}`)}}},
		},
	}

	text, err := replyText(resp)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != `{"response": "hi"}` {
		t.Errorf("Expected text passthrough, got %q", text)
	}
}
