// Package coach talks to the language model that produces raw guidance
// payloads. It owns prompt construction and defensive JSON recovery; all
// normalization of the returned payload happens in internal/guidance.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"
)

// GuidanceSpec is the yaml prompt spec loaded at startup. Each mode carries
// its own system instructions; style knobs are shared.
type GuidanceSpec struct {
	System string `yaml:"system"`
	Modes  struct {
		Reflect string `yaml:"reflect"`
		Analyze string `yaml:"analyze"`
		Thought string `yaml:"thought"`
		Mood    string `yaml:"mood"`
		Story   string `yaml:"story"`
	} `yaml:"modes"`
	Style struct {
		Temperature float32 `yaml:"temperature"`
		Language    string  `yaml:"language"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

type Coach struct {
	spec   GuidanceSpec
	client *openai.Client
	model  string
}

func LoadCoach(path string, client *openai.Client, model string) (*Coach, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec GuidanceSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, err
	}
	return &Coach{spec: spec, client: client, model: model}, nil
}

// Reflect sends the conversation transcript and returns the raw guidance
// payload for the next turn, as a generic mapping.
func (c *Coach) Reflect(ctx context.Context, chat []openai.ChatCompletionMessage) (map[string]any, error) {
	var b strings.Builder
	b.WriteString(c.systemFor(c.spec.Modes.Reflect))
	b.WriteString("\n\nTranscript (role: content):\n")
	for _, m := range chat {
		role := strings.ToUpper(m.Role)
		if role == "" {
			role = "USER"
		}
		content := strings.TrimSpace(m.Content)
		content = strings.ReplaceAll(content, "\n\n", "\n")
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(content)
		b.WriteString("\n")
	}
	b.WriteString("\nInstructions: Respond with ONLY the JSON object for the next reflection turn.\n")
	return c.complete(ctx, b.String())
}

// Analyze asks for an analysis payload over one journal entry.
func (c *Coach) Analyze(ctx context.Context, text string) (map[string]any, error) {
	prompt := fmt.Sprintf("%s\n\nJournal entry:\n%s\n\nInstructions: Output ONLY the JSON object.\n",
		c.systemFor(c.spec.Modes.Analyze), strings.TrimSpace(text))
	return c.complete(ctx, prompt)
}

// Thought asks for a structured thought-record payload over free-form text.
func (c *Coach) Thought(ctx context.Context, text string) (map[string]any, error) {
	prompt := fmt.Sprintf("%s\n\nUser's account:\n%s\n\nInstructions: Output ONLY the JSON object.\n",
		c.systemFor(c.spec.Modes.Thought), strings.TrimSpace(text))
	return c.complete(ctx, prompt)
}

// Mood asks for a short acknowledgement payload for a mood check-in.
func (c *Coach) Mood(ctx context.Context, mood, note string) (map[string]any, error) {
	prompt := fmt.Sprintf("%s\n\nMood: %s\nNote: %s\n\nInstructions: Output ONLY the JSON object.\n",
		c.systemFor(c.spec.Modes.Mood), strings.TrimSpace(mood), strings.TrimSpace(note))
	return c.complete(ctx, prompt)
}

// Story asks for a wind-down story payload.
func (c *Coach) Story(ctx context.Context, theme string, minutes int) (map[string]any, error) {
	if minutes <= 0 {
		minutes = 3
	}
	prompt := fmt.Sprintf("%s\n\nTheme: %s\nLength: about %d minutes read aloud.\n\nInstructions: Output ONLY the JSON object.\n",
		c.systemFor(c.spec.Modes.Story), strings.TrimSpace(theme), minutes)
	return c.complete(ctx, prompt)
}

func (c *Coach) systemFor(mode string) string {
	sys := strings.TrimSpace(c.spec.System)
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return sys
	}
	if sys == "" {
		return mode
	}
	return sys + "\n\n" + mode
}

func (c *Coach) complete(ctx context.Context, prompt string) (map[string]any, error) {
	styleT := c.spec.Style.Temperature
	if styleT <= 0 {
		styleT = 0.4
	}
	maxTok := c.spec.Style.MaxTokens
	if maxTok <= 0 {
		maxTok = 600
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: styleT,
		MaxTokens:   maxTok,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices")
	}
	return ExtractPayload(resp.Choices[0].Message.Content)
}

// ExtractPayload parses the model output as a JSON object, falling back to
// the substring between the first '{' and the last '}' when the model wrapped
// the object in prose or a code fence.
func ExtractPayload(raw string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		first := strings.IndexByte(raw, '{')
		last := strings.LastIndexByte(raw, '}')
		if first < 0 || last <= first {
			return nil, err
		}
		if err2 := json.Unmarshal([]byte(raw[first:last+1]), &out); err2 != nil {
			return nil, err
		}
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
