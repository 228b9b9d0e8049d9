package adk

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey string, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-pro"
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	iter := g.client.ListModels(ctx)
	var names []string
	for {
		m, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		// Only list models that support content generation (rough filter)
		if strings.Contains(m.Name, "gemini") {
			// m.Name is like "models/gemini-pro", we usually want just "gemini-pro"
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
	}
	return names, nil
}

func (g *GeminiProvider) GenerateResponse(ctx context.Context, history []Message) (string, error) {
	var cs []*genai.Content
	for _, msg := range history {
		role := "user"
		if msg.Role == "model" {
			role = "model"
		}

		cs = append(cs, &genai.Content{
			Parts: []genai.Part{
				genai.Text(msg.Content),
			},
			Role: role,
		})
	}

	if len(cs) == 0 {
		return "", fmt.Errorf("empty history")
	}

	session := g.model.StartChat()
	session.History = cs[:len(cs)-1]
	lastMsg := cs[len(cs)-1]

	resp, err := session.SendMessage(ctx, lastMsg.Parts...)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates")
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText += string(text)
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("model returned no text")
	}
	return responseText, nil
}

func (g *GeminiProvider) Close() {
	g.client.Close()
}
