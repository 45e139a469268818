package ai

import (
	"context"
	"log"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

const defaultDeployment = "gpt-35-turbo"

// Config holds the Azure OpenAI connection settings.
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// ConfigFromEnv reads AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and
// AZURE_OPENAI_DEPLOYMENT_NAME.
func ConfigFromEnv() Config {
	return Config{
		Endpoint:   global.GetEnvOrDefault("AZURE_OPENAI_ENDPOINT", ""),
		APIKey:     global.GetEnvOrDefault("AZURE_OPENAI_API_KEY", ""),
		Deployment: global.GetEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", defaultDeployment),
	}
}

// Reporter writes LLM insights on top of analytics data. A Reporter without
// credentials still returns the raw data.
type Reporter struct {
	client     *openai.Client
	deployment string
}

// NewReporter builds a Reporter. Extra options are passed to the OpenAI client.
func NewReporter(cfg Config, opts ...option.RequestOption) *Reporter {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		log.Println("AI service disabled - Azure OpenAI credentials not provided")
		log.Println("Required: AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY environment variables")
		return &Reporter{}
	}

	deployment := cfg.Deployment
	if deployment == "" {
		deployment = defaultDeployment
	}

	opts = append([]option.RequestOption{
		option.WithBaseURL(cfg.Endpoint),
		option.WithAPIKey(cfg.APIKey),
	}, opts...)
	client := openai.NewClient(opts...)

	log.Println("AI service initialized with Azure OpenAI")
	return &Reporter{client: &client, deployment: deployment}
}

// Enabled reports whether insights will be generated.
func (r *Reporter) Enabled() bool {
	return r != nil && r.client != nil
}

func (r *Reporter) generateCompletion(ctx context.Context, systemMessage, userMessage string) (string, error) {
	if !r.Enabled() {
		return "", &AIError{Message: "AI service is not enabled"}
	}

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemMessage),
			openai.UserMessage(userMessage),
		},
		MaxTokens:   openai.Int(1500),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		log.Printf("AI API Error: %v", err)
		return "", &AIError{Message: "Failed to generate AI response", Cause: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{Message: "AI returned empty response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// AIError represents an AI service error
type AIError struct {
	Message string
	Cause   error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AIError) Unwrap() error {
	return e.Cause
}
