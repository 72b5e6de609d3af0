// Package parse turns natural language reminder requests into reminder
// drafts using an OpenAI-compatible chat completion API.
package parse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/wrenlake/med-minder/pkg/models"
)

const (
	DefaultBaseURL = "https://api.sambanova.ai/v1"
	DefaultModel   = "Llama-4-Maverick-17B-128E-Instruct"
)

const systemPrompt = "You are an assistant that converts natural language medical reminder requests into JSON. Respond with ONLY JSON and no extra text."

const userPromptTemplate = `Parse this reminder and return JSON with fields: {title, type (medication|appointment), date (yyyy-mm-dd), time (HH:MM 24h), frequency: {type(one of once|daily|weekly|every_x_hours), days(optional array 0-6), everyXHours(optional number)}, details: {dosage, instructions, doctor, location, preReminderMinutes}}. If missing info, infer sensible defaults. Today is %s.

Request: %s`

// Parser calls the model and converts its answer into a Reminder.
type Parser struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// New creates a Parser against an OpenAI-compatible endpoint. Empty
// baseURL and model fall back to the SambaNova defaults.
func New(apiKey, baseURL, model string) *Parser {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Parser{
		client: openai.NewClientWithConfig(config),
		model:  model,
		now:    time.Now,
	}
}

// draft mirrors the JSON shape the prompt asks the model for.
type draft struct {
	Title     string           `json:"title"`
	Type      string           `json:"type"`
	Date      string           `json:"date"`
	Time      string           `json:"time"`
	Frequency models.Frequency `json:"frequency"`
	Details   models.Details   `json:"details"`
}

// Parse converts a natural language request like "remind me to take
// aspirin every morning at 8" into a ready-to-save reminder.
func (p *Parser) Parse(ctx context.Context, natural string) (models.Reminder, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(userPromptTemplate, p.now().Format("2006-01-02 (Monday)"), natural),
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to call AI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Reminder{}, fmt.Errorf("no response from AI")
	}

	return p.fromResponse(resp.Choices[0].Message.Content)
}

func (p *Parser) fromResponse(content string) (models.Reminder, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return models.Reminder{}, err
	}

	var d draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return p.fromDraft(d)
}

// extractJSON cuts the first balanced-looking JSON object out of a model
// answer that may be wrapped in prose or code fences.
func extractJSON(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("AI returned invalid JSON")
	}
	return content[start : end+1], nil
}

// fromDraft fills a Reminder from the model's draft, applying defaults
// for everything the model left out.
func (p *Parser) fromDraft(d draft) (models.Reminder, error) {
	if d.Title == "" {
		return models.Reminder{}, fmt.Errorf("AI response missing title")
	}

	kind := models.KindMedication
	if d.Type == string(models.KindAppointment) {
		kind = models.KindAppointment
	}

	r := models.NewReminder(kind)
	r.Title = d.Title
	r.Details = d.Details

	r.Frequency = d.Frequency
	switch r.Frequency.Type {
	case models.FrequencyOnce, models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyEveryXHours:
	default:
		r.Frequency = models.Frequency{Type: models.FrequencyOnce}
	}

	at, err := p.parseDateTime(d.Date, d.Time)
	if err != nil {
		return models.Reminder{}, err
	}
	r.DateTime = at

	return r, nil
}

// parseDateTime combines the draft's date and time strings into a local
// instant. A missing date means today; a missing time means now.
func (p *Parser) parseDateTime(dateStr, timeStr string) (time.Time, error) {
	now := p.now()

	day := now
	if dateStr != "" {
		d, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("AI returned invalid date %q: %w", dateStr, err)
		}
		day = d
	}

	if timeStr == "" {
		return time.Date(day.Year(), day.Month(), day.Day(),
			now.Hour(), now.Minute(), 0, 0, time.Local), nil
	}

	tod, err := time.ParseInLocation("15:04", timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("AI returned invalid time %q: %w", timeStr, err)
	}

	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), 0, 0, time.Local), nil
}
