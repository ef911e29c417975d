package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// suggestRequest is the request body for POST /api/meal-log/suggest.
type suggestRequest struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

// suggestionResponse is the structured nutrition data returned by the AI.
// Confidence is 1-5 indicating how accurate the estimate is.
type suggestionResponse struct {
	ItemName   string  `json:"item_name"`
	Qty        float64 `json:"qty"`
	Uom        string  `json:"uom"`
	Calories   int     `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	Confidence int     `json:"confidence"`
}

// remainingEffect shows what logging the suggestion would leave of today's budget.
type remainingEffect struct {
	CalorieTarget     int     `json:"calorie_target"`
	CaloriesLeft      int     `json:"calories_left"`
	CaloriesLeftAfter int     `json:"calories_left_after"`
	ProteinLeftAfter  float64 `json:"protein_left_after_g"`
	CarbsLeftAfter    float64 `json:"carbs_left_after_g"`
	FatLeftAfter      float64 `json:"fat_left_after_g"`
}

// suggestResult is the response shape. Remaining is omitted when today's
// targets could not be computed.
type suggestResult struct {
	suggestionResponse
	Remaining *remainingEffect `json:"remaining,omitempty"`
}

/* ─── OpenAI prompt ──────────────────────────────────────────────────── */

const foodSystemPrompt = `You are a nutrition assistant. Parse the food description and return a JSON object with:
- "item_name" (string, cleaned up title case)
- "qty" (number)
- "uom" (one of: each, g, ml, cup, tbsp, slice, serving)
- "calories" (integer, total for the full quantity)
- "protein_g" (integer, total for the full quantity)
- "carbs_g" (integer, total for the full quantity)
- "fat_g" (integer, total for the full quantity)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Only return {"error": "unrecognized"} if the input is not food at all.
Return only valid JSON, no explanation.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

var errNoAPIKey = errors.New("openai api key not configured")

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the content of
// the first choice. Raw net/http keeps the OpenAI SDK out of the build.
func callOpenAI(ctx context.Context, cfg OpenAIConfig, messages []openAIMessage) (string, error) {
	if cfg.APIKey == "" {
		return "", errNoAPIKey
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model:          cfg.Model,
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(cfg.BaseURL, "/")+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestMealLogItem handles POST /api/meal-log/suggest. It parses a food
// description into nutrition data and shows how logging it would change
// today's remaining calories and macros.
func (h *Handler) suggestMealLogItem(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}
	if req.Type != "" && !validItemTypes[req.Type] {
		apiError(c, http.StatusBadRequest, "type must be one of: breakfast, lunch, dinner, snack")
		return
	}

	content, err := callOpenAI(c.Request.Context(), h.openAI, []openAIMessage{
		{Role: "system", Content: foodSystemPrompt},
		{Role: "user", Content: req.Description},
	})
	if errors.Is(err, errNoAPIKey) {
		apiError(c, http.StatusServiceUnavailable, "meal suggestions are not configured")
		return
	} else if err != nil {
		log.Printf("[suggest] OpenAI error: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		log.Printf("[suggest] Failed to parse OpenAI response: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if errorResp.Error == "unrecognized" {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	var suggestion suggestionResponse
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		log.Printf("[suggest] Failed to parse suggestion JSON: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if suggestion.ItemName == "" || suggestion.Calories <= 0 {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	c.JSON(http.StatusOK, suggestResult{
		suggestionResponse: suggestion,
		Remaining:          h.remainingAfter(c, suggestion),
	})
}

// remainingAfter computes today's budget with and without the suggestion.
// Returns nil when the dashboard inputs can't be loaded; the suggestion is
// still useful without it.
func (h *Handler) remainingAfter(c *gin.Context, s suggestionResponse) *remainingEffect {
	if h.dashboard == nil {
		return nil
	}
	userID := c.GetInt("user_id")
	snap, err := h.dashboard.Snapshot(c, userID, h.timeSource(c))
	if err != nil {
		log.Printf("[suggest] snapshot failed for user %d: %v", userID, err)
		return nil
	}
	return &remainingEffect{
		CalorieTarget:     snap.CalorieTarget,
		CaloriesLeft:      snap.CaloriesLeft,
		CaloriesLeftAfter: snap.CaloriesLeft - s.Calories,
		ProteinLeftAfter:  snap.MacrosLeft.ProteinG - s.ProteinG,
		CarbsLeftAfter:    snap.MacrosLeft.CarbsG - s.CarbsG,
		FatLeftAfter:      snap.MacrosLeft.FatG - s.FatG,
	}
}
